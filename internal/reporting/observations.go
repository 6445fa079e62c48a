package reporting

import (
	"fmt"

	"github.com/odyssey-erp/tesoreria/internal/records"
)

// Observations renders the data-quality notes shown on the last page.
func Observations(p Prepared) []string {
	var notes []string
	for _, f := range p.Failures {
		if f.StatusCode != 0 {
			notes = append(notes, fmt.Sprintf("No se pudo cargar %s (HTTP %d).", f.URL, f.StatusCode))
			continue
		}
		notes = append(notes, fmt.Sprintf("No se pudo cargar %s: %v.", f.URL, f.Err))
	}
	for _, ig := range p.Ignored {
		notes = append(notes, fmt.Sprintf("Se ignoró %s: ya se usó %s como %s.", ig.URL, ig.Kept, ig.Role))
	}
	for _, w := range p.Warnings {
		notes = append(notes, fmt.Sprintf("%s línea %d, %s: valor %q leído como %s.",
			w.Dataset, w.Line, w.Field, w.Raw, records.FormatAmount(records.Amount(w.Raw))))
	}
	return notes
}
