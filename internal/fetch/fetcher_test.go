package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (o *countingObserver) ObserveFetch(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = map[string]int{}
	}
	o.outcomes[outcome]++
}

func newCSVServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/brawny-letters.csv":
			_, _ = w.Write([]byte("a,b,c\n1,2,3\n"))
		case "/slow.csv":
			time.Sleep(50 * time.Millisecond)
			_, _ = w.Write([]byte("x\n1\n"))
		case "/blank.csv":
			_, _ = w.Write([]byte("  \n"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestParseURLList(t *testing.T) {
	urls, err := ParseURLList(" http://a/x.csv , ,https://b/y.csv,")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a/x.csv", "https://b/y.csv"}, urls)

	_, err = ParseURLList(" , ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestValidateURLs(t *testing.T) {
	require.NoError(t, ValidateURLs([]string{"http://example.com/a.csv", "https://example.com/b.csv?x=1"}))

	err := ValidateURLs([]string{"http://example.com/a.csv", "ftp://example.com/b.csv", "example.com/c.csv", "notaurl"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	var invalid *InvalidURLsError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, []string{"ftp://example.com/b.csv", "example.com/c.csv", "notaurl"}, invalid.URLs)
}

func TestFetchPreservesOrderAndRecordsFailures(t *testing.T) {
	srv := newCSVServer(t, nil)
	obs := &countingObserver{}
	f := NewFetcher(srv.Client(), Options{Concurrency: 3, Observer: obs})

	urls := []string{
		srv.URL + "/slow.csv",
		srv.URL + "/missing.csv",
		srv.URL + "/brawny-letters.csv",
		srv.URL + "/blank.csv",
	}
	docs, err := f.Fetch(context.Background(), urls, false)
	require.NoError(t, err)
	require.Len(t, docs, 4)

	assert.True(t, docs[0].OK())
	assert.Equal(t, "slow.csv", docs[0].Filename)

	require.NotNil(t, docs[1].Err)
	assert.Equal(t, http.StatusNotFound, docs[1].Err.StatusCode)

	assert.True(t, docs[2].OK())
	assert.Equal(t, "a,b,c\n1,2,3\n", docs[2].Body)

	require.NotNil(t, docs[3].Err)
	assert.ErrorIs(t, docs[3].Err, ErrEmptyBody)

	assert.Equal(t, 2, obs.outcomes["ok"])
	assert.Equal(t, 1, obs.outcomes["status"])
	assert.Equal(t, 1, obs.outcomes["empty"])
}

func TestFetchTimeoutIsPerURL(t *testing.T) {
	srv := newCSVServer(t, nil)
	f := NewFetcher(srv.Client(), Options{Timeout: 5 * time.Millisecond})
	docs, err := f.Fetch(context.Background(), []string{srv.URL + "/slow.csv", srv.URL + "/brawny-letters.csv"}, false)
	require.NoError(t, err)
	require.NotNil(t, docs[0].Err)
	assert.ErrorIs(t, docs[0].Err, context.DeadlineExceeded)
}

func TestFetchCancelledContext(t *testing.T) {
	srv := newCSVServer(t, nil)
	f := NewFetcher(srv.Client(), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Fetch(ctx, []string{srv.URL + "/slow.csv"}, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchRejectsOversizedBody(t *testing.T) {
	srv := newCSVServer(t, nil)
	f := NewFetcher(srv.Client(), Options{MaxBodyBytes: 4})
	docs, err := f.Fetch(context.Background(), []string{srv.URL + "/brawny-letters.csv"}, false)
	require.NoError(t, err)
	require.NotNil(t, docs[0].Err)
	assert.Contains(t, docs[0].Err.Error(), "exceeds")
}

func TestCacheServesRepeatDownloads(t *testing.T) {
	var hits atomic.Int32
	srv := newCSVServer(t, &hits)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewCache(client, time.Minute, nil)
	require.NotNil(t, cache)
	obs := &countingObserver{}
	f := NewFetcher(srv.Client(), Options{Cache: cache, Observer: obs})
	url := srv.URL + "/brawny-letters.csv"

	docs, err := f.Fetch(context.Background(), []string{url}, false)
	require.NoError(t, err)
	assert.False(t, docs[0].Cached)

	docs, err = f.Fetch(context.Background(), []string{url}, false)
	require.NoError(t, err)
	assert.True(t, docs[0].Cached)
	assert.Equal(t, "a,b,c\n1,2,3\n", docs[0].Body)
	assert.EqualValues(t, 1, hits.Load())

	docs, err = f.Fetch(context.Background(), []string{url}, true)
	require.NoError(t, err)
	assert.False(t, docs[0].Cached)
	assert.EqualValues(t, 2, hits.Load())

	mr.FastForward(2 * time.Minute)
	docs, err = f.Fetch(context.Background(), []string{url}, false)
	require.NoError(t, err)
	assert.False(t, docs[0].Cached)
	assert.EqualValues(t, 3, hits.Load())
	assert.Equal(t, 1, obs.outcomes["cached"])
}

func TestCacheSkipsFailures(t *testing.T) {
	var hits atomic.Int32
	srv := newCSVServer(t, &hits)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := NewFetcher(srv.Client(), Options{Cache: NewCache(client, time.Minute, nil)})
	url := srv.URL + "/missing.csv"
	for i := 0; i < 2; i++ {
		docs, err := f.Fetch(context.Background(), []string{url}, false)
		require.NoError(t, err)
		require.NotNil(t, docs[0].Err)
	}
	assert.EqualValues(t, 2, hits.Load())
	assert.Empty(t, mr.Keys())
}

func TestSharedDownloadSurvivesFirstCallerCancel(t *testing.T) {
	var hits atomic.Int32
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		started <- struct{}{}
		<-release
		_, _ = w.Write([]byte("a,b,c\n1,2,3\n"))
	}))
	var releaseOnce sync.Once
	unblock := func() { releaseOnce.Do(func() { close(release) }) }
	t.Cleanup(srv.Close)
	t.Cleanup(unblock)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	f := NewFetcher(srv.Client(), Options{Cache: NewCache(client, time.Minute, nil)})
	url := srv.URL + "/brawny-letters.csv"

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := f.Fetch(ctxA, []string{url}, false)
		errA <- err
	}()
	<-started

	type result struct {
		docs []SourceDocument
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		docs, err := f.Fetch(context.Background(), []string{url}, false)
		resB <- result{docs, err}
	}()
	// Give the second caller time to join the in-flight download.
	time.Sleep(100 * time.Millisecond)

	cancelA()
	require.ErrorIs(t, <-errA, context.Canceled)
	unblock()

	b := <-resB
	require.NoError(t, b.err)
	require.Len(t, b.docs, 1)
	require.Nil(t, b.docs[0].Err)
	assert.Equal(t, "a,b,c\n1,2,3\n", b.docs[0].Body)
	assert.EqualValues(t, 1, hits.Load())
	assert.True(t, mr.Exists(cacheKey(url)))
}

func TestNewCacheDisabled(t *testing.T) {
	assert.Nil(t, NewCache(nil, time.Minute, nil))
}
