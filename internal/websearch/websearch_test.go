package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const resultsPage = `<html><body>
<div class="result results_links">
  <h2 class="result__title"><a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.rei.com%2Ftents&amp;rut=abc">REI <b>Tents</b></a></h2>
  <a class="result__snippet" href="#">Shop   tents at REI.</a>
</div>
<div class="result results_links">
  <h2 class="result__title"><a class="result__a" href="https://www.backcountry.com/tents">Backcountry</a></h2>
</div>
</body></html>`

func TestSearchParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "buy tents", r.PostForm.Get("q"))
		assert.Equal(t, "us-en", r.PostForm.Get("kl"))
		_, _ = w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, zap.NewNop())
	got := c.Search(context.Background(), "buy tents", 10, "us-en")
	require.Len(t, got, 2)
	assert.Equal(t, Result{Title: "REI Tents", URL: "https://www.rei.com/tents", Description: "Shop tents at REI."}, got[0])
	assert.Equal(t, "https://www.backcountry.com/tents", got[1].URL)
	assert.Empty(t, got[1].Description)

	got = c.Search(context.Background(), "buy tents", 1, "us-en")
	assert.Len(t, got, 1)
}

func TestSearchFallsBackOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	got := c.Search(context.Background(), "usb hub", 3, "")
	require.Len(t, got, 3)
	assert.Equal(t, "Amazon.com: usb hub", got[0].Title)
	assert.Equal(t, "https://www.amazon.com/s?k=usb+hub", got[0].URL)
}

func TestCannedResultsLimit(t *testing.T) {
	assert.Len(t, CannedResults("x", 10), 5)
	assert.Len(t, CannedResults("x", 2), 2)
}
