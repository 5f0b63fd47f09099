package probe

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbeUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	res := NewProber().Probe(srv.URL)
	assert.True(t, res.Up)
	assert.Empty(t, res.Reason)
}

func TestProbeRedirectIsUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/final" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Redirect(w, r, "/final", http.StatusFound)
	}))
	defer srv.Close()

	res := NewProber().Probe(srv.URL)
	assert.True(t, res.Up)
}

func TestProbeErrorStatusIsDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	res := NewProber().Probe(srv.URL)
	assert.False(t, res.Up)
	assert.Equal(t, "Status 503", res.Reason)
}

func TestProbeNotFoundIsDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	res := NewProber().Probe(srv.URL)
	assert.False(t, res.Up)
	assert.Equal(t, "Status 404", res.Reason)
}

func TestProbeUnreachableIsDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	res := NewProber().Probe(url)
	assert.False(t, res.Up)
	assert.Equal(t, "No response received", res.Reason)
}

func TestProbeTooManyRedirectsStopsFollowing(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, fmt.Sprintf("%s?n=%s1", srv.URL, r.URL.Query().Get("n")), http.StatusFound)
	}))
	defer srv.Close()

	// The chain never ends; after the redirect budget the last 3xx
	// response is taken as-is, which still counts as reachable.
	res := NewProber().Probe(srv.URL)
	assert.True(t, res.Up)
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "http://example.com", NormalizeURL("example.com"))
	assert.Equal(t, "http://example.com", NormalizeURL("http://example.com"))
	assert.Equal(t, "https://example.com", NormalizeURL("https://example.com"))
}
