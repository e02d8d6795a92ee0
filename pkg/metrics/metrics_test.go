package metrics_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgaunet/s3peek/pkg/metrics"
	"github.com/sgaunet/s3peek/pkg/objstore/memstore"
)

func TestMiddlewareLabelsByRoute(t *testing.T) {
	m := metrics.New()
	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/download/{path:.+}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	})
	r.HandleFunc("/{path:.+}", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "missing") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})

	for _, p := range []string{"/data/a.txt", "/data/dir/", "/data/missing", "/download/data/a.txt"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	expected := `
# HELP s3peek_http_requests_total Total number of HTTP requests, partitioned by route template, method and status code.
# TYPE s3peek_http_requests_total counter
s3peek_http_requests_total{code="200",method="GET",route="/download/{path:.+}"} 1
s3peek_http_requests_total{code="200",method="GET",route="/{path:.+}"} 2
s3peek_http_requests_total{code="404",method="GET",route="/{path:.+}"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "s3peek_http_requests_total"))

	expectedBytes := `
# HELP s3peek_http_response_bytes_total Bytes written to clients, by route template.
# TYPE s3peek_http_response_bytes_total counter
s3peek_http_response_bytes_total{route="/download/{path:.+}"} 10
s3peek_http_response_bytes_total{route="/{path:.+}"} 4
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expectedBytes), "s3peek_http_response_bytes_total"))
}

func TestMiddlewareWithoutRoute(t *testing.T) {
	m := metrics.New()
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `s3peek_http_requests_total{code="418",method="POST",route="unmatched"} 1`)
}

func TestInstrumentStore(t *testing.T) {
	mem := memstore.New()
	mem.Put("b", "k", []byte("hello world"))

	m := metrics.New()
	store := metrics.InstrumentStore(mem, metrics.NewStoreMetrics(m.Registry()))

	_, err := store.ReadRange(context.Background(), "b", "k", 0, 4)
	require.NoError(t, err)
	_, err = store.Stat(context.Background(), "b", "nope")
	require.Error(t, err)

	rc, err := store.Open(context.Background(), "b", "k")
	require.NoError(t, err)
	_, err = io.Copy(io.Discard, rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())

	expected := `
# HELP s3peek_store_bytes_total Total bytes fetched from the object store.
# TYPE s3peek_store_bytes_total counter
s3peek_store_bytes_total{op="Open"} 11
s3peek_store_bytes_total{op="ReadRange"} 5
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "s3peek_store_bytes_total"))

	expectedOps := `
# HELP s3peek_store_ops_total Total number of object store operations by result.
# TYPE s3peek_store_ops_total counter
s3peek_store_ops_total{op="Open",result="ok"} 1
s3peek_store_ops_total{op="ReadRange",result="ok"} 1
s3peek_store_ops_total{op="Stat",result="not_found"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expectedOps), "s3peek_store_ops_total"))
	assert.Zero(t, mem.OpenStreams())
}
