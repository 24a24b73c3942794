package catalog

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/minhngocdo/herbamart-storefront/pkg/config"
	pkgerrors "github.com/minhngocdo/herbamart-storefront/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(config.UpstreamConfig{BaseURL: server.URL, Timeout: 2 * time.Second}, nil)
	require.NoError(t, err)
	return client
}

func TestListProductsPassesQuery(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "vitamin", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[{"id":"p1","name":"Vitamin C 500mg","price":"120000","options":["Hộp","Lọ"],"in_stock":true}]}`))
	}))

	products, err := client.ListProducts(t.Context(), ListQuery{Search: "vitamin", Page: 2})
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].ID)
	assert.True(t, products[0].Price.Equal(decimal.NewFromInt(120000)))
	assert.Equal(t, []string{"Hộp", "Lọ"}, products[0].Options)
}

func TestListProductsEmptyBodyYieldsEmptySlice(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	products, err := client.ListProducts(t.Context(), ListQuery{})
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestGetProductNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := client.GetProduct(t.Context(), "missing")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestGetProductRequiresID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	_, err := client.GetProduct(t.Context(), "")
	require.Error(t, err)
}

func TestUpstreamErrorIsDependencyCoded(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.ListProducts(t.Context(), ListQuery{})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}

func TestPingAcceptsNonServerErrors(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, client.Ping(t.Context()))
}

func TestPingReportsServerErrors(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	require.Error(t, client.Ping(t.Context()))
}
