package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/minhngocdo/herbamart-storefront/api/responses"
	"github.com/minhngocdo/herbamart-storefront/internal/catalog"
	"github.com/minhngocdo/herbamart-storefront/pkg/logger"
)

type CatalogController struct {
	client *catalog.Client
	logg   *logger.Logger
}

func NewCatalogController(client *catalog.Client, logg *logger.Logger) *CatalogController {
	return &CatalogController{client: client, logg: logg}
}

// List proxies a product listing from the upstream catalog.
func (c *CatalogController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := catalog.ListQuery{
		Search:   r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
	}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		query.Page = page
	}
	if perPage, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil {
		query.PerPage = perPage
	}

	products, err := c.client.ListProducts(ctx, query)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{"products": products})
}

// Get proxies a single product lookup.
func (c *CatalogController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	product, err := c.client.GetProduct(ctx, chi.URLParam(r, "productID"))
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, product)
}
