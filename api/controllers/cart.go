package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/minhngocdo/herbamart-storefront/api/middleware"
	"github.com/minhngocdo/herbamart-storefront/api/responses"
	"github.com/minhngocdo/herbamart-storefront/api/validators"
	"github.com/minhngocdo/herbamart-storefront/internal/cart"
	"github.com/minhngocdo/herbamart-storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

type CartController struct {
	store *cart.Store
	logg  *logger.Logger
}

func NewCartController(store *cart.Store, logg *logger.Logger) *CartController {
	return &CartController{store: store, logg: logg}
}

type addItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Option    string          `json:"option"`
	Name      string          `json:"name" validate:"required"`
	Image     string          `json:"image"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

type updateQuantityRequest struct {
	Option   string `json:"option"`
	Quantity int    `json:"quantity" validate:"required"`
}

// Get returns the persisted cart for the signed-in user.
func (c *CartController) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	responses.WriteSuccess(w, c.store.Load(r.Context(), userID))
}

// AddItem adds one unit of the requested line. Failures surface as notices in
// the returned view, never as an error response.
func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addItemRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	view := c.store.AddItem(ctx, middleware.UserIDFromContext(ctx), cart.Item{
		ProductID: req.ProductID,
		Option:    req.Option,
		Name:      req.Name,
		Image:     req.Image,
		UnitPrice: req.UnitPrice,
		Quantity:  req.Quantity,
	})
	responses.WriteSuccess(w, view)
}

// UpdateQuantity sets a line quantity (floor of one).
func (c *CartController) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateQuantityRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	productID := chi.URLParam(r, "productID")
	view := c.store.UpdateQuantity(ctx, middleware.UserIDFromContext(ctx), productID, req.Option, req.Quantity)
	responses.WriteSuccess(w, view)
}

// RemoveItem drops the exactly matching (product, option) line.
func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID := chi.URLParam(r, "productID")
	option := r.URL.Query().Get("option")
	view := c.store.RemoveItem(ctx, middleware.UserIDFromContext(ctx), productID, option)
	responses.WriteSuccess(w, view)
}

// Clear empties the cart. Clearing an empty cart still succeeds.
func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	responses.WriteSuccess(w, c.store.Clear(ctx, middleware.UserIDFromContext(ctx)))
}
