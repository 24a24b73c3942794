package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/minhngocdo/herbamart-storefront/pkg/config"
	pkgerrors "github.com/minhngocdo/herbamart-storefront/pkg/errors"
	"github.com/minhngocdo/herbamart-storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry as served by the upstream commerce API. Options
// are the purchasable variants ("Hộp 30 viên", "Lọ 60 viên").
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Options     []string        `json:"options,omitempty"`
	InStock     bool            `json:"in_stock"`
}

// ListQuery narrows a product listing. Zero values mean "no filter".
type ListQuery struct {
	Search   string
	Category string
	Page     int
	PerPage  int
}

// Client is a thin reader over the upstream catalog. The storefront holds no
// product data of its own, so every listing is a pass-through call.
type Client struct {
	baseURL string
	http    *http.Client
	logg    *logger.Logger
}

func NewClient(cfg config.UpstreamConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "upstream base url required")
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		logg:    logg,
	}, nil
}

func (c *Client) ListProducts(ctx context.Context, query ListQuery) ([]Product, error) {
	values := url.Values{}
	if query.Search != "" {
		values.Set("q", query.Search)
	}
	if query.Category != "" {
		values.Set("category", query.Category)
	}
	if query.Page > 0 {
		values.Set("page", fmt.Sprintf("%d", query.Page))
	}
	if query.PerPage > 0 {
		values.Set("per_page", fmt.Sprintf("%d", query.PerPage))
	}

	endpoint := c.baseURL + "/products"
	if encoded := values.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var payload struct {
		Products []Product `json:"products"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	if payload.Products == nil {
		payload.Products = []Product{}
	}
	return payload.Products, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	var product Product
	endpoint := c.baseURL + "/products/" + url.PathEscape(id)
	if err := c.getJSON(ctx, endpoint, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Ping checks upstream reachability for the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building upstream ping")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upstream unreachable")
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusInternalServerError {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("upstream health returned %d", resp.StatusCode))
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building upstream request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "calling upstream catalog")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	case resp.StatusCode != http.StatusOK:
		io.Copy(io.Discard, resp.Body)
		if c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "status", resp.StatusCode), "catalog.upstream_status")
		}
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("upstream catalog returned %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding upstream response")
	}
	return nil
}
