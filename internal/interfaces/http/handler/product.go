package handler

import (
	"time"

	appcatalog "github.com/booktime/backend/internal/application/catalog"
	"github.com/booktime/backend/internal/domain/catalog"
	"github.com/booktime/backend/internal/interfaces/http/dto"
	"github.com/booktime/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductHandler serves read-only storefront browsing
type ProductHandler struct {
	BaseHandler
	productService *appcatalog.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *appcatalog.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// Routes returns the product route group
func (h *ProductHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("products", "/products").
		GET("", h.List).
		GET("/:id", h.Get).
		GET("/slug/:slug", h.GetBySlug)
}

// ProductResponse is the wire shape of a product
type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	InStock     bool            `json:"in_stock"`
	Tags        []string        `json:"tags"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toProductResponse(p *catalog.Product) ProductResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		InStock:     p.InStock,
		Tags:        tags,
		CreatedAt:   p.CreatedAt,
	}
}

// List returns active products, optionally filtered by tag
func (h *ProductHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid list parameters")
		return
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}

	products, total, err := h.productService.ListProducts(c.Request.Context(), catalog.ListFilter{
		Tag:      req.Tag,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = toProductResponse(&products[i])
	}
	h.SuccessWithMeta(c, out, total, req.Page, req.PageSize)
}

// Get returns one product by id
func (h *ProductHandler) Get(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid product id")
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), uuid.MustParse(req.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(product))
}

// GetBySlug returns one product by slug
func (h *ProductHandler) GetBySlug(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		h.BadRequest(c, "Invalid product slug")
		return
	}

	product, err := h.productService.GetProductBySlug(c.Request.Context(), slug)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(product))
}
