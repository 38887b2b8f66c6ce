package catalog

import (
	"context"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CatalogUseCaseInterface define a interface para o use case do catálogo
type CatalogUseCaseInterface interface {
	ListProducts(ctx context.Context, onlyActive bool) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	CreateProduct(ctx context.Context, in ProductInput, image *multipart.FileHeader) (*Product, error)
	UpdateProduct(ctx context.Context, id int64, in ProductInput, image *multipart.FileHeader) (*Product, error)
	UpdateStock(ctx context.Context, id int64, stock int) error
	DeactivateProduct(ctx context.Context, id int64) error
	ActivateProduct(ctx context.Context, id int64) error
}

// CatalogHandler contém os handlers HTTP do catálogo
type CatalogHandler struct {
	useCase CatalogUseCaseInterface
	tracer  trace.Tracer
}

// NewCatalogHandler cria uma nova instância de CatalogHandler
func NewCatalogHandler(useCase CatalogUseCaseInterface, tracer trace.Tracer) *CatalogHandler {
	return &CatalogHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// RegisterRoutes registra as rotas do catálogo em /api/catalog
func (h *CatalogHandler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/api/catalog")
	g.GET("/products", h.ListProducts)
	g.GET("/products/:id", h.GetProduct)
	g.POST("/products", h.CreateProduct)
	g.PUT("/products/:id", h.UpdateProduct)
	g.PUT("/products/:id/stock", h.UpdateStock)
	g.DELETE("/products/:id", h.DeactivateProduct)
	g.PUT("/products/:id/activate", h.ActivateProduct)
}

// productForm é o corpo multipart de criação e edição
type productForm struct {
	Name        string `form:"name" binding:"required"`
	Description string `form:"description"`
	Price       string `form:"price" binding:"required"`
	Stock       int    `form:"stock"`
}

func (f productForm) input() (ProductInput, error) {
	price, err := decimal.NewFromString(f.Price)
	if err != nil {
		return ProductInput{}, ErrInvalidProduct
	}
	return ProductInput{
		Name:        f.Name,
		Description: f.Description,
		Price:       price,
		Stock:       f.Stock,
	}, nil
}

// UpdateStockRequest representa a requisição de ajuste de estoque
type UpdateStockRequest struct {
	Stock *int `json:"stock" binding:"required"`
}

// ListProducts lista os produtos
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "list_products")
	defer span.End()

	onlyActive := c.Query("active") == "true"
	products, err := h.useCase.ListProducts(ctx, onlyActive)
	if err != nil {
		span.RecordError(err)
		log.Printf("❌ [LIST PRODUCTS] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}

	span.SetAttributes(attribute.Int("products.count", len(products)))
	c.JSON(http.StatusOK, products)
}

// GetProduct retorna um produto
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "get_product")
	defer span.End()
	span.SetAttributes(attribute.Int64("product_id", id))

	product, err := h.useCase.GetProduct(ctx, id)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct cria um produto a partir de um formulário multipart
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "create_product")
	defer span.End()

	in, image, ok := bindProductForm(c)
	if !ok {
		return
	}

	product, err := h.useCase.CreateProduct(ctx, in, image)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.Int64("product_id", product.ID))
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct edita todos os campos de um produto
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "update_product")
	defer span.End()
	span.SetAttributes(attribute.Int64("product_id", id))

	in, image, ok := bindProductForm(c)
	if !ok {
		return
	}

	product, err := h.useCase.UpdateProduct(ctx, id, in, image)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// UpdateStock ajusta apenas o estoque
func (h *CatalogHandler) UpdateStock(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "update_stock")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("product_id", id),
		attribute.Int("stock", *req.Stock),
	)

	if err := h.useCase.UpdateStock(ctx, id, *req.Stock); err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "stock": *req.Stock, "message": "Stock updated"})
}

// DeactivateProduct desativa um produto
func (h *CatalogHandler) DeactivateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "deactivate_product")
	defer span.End()
	span.SetAttributes(attribute.Int64("product_id", id))

	if err := h.useCase.DeactivateProduct(ctx, id); err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "active": false, "message": "Product deactivated"})
}

// ActivateProduct reativa um produto
func (h *CatalogHandler) ActivateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "activate_product")
	defer span.End()
	span.SetAttributes(attribute.Int64("product_id", id))

	if err := h.useCase.ActivateProduct(ctx, id); err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "active": true, "message": "Product activated"})
}

func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return 0, false
	}
	return id, true
}

func bindProductForm(c *gin.Context) (ProductInput, *multipart.FileHeader, bool) {
	var form productForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return ProductInput{}, nil, false
	}

	in, err := form.input()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
		return ProductInput{}, nil, false
	}

	image, err := c.FormFile("image")
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return ProductInput{}, nil, false
		}
		image = nil
	}

	return in, image, true
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidProduct), errors.Is(err, ErrImageRequired), errors.Is(err, ErrInvalidImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("❌ [CATALOG] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
