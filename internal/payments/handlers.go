package payments

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PaymentUseCaseInterface define a interface para o use case de checkout
type PaymentUseCaseInterface interface {
	Quote(ctx context.Context, items []CartItem) (*Quote, error)
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error)
	CaptureOrder(ctx context.Context, req CaptureOrderRequest) (*CaptureResult, error)
	Receipt(ctx context.Context, orderID int64) (*Receipt, error)
}

// PaymentHandler contém os handlers HTTP do checkout
type PaymentHandler struct {
	useCase PaymentUseCaseInterface
	tracer  trace.Tracer
}

// NewPaymentHandler cria uma nova instância de PaymentHandler
func NewPaymentHandler(useCase PaymentUseCaseInterface, tracer trace.Tracer) *PaymentHandler {
	return &PaymentHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// RegisterRoutes registra as rotas em /api/payment
func (h *PaymentHandler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/api/payment")
	g.POST("/quote", h.Quote)
	g.POST("/create-order", h.CreateOrder)
	g.POST("/capture-order", h.CaptureOrder)
	g.GET("/orders/:id/receipt", h.Receipt)
}

// QuoteRequest pede a cotação de um carrinho
type QuoteRequest struct {
	Items []CartItem `json:"items"`
}

// Quote devolve o carrinho validado com os totais
func (h *PaymentHandler) Quote(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "quote_cart")
	defer span.End()

	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quote, err := h.useCase.Quote(ctx, req.Items)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// CreateOrder abre o pedido no PayPal
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "create_paypal_order")
	defer span.End()

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	span.SetAttributes(
		attribute.Int64("user_id", req.UserID),
		attribute.Int("cart.items", len(req.Items)),
	)

	result, err := h.useCase.CreateOrder(ctx, req)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.String("paypal.order_id", result.ID))
	c.JSON(http.StatusCreated, gin.H{
		"id":       result.ID,
		"status":   result.Status,
		"items":    result.Quote.Lines,
		"subtotal": result.Quote.Subtotal,
		"tax":      result.Quote.Tax,
		"total":    result.Quote.Total,
		"currency": result.Quote.Currency,
	})
}

// CaptureOrder captura o pagamento e grava o pedido
func (h *PaymentHandler) CaptureOrder(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "capture_paypal_order")
	defer span.End()

	var req CaptureOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	span.SetAttributes(
		attribute.String("paypal.order_id", req.OrderID),
		attribute.Int64("user_id", req.UserID),
	)

	result, err := h.useCase.CaptureOrder(ctx, req)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.Int64("order_id", result.OrderID))
	c.JSON(http.StatusOK, result)
}

// Receipt baixa o recibo XML de um pedido
func (h *PaymentHandler) Receipt(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "order_receipt")
	defer span.End()
	span.SetAttributes(attribute.Int64("order_id", id))

	receipt, err := h.useCase.Receipt(ctx, id)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	body, err := receipt.Marshal()
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+receipt.Filename()+`"`)
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}

func respondError(c *gin.Context, err error) {
	var statusErr *PaymentStatusError
	var paypalErr *PayPalError

	switch {
	case errors.As(err, &statusErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  statusErr.Status,
			"error":   "Payment was not completed",
			"details": err.Error(),
		})
	case errors.As(err, &paypalErr):
		log.Printf("❌ [PAYPAL] %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Error processing payment",
			"details": paypalErr.Detail(),
		})
	case errors.Is(err, ErrCaptureMismatch):
		c.JSON(http.StatusConflict, gin.H{
			"error":   ErrCaptureMismatch.Error(),
			"details": err.Error(),
		})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrProductInactive),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrInvalidUser),
		errors.Is(err, ErrInvalidOrderID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("❌ [PAYMENT] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Error processing payment",
			"details": err.Error(),
		})
	}
}
