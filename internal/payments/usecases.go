package payments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest abre o pagamento de um carrinho
type CreateOrderRequest struct {
	UserID int64      `json:"user_id" binding:"required"`
	Items  []CartItem `json:"items"`
}

// CaptureOrderRequest confirma o pagamento aprovado no PayPal
type CaptureOrderRequest struct {
	OrderID string     `json:"order_id"`
	UserID  int64      `json:"user_id" binding:"required"`
	Items   []CartItem `json:"items"`
}

// CreateOrderResult é o pedido aberto no PayPal com a cotação usada
type CreateOrderResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Quote  *Quote `json:"quote"`
}

// CaptureResult é o resultado de uma captura gravada
type CaptureResult struct {
	Status        string `json:"status"`
	PayPalOrderID string `json:"order_id"`
	OrderID       int64  `json:"db_order_id"`
	Message       string `json:"message"`
}

// PaymentUseCase contém a lógica de negócio do checkout
type PaymentUseCase struct {
	repository Repository
	gateway    Gateway
	currency   string
	storeName  string
	metrics    *checkoutMetrics
}

// NewPaymentUseCase cria uma nova instância de PaymentUseCase
func NewPaymentUseCase(repository Repository, gateway Gateway, currency, storeName string) *PaymentUseCase {
	return &PaymentUseCase{
		repository: repository,
		gateway:    gateway,
		currency:   currency,
		storeName:  storeName,
		metrics:    newCheckoutMetrics(),
	}
}

// Quote valida o carrinho com os preços e o estoque atuais
func (uc *PaymentUseCase) Quote(ctx context.Context, items []CartItem) (*Quote, error) {
	merged, err := mergeCart(items)
	if err != nil {
		return nil, err
	}

	products, err := uc.repository.GetProducts(ctx, productIDs(merged))
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	return BuildQuote(merged, products, uc.currency)
}

// CreateOrder valida o carrinho e abre o pedido no PayPal
func (uc *PaymentUseCase) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if req.UserID <= 0 {
		return nil, ErrInvalidUser
	}

	quote, err := uc.Quote(ctx, req.Items)
	if err != nil {
		log.Printf("❌ [CREATE ORDER] Invalid cart | UserID=%d | Error=%v", req.UserID, err)
		return nil, err
	}

	order, err := uc.gateway.CreateOrder(ctx, CheckoutRequest{UserID: req.UserID, Quote: quote})
	if err != nil {
		log.Printf("❌ [CREATE ORDER] PayPal failed | UserID=%d | Error=%v", req.UserID, err)
		return nil, err
	}

	log.Printf("✅ [CREATE ORDER] PayPalOrderID=%s | UserID=%d | Total=%s %s",
		order.ID, req.UserID, quote.Total.StringFixed(2), quote.Currency)
	return &CreateOrderResult{ID: order.ID, Status: order.Status, Quote: quote}, nil
}

// CaptureOrder captura o pagamento e grava pedido, itens e baixa de estoque em uma única transação
func (uc *PaymentUseCase) CaptureOrder(ctx context.Context, req CaptureOrderRequest) (*CaptureResult, error) {
	paypalOrderID := strings.TrimSpace(req.OrderID)
	if paypalOrderID == "" {
		return nil, ErrInvalidOrderID
	}
	if req.UserID <= 0 {
		return nil, ErrInvalidUser
	}
	merged, err := mergeCart(req.Items)
	if err != nil {
		return nil, err
	}

	log.Printf("➡️ [CAPTURE] PayPalOrderID=%s | UserID=%d", paypalOrderID, req.UserID)

	// 1. Inicia a transação
	tx, err := uc.repository.BeginTx(ctx)
	if err != nil {
		uc.metrics.recordFailed(ctx, "begin")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 2. Idempotência: a captura já foi gravada
	existing, err := uc.repository.GetOrderByPayPalID(ctx, tx, paypalOrderID)
	if err == nil {
		log.Printf("ℹ️  [IDEMPOTENCY] Capture already recorded for PayPalOrderID=%s", paypalOrderID)
		return &CaptureResult{
			Status:        existing.Status,
			PayPalOrderID: existing.PayPalOrderID,
			OrderID:       existing.ID,
			Message:       "Payment already captured",
		}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		uc.metrics.recordFailed(ctx, "idempotency")
		return nil, fmt.Errorf("failed to check idempotency: %w", err)
	}

	// 3. LOCK PESSIMISTA nos produtos e revalidação do estoque
	products, err := uc.repository.GetProductsForUpdate(ctx, tx, productIDs(merged))
	if err != nil {
		uc.metrics.recordFailed(ctx, "lock")
		return nil, err
	}
	quote, err := BuildQuote(merged, products, uc.currency)
	if err != nil {
		log.Printf("❌ CAPTURE FAILED: stock validation | PayPalOrderID=%s | Error=%v", paypalOrderID, err)
		uc.metrics.recordFailed(ctx, "validation")
		return nil, err
	}

	// 4. Captura no PayPal
	capture, err := uc.gateway.CaptureOrder(ctx, paypalOrderID)
	if err != nil {
		log.Printf("❌ CAPTURE FAILED: PayPal | PayPalOrderID=%s | Error=%v", paypalOrderID, err)
		uc.metrics.recordFailed(ctx, "gateway")
		return nil, err
	}
	if capture.Status != StatusCompleted {
		log.Printf("❌ CAPTURE FAILED: status %s | PayPalOrderID=%s", capture.Status, paypalOrderID)
		uc.metrics.recordFailed(ctx, "status")
		return nil, &PaymentStatusError{Status: capture.Status}
	}

	if err := verifyCapture(req.UserID, capture, quote); err != nil {
		log.Printf("🚨 CAPTURE MISMATCH: PayPalOrderID=%s CaptureID=%s needs refund | Error=%v",
			paypalOrderID, capture.CaptureID, err)
		uc.metrics.recordFailed(ctx, "mismatch")
		return nil, err
	}
	order := newCapturedOrder(req.UserID, paypalOrderID, capture, quote)

	// 5. Grava o pedido, os itens e a baixa de estoque
	if err := uc.repository.CreateOrder(ctx, tx, order); err != nil {
		log.Printf("❌ [CAPTURE] PayPalOrderID=%s Failed to insert order: %v", paypalOrderID, err)
		uc.metrics.recordFailed(ctx, "persist")
		return nil, err
	}
	if err := uc.repository.CreateOrderItems(ctx, tx, order.ID, order.Items); err != nil {
		log.Printf("❌ [CAPTURE] PayPalOrderID=%s Failed to insert items: %v", paypalOrderID, err)
		uc.metrics.recordFailed(ctx, "persist")
		return nil, err
	}
	for _, item := range order.Items {
		if err := uc.repository.DecreaseStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			log.Printf("❌ [CAPTURE] PayPalOrderID=%s Failed to decrease stock: %v", paypalOrderID, err)
			uc.metrics.recordFailed(ctx, "persist")
			return nil, err
		}
	}

	// 6. Commit da transação
	if err := tx.Commit(); err != nil {
		uc.metrics.recordFailed(ctx, "commit")
		return nil, fmt.Errorf("failed to commit capture: %w", err)
	}

	uc.metrics.recordCompleted(ctx, order)
	log.Printf("✅ [CAPTURE] Success: PayPalOrderID=%s | OrderID=%d | Total=%s %s",
		paypalOrderID, order.ID, order.Total.StringFixed(2), order.Currency)

	return &CaptureResult{
		Status:        StatusCompleted,
		PayPalOrderID: paypalOrderID,
		OrderID:       order.ID,
		Message:       "Payment completed and order recorded",
	}, nil
}

// verifyCapture confere valor, moeda e comprador da captura contra a cotação do servidor
func verifyCapture(userID int64, capture *GatewayCapture, quote *Quote) error {
	if capture.Amount == "" {
		return fmt.Errorf("%w: capture has no amount", ErrCaptureMismatch)
	}
	amount, err := decimal.NewFromString(capture.Amount)
	if err != nil {
		return fmt.Errorf("%w: invalid captured amount %q", ErrCaptureMismatch, capture.Amount)
	}
	if capture.Currency != "" && capture.Currency != quote.Currency {
		return fmt.Errorf("%w: captured currency %s, cart currency %s", ErrCaptureMismatch, capture.Currency, quote.Currency)
	}
	if !amount.Equal(quote.Total) {
		return fmt.Errorf("%w: captured %s, cart total %s", ErrCaptureMismatch, amount.StringFixed(2), quote.Total.StringFixed(2))
	}
	if capture.CustomID != "" && capture.CustomID != strconv.FormatInt(userID, 10) {
		return fmt.Errorf("%w: order belongs to user %s", ErrCaptureMismatch, capture.CustomID)
	}
	return nil
}

// newCapturedOrder monta o pedido a partir da cotação já conferida com a captura
func newCapturedOrder(userID int64, paypalOrderID string, capture *GatewayCapture, quote *Quote) *Order {
	return &Order{
		UserID:        &userID,
		PayPalOrderID: paypalOrderID,
		CaptureID:     capture.CaptureID,
		Total:         quote.Total,
		Currency:      quote.Currency,
		Status:        StatusCompleted,
		Items:         quote.Items(),
	}
}

// Receipt monta o recibo XML de um pedido gravado
func (uc *PaymentUseCase) Receipt(ctx context.Context, orderID int64) (*Receipt, error) {
	order, err := uc.repository.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return NewReceipt(order, uc.storeName), nil
}
