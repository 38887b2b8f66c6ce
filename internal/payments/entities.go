package payments

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusCompleted = "COMPLETED"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInvalidQuantity     = errors.New("quantity must be between 1 and 2147483647")
	ErrProductNotFound     = errors.New("product not found")
	ErrProductInactive     = errors.New("product is not available")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrPaymentNotCompleted = errors.New("payment was not completed")
	ErrCaptureMismatch     = errors.New("captured payment does not match the cart")
	ErrInvalidUser         = errors.New("invalid user id")
	ErrInvalidOrderID      = errors.New("order_id is required")
	ErrNotFound            = errors.New("order not found")
)

// CartItemError associa um erro de validação ao produto do carrinho
type CartItemError struct {
	ProductID   int64
	ProductName string
	Err         error
}

func (e *CartItemError) Error() string {
	if e.ProductName != "" {
		return fmt.Sprintf("%s: %s (product %d)", e.Err, e.ProductName, e.ProductID)
	}
	return fmt.Sprintf("%s (product %d)", e.Err, e.ProductID)
}

func (e *CartItemError) Unwrap() error {
	return e.Err
}

// PaymentStatusError indica que o PayPal devolveu um status diferente de COMPLETED
type PaymentStatusError struct {
	Status string
}

func (e *PaymentStatusError) Error() string {
	return fmt.Sprintf("%s: status %s", ErrPaymentNotCompleted, e.Status)
}

func (e *PaymentStatusError) Unwrap() error {
	return ErrPaymentNotCompleted
}

// CartItem é um item do carrinho enviado pelo cliente; preços do cliente são ignorados
type CartItem struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required"`
}

// Product é a visão do catálogo usada no checkout
type Product struct {
	ID     int64
	Name   string
	Price  decimal.Decimal
	Image  string
	Stock  int
	Active bool
}

// Order representa um pedido pago
type Order struct {
	ID            int64           `json:"id"`
	UserID        *int64          `json:"user_id"`
	PayPalOrderID string          `json:"paypal_order_id"`
	CaptureID     string          `json:"capture_id"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []OrderItem     `json:"items"`
}

// OrderItem é uma linha de um pedido
type OrderItem struct {
	ProductID    int64           `json:"product_id"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ProductName  string          `json:"product_name"`
	ProductImage string          `json:"product_image"`
}

// Subtotal retorna quantidade * preço unitário
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
