package payments

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Receipt é o recibo XML de um pedido pago
type Receipt struct {
	XMLName  xml.Name         `xml:"receipt"`
	Header   receiptHeader    `xml:"header"`
	Products []receiptProduct `xml:"products>product"`
	Summary  receiptSummary   `xml:"summary"`
}

type receiptHeader struct {
	Store         string `xml:"store"`
	Date          string `xml:"date"`
	PayPalOrderID string `xml:"paypal_transaction_id"`
	OrderID       int64  `xml:"db_order_id"`
	Status        string `xml:"status"`
}

type receiptProduct struct {
	Name      string `xml:"name"`
	Quantity  int    `xml:"quantity"`
	UnitPrice string `xml:"unit_price"`
	Subtotal  string `xml:"subtotal"`
}

type receiptSummary struct {
	Currency string `xml:"currency"`
	Subtotal string `xml:"subtotal"`
	Tax      string `xml:"tax"`
	Total    string `xml:"total"`
}

// NewReceipt monta o recibo; o IVA é a diferença entre o total pago e o subtotal
func NewReceipt(order *Order, storeName string) *Receipt {
	subtotal := decimal.Zero
	products := make([]receiptProduct, 0, len(order.Items))
	for _, item := range order.Items {
		line := item.Subtotal()
		subtotal = subtotal.Add(line)
		products = append(products, receiptProduct{
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Subtotal:  line.StringFixed(2),
		})
	}

	return &Receipt{
		Header: receiptHeader{
			Store:         storeName,
			Date:          order.CreatedAt.UTC().Format(time.RFC3339),
			PayPalOrderID: order.PayPalOrderID,
			OrderID:       order.ID,
			Status:        order.Status,
		},
		Products: products,
		Summary: receiptSummary{
			Currency: order.Currency,
			Subtotal: subtotal.StringFixed(2),
			Tax:      order.Total.Sub(subtotal).StringFixed(2),
			Total:    order.Total.StringFixed(2),
		},
	}
}

// Filename retorna o nome do anexo baixado pelo cliente
func (r *Receipt) Filename() string {
	return fmt.Sprintf("Receipt_%s.xml", r.Header.PayPalOrderID)
}

// Marshal serializa o recibo com declaração XML e indentação
func (r *Receipt) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("failed to encode receipt: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
