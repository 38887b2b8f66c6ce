package payments

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// maxQuantity é o limite da coluna INTEGER de quantidade e estoque
const maxQuantity = math.MaxInt32

// taxRate é o IVA aplicado sobre o subtotal
var taxRate = decimal.RequireFromString("0.16")

// Line é uma linha cotada do carrinho com o preço do servidor
type Line struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Quote é o carrinho validado com subtotal, IVA e total
type Quote struct {
	Lines    []Line          `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

// mergeCart soma quantidades de produtos repetidos mantendo a ordem da primeira ocorrência
func mergeCart(items []CartItem) ([]CartItem, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	index := make(map[int64]int, len(items))
	merged := make([]CartItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 || item.Quantity > maxQuantity {
			return nil, &CartItemError{ProductID: item.ProductID, Err: ErrInvalidQuantity}
		}
		if i, ok := index[item.ProductID]; ok {
			// as duas parcelas são <= maxQuantity, a soma não transborda int
			if merged[i].Quantity+item.Quantity > maxQuantity {
				return nil, &CartItemError{ProductID: item.ProductID, Err: ErrInvalidQuantity}
			}
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

// productIDs retorna os IDs ordenados; a ordem fixa evita deadlock entre locks FOR UPDATE
func productIDs(items []CartItem) []int64 {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// BuildQuote valida o carrinho contra os produtos e calcula os totais
func BuildQuote(items []CartItem, products map[int64]Product, currency string) (*Quote, error) {
	merged, err := mergeCart(items)
	if err != nil {
		return nil, err
	}

	quote := &Quote{
		Lines:    make([]Line, 0, len(merged)),
		Subtotal: decimal.Zero,
		Currency: currency,
	}
	for _, item := range merged {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, &CartItemError{ProductID: item.ProductID, Err: ErrProductNotFound}
		}
		if !product.Active {
			return nil, &CartItemError{ProductID: product.ID, ProductName: product.Name, Err: ErrProductInactive}
		}
		if product.Stock < item.Quantity {
			return nil, &CartItemError{ProductID: product.ID, ProductName: product.Name, Err: ErrInsufficientStock}
		}

		price := product.Price.Round(2)
		subtotal := price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		quote.Lines = append(quote.Lines, Line{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.Image,
			Quantity:  item.Quantity,
			UnitPrice: price,
			Subtotal:  subtotal,
		})
		quote.Subtotal = quote.Subtotal.Add(subtotal)
	}

	quote.Subtotal = quote.Subtotal.Round(2)
	quote.Total = quote.Subtotal.Mul(decimal.NewFromInt(1).Add(taxRate)).Round(2)
	quote.Tax = quote.Total.Sub(quote.Subtotal)
	return quote, nil
}

// Items converte as linhas da cotação em itens de pedido
func (q *Quote) Items() []OrderItem {
	items := make([]OrderItem, 0, len(q.Lines))
	for _, line := range q.Lines {
		items = append(items, OrderItem{
			ProductID:    line.ProductID,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			ProductName:  line.Name,
			ProductImage: line.Image,
		})
	}
	return items
}
