package payments

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/pokedeck/storefront/internal/platform/config"
)

// tokenSkew renova o token um pouco antes de expirar
const tokenSkew = 30 * time.Second

// Gateway abstrai o processador de pagamentos
type Gateway interface {
	CreateOrder(ctx context.Context, req CheckoutRequest) (*GatewayOrder, error)
	CaptureOrder(ctx context.Context, paypalOrderID string) (*GatewayCapture, error)
}

// CheckoutRequest contém o necessário para abrir um pedido no PayPal
type CheckoutRequest struct {
	UserID int64
	Quote  *Quote
}

// GatewayOrder é o pedido criado no PayPal
type GatewayOrder struct {
	ID     string
	Status string
}

// GatewayCapture é o resultado da captura de um pedido
type GatewayCapture struct {
	OrderID   string
	Status    string
	CaptureID string
	// CustomID é o user id gravado em CreateOrder
	CustomID string
	// Amount fica zerado quando a resposta não traz captures
	Amount   string
	Currency string
}

// PayPalError representa uma resposta de erro da API do PayPal
type PayPalError struct {
	StatusCode int
	Name       string `json:"name"`
	Message    string `json:"message"`
	DebugID    string `json:"debug_id"`
	Details    []struct {
		Issue       string `json:"issue"`
		Description string `json:"description"`
	} `json:"details"`
	// OAuth devolve error/error_description
	OAuthError       string `json:"error"`
	OAuthDescription string `json:"error_description"`
}

func (e *PayPalError) Error() string {
	return fmt.Sprintf("paypal: status %d: %s", e.StatusCode, e.Detail())
}

// Detail retorna a primeira descrição de details, senão a mensagem
func (e *PayPalError) Detail() string {
	for _, d := range e.Details {
		if d.Description != "" {
			return d.Description
		}
	}
	switch {
	case e.Message != "":
		return e.Message
	case e.OAuthDescription != "":
		return e.OAuthDescription
	case e.OAuthError != "":
		return e.OAuthError
	case e.Name != "":
		return e.Name
	}
	return "unknown error"
}

type money struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalItem struct {
	Name       string `json:"name"`
	Quantity   string `json:"quantity"`
	UnitAmount money  `json:"unit_amount"`
	SKU        string `json:"sku,omitempty"`
}

type breakdown struct {
	ItemTotal money `json:"item_total"`
	TaxTotal  money `json:"tax_total"`
}

type amountWithBreakdown struct {
	money
	Breakdown breakdown `json:"breakdown"`
}

type purchaseUnit struct {
	Amount   amountWithBreakdown `json:"amount"`
	Items    []paypalItem        `json:"items"`
	CustomID string              `json:"custom_id"`
}

type applicationContext struct {
	BrandName  string `json:"brand_name"`
	Locale     string `json:"locale"`
	UserAction string `json:"user_action"`
	ReturnURL  string `json:"return_url"`
	CancelURL  string `json:"cancel_url"`
}

type createOrderBody struct {
	Intent             string             `json:"intent"`
	ApplicationContext applicationContext `json:"application_context"`
	PurchaseUnits      []purchaseUnit     `json:"purchase_units"`
}

type orderResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		CustomID string `json:"custom_id"`
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
				Amount money  `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// PayPalClient implementa Gateway sobre a API REST Orders v2
type PayPalClient struct {
	http  *resty.Client
	cfg   config.PayPal
	store config.Store

	mu        sync.Mutex
	token     string
	expiresAt time.Time
	now       func() time.Time
}

// NewPayPalClient cria uma nova instância de PayPalClient
func NewPayPalClient(cfg config.PayPal, store config.Store) *PayPalClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Accept", "application/json")

	return &PayPalClient{
		http:  client,
		cfg:   cfg,
		store: store,
		now:   time.Now,
	}
}

// accessToken devolve o token em cache ou pede um novo via client credentials
func (c *PayPalClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expiresAt) {
		return c.token, nil
	}

	var token tokenResponse
	var apiErr PayPalError
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.cfg.ClientID, c.cfg.Secret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&token).
		SetError(&apiErr).
		Post("/v1/oauth2/token")
	if err != nil {
		return "", fmt.Errorf("paypal token request failed: %w", err)
	}
	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		return "", &apiErr
	}

	c.token = token.AccessToken
	c.expiresAt = c.now().Add(time.Duration(token.ExpiresIn)*time.Second - tokenSkew)
	return c.token, nil
}

func (c *PayPalClient) orderBody(req CheckoutRequest) createOrderBody {
	q := req.Quote
	currency := q.Currency

	items := make([]paypalItem, 0, len(q.Lines))
	for _, line := range q.Lines {
		items = append(items, paypalItem{
			Name:       line.Name,
			Quantity:   strconv.Itoa(line.Quantity),
			UnitAmount: money{CurrencyCode: currency, Value: line.UnitPrice.StringFixed(2)},
			SKU:        strconv.FormatInt(line.ProductID, 10),
		})
	}

	return createOrderBody{
		Intent: "CAPTURE",
		ApplicationContext: applicationContext{
			BrandName:  c.store.Name,
			Locale:     c.store.Locale,
			UserAction: "PAY_NOW",
			ReturnURL:  c.cfg.ReturnURL,
			CancelURL:  c.cfg.CancelURL,
		},
		PurchaseUnits: []purchaseUnit{{
			Amount: amountWithBreakdown{
				money: money{CurrencyCode: currency, Value: q.Total.StringFixed(2)},
				Breakdown: breakdown{
					ItemTotal: money{CurrencyCode: currency, Value: q.Subtotal.StringFixed(2)},
					TaxTotal:  money{CurrencyCode: currency, Value: q.Tax.StringFixed(2)},
				},
			},
			Items:    items,
			CustomID: strconv.FormatInt(req.UserID, 10),
		}},
	}
}

// CreateOrder abre um pedido com intent CAPTURE
func (c *PayPalClient) CreateOrder(ctx context.Context, req CheckoutRequest) (*GatewayOrder, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var result orderResponse
	var apiErr PayPalError
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Prefer", "return=representation").
		SetHeader("PayPal-Request-Id", uuid.New().String()).
		SetBody(c.orderBody(req)).
		SetResult(&result).
		SetError(&apiErr).
		Post("/v2/checkout/orders")
	if err != nil {
		return nil, fmt.Errorf("paypal create order failed: %w", err)
	}
	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		return nil, &apiErr
	}

	return &GatewayOrder{ID: result.ID, Status: result.Status}, nil
}

// CaptureOrder captura o pagamento aprovado pelo comprador
func (c *PayPalClient) CaptureOrder(ctx context.Context, paypalOrderID string) (*GatewayCapture, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var result orderResponse
	var apiErr PayPalError
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Prefer", "return=representation").
		SetHeader("PayPal-Request-Id", "capture-"+paypalOrderID).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{}).
		SetPathParam("id", paypalOrderID).
		SetResult(&result).
		SetError(&apiErr).
		Post("/v2/checkout/orders/{id}/capture")
	if err != nil {
		return nil, fmt.Errorf("paypal capture failed: %w", err)
	}
	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		return nil, &apiErr
	}

	capture := &GatewayCapture{OrderID: result.ID, Status: result.Status}
	if len(result.PurchaseUnits) > 0 {
		capture.CustomID = result.PurchaseUnits[0].CustomID
	}
	if len(result.PurchaseUnits) > 0 && len(result.PurchaseUnits[0].Payments.Captures) > 0 {
		first := result.PurchaseUnits[0].Payments.Captures[0]
		capture.CaptureID = first.ID
		capture.Amount = first.Amount.Value
		capture.Currency = first.Amount.CurrencyCode
	}
	return capture, nil
}
