package auth

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAnswers     = errors.New("security answers do not match")
	ErrWeakPassword       = errors.New("password must have at least 6 characters")
	ErrInvalidQuestion    = errors.New("invalid security question")
	ErrSecretTooLong      = errors.New("password and security answers must be at most 72 bytes")
)

const (
	minPasswordLength = 6
	// maxSecretBytes é o limite de entrada do bcrypt
	maxSecretBytes = 72
)

// User representa uma conta de cliente
type User struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	Address      string    `db:"address"`
	PasswordHash string    `db:"password_hash"`
	Question1    int       `db:"question1"`
	Answer1Hash  string    `db:"answer1_hash"`
	Question2    int       `db:"question2"`
	Answer2Hash  string    `db:"answer2_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// PublicUser é a visão do usuário devolvida pela API, sem hashes
type PublicUser struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	Question1 int    `json:"question1"`
	Question2 int    `json:"question2"`
}

// Public retorna a visão pública do usuário
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Address:   u.Address,
		Question1: u.Question1,
		Question2: u.Question2,
	}
}

// HistoryOrder é um pedido do histórico do usuário
type HistoryOrder struct {
	ID            int64           `json:"id"`
	PayPalOrderID string          `json:"paypal_order_id"`
	Date          time.Time       `json:"date"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	Details       []HistoryDetail `json:"details"`
}

// HistoryDetail é uma linha de um pedido do histórico
type HistoryDetail struct {
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ProductName  string          `json:"product_name"`
	ProductImage string          `json:"product_image"`
}
