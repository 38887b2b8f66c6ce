package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository define a interface para operações de banco de dados de usuários
type Repository interface {
	// GetUserByEmail busca um usuário pelo email
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// GetUserByID busca um usuário pelo ID
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// CreateUser insere um usuário e preenche o ID gerado
	CreateUser(ctx context.Context, user *User) error

	// UpdateUser atualiza perfil e perguntas de segurança
	UpdateUser(ctx context.Context, user *User) error

	// UpdatePassword troca o hash de senha
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// DeleteUser remove um usuário
	DeleteUser(ctx context.Context, id int64) error

	// GetOrderHistory lista os pedidos do usuário com os itens
	GetOrderHistory(ctx context.Context, userID int64) ([]HistoryOrder, error)
}

// PostgresRepository implementa Repository usando PostgreSQL
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewRepository cria uma nova instância de PostgresRepository
func NewRepository(db *pgxpool.Pool) Repository {
	return &PostgresRepository{
		db: db,
	}
}

const userColumns = `id, name, email, address, password_hash, question1, answer1_hash, question2, answer2_hash, created_at, updated_at`

const uniqueViolation = "23505"

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Address, &u.PasswordHash,
		&u.Question1, &u.Answer1Hash, &u.Question2, &u.Answer2Hash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func translateWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailInUse
	}
	return err
}

// GetUserByEmail busca um usuário pelo email (sem diferenciar maiúsculas)
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE lower(email) = lower($1)
	`, email))
}

// GetUserByID busca um usuário pelo ID
func (r *PostgresRepository) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE id = $1
	`, id))
}

// CreateUser insere um usuário e preenche o ID gerado
func (r *PostgresRepository) CreateUser(ctx context.Context, user *User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (name, email, address, password_hash, question1, answer1_hash, question2, answer2_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, user.Name, user.Email, user.Address, user.PasswordHash,
		user.Question1, user.Answer1Hash, user.Question2, user.Answer2Hash,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return translateWriteError(err)
}

// UpdateUser atualiza perfil e perguntas de segurança
func (r *PostgresRepository) UpdateUser(ctx context.Context, user *User) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET name = $1, email = $2, address = $3,
		    question1 = $4, answer1_hash = $5, question2 = $6, answer2_hash = $7,
		    updated_at = NOW()
		WHERE id = $8
	`, user.Name, user.Email, user.Address,
		user.Question1, user.Answer1Hash, user.Question2, user.Answer2Hash, user.ID)
	if err != nil {
		return translateWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword troca o hash de senha
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2
	`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser remove um usuário; os pedidos ficam sem dono
func (r *PostgresRepository) DeleteUser(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetOrderHistory lista os pedidos do usuário, mais recentes primeiro
func (r *PostgresRepository) GetOrderHistory(ctx context.Context, userID int64) ([]HistoryOrder, error) {
	rows, err := r.db.Query(ctx, orderHistoryQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order history: %w", err)
	}
	defer rows.Close()

	var history []historyRow
	for rows.Next() {
		var row historyRow
		if err := rows.Scan(&row.order.ID, &row.order.PayPalOrderID, &row.order.Date, &row.order.Total, &row.order.Status,
			&row.detail.Quantity, &row.detail.UnitPrice, &row.detail.ProductName, &row.detail.ProductImage); err != nil {
			return nil, fmt.Errorf("failed to scan order history: %w", err)
		}
		history = append(history, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groupHistory(history), nil
}

// orderHistoryQuery traz os pedidos mais recentes primeiro, itens na ordem de inserção
const orderHistoryQuery = `
	SELECT o.id, o.paypal_order_id, o.created_at, o.total, o.status,
	       oi.quantity, oi.unit_price, p.name, p.image
	FROM orders o
	JOIN order_items oi ON oi.order_id = o.id
	JOIN products p ON p.id = oi.product_id
	WHERE o.user_id = $1
	ORDER BY o.created_at DESC, o.id DESC, oi.id
`

// historyRow é uma linha do join pedido x item
type historyRow struct {
	order  HistoryOrder
	detail HistoryDetail
}

// groupHistory agrupa as linhas por pedido mantendo a ordem da consulta
func groupHistory(rows []historyRow) []HistoryOrder {
	orders := make([]HistoryOrder, 0)
	index := make(map[int64]int)
	for _, row := range rows {
		i, ok := index[row.order.ID]
		if !ok {
			i = len(orders)
			index[row.order.ID] = i
			orders = append(orders, row.order)
		}
		orders[i].Details = append(orders[i].Details, row.detail)
	}
	return orders
}
