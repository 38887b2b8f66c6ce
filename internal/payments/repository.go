package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pokedeck/storefront/internal/platform/database"
)

// Repository define a interface para operações de banco de dados do checkout
type Repository interface {
	BeginTx(ctx context.Context) (database.Tx, error)

	// GetProducts lê os produtos sem lock, para cotação e criação do pedido no PayPal
	GetProducts(ctx context.Context, ids []int64) (map[int64]Product, error)

	// GetProductsForUpdate lê e bloqueia (SELECT FOR UPDATE) os produtos do carrinho
	GetProductsForUpdate(ctx context.Context, tx database.Tx, ids []int64) (map[int64]Product, error)

	// GetOrderByPayPalID busca um pedido já gravado para o ID do PayPal
	GetOrderByPayPalID(ctx context.Context, tx database.Tx, paypalOrderID string) (*Order, error)

	CreateOrder(ctx context.Context, tx database.Tx, order *Order) error
	CreateOrderItems(ctx context.Context, tx database.Tx, orderID int64, items []OrderItem) error
	DecreaseStock(ctx context.Context, tx database.Tx, productID int64, quantity int) error

	// GetOrder busca um pedido com seus itens
	GetOrder(ctx context.Context, id int64) (*Order, error)
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

// BeginTx inicia uma nova transação
func (r *PostgresRepository) BeginTx(ctx context.Context) (database.Tx, error) {
	return database.Begin(ctx, r.db)
}

func collectProducts(rows pgx.Rows) (map[int64]Product, error) {
	defer rows.Close()

	products := make(map[int64]Product)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Image, &p.Stock, &p.Active); err != nil {
			return nil, err
		}
		products[p.ID] = p
	}
	return products, rows.Err()
}

// GetProducts lê os produtos pelos IDs
func (r *PostgresRepository) GetProducts(ctx context.Context, ids []int64) (map[int64]Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, price, image, stock, active
		FROM products
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	return collectProducts(rows)
}

// GetProductsForUpdate obtém os produtos com LOCK PESSIMISTA, em ordem de ID
func (r *PostgresRepository) GetProductsForUpdate(ctx context.Context, tx database.Tx, ids []int64) (map[int64]Product, error) {
	pgTx, err := database.Unwrap(tx)
	if err != nil {
		return nil, err
	}

	rows, err := pgTx.Query(ctx, `
		SELECT id, name, price, image, stock, active
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}
	return collectProducts(rows)
}

// GetOrderByPayPalID verifica a idempotência da captura dentro da transação
func (r *PostgresRepository) GetOrderByPayPalID(ctx context.Context, tx database.Tx, paypalOrderID string) (*Order, error) {
	pgTx, err := database.Unwrap(tx)
	if err != nil {
		return nil, err
	}

	var o Order
	err = pgTx.QueryRow(ctx, `
		SELECT id, user_id, paypal_order_id, capture_id, total, currency, status, created_at
		FROM orders
		WHERE paypal_order_id = $1
	`, paypalOrderID).Scan(&o.ID, &o.UserID, &o.PayPalOrderID, &o.CaptureID, &o.Total, &o.Currency, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// CreateOrder insere o pedido e preenche ID e data
func (r *PostgresRepository) CreateOrder(ctx context.Context, tx database.Tx, order *Order) error {
	pgTx, err := database.Unwrap(tx)
	if err != nil {
		return err
	}

	err = pgTx.QueryRow(ctx, `
		INSERT INTO orders (user_id, paypal_order_id, capture_id, total, currency, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`, order.UserID, order.PayPalOrderID, order.CaptureID, order.Total, order.Currency, order.Status).
		Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

// CreateOrderItems insere as linhas do pedido em um único batch
func (r *PostgresRepository) CreateOrderItems(ctx context.Context, tx database.Tx, orderID int64, items []OrderItem) error {
	pgTx, err := database.Unwrap(tx)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(`
			INSERT INTO order_items (order_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4)
		`, orderID, item.ProductID, item.Quantity, item.UnitPrice)
	}

	if err := pgTx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert order items: %w", err)
	}
	return nil
}

// DecreaseStock desconta o estoque; a linha já está bloqueada pela transação
func (r *PostgresRepository) DecreaseStock(ctx context.Context, tx database.Tx, productID int64, quantity int) error {
	pgTx, err := database.Unwrap(tx)
	if err != nil {
		return err
	}

	tag, err := pgTx.Exec(ctx, `
		UPDATE products
		SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1
	`, quantity, productID)
	if err != nil {
		return fmt.Errorf("failed to decrease stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &CartItemError{ProductID: productID, Err: ErrInsufficientStock}
	}
	return nil
}

// GetOrder busca um pedido com os itens e dados dos produtos
func (r *PostgresRepository) GetOrder(ctx context.Context, id int64) (*Order, error) {
	var o Order
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, paypal_order_id, capture_id, total, currency, status, created_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&o.ID, &o.UserID, &o.PayPalOrderID, &o.CaptureID, &o.Total, &o.Currency, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT oi.product_id, oi.quantity, oi.unit_price, p.name, p.image
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.UnitPrice, &item.ProductName, &item.ProductImage); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	return &o, rows.Err()
}
