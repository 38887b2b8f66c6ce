package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository define a interface para operações de banco de dados do catálogo
type Repository interface {
	// ListProducts lista os produtos; onlyActive filtra os desativados
	ListProducts(ctx context.Context, onlyActive bool) ([]Product, error)

	// GetProduct busca um produto pelo ID
	GetProduct(ctx context.Context, id int64) (*Product, error)

	// CreateProduct insere um produto e preenche o ID gerado
	CreateProduct(ctx context.Context, product *Product) error

	// UpdateProduct atualiza todos os campos editáveis de um produto
	UpdateProduct(ctx context.Context, product *Product) error

	// UpdateStock define o estoque de um produto
	UpdateStock(ctx context.Context, id int64, stock int) error

	// SetActive ativa ou desativa um produto
	SetActive(ctx context.Context, id int64, active bool) error
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

const productColumns = `id, name, description, price, image, stock, active, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Stock, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts lista os produtos ordenados pelo ID
func (r *PostgresRepository) ListProducts(ctx context.Context, onlyActive bool) ([]Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE active OR NOT $1
		ORDER BY id
	`, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// GetProduct busca um produto pelo ID
func (r *PostgresRepository) GetProduct(ctx context.Context, id int64) (*Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// CreateProduct insere um produto e preenche o ID gerado
func (r *PostgresRepository) CreateProduct(ctx context.Context, product *Product) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO products (name, description, price, image, stock, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, product.Name, product.Description, product.Price, product.Image, product.Stock, product.Active,
		product.CreatedAt, product.UpdatedAt).Scan(&product.ID)
}

// UpdateProduct atualiza todos os campos editáveis de um produto
func (r *PostgresRepository) UpdateProduct(ctx context.Context, product *Product) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = $1, description = $2, price = $3, image = $4, stock = $5, updated_at = NOW()
		WHERE id = $6
	`, product.Name, product.Description, product.Price, product.Image, product.Stock, product.ID)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStock define o estoque de um produto
func (r *PostgresRepository) UpdateStock(ctx context.Context, id int64, stock int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET stock = $1, updated_at = NOW()
		WHERE id = $2
	`, stock, id)
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive ativa ou desativa um produto
func (r *PostgresRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET active = $1, updated_at = NOW()
		WHERE id = $2
	`, active, id)
	if err != nil {
		return fmt.Errorf("failed to update product status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
