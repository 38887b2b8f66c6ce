package catalog

import (
	"context"
	"mime/multipart"

	"github.com/stretchr/testify/mock"
)

// MockRepository para testes que não precisam de banco real
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListProducts(ctx context.Context, onlyActive bool) ([]Product, error) {
	args := m.Called(ctx, onlyActive)
	return args.Get(0).([]Product), args.Error(1)
}

func (m *MockRepository) GetProduct(ctx context.Context, id int64) (*Product, error) {
	args := m.Called(ctx, id)
	product, _ := args.Get(0).(*Product)
	return product, args.Error(1)
}

func (m *MockRepository) CreateProduct(ctx context.Context, product *Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockRepository) UpdateProduct(ctx context.Context, product *Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockRepository) UpdateStock(ctx context.Context, id int64, stock int) error {
	args := m.Called(ctx, id, stock)
	return args.Error(0)
}

func (m *MockRepository) SetActive(ctx context.Context, id int64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

// fakeImageStore registra os arquivos recebidos sem tocar o disco
type fakeImageStore struct {
	saved []string
	err   error
}

func (s *fakeImageStore) Save(file *multipart.FileHeader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, file.Filename)
	return "images/" + file.Filename, nil
}
