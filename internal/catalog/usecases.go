package catalog

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
)

// CatalogUseCase contém a lógica de negócio do catálogo
type CatalogUseCase struct {
	repository Repository
	images     ImageStore
}

// NewCatalogUseCase cria uma nova instância de CatalogUseCase
func NewCatalogUseCase(repository Repository, images ImageStore) *CatalogUseCase {
	return &CatalogUseCase{
		repository: repository,
		images:     images,
	}
}

// ListProducts lista o catálogo
func (uc *CatalogUseCase) ListProducts(ctx context.Context, onlyActive bool) ([]Product, error) {
	return uc.repository.ListProducts(ctx, onlyActive)
}

// GetProduct busca um produto
func (uc *CatalogUseCase) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return uc.repository.GetProduct(ctx, id)
}

// CreateProduct cria um produto; a imagem é obrigatória
func (uc *CatalogUseCase) CreateProduct(ctx context.Context, in ProductInput, image *multipart.FileHeader) (*Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if image == nil {
		return nil, ErrImageRequired
	}

	imagePath, err := uc.images.Save(image)
	if err != nil {
		return nil, err
	}

	product := NewProduct(in, imagePath)
	if err := uc.repository.CreateProduct(ctx, product); err != nil {
		log.Printf("❌ [CREATE PRODUCT] Failed to insert %q: %v", product.Name, err)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	log.Printf("✅ [CREATE PRODUCT] ProductID=%d Name=%q", product.ID, product.Name)
	return product, nil
}

// UpdateProduct edita um produto; sem nova imagem mantém a atual
func (uc *CatalogUseCase) UpdateProduct(ctx context.Context, id int64, in ProductInput, image *multipart.FileHeader) (*Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	product, err := uc.repository.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if image != nil {
		imagePath, err := uc.images.Save(image)
		if err != nil {
			return nil, err
		}
		product.Image = imagePath
	}

	product.Apply(in)
	if err := uc.repository.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}

	log.Printf("✅ [UPDATE PRODUCT] ProductID=%d", product.ID)
	return product, nil
}

// UpdateStock define o estoque disponível de um produto
func (uc *CatalogUseCase) UpdateStock(ctx context.Context, id int64, stock int) error {
	if stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}
	if err := uc.repository.UpdateStock(ctx, id, stock); err != nil {
		return err
	}

	log.Printf("✅ [UPDATE STOCK] ProductID=%d Stock=%d", id, stock)
	return nil
}

// DeactivateProduct oculta o produto da loja sem apagá-lo
func (uc *CatalogUseCase) DeactivateProduct(ctx context.Context, id int64) error {
	if err := uc.repository.SetActive(ctx, id, false); err != nil {
		return err
	}

	log.Printf("↩️ [DEACTIVATE PRODUCT] ProductID=%d", id)
	return nil
}

// ActivateProduct torna o produto visível novamente
func (uc *CatalogUseCase) ActivateProduct(ctx context.Context, id int64) error {
	if err := uc.repository.SetActive(ctx, id, true); err != nil {
		return err
	}

	log.Printf("✅ [ACTIVATE PRODUCT] ProductID=%d", id)
	return nil
}

// SeedProducts cria produtos sem imagem a partir de um arquivo de seed
func (uc *CatalogUseCase) SeedProducts(ctx context.Context, seeds []SeedProduct) (int, error) {
	created := 0
	for _, seed := range seeds {
		in, err := seed.Input()
		if err != nil {
			return created, err
		}
		if err := in.Validate(); err != nil {
			return created, fmt.Errorf("seed %q: %w", seed.Name, err)
		}

		product := NewProduct(in, seed.Image)
		if seed.Inactive {
			product.Active = false
		}
		if err := uc.repository.CreateProduct(ctx, product); err != nil {
			return created, fmt.Errorf("seed %q: %w", seed.Name, err)
		}
		created++
	}

	log.Printf("✅ [SEED] %d products created", created)
	return created, nil
}
