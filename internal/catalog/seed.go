package catalog

import (
	"bytes"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// SeedFile é o documento YAML aceito por `storefront seed`
type SeedFile struct {
	Products []SeedProduct `yaml:"products"`
}

// SeedProduct é um produto do arquivo de seed
type SeedProduct struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Stock       int    `yaml:"stock"`
	Image       string `yaml:"image"`
	Inactive    bool   `yaml:"inactive"`
}

// Input converte a entrada do seed em ProductInput
func (s SeedProduct) Input() (ProductInput, error) {
	price, err := decimal.NewFromString(s.Price)
	if err != nil {
		return ProductInput{}, fmt.Errorf("%w: seed %q has invalid price %q", ErrInvalidProduct, s.Name, s.Price)
	}
	return ProductInput{
		Name:        s.Name,
		Description: s.Description,
		Price:       price,
		Stock:       s.Stock,
	}, nil
}

// LoadSeedFile lê o arquivo de seed, rejeitando campos desconhecidos
func LoadSeedFile(path string) ([]SeedProduct, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var file SeedFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(file.Products) == 0 {
		return nil, fmt.Errorf("seed file %s has no products", path)
	}
	return file.Products, nil
}
