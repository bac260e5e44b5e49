package models

import (
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Price is stored as DECIMAL(10,2).
type Product struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	ImageURL    string          `json:"imageUrl" db:"image_url"`
	Stock       int             `json:"stock" db:"stock"`
	IsActive    bool            `json:"isActive" db:"is_active"`
}

// ProductInput is the admin form payload for creating or replacing a product.
// Optional fields carry named defaults that are applied once at the boundary.
type ProductInput struct {
	Name        string           `json:"name" yaml:"name" validate:"required"`
	Description string           `json:"description" yaml:"description" validate:"required"`
	Price       *decimal.Decimal `json:"price" yaml:"price" validate:"required,money"`
	ImageURL    string           `json:"imageUrl" yaml:"imageUrl" default:"/attached_assets/placeholder.png"`
	Stock       *int             `json:"stock" yaml:"stock" default:"0" validate:"required,gte=0"`
	IsActive    *bool            `json:"isActive" yaml:"isActive" default:"true" validate:"required"`
}

// Product builds the record described by the input. Defaults must already be applied.
func (in ProductInput) Product(id string) Product {
	p := Product{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	return p
}

// Input is the form that reproduces p, used as the base for partial edits.
func (p Product) Input() ProductInput {
	price := p.Price
	stock := p.Stock
	active := p.IsActive
	return ProductInput{
		Name:        p.Name,
		Description: p.Description,
		Price:       &price,
		ImageURL:    p.ImageURL,
		Stock:       &stock,
		IsActive:    &active,
	}
}
