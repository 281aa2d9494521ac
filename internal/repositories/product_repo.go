package repositories

import (
	"errors"

	"catalog/internal/models"
)

// ErrNotFound is returned when the referenced product does not exist.
var ErrNotFound = errors.New("product not found")

// ProductUpdate names the columns an update writes. Nil fields are left as stored.
type ProductUpdate struct {
	Name        *string
	Price       *float64
	Description *string
}

// ProductRepository defines the interface for product data access.
// Every mutating call is a single immediate commit.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id uint) (*models.Product, error)
	Create(product *models.Product) error
	Update(id uint, changes ProductUpdate) error
	Delete(id uint) error
}
