package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/validation"
	"catalog/pkg/rabbitmq"
)

// ProductEventPublisher receives an event after every committed change.
type ProductEventPublisher interface {
	PublishProductEvent(event rabbitmq.ProductEvent) error
}

// ProductFields carries submitted product values. A nil field was not submitted.
type ProductFields struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
}

// productForm holds the candidate state of a product while it is validated.
// Constraints run in field order.
type productForm struct {
	Name        string   `validate:"required,max=255"`
	Price       *float64 `validate:"required,gte=0"`
	Description string   `validate:"max=2000"`
}

func formFromProduct(p *models.Product) productForm {
	price := p.Price
	return productForm{
		Name:        p.Name,
		Price:       &price,
		Description: p.Description,
	}
}

func (f *productForm) apply(fields ProductFields) {
	if fields.Name != nil {
		f.Name = strings.TrimSpace(*fields.Name)
	}
	if fields.Price != nil {
		price := *fields.Price
		f.Price = &price
	}
	if fields.Description != nil {
		f.Description = *fields.Description
	}
}

// changes picks the validated values of the submitted fields only.
func (f productForm) changes(fields ProductFields) repositories.ProductUpdate {
	var changes repositories.ProductUpdate
	if fields.Name != nil {
		name := f.Name
		changes.Name = &name
	}
	if fields.Price != nil {
		price := *f.Price
		changes.Price = &price
	}
	if fields.Description != nil {
		description := f.Description
		changes.Description = &description
	}
	return changes
}

func (f productForm) applyTo(p *models.Product) {
	p.Name = f.Name
	p.Price = *f.Price
	p.Description = f.Description
}

// ProductService mediates every state change to products: fields are validated
// before anything is written, and each successful mutation is one commit.
type ProductService struct {
	repo      repositories.ProductRepository
	validator *validation.Validator
	events    ProductEventPublisher
}

// NewProductService creates a new ProductService. events may be nil.
func NewProductService(repo repositories.ProductRepository, events ProductEventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		validator: validation.New(),
		events:    events,
	}
}

// GetAllProducts retrieves all products in insertion order.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product, or ErrNotFound.
func (s *ProductService) GetProductByID(id uint) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct validates fields as a new draft and persists it.
func (s *ProductService) CreateProduct(fields ProductFields) (*models.Product, error) {
	var form productForm
	form.apply(fields)
	if err := s.check(form); err != nil {
		return nil, err
	}

	product := &models.Product{}
	form.applyTo(product)
	if err := s.repo.Create(product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.publish(rabbitmq.EventProductCreated, *product)
	return product, nil
}

// UpdateProduct applies fields to an existing product. The stored product is left
// untouched unless the merged result passes validation, and only the submitted
// fields are written, so concurrent edits of other fields survive.
func (s *ProductService) UpdateProduct(id uint, fields ProductFields) (*models.Product, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	form := formFromProduct(existing)
	form.apply(fields)
	if err := s.check(form); err != nil {
		return nil, err
	}

	if err := s.repo.Update(id, form.changes(fields)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}

	updated, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload product %d: %w", id, err)
	}

	s.publish(rabbitmq.EventProductUpdated, *updated)
	return updated, nil
}

// DeleteProduct permanently removes a product, or returns ErrNotFound.
func (s *ProductService) DeleteProduct(id uint) error {
	if err := s.repo.Delete(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}

	s.publish(rabbitmq.EventProductDeleted, models.Product{ID: id})
	return nil
}

func (s *ProductService) check(form productForm) error {
	fieldErrors, err := s.validator.Struct(form)
	if err != nil {
		return err
	}
	if len(fieldErrors) > 0 {
		return NewValidationError(fieldErrors[0], fieldErrors[1:]...)
	}
	return nil
}

// publish is best effort: the change is already committed.
func (s *ProductService) publish(eventType string, product models.Product) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishProductEvent(rabbitmq.NewProductEvent(eventType, product)); err != nil {
		log.Printf("Warning: Failed to publish %s event for product %d: %v", eventType, product.ID, err)
	}
}
