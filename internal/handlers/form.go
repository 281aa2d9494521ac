package handlers

import (
	"math"
	"strconv"
	"strings"

	"catalog/internal/models"
	"catalog/internal/services"
	"catalog/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// productFormView is what the product form template displays.
type productFormView struct {
	Name        string
	Price       string
	Description string
}

func formViewFromProduct(p *models.Product) productFormView {
	return productFormView{
		Name:        p.Name,
		Price:       strconv.FormatFloat(p.Price, 'f', -1, 64),
		Description: p.Description,
	}
}

// bindProductFields reads the submitted product fields from a JSON body or an
// urlencoded/multipart form. Only submitted fields are set. The returned view
// echoes the raw input so a rejected form can be shown again.
func bindProductFields(c *fiber.Ctx, view productFormView) (services.ProductFields, productFormView, error) {
	var fields services.ProductFields

	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEApplicationJSON) {
		if err := c.BodyParser(&fields); err != nil {
			return fields, view, err
		}
		if fields.Name != nil {
			view.Name = *fields.Name
		}
		if fields.Price != nil {
			view.Price = strconv.FormatFloat(*fields.Price, 'f', -1, 64)
		}
		if fields.Description != nil {
			view.Description = *fields.Description
		}
		return fields, view, nil
	}

	if name, ok := formField(c, "name"); ok {
		fields.Name = &name
		view.Name = name
	}
	if description, ok := formField(c, "description"); ok {
		fields.Description = &description
		view.Description = description
	}
	if raw, ok := formField(c, "price"); ok {
		view.Price = raw
		raw = strings.TrimSpace(raw)
		if raw != "" {
			price, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsInf(price, 0) || math.IsNaN(price) {
				return fields, view, services.NewValidationError(validation.FieldError{
					Field:   "Price",
					Tag:     "numeric",
					Message: "Price must be a valid number",
				})
			}
			fields.Price = &price
		}
	}
	return fields, view, nil
}

// formField reports the value of a form field and whether it was submitted at all.
func formField(c *fiber.Ctx, key string) (string, bool) {
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return "", false
		}
		values, ok := form.Value[key]
		if !ok || len(values) == 0 {
			return "", false
		}
		return values[0], true
	}

	args := c.Request().PostArgs()
	if !args.Has(key) {
		return "", false
	}
	return string(args.Peek(key)), true
}
