package handlers

import (
	"errors"
	"fmt"
	"log"

	"catalog/internal/models"
	"catalog/internal/services"
	"catalog/internal/views"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the product pages.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/product/:id<int>", h.HandleGetProduct)
	productRoutes.Get("/new", h.HandleNewProductForm)
	productRoutes.Post("/new", h.HandleCreateProduct)
	productRoutes.Get("/update/:id<int>", h.HandleUpdateProductForm)
	productRoutes.Put("/update/:id<int>", h.HandleUpdateProduct)
	productRoutes.Delete("/delete/:id<int>", h.HandleDeleteProduct)
}

// HandleGetProducts renders the product list.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		return h.internalError(c, "getting all products", err)
	}
	return c.Render("products/index", fiber.Map{
		"Title":    "Products",
		"Products": products,
		"Flash":    popFlash(c),
	}, views.Layout)
}

// HandleGetProduct renders a single product.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}
	product, err := h.service.GetProductByID(id)
	if err != nil {
		return h.lookupError(c, id, err)
	}
	return c.Render("products/product", fiber.Map{
		"Title":   product.Name,
		"Product": product,
	}, views.Layout)
}

// HandleNewProductForm renders an empty product form.
func (h *ProductHandler) HandleNewProductForm(c *fiber.Ctx) error {
	return h.renderNewForm(c, fiber.StatusOK, productFormView{}, popFlash(c))
}

// HandleCreateProduct validates and stores a submitted product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	fields, view, err := bindProductFields(c, productFormView{})
	if err != nil && !isValidationError(err) {
		return badRequest(c, err)
	}
	if err == nil {
		_, err = h.service.CreateProduct(fields)
	}

	res := services.ResultOf(err, services.MsgProductAdded)
	if err != nil {
		if !isValidationError(err) {
			return h.internalError(c, "creating product", err)
		}
		log.Printf("Rejected new product: %v", err)
		return h.renderNewForm(c, fiber.StatusUnprocessableEntity, view, flashFromResult(res))
	}

	setFlash(c, res)
	return c.Redirect("/products/new", fiber.StatusSeeOther)
}

// HandleUpdateProductForm renders the edit form of an existing product.
func (h *ProductHandler) HandleUpdateProductForm(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}
	product, err := h.service.GetProductByID(id)
	if err != nil {
		return h.lookupError(c, id, err)
	}
	return h.renderUpdateForm(c, fiber.StatusOK, product, formViewFromProduct(product), popFlash(c))
}

// HandleUpdateProduct applies submitted fields to an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}
	product, err := h.service.GetProductByID(id)
	if err != nil {
		return h.lookupError(c, id, err)
	}

	fields, view, err := bindProductFields(c, formViewFromProduct(product))
	if err != nil && !isValidationError(err) {
		return badRequest(c, err)
	}
	if err == nil {
		_, err = h.service.UpdateProduct(id, fields)
	}

	res := services.ResultOf(err, services.MsgProductUpdated)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return notFound(c)
		}
		if !isValidationError(err) {
			return h.internalError(c, fmt.Sprintf("updating product %d", id), err)
		}
		log.Printf("Rejected update of product %d: %v", id, err)
		return h.renderUpdateForm(c, fiber.StatusUnprocessableEntity, product, view, flashFromResult(res))
	}

	setFlash(c, res)
	return c.Redirect(fmt.Sprintf("/products/update/%d", id), fiber.StatusSeeOther)
}

// HandleDeleteProduct removes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}
	if err := h.service.DeleteProduct(id); err != nil {
		return h.lookupError(c, id, err)
	}
	return c.Status(fiber.StatusOK).SendString(services.MsgProductRemoved)
}

func (h *ProductHandler) renderNewForm(c *fiber.Ctx, status int, view productFormView, flash *Flash) error {
	return c.Status(status).Render("products/new", fiber.Map{
		"Title":  "New product",
		"Action": "/products/new",
		"Submit": "Create",
		"Form":   view,
		"Flash":  flash,
	}, views.Layout)
}

func (h *ProductHandler) renderUpdateForm(c *fiber.Ctx, status int, product *models.Product, view productFormView, flash *Flash) error {
	return c.Status(status).Render("products/update", fiber.Map{
		"Title":   "Edit " + product.Name,
		"Action":  fmt.Sprintf("/products/update/%d", product.ID),
		"Method":  fiber.MethodPut,
		"Submit":  "Save",
		"Product": product,
		"Form":    view,
		"Flash":   flash,
	}, views.Layout)
}

func (h *ProductHandler) lookupError(c *fiber.Ctx, id uint, err error) error {
	if errors.Is(err, services.ErrNotFound) {
		return notFound(c)
	}
	return h.internalError(c, fmt.Sprintf("loading product %d", id), err)
}

func (h *ProductHandler) internalError(c *fiber.Ctx, action string, err error) error {
	log.Printf("Error %s: %v", action, err)
	return c.Status(fiber.StatusInternalServerError).SendString(services.MsgInternalError)
}

func badRequest(c *fiber.Ctx, err error) error {
	log.Printf("Error parsing product request body: %v", err)
	return c.Status(fiber.StatusBadRequest).SendString("Invalid request body")
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).SendString(services.MsgProductNotFound)
}

func isValidationError(err error) bool {
	return errors.Is(err, services.ErrValidationFailed)
}

// productID parses the :id route parameter. IDs start at 1.
func productID(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}
