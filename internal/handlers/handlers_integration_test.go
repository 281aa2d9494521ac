package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"catalog/internal/handlers"
	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/internal/views"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupApp sets up a Fiber app for testing with in-memory SQLite and the product handler.
func setupApp(t *testing.T) (*fiber.App, repositories.ProductRepository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Product{}))

	productRepo := repositories.NewGORMProductRepository(db)
	productService := services.NewProductService(productRepo, nil)
	productHandler := handlers.NewProductHandler(productService)

	app := fiber.New(fiber.Config{Views: views.NewEngine()})
	app.Use(middleware.MethodOverride())
	productHandler.RegisterRoutes(app)

	return app, productRepo
}

func seedProduct(t *testing.T, repo repositories.ProductRepository, name string, price float64) *models.Product {
	t.Helper()
	product := &models.Product{Name: name, Price: price, Description: name + " description"}
	require.NoError(t, repo.Create(product))
	return product
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(body)
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", fiber.MIMEApplicationForm)
	return req
}

func flashCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "flash" {
			return c
		}
	}
	return nil
}

func TestListProducts(t *testing.T) {
	app, repo := setupApp(t)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/products/", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "No products yet.")

	seedProduct(t, repo, "Laptop", 1200)
	seedProduct(t, repo, "Mouse", 25.5)

	resp, body = do(t, app, httptest.NewRequest(http.MethodGet, "/products/", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Laptop")
	assert.Contains(t, body, "25.50")
	assert.Less(t, strings.Index(body, "Laptop"), strings.Index(body, "Mouse"))
}

func TestGetProduct(t *testing.T) {
	app, repo := setupApp(t)
	product := seedProduct(t, repo, "Keyboard", 75)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/products/product/1", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, product.Name)
	assert.Contains(t, body, "75.00")
	assert.Contains(t, body, "Keyboard description")

	resp, body = do(t, app, httptest.NewRequest(http.MethodGet, "/products/product/42", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Product not found", body)
}

func TestNewProductForm(t *testing.T) {
	app, _ := setupApp(t)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/products/new", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `action="/products/new"`)
	assert.NotContains(t, body, "alert")
}

func TestCreateProduct(t *testing.T) {
	app, repo := setupApp(t)

	resp, _ := do(t, app, formRequest(http.MethodPost, "/products/new", url.Values{
		"name":        {"Widget"},
		"price":       {"9.99"},
		"description": {"A small widget"},
	}))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/products/new", resp.Header.Get("Location"))

	cookie := flashCookie(resp)
	require.NotNil(t, cookie)

	product, err := repo.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, "Widget", product.Name)
	assert.Equal(t, 9.99, product.Price)
	assert.Equal(t, "A small widget", product.Description)

	// The flash is shown once on the page the client lands on.
	req := httptest.NewRequest(http.MethodGet, "/products/new", nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	resp, body := do(t, app, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "alert-success")
	assert.Contains(t, body, "Product added successfully")

	// Rendering expires the flash on the same path it was set on.
	cleared := flashCookie(resp)
	require.NotNil(t, cleared)
	assert.Equal(t, "/", cleared.Path)
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.Expires.Before(time.Now()))

	// A browser honouring that drops the cookie, so the next render has no notice.
	resp, body = do(t, app, httptest.NewRequest(http.MethodGet, "/products/new", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "Product added successfully")
	assert.Nil(t, flashCookie(resp))
}

func TestCreateProductJSON(t *testing.T) {
	app, repo := setupApp(t)

	jsonBody, _ := json.Marshal(map[string]interface{}{"name": "Gadget", "price": 0})
	req := httptest.NewRequest(http.MethodPost, "/products/new", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

	resp, _ := do(t, app, req)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	product, err := repo.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, "Gadget", product.Name)
	assert.Equal(t, 0.0, product.Price)

	req = httptest.NewRequest(http.MethodPost, "/products/new", strings.NewReader("{"))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	resp, _ = do(t, app, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateProductValidationFailure(t *testing.T) {
	tests := []struct {
		name    string
		values  url.Values
		message string
	}{
		{"empty name", url.Values{"name": {""}, "price": {"5"}}, "Name is a required field"},
		{"missing price", url.Values{"name": {"Widget"}, "price": {""}}, "Price is a required field"},
		{"negative price", url.Values{"name": {"Widget"}, "price": {"-2"}}, "Price must be 0 or greater"},
		{"non-numeric price", url.Values{"name": {"Widget"}, "price": {"cheap"}}, "Price must be a valid number"},
		{"infinite price", url.Values{"name": {"Widget"}, "price": {"+Inf"}}, "Price must be a valid number"},
		{"NaN price", url.Values{"name": {"Widget"}, "price": {"NaN"}}, "Price must be a valid number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, repo := setupApp(t)

			resp, body := do(t, app, formRequest(http.MethodPost, "/products/new", tt.values))
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			assert.Contains(t, body, "alert-danger")
			assert.Contains(t, body, tt.message)
			assert.Contains(t, body, `value="`+tt.values.Get("name")+`"`)
			assert.Nil(t, flashCookie(resp))

			products, err := repo.GetAll()
			require.NoError(t, err)
			assert.Empty(t, products)
		})
	}
}

func TestUpdateProductForm(t *testing.T) {
	app, repo := setupApp(t)
	seedProduct(t, repo, "Monitor", 200)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/products/update/1", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="Monitor"`)
	assert.Contains(t, body, `value="200"`)
	assert.Contains(t, body, `name="_method" value="PUT"`)

	resp, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/products/update/9", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateProduct(t *testing.T) {
	app, repo := setupApp(t)
	seedProduct(t, repo, "Widget", 9.99)

	resp, _ := do(t, app, formRequest(http.MethodPut, "/products/update/1", url.Values{"price": {"12.50"}}))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/products/update/1", resp.Header.Get("Location"))
	require.NotNil(t, flashCookie(resp))

	product, err := repo.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, 12.50, product.Price)
	assert.Equal(t, "Widget", product.Name)
}

func TestUpdateProductViaMethodOverride(t *testing.T) {
	app, repo := setupApp(t)
	seedProduct(t, repo, "Widget", 9.99)

	resp, _ := do(t, app, formRequest(http.MethodPost, "/products/update/1", url.Values{
		"_method":     {"PUT"},
		"name":        {"Widget Pro"},
		"price":       {"15"},
		"description": {""},
	}))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	product, err := repo.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, "Widget Pro", product.Name)
	assert.Equal(t, 15.0, product.Price)
	assert.Empty(t, product.Description)
}

func TestUpdateProductValidationFailure(t *testing.T) {
	app, repo := setupApp(t)
	seedProduct(t, repo, "Widget", 9.99)

	resp, body := do(t, app, formRequest(http.MethodPut, "/products/update/1", url.Values{"name": {""}, "price": {"3"}}))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Name is a required field")

	product, err := repo.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, "Widget", product.Name)
	assert.Equal(t, 9.99, product.Price)
}

func TestUpdateProductNotFound(t *testing.T) {
	app, _ := setupApp(t)

	resp, body := do(t, app, formRequest(http.MethodPut, "/products/update/5", url.Values{"price": {"1"}}))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Product not found", body)
}

func TestDeleteProduct(t *testing.T) {
	app, repo := setupApp(t)
	seedProduct(t, repo, "Widget", 9.99)

	resp, body := do(t, app, httptest.NewRequest(http.MethodDelete, "/products/delete/1", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Product removed successfully", body)

	resp, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/products/product/1", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = do(t, app, httptest.NewRequest(http.MethodDelete, "/products/delete/1", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Product not found", body)
}

func TestProductLifecycle(t *testing.T) {
	app, _ := setupApp(t)

	resp, _ := do(t, app, formRequest(http.MethodPost, "/products/new", url.Values{"name": {"Widget"}, "price": {"9.99"}}))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/products/product/1", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "9.99")

	resp, _ = do(t, app, formRequest(http.MethodPut, "/products/update/1", url.Values{"price": {"12.50"}}))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, body = do(t, app, httptest.NewRequest(http.MethodGet, "/products/product/1", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "12.50")

	resp, _ = do(t, app, formRequest(http.MethodPost, "/products/delete/1", url.Values{"_method": {"DELETE"}}))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/products/product/1", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
