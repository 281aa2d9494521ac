// Package views holds the server-side templates for the product pages.
package views

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templatesFS embed.FS

// Layout wraps every product page.
const Layout = "layouts/main"

// NewEngine returns the fiber view engine backed by the embedded templates.
func NewEngine() *html.Engine {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(fmt.Sprintf("views: %v", err))
	}

	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("money", func(price float64) string {
		return fmt.Sprintf("%.2f", price)
	})
	return engine
}
