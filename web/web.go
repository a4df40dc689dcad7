// Package web embeds the server-rendered teacher pages.
package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v2"

	"github.com/noah-isme/mathgrader-api/pkg/grader"
)

// Layout is the wrapping template every page renders into.
const Layout = "layouts/main"

//go:embed templates
var templates embed.FS

// NewEngine builds the html view engine over the embedded templates.
func NewEngine() *html.Engine {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(fmt.Sprintf("embedded templates missing: %v", err))
	}

	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("confidenceLevel", grader.ConfidenceLevel)
	engine.AddFunc("percent", percent)
	engine.AddFunc("formatDate", formatDate)
	engine.AddFunc("json", func(v interface{}) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	})
	return engine
}

func percent(score, max int) string {
	if max <= 0 {
		return "0"
	}
	return fmt.Sprintf("%.0f", float64(score)/float64(max)*100)
}

func formatDate(value interface{}) string {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format("Jan 2, 2006")
	case *time.Time:
		if v == nil || v.IsZero() {
			return ""
		}
		return v.Format("Jan 2, 2006 15:04")
	default:
		return ""
	}
}
