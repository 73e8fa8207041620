package render

import (
	"embed"
	"html/template"
	"io"
	_ "time/tzdata"

	"github.com/i474232898/thirty-today/internal/common"
)

//go:embed templates/page.html
var templateFS embed.FS

// Upstream text is stored as received and cleaned only for display.
var funcs = template.FuncMap{
	"clean": common.CleanText,
	"cleanPtr": func(s *string) string {
		if c := common.CleanOptional(s); c != nil {
			return *c
		}
		return ""
	},
}

var pageTemplate = template.Must(template.New("page.html").Funcs(funcs).ParseFS(templateFS, "templates/page.html"))

// Write renders p as a complete HTML document.
func Write(w io.Writer, p Page) error {
	return pageTemplate.ExecuteTemplate(w, "page.html", p)
}
