package render

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/ontohin26/ontohin/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// FormPage is the data of a fillable form page.
type FormPage struct {
	Form   *models.Form
	Values map[string]string
	Error  string
	Action string
}

// WriteForm draws the page around the generated form.
func WriteForm(ctx context.Context, w io.Writer, p FormPage) error {
	body, err := Fields(ctx, p.Form, p.Action, p.Values)
	if err != nil {
		return err
	}
	return pages.ExecuteTemplate(w, "form_page", struct {
		FormPage
		Body template.HTML
	}{p, template.HTML(body)})
}

func WriteThanks(w io.Writer) error {
	return pages.ExecuteTemplate(w, "thanks_page", nil)
}

// WriteNotFound draws the dead-link page. Unknown and deleted forms look
// the same.
func WriteNotFound(w io.Writer) error {
	return pages.ExecuteTemplate(w, "not_found_page", nil)
}

// WriteIndex serves the site root. It forwards old hash-style share links
// (/#/form/<token>) to the server-rendered form.
func WriteIndex(w io.Writer) error {
	return pages.ExecuteTemplate(w, "index_page", nil)
}
