// Package render draws the public form page on the server. Fields are
// mapped onto go-formgen's form model and drawn by its vanilla renderer;
// each field type also knows how to read its answer back out of a
// submitted request.
package render

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/goliatone/go-formgen"
	"github.com/goliatone/go-formgen/pkg/model"
	fgrender "github.com/goliatone/go-formgen/pkg/render"
	"github.com/goliatone/go-formgen/pkg/renderers/vanilla"
	"github.com/goliatone/go-formgen/pkg/renderers/vanilla/components"

	"github.com/ontohin26/ontohin/internal/models"
)

// Component names registered on top of the vanilla defaults.
const (
	componentKey         = "component.name"
	componentRadio       = "radio-group"
	componentDescription = "section-note"
	componentTxnID       = "txn-id"
	componentFile        = "plain-file"
)

// Renderer maps and captures one field type.
type Renderer interface {
	// Model describes f holding value for the form generator.
	Model(f models.Field, value string) model.Field
	// Capture reads f's answer out of a parsed request. ok is false when
	// the request carries nothing for f.
	Capture(f models.Field, r *http.Request) (value string, file *models.Attachment, ok bool)
}

var renderers = map[models.FieldType]Renderer{
	models.FieldShortText:      textRenderer{},
	models.FieldLongText:       textRenderer{hints: map[string]string{"input": "textarea", "rows": "3"}},
	models.FieldNumber:         textRenderer{number: true, hints: map[string]string{"placeholder": "সংখ্যা"}},
	models.FieldEmail:          textRenderer{format: "email", hints: map[string]string{"placeholder": "example@email.com"}},
	models.FieldTransactionID:  textRenderer{component: componentTxnID, hints: map[string]string{"placeholder": "TXN123456", "class": "uppercase"}},
	models.FieldMultipleChoice: choiceRenderer{},
	models.FieldPaymentMethod:  choiceRenderer{},
	models.FieldFileUpload:     fileRenderer{},
	models.FieldDescription:    descriptionRenderer{},
}

// For returns the renderer of t. Unknown types fall back to single-line
// text so a malformed field never breaks the page.
func For(t models.FieldType) Renderer {
	if r, ok := renderers[t]; ok {
		return r
	}
	return textRenderer{}
}

// FormModel converts a stored form into the generator's model. The form
// posts back to action.
func FormModel(f *models.Form, action string, values map[string]string) model.FormModel {
	fields := make([]model.Field, 0, len(f.Fields))
	for _, fd := range f.Fields {
		fields = append(fields, For(fd.Type).Model(fd, values[fd.ID]))
	}
	return model.FormModel{
		OperationID: "submit-" + f.ShareToken,
		Endpoint:    action,
		Method:      http.MethodPost,
		Fields:      fields,
	}
}

func baseField(f models.Field) model.Field {
	return model.Field{
		Name:        f.ID,
		Type:        model.FieldTypeString,
		Label:       f.Label,
		Description: f.HelpText,
		Required:    f.Required,
		Metadata:    map[string]string{},
		UIHints:     map[string]string{},
	}
}

type textRenderer struct {
	number    bool
	format    string
	component string
	hints     map[string]string
}

func (t textRenderer) Model(f models.Field, value string) model.Field {
	mf := baseField(f)
	if t.number {
		mf.Type = model.FieldTypeNumber
	}
	mf.Format = t.format
	if value != "" {
		mf.Default = value
	}
	mf.UIHints["placeholder"] = "আপনার উত্তর"
	for k, v := range t.hints {
		mf.UIHints[k] = v
	}
	if t.component != "" {
		mf.Metadata[componentKey] = t.component
	}
	return mf
}

func (textRenderer) Capture(f models.Field, r *http.Request) (string, *models.Attachment, bool) {
	return postValue(r, f.ID)
}

type choiceRenderer struct{}

// Model lists the options as the enum and checks value, or the first
// option when nothing was picked yet.
func (choiceRenderer) Model(f models.Field, value string) model.Field {
	mf := baseField(f)
	opts := f.ChoiceOptions()
	mf.Enum = make([]any, len(opts))
	for i, o := range opts {
		mf.Enum[i] = o
	}
	if value == "" {
		value = opts[0]
	}
	mf.Default = value
	mf.Metadata[componentKey] = componentRadio
	return mf
}

// Capture only accepts one of the field's options.
func (choiceRenderer) Capture(f models.Field, r *http.Request) (string, *models.Attachment, bool) {
	v, _, ok := postValue(r, f.ID)
	if !ok {
		return "", nil, false
	}
	for _, o := range f.ChoiceOptions() {
		if o == v {
			return v, nil, true
		}
	}
	return "", nil, false
}

type fileRenderer struct{}

func (fileRenderer) Model(f models.Field, value string) model.Field {
	mf := baseField(f)
	mf.Format = "binary"
	if value != "" {
		mf.Default = value
	}
	mf.Metadata[componentKey] = componentFile
	return mf
}

func (fileRenderer) Capture(f models.Field, r *http.Request) (string, *models.Attachment, bool) {
	if r.MultipartForm == nil {
		return "", nil, false
	}
	headers := r.MultipartForm.File[f.ID]
	if len(headers) == 0 || headers[0].Filename == "" {
		return "", nil, false
	}
	fh := headers[0]
	file, err := fh.Open()
	if err != nil {
		return "", nil, false
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, false
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return fh.Filename, &models.Attachment{Name: fh.Filename, ContentType: contentType, Data: data}, true
}

type descriptionRenderer struct{}

// Model never marks a description required; it has no input.
func (descriptionRenderer) Model(f models.Field, _ string) model.Field {
	mf := baseField(f)
	mf.Required = false
	mf.Metadata[componentKey] = componentDescription
	return mf
}

func (descriptionRenderer) Capture(models.Field, *http.Request) (string, *models.Attachment, bool) {
	return "", nil, false
}

func postValue(r *http.Request, key string) (string, *models.Attachment, bool) {
	vs, ok := r.PostForm[key]
	if !ok || len(vs) == 0 {
		return "", nil, false
	}
	return vs[0], nil, true
}

var formRenderer = sync.OnceValues(newFormRenderer)

func newFormRenderer() (fgrender.Renderer, error) {
	registry := components.NewDefaultRegistry()
	registry.MustRegister(componentRadio, components.Descriptor{Renderer: radioComponent})
	registry.MustRegister(componentDescription, components.Descriptor{Renderer: descriptionComponent})
	registry.MustRegister(componentTxnID, components.Descriptor{Renderer: txnIDComponent})
	registry.MustRegister(componentFile, components.Descriptor{Renderer: fileComponent})

	r, err := vanilla.New(
		vanilla.WithTemplatesFS(formgen.EmbeddedTemplates()),
		vanilla.WithDefaultStyles(),
		vanilla.WithComponentRegistry(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}
	return r, nil
}

// Fields draws the <form> element of f. Uploads need a multipart body,
// which the generated form does not ask for on its own.
func Fields(ctx context.Context, f *models.Form, action string, values map[string]string) (string, error) {
	r, err := formRenderer()
	if err != nil {
		return "", err
	}
	out, err := r.Render(ctx, FormModel(f, action, values), fgrender.RenderOptions{Method: http.MethodPost})
	if err != nil {
		return "", fmt.Errorf("render form %s: %w", f.ShareToken, err)
	}
	return strings.Replace(string(out), "<form", `<form enctype="multipart/form-data"`, 1), nil
}

func radioComponent(buf *bytes.Buffer, field model.Field, _ components.ComponentData) error {
	current := toString(field.Default)
	buf.WriteString(`<div class="options" role="radiogroup">`)
	for _, v := range field.Enum {
		opt := html.EscapeString(toString(v))
		buf.WriteString(`<label class="option"><input type="radio" name="`)
		buf.WriteString(html.EscapeString(field.Name))
		buf.WriteString(`" value="`)
		buf.WriteString(opt)
		buf.WriteString(`"`)
		if toString(v) == current {
			buf.WriteString(` checked`)
		}
		buf.WriteString(`> `)
		buf.WriteString(opt)
		buf.WriteString(`</label>`)
	}
	buf.WriteString(`</div>`)
	return nil
}

func descriptionComponent(buf *bytes.Buffer, field model.Field, _ components.ComponentData) error {
	buf.WriteString(`<div class="section-note"><h3>`)
	buf.WriteString(html.EscapeString(field.Label))
	buf.WriteString(`</h3>`)
	if field.Description != "" {
		buf.WriteString(`<p class="help">`)
		buf.WriteString(html.EscapeString(field.Description))
		buf.WriteString(`</p>`)
	}
	buf.WriteString(`</div>`)
	return nil
}

func txnIDComponent(buf *bytes.Buffer, field model.Field, _ components.ComponentData) error {
	fmt.Fprintf(buf, `<input type="text" id="%[1]s" name="%[1]s" value="%[2]s" class="uppercase" placeholder="TXN123456"`,
		html.EscapeString(field.Name), html.EscapeString(toString(field.Default)))
	if field.Required {
		buf.WriteString(` required`)
	}
	buf.WriteString(`>`)
	return nil
}

func fileComponent(buf *bytes.Buffer, field model.Field, _ components.ComponentData) error {
	name := html.EscapeString(field.Name)
	buf.WriteString(`<label class="upload"><input type="file" id="` + name + `" name="` + name + `"> <span>ফাইল আপলোড করুন</span></label>`)
	if prev := toString(field.Default); prev != "" {
		buf.WriteString(`<p class="filename">` + html.EscapeString(prev) + `</p>`)
	}
	return nil
}

func toString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
