package models

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

type FieldType string

const (
	FieldShortText      FieldType = "short_text"
	FieldLongText       FieldType = "long_text"
	FieldNumber         FieldType = "number"
	FieldEmail          FieldType = "email"
	FieldMultipleChoice FieldType = "multiple_choice"
	FieldTransactionID  FieldType = "transaction_id"
	FieldPaymentMethod  FieldType = "payment_method"
	FieldFileUpload     FieldType = "file_upload"
	FieldDescription    FieldType = "description"
)

// FieldTypes lists every field type in the order the builder offers them.
var FieldTypes = []FieldType{
	FieldShortText, FieldLongText, FieldNumber, FieldEmail, FieldMultipleChoice,
	FieldTransactionID, FieldPaymentMethod, FieldFileUpload, FieldDescription,
}

func (t FieldType) Valid() bool { return slices.Contains(FieldTypes, t) }

// IsChoice reports whether the field picks one of its Options.
func (t FieldType) IsChoice() bool {
	return t == FieldMultipleChoice || t == FieldPaymentMethod
}

// HasInput is false only for description blocks, which render text and
// never produce an answer.
func (t FieldType) HasInput() bool { return t != FieldDescription }

type FormStatus string

const (
	StatusDraft     FormStatus = "draft"
	StatusPublished FormStatus = "published"
)

const (
	DefaultFormTitle = "নতুন ফর্ম"
	fallbackOption   = "Option 1"
)

var defaultOptions = []string{"Option 1", "Option 2"}

type Field struct {
	ID       string    `json:"id"`
	Type     FieldType `json:"type"`
	Label    string    `json:"label"`
	Required bool      `json:"required"`
	Options  []string  `json:"options"`
	HelpText string    `json:"helpText"`
}

// ChoiceOptions returns the options a choice field presents. A choice
// field saved without options still renders one placeholder.
func (f Field) ChoiceOptions() []string {
	if len(f.Options) == 0 {
		return []string{fallbackOption}
	}
	return f.Options
}

// DefaultValue is the answer a fresh visit starts with.
func (f Field) DefaultValue() string {
	if f.Type.IsChoice() {
		return f.ChoiceOptions()[0]
	}
	return ""
}

// GoogleIntegration points a form at a spreadsheet webhook.
type GoogleIntegration struct {
	Enabled   bool   `json:"enabled"`
	ScriptURL string `json:"scriptUrl"`
}

type Form struct {
	ID                string             `json:"_id,omitempty"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	Fields            []Field            `json:"fields"`
	Status            FormStatus         `json:"status"`
	ShareToken        string             `json:"shareToken"`
	CreatedAt         string             `json:"createdAt"`
	GoogleIntegration *GoogleIntegration `json:"googleIntegration"`
}

var (
	ErrEmptyFieldID     = errors.New("field id is empty")
	ErrDuplicateFieldID = errors.New("duplicate field id")
	ErrInvalidFieldType = errors.New("invalid field type")
	ErrInvalidStatus    = errors.New("invalid form status")
)

// NewForm returns an empty draft with a share token already assigned.
func NewForm(now time.Time) *Form {
	return &Form{
		Title:      DefaultFormTitle,
		Fields:     []Field{},
		Status:     StatusDraft,
		ShareToken: GenerateShareToken(),
		CreatedAt:  Timestamp(now),
	}
}

// Validate checks the structural contract of a form: field ids present and
// unique, known field types, known status.
func (f *Form) Validate() error {
	seen := make(map[string]struct{}, len(f.Fields))
	for i, fld := range f.Fields {
		if fld.ID == "" {
			return fmt.Errorf("field %d: %w", i, ErrEmptyFieldID)
		}
		if _, dup := seen[fld.ID]; dup {
			return fmt.Errorf("field %q: %w", fld.ID, ErrDuplicateFieldID)
		}
		seen[fld.ID] = struct{}{}
		if !fld.Type.Valid() {
			return fmt.Errorf("field %q: %w: %q", fld.ID, ErrInvalidFieldType, fld.Type)
		}
	}
	if f.Status != StatusDraft && f.Status != StatusPublished {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, f.Status)
	}
	return nil
}

// Normalize clears Required on description fields and fills a missing
// status.
func (f *Form) Normalize() {
	if f.Fields == nil {
		f.Fields = []Field{}
	}
	for i := range f.Fields {
		if !f.Fields[i].Type.HasInput() {
			f.Fields[i].Required = false
		}
	}
	if f.Status == "" {
		f.Status = StatusDraft
	}
}

// ExportTarget returns the webhook URL when export is switched on and
// configured.
func (f *Form) ExportTarget() (string, bool) {
	gi := f.GoogleIntegration
	if gi == nil || !gi.Enabled || strings.TrimSpace(gi.ScriptURL) == "" {
		return "", false
	}
	return strings.TrimSpace(gi.ScriptURL), true
}

// Field looks a field up by id.
func (f *Form) Field(id string) (Field, bool) {
	for _, fld := range f.Fields {
		if fld.ID == id {
			return fld, true
		}
	}
	return Field{}, false
}

// InputFields returns the fields that collect an answer, in form order.
func (f *Form) InputFields() []Field {
	out := make([]Field, 0, len(f.Fields))
	for _, fld := range f.Fields {
		if fld.Type.HasInput() {
			out = append(out, fld)
		}
	}
	return out
}

// DefaultLabel is the label a freshly added field of type t carries.
func DefaultLabel(t FieldType) string {
	return "নতুন " + strings.Replace(string(t), "_", " ", 1)
}

// AddField appends a field of type t and returns it.
func (f *Form) AddField(t FieldType) Field {
	fld := Field{
		ID:    uuid.NewString(),
		Type:  t,
		Label: DefaultLabel(t),
	}
	if t.IsChoice() {
		fld.Options = slices.Clone(defaultOptions)
	}
	f.Fields = append(f.Fields, fld)
	return fld
}

// FieldPatch carries the members of a Field to overwrite; nil members are
// left alone. Id and type are fixed once a field exists.
type FieldPatch struct {
	Label    *string   `json:"label,omitempty"`
	Required *bool     `json:"required,omitempty"`
	Options  *[]string `json:"options,omitempty"`
	HelpText *string   `json:"helpText,omitempty"`
}

// UpdateField merges p into the field with the given id. An unknown id is
// ignored and reported as false.
func (f *Form) UpdateField(id string, p FieldPatch) bool {
	i := f.indexOf(id)
	if i < 0 {
		return false
	}
	fld := &f.Fields[i]
	if p.Label != nil {
		fld.Label = *p.Label
	}
	if p.Required != nil {
		fld.Required = *p.Required && fld.Type.HasInput()
	}
	if p.Options != nil {
		fld.Options = cleanOptions(*p.Options)
	}
	if p.HelpText != nil {
		fld.HelpText = *p.HelpText
	}
	return true
}

// RemoveField deletes the field with the given id. Answers already stored
// under that id stay where they are.
func (f *Form) RemoveField(id string) bool {
	i := f.indexOf(id)
	if i < 0 {
		return false
	}
	f.Fields = slices.Delete(f.Fields, i, i+1)
	return true
}

// MoveField moves the field with the given id to position to, clamped to
// the field list.
func (f *Form) MoveField(id string, to int) bool {
	i := f.indexOf(id)
	if i < 0 {
		return false
	}
	to = max(0, min(to, len(f.Fields)-1))
	if i == to {
		return true
	}
	fld := f.Fields[i]
	f.Fields = slices.Delete(f.Fields, i, i+1)
	f.Fields = slices.Insert(f.Fields, to, fld)
	return true
}

// EnsureShareToken returns the form's token, generating one if it has
// none. generated tells the caller the form needs saving.
func (f *Form) EnsureShareToken() (token string, generated bool) {
	if f.ShareToken != "" {
		return f.ShareToken, false
	}
	f.ShareToken = GenerateShareToken()
	return f.ShareToken, true
}

func (f *Form) indexOf(id string) int {
	return slices.IndexFunc(f.Fields, func(fld Field) bool { return fld.ID == id })
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateShareToken concatenates two independent random base-36 runs of
// eight characters. It is an unguessable-enough link slug, not a secret.
func GenerateShareToken() string {
	return randomBase36(8) + randomBase36(8)
}

func randomBase36(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36[rand.IntN(len(base36))]
	}
	return string(b)
}

// cleanOptions trims each option and drops empty ones.
func cleanOptions(opts []string) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
