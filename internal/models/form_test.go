package models

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewForm(t *testing.T) {
	f := NewForm(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	if f.Status != StatusDraft {
		t.Errorf("expected draft, got %q", f.Status)
	}
	if len(f.Fields) != 0 {
		t.Errorf("expected no fields, got %d", len(f.Fields))
	}
	if len(f.ShareToken) != 16 {
		t.Errorf("expected 16 char token, got %q", f.ShareToken)
	}
	if f.CreatedAt != "2026-01-02T03:04:05.000Z" {
		t.Errorf("unexpected createdAt %q", f.CreatedAt)
	}
	if err := f.Validate(); err != nil {
		t.Errorf("new form should validate: %v", err)
	}
}

func TestAddField(t *testing.T) {
	f := NewForm(time.Now())
	a := f.AddField(FieldShortText)
	b := f.AddField(FieldPaymentMethod)

	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct generated ids, got %q and %q", a.ID, b.ID)
	}
	if a.Required || b.Required {
		t.Error("new fields must not be required")
	}
	if a.Label != "নতুন short text" {
		t.Errorf("unexpected default label %q", a.Label)
	}
	if len(a.Options) != 0 {
		t.Errorf("text field got options %v", a.Options)
	}
	if len(b.Options) != 2 || b.Options[0] != "Option 1" || b.Options[1] != "Option 2" {
		t.Errorf("choice field options = %v", b.Options)
	}
	if f.Fields[0].ID != a.ID || f.Fields[1].ID != b.ID {
		t.Error("fields must be appended in order")
	}
}

func TestDefaultLabelReplacesFirstUnderscoreOnly(t *testing.T) {
	if got := DefaultLabel(FieldMultipleChoice); got != "নতুন multiple choice" {
		t.Errorf("got %q", got)
	}
	if got := DefaultLabel(FieldEmail); got != "নতুন email" {
		t.Errorf("got %q", got)
	}
}

func TestUpdateField(t *testing.T) {
	f := NewForm(time.Now())
	fld := f.AddField(FieldMultipleChoice)
	desc := f.AddField(FieldDescription)

	label, req := "Batch", true
	opts := []string{" A ", "", "B"}
	if !f.UpdateField(fld.ID, FieldPatch{Label: &label, Required: &req, Options: &opts}) {
		t.Fatal("update of known field reported false")
	}
	got, _ := f.Field(fld.ID)
	if got.Label != "Batch" || !got.Required {
		t.Errorf("patch not applied: %+v", got)
	}
	if strings.Join(got.Options, "|") != "A|B" {
		t.Errorf("options not cleaned: %q", got.Options)
	}

	help := "only text"
	if !f.UpdateField(desc.ID, FieldPatch{Required: &req, HelpText: &help}) {
		t.Fatal("update of description reported false")
	}
	if d, _ := f.Field(desc.ID); d.Required || d.HelpText != "only text" {
		t.Errorf("description must never be required: %+v", d)
	}

	before := len(f.Fields)
	if f.UpdateField("missing", FieldPatch{Label: &label}) {
		t.Error("unknown id must report false")
	}
	if len(f.Fields) != before {
		t.Error("unknown id must not change the form")
	}
}

func TestRemoveAndMoveField(t *testing.T) {
	f := NewForm(time.Now())
	a := f.AddField(FieldShortText)
	b := f.AddField(FieldEmail)
	c := f.AddField(FieldNumber)

	if !f.MoveField(c.ID, 0) {
		t.Fatal("move reported false")
	}
	if ids := fieldIDs(f); ids != c.ID+","+a.ID+","+b.ID {
		t.Fatalf("unexpected order after move: %s", ids)
	}
	if !f.MoveField(c.ID, 99) {
		t.Fatal("clamped move reported false")
	}
	if ids := fieldIDs(f); ids != a.ID+","+b.ID+","+c.ID {
		t.Fatalf("unexpected order after clamped move: %s", ids)
	}

	if !f.RemoveField(b.ID) {
		t.Fatal("remove reported false")
	}
	if ids := fieldIDs(f); ids != a.ID+","+c.ID {
		t.Fatalf("unexpected fields after remove: %s", ids)
	}
	if f.RemoveField(b.ID) || f.MoveField(b.ID, 0) {
		t.Error("operations on a removed id must report false")
	}
}

func TestEnsureShareTokenIsIdempotent(t *testing.T) {
	f := &Form{Status: StatusDraft}

	tok, generated := f.EnsureShareToken()
	if !generated || tok == "" {
		t.Fatalf("expected a generated token, got %q %v", tok, generated)
	}
	again, generated := f.EnsureShareToken()
	if generated || again != tok {
		t.Fatalf("second call changed the token: %q -> %q", tok, again)
	}
}

func TestGenerateShareTokenAlphabet(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok := GenerateShareToken()
		if len(tok) != 16 {
			t.Fatalf("token %q has length %d", tok, len(tok))
		}
		for _, r := range tok {
			if !strings.ContainsRune(base36, r) {
				t.Fatalf("token %q has non base-36 rune %q", tok, r)
			}
		}
		seen[tok] = true
	}
	if len(seen) < 100 {
		t.Errorf("expected 100 distinct tokens, got %d", len(seen))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		form Form
		want error
	}{
		{"ok", Form{Status: StatusPublished, Fields: []Field{{ID: "f1", Type: FieldShortText}}}, nil},
		{"empty id", Form{Status: StatusDraft, Fields: []Field{{Type: FieldEmail}}}, ErrEmptyFieldID},
		{"duplicate id", Form{Status: StatusDraft, Fields: []Field{{ID: "f1", Type: FieldEmail}, {ID: "f1", Type: FieldNumber}}}, ErrDuplicateFieldID},
		{"bad type", Form{Status: StatusDraft, Fields: []Field{{ID: "f1", Type: "date"}}}, ErrInvalidFieldType},
		{"bad status", Form{Status: "archived"}, ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	f := Form{Fields: []Field{{ID: "d", Type: FieldDescription, Required: true}}}
	f.Normalize()
	if f.Fields[0].Required {
		t.Error("description left required")
	}
	if f.Status != StatusDraft {
		t.Errorf("missing status not defaulted: %q", f.Status)
	}
}

func TestChoiceOptionsFallback(t *testing.T) {
	fld := Field{ID: "p", Type: FieldPaymentMethod}
	if opts := fld.ChoiceOptions(); len(opts) != 1 || opts[0] != "Option 1" {
		t.Errorf("fallback options = %v", opts)
	}
	if fld.DefaultValue() != "Option 1" {
		t.Errorf("default value = %q", fld.DefaultValue())
	}
	fld.Options = []string{"bKash", "Nagad"}
	if fld.DefaultValue() != "bKash" {
		t.Errorf("default value = %q", fld.DefaultValue())
	}
	if (Field{Type: FieldShortText}).DefaultValue() != "" {
		t.Error("text fields start empty")
	}
}

func TestExportTarget(t *testing.T) {
	tests := []struct {
		name string
		gi   *GoogleIntegration
		url  string
		ok   bool
	}{
		{"none", nil, "", false},
		{"disabled", &GoogleIntegration{Enabled: false, ScriptURL: "https://x"}, "", false},
		{"blank url", &GoogleIntegration{Enabled: true, ScriptURL: "  "}, "", false},
		{"enabled", &GoogleIntegration{Enabled: true, ScriptURL: " https://x "}, "https://x", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Form{GoogleIntegration: tt.gi}
			url, ok := f.ExportTarget()
			if url != tt.url || ok != tt.ok {
				t.Errorf("got (%q, %v), want (%q, %v)", url, ok, tt.url, tt.ok)
			}
		})
	}
}

func fieldIDs(f *Form) string {
	ids := make([]string, len(f.Fields))
	for i, fld := range f.Fields {
		ids[i] = fld.ID
	}
	return strings.Join(ids, ",")
}
