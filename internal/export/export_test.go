package export

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ontohin26/ontohin/internal/models"
	"go.uber.org/zap"
)

func paymentForm() *models.Form {
	return &models.Form{
		Title: "Reunion",
		Fields: []models.Field{
			{ID: "intro", Type: models.FieldDescription, Label: "Welcome"},
			{ID: "f1", Type: models.FieldShortText, Label: "Name"},
			{ID: "f2", Type: models.FieldEmail, Label: "Email"},
			{ID: "f3", Type: models.FieldFileUpload, Label: "Receipt"},
		},
	}
}

func TestBuildPayloadKeysByLabel(t *testing.T) {
	sub := &models.Submission{
		SubmittedAt: "2026-02-01T10:00:00Z",
		Data:        map[string]string{"f1": "Rahim", "f2": "a@b.com", "f3": "slip.png"},
	}
	files := map[string]models.Attachment{
		"f3": {Name: "slip.png", ContentType: "image/png", Data: []byte("png")},
	}

	p := BuildPayload(paymentForm(), sub, files)

	if p.FormTitle != "Reunion" || p.SubmittedAt != "2026-02-01T10:00:00Z" {
		t.Fatalf("unexpected header %+v", p)
	}
	want := map[string]string{"Name": "Rahim", "Email": "a@b.com", "Receipt": "slip.png"}
	if len(p.FormData) != len(want) {
		t.Fatalf("formData = %v", p.FormData)
	}
	for k, v := range want {
		if p.FormData[k] != v {
			t.Errorf("formData[%q] = %q, want %q", k, p.FormData[k], v)
		}
	}
	if _, ok := p.FormData["Welcome"]; ok {
		t.Error("description field leaked into formData")
	}

	got := p.Attachments["Receipt"]
	if got.Name != "slip.png" || got.Type != "image/png" || got.Base64 != "cG5n" {
		t.Fatalf("unexpected attachment %+v", got)
	}
}

func TestBuildPayloadWithoutFiles(t *testing.T) {
	sub := &models.Submission{Data: map[string]string{"f1": "Rahim"}}
	p := BuildPayload(paymentForm(), sub, nil)

	if len(p.Attachments) != 0 {
		t.Fatalf("expected no attachments, got %v", p.Attachments)
	}
	if v, ok := p.FormData["Email"]; !ok || v != "" {
		t.Fatalf("unanswered field should export as empty, got %q %v", v, ok)
	}

	body, _ := json.Marshal(p)
	var decoded map[string]any
	json.Unmarshal(body, &decoded)
	if _, ok := decoded["attachments"].(map[string]any); !ok {
		t.Fatalf("attachments must encode as an object: %s", body)
	}
}

func TestSend(t *testing.T) {
	var got Payload
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte("<html>opaque</html>"))
	}))
	defer srv.Close()

	c := NewClient(0, zap.NewNop())
	n, err := c.Send(context.Background(), srv.URL, Payload{
		FormTitle: "RSVP",
		FormData:  map[string]string{"Email": "a@b.com"},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if n == 0 {
		t.Error("expected payload size")
	}
	if contentType != "application/json" {
		t.Errorf("content type = %q", contentType)
	}
	if got.FormData["Email"] != "a@b.com" {
		t.Errorf("webhook received %+v", got)
	}
}

func TestSendNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewClient(0, zap.NewNop()).Send(context.Background(), srv.URL, Payload{})
	var se *StatusError
	if !errors.As(err, &se) || se.Status != http.StatusForbidden {
		t.Fatalf("expected StatusError 403, got %v", err)
	}
}
