// Package export forwards submissions to a form's spreadsheet webhook.
// Answers are keyed by field label here, unlike the primary store which
// keys them by field id, so the spreadsheet gets readable column headers.
package export

import (
	"encoding/base64"

	"github.com/ontohin26/ontohin/internal/models"
	"github.com/samber/lo"
)

// File is an attachment as the webhook receives it.
type File struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Base64 string `json:"base64"`
}

// Payload is the JSON body posted to the webhook.
type Payload struct {
	FormTitle   string            `json:"formTitle"`
	SubmittedAt string            `json:"submittedAt"`
	FormData    map[string]string `json:"formData"`
	Attachments map[string]File   `json:"attachments"`
}

// BuildPayload projects a persisted submission onto the form's current
// labels. Description fields are skipped; fields sharing a label collapse
// to the last one.
func BuildPayload(form *models.Form, sub *models.Submission, files map[string]models.Attachment) Payload {
	inputs := form.InputFields()

	formData := lo.Associate(inputs, func(f models.Field) (string, string) {
		return f.Label, sub.Data[f.ID]
	})

	uploads := lo.Filter(inputs, func(f models.Field, _ int) bool {
		_, ok := files[f.ID]
		return f.Type == models.FieldFileUpload && ok
	})
	attachments := lo.Associate(uploads, func(f models.Field) (string, File) {
		a := files[f.ID]
		return f.Label, File{
			Name:   a.Name,
			Type:   a.ContentType,
			Base64: base64.StdEncoding.EncodeToString(a.Data),
		}
	})

	return Payload{
		FormTitle:   form.Title,
		SubmittedAt: sub.SubmittedAt,
		FormData:    formData,
		Attachments: attachments,
	}
}
