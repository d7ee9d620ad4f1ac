package models

import "time"

// Submission is one completed fill of a form. Data is keyed by field id;
// FormTitle is a snapshot so the record still reads well after the form
// is renamed or deleted. Submissions are never updated, only deleted.
type Submission struct {
	ID          string            `json:"_id,omitempty"`
	FormID      string            `json:"formId"`
	FormTitle   string            `json:"formTitle"`
	SubmittedAt string            `json:"submittedAt"`
	Data        map[string]string `json:"data"`
}

// ResolvedAnswer is one answer of a submission with its field label.
type ResolvedAnswer struct {
	FieldID string `json:"fieldId"`
	Label   string `json:"label"`
	Value   string `json:"value"`
}

// SubmissionDetail is what the inbox shows for a single submission.
type SubmissionDetail struct {
	Submission
	Title   string           `json:"title"`
	Answers []ResolvedAnswer `json:"answers"`
}

// Attachment is an uploaded file held in memory between capture and
// export. It is never written to the primary store.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// TimeLayout is the timestamp format of every stored document: UTC with
// fixed millisecond precision, so timestamps sort as strings.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp formats t with TimeLayout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
