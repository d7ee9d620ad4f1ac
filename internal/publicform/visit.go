// Package publicform runs one visit to a shared form: resolve the link,
// collect answers, validate required fields and hand the result to the
// submission pipeline.
package publicform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ontohin26/ontohin/internal/models"
	"go.uber.org/zap"
)

type State string

const (
	StateResolving  State = "resolving"
	StateNotFound   State = "not_found"
	StateReady      State = "ready"
	StateSubmitting State = "submitting"
	StateSubmitted  State = "submitted"
	StateError      State = "error"
)

// MsgPersistFailed is shown when the submission could not be stored.
const MsgPersistFailed = "ফর্মটি জমা দিতে সমস্যা হয়েছে। অনুগ্রহ করে আবার চেষ্টা করুন।"

var (
	ErrSubmitInFlight = errors.New("a submission is already in flight")
	ErrNotReady       = errors.New("visit cannot submit in its current state")
	ErrPersistFailed  = errors.New(MsgPersistFailed)
)

// ValidationError lists the labels of required fields left empty, in form
// order.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "অনুগ্রহ করে পূরণ করুন: " + strings.Join(e.Missing, ", ")
}

// FormSource resolves share tokens. An unknown token is reported with an
// error the runtime's notFound func recognises.
type FormSource interface {
	GetByShareToken(ctx context.Context, token string) (*models.Form, error)
}

// Pipeline persists a submission and starts its export.
type Pipeline interface {
	Submit(ctx context.Context, form *models.Form, sub *models.Submission, files map[string]models.Attachment) (string, error)
}

type Runtime struct {
	forms    FormSource
	pipeline Pipeline
	notFound func(error) bool
	log      *zap.Logger
	now      func() time.Time
}

// NewRuntime wires a runtime. notFound tells a missing form apart from a
// failing store.
func NewRuntime(forms FormSource, pipeline Pipeline, notFound func(error) bool, log *zap.Logger) *Runtime {
	return &Runtime{
		forms:    forms,
		pipeline: pipeline,
		notFound: notFound,
		log:      log.With(zap.String("service", "publicform")),
		now:      time.Now,
	}
}

// Visit is one person filling one form. It is safe for concurrent use.
type Visit struct {
	rt *Runtime

	mu           sync.Mutex
	state        State
	token        string
	form         *models.Form
	answers      map[string]string
	files        map[string]models.Attachment
	err          error
	submissionID string
}

// Open resolves token into a visit. An empty, unknown or deleted token all
// give a visit in StateNotFound; only store failures are returned.
func (r *Runtime) Open(ctx context.Context, token string) (*Visit, error) {
	v := &Visit{rt: r, state: StateResolving, token: token}
	if strings.TrimSpace(token) == "" {
		v.state = StateNotFound
		return v, nil
	}

	form, err := r.forms.GetByShareToken(ctx, token)
	switch {
	case err != nil && r.notFound(err):
		v.state = StateNotFound
		return v, nil
	case err != nil:
		return nil, fmt.Errorf("resolve form: %w", err)
	}

	v.form = form
	v.answers = make(map[string]string, len(form.Fields))
	v.files = make(map[string]models.Attachment)
	for _, f := range form.InputFields() {
		v.answers[f.ID] = f.DefaultValue()
	}
	v.state = StateReady
	return v, nil
}

func (v *Visit) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Form is nil for a visit that never resolved.
func (v *Visit) Form() *models.Form {
	return v.form
}

// Answers returns a copy of the current answer map.
func (v *Visit) Answers() map[string]string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[string]string, len(v.answers))
	for k, val := range v.answers {
		out[k] = val
	}
	return out
}

func (v *Visit) Value(fieldID string) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.answers[fieldID]
}

// Err is the error that moved the visit to StateError.
func (v *Visit) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// SubmissionID is set once the visit reaches StateSubmitted.
func (v *Visit) SubmissionID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.submissionID
}

// Set stores the answer for one field. Fields the form does not have and
// description blocks are ignored.
func (v *Visit) Set(fieldID, value string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.editable() {
		return false
	}
	if _, ok := v.answers[fieldID]; !ok {
		return false
	}
	v.answers[fieldID] = value
	return true
}

// Attach keeps an upload for a file field until submit. The stored answer
// is the file name; the bytes only go to the export.
func (v *Visit) Attach(fieldID string, a models.Attachment) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.editable() {
		return false
	}
	f, ok := v.form.Field(fieldID)
	if !ok || f.Type != models.FieldFileUpload {
		return false
	}
	v.files[fieldID] = a
	v.answers[fieldID] = a.Name
	return true
}

func (v *Visit) editable() bool {
	return v.state == StateReady || v.state == StateError
}

// missingLocked returns the labels of required fields that are still empty.
func (v *Visit) missingLocked() []string {
	if v.form == nil {
		return nil
	}
	var missing []string
	for _, f := range v.form.InputFields() {
		if !f.Required {
			continue
		}
		empty := v.answers[f.ID] == ""
		if f.Type == models.FieldFileUpload {
			_, attached := v.files[f.ID]
			empty = !attached
		}
		if empty {
			missing = append(missing, f.Label)
		}
	}
	return missing
}

// Submit validates the answers and runs the pipeline. A validation or
// persistence failure leaves the visit in StateError, from which the
// answers can be corrected and submitted again.
func (v *Visit) Submit(ctx context.Context) (string, error) {
	v.mu.Lock()
	switch v.state {
	case StateSubmitting:
		v.mu.Unlock()
		return "", ErrSubmitInFlight
	case StateReady, StateError:
	default:
		state := v.state
		v.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrNotReady, state)
	}

	if missing := v.missingLocked(); len(missing) > 0 {
		v.state = StateError
		v.err = &ValidationError{Missing: missing}
		v.mu.Unlock()
		return "", v.err
	}

	form := v.form
	sub := &models.Submission{
		FormID:      form.ID,
		FormTitle:   form.Title,
		SubmittedAt: models.Timestamp(v.rt.now()),
		Data:        make(map[string]string, len(v.answers)),
	}
	for k, val := range v.answers {
		sub.Data[k] = val
	}
	files := make(map[string]models.Attachment, len(v.files))
	for k, a := range v.files {
		files[k] = a
	}
	v.state = StateSubmitting
	v.err = nil
	v.mu.Unlock()

	id, err := v.rt.pipeline.Submit(ctx, form, sub, files)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.rt.log.Warn("submission failed", zap.String("form_id", form.ID), zap.Error(err))
		v.state = StateError
		v.err = ErrPersistFailed
		return "", v.err
	}
	v.state = StateSubmitted
	v.submissionID = id
	return id, nil
}
