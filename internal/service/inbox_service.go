package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ontohin26/ontohin/internal/models"
	"github.com/ontohin26/ontohin/internal/repository"
	"github.com/ontohin26/ontohin/internal/store"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const UnknownFormTitle = "Unknown Form"

// InboxQuery filters the submission inbox. FormID "" or "all" selects
// every form; Term is matched case-insensitively against every answer.
type InboxQuery struct {
	FormID string
	Term   string
}

func (q InboxQuery) formID() string {
	if q.FormID == "all" {
		return ""
	}
	return q.FormID
}

// InboxService reads submissions back for the admin console. Forms are
// looked up softly: a deleted form degrades labels and titles, it never
// hides a submission.
type InboxService struct {
	subs  *repository.SubmissionRepo
	forms *repository.FormRepo
	log   *zap.Logger
}

func NewInboxService(subs *repository.SubmissionRepo, forms *repository.FormRepo, log *zap.Logger) *InboxService {
	return &InboxService{subs: subs, forms: forms, log: log.With(zap.String("service", "inbox"))}
}

func (s *InboxService) List(ctx context.Context, q InboxQuery) ([]models.SubmissionDetail, error) {
	subs, err := s.subs.FindAll(ctx, q.formID())
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	forms, err := s.formIndex(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolveAll(filterByTerm(subs, q.Term), forms), nil
}

func (s *InboxService) Detail(ctx context.Context, id string) (*models.SubmissionDetail, error) {
	sub, err := s.subs.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	if sub == nil {
		return nil, ErrSubmissionNotFound
	}
	form, err := s.forms.FindByID(ctx, sub.FormID)
	if err != nil {
		s.log.Warn("form lookup failed", zap.String("form_id", sub.FormID), zap.Error(err))
		form = nil
	}
	d := Resolve(*sub, form)
	return &d, nil
}

// Delete removes a submission for good.
func (s *InboxService) Delete(ctx context.Context, id string) error {
	err := s.subs.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrSubmissionNotFound
	}
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	s.log.Info("submission deleted", zap.String("submission_id", id))
	return nil
}

// Watch streams the filtered inbox whenever the submissions or the forms
// change, so renamed fields and deleted forms show up without waiting for
// the next submission. Nothing is sent until both have been read once.
func (s *InboxService) Watch(ctx context.Context, q InboxQuery) (<-chan []models.SubmissionDetail, error) {
	ctx, cancel := context.WithCancel(ctx)
	lists, err := s.subs.Watch(ctx, q.formID())
	if err != nil {
		cancel()
		return nil, fmt.Errorf("watch submissions: %w", err)
	}
	formLists, err := s.forms.Watch(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("watch forms: %w", err)
	}

	out := make(chan []models.SubmissionDetail)
	go func() {
		defer close(out)
		defer cancel()
		var (
			subs  []models.Submission
			index map[string]*models.Form
		)
		haveSubs, haveForms := false, false
		for {
			select {
			case list, ok := <-lists:
				if !ok {
					return
				}
				subs, haveSubs = list, true
			case forms, ok := <-formLists:
				if !ok {
					return
				}
				index, haveForms = indexForms(forms), true
			case <-ctx.Done():
				return
			}
			if !haveSubs || !haveForms {
				continue
			}
			select {
			case out <- s.resolveAll(filterByTerm(subs, q.Term), index):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Resolve attaches labels to a submission's answers using form, which
// may be nil. Answers follow the form's field order; keys the form no
// longer knows come last, labelled by their raw id.
func Resolve(sub models.Submission, form *models.Form) models.SubmissionDetail {
	d := models.SubmissionDetail{Submission: sub, Title: sub.FormTitle}
	if d.Title == "" && form != nil {
		d.Title = form.Title
	}
	if d.Title == "" {
		d.Title = UnknownFormTitle
	}

	seen := make(map[string]bool, len(sub.Data))
	if form != nil {
		for _, f := range form.InputFields() {
			v, ok := sub.Data[f.ID]
			if !ok {
				continue
			}
			seen[f.ID] = true
			d.Answers = append(d.Answers, models.ResolvedAnswer{FieldID: f.ID, Label: f.Label, Value: v})
		}
	}
	orphans := lo.Filter(lo.Keys(sub.Data), func(k string, _ int) bool { return !seen[k] })
	sort.Strings(orphans)
	for _, k := range orphans {
		d.Answers = append(d.Answers, models.ResolvedAnswer{FieldID: k, Label: k, Value: sub.Data[k]})
	}
	if d.Answers == nil {
		d.Answers = []models.ResolvedAnswer{}
	}
	return d
}

func (s *InboxService) resolveAll(subs []models.Submission, forms map[string]*models.Form) []models.SubmissionDetail {
	return lo.Map(subs, func(sub models.Submission, _ int) models.SubmissionDetail {
		return Resolve(sub, forms[sub.FormID])
	})
}

func (s *InboxService) formIndex(ctx context.Context) (map[string]*models.Form, error) {
	forms, err := s.forms.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	return indexForms(forms), nil
}

func indexForms(forms []models.Form) map[string]*models.Form {
	index := make(map[string]*models.Form, len(forms))
	for i := range forms {
		index[forms[i].ID] = &forms[i]
	}
	return index
}

func filterByTerm(subs []models.Submission, term string) []models.Submission {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return subs
	}
	return lo.Filter(subs, func(sub models.Submission, _ int) bool {
		return lo.SomeBy(lo.Values(sub.Data), func(v string) bool {
			return strings.Contains(strings.ToLower(v), term)
		})
	})
}
