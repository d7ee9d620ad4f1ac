package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ontohin26/ontohin/internal/models"
	"github.com/ontohin26/ontohin/internal/repository"
	"github.com/ontohin26/ontohin/internal/store"
	"go.uber.org/zap"
)

// FormService is the form builder: it owns every write to the forms
// collection.
type FormService struct {
	forms  *repository.FormRepo
	origin string
	log    *zap.Logger
	now    func() time.Time
}

func NewFormService(forms *repository.FormRepo, publicOrigin string, log *zap.Logger) *FormService {
	return &FormService{
		forms:  forms,
		origin: strings.TrimRight(publicOrigin, "/"),
		log:    log.With(zap.String("service", "forms")),
		now:    time.Now,
	}
}

// Create stores a new empty draft. A blank title gets the default one.
func (s *FormService) Create(ctx context.Context, title, description string) (*models.Form, error) {
	form := models.NewForm(s.now())
	if title = strings.TrimSpace(title); title != "" {
		form.Title = title
	}
	form.Description = description

	id, err := s.forms.Create(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("create form: %w", err)
	}
	form.ID = id
	s.log.Info("form created", zap.String("form_id", id))
	return form, nil
}

// Save writes the whole form. A form without an id is created; otherwise
// the stored form is replaced, keeping its creation time and share token.
func (s *FormService) Save(ctx context.Context, form *models.Form) (*models.Form, error) {
	form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if form.ID == "" {
		if form.CreatedAt == "" {
			form.CreatedAt = models.Timestamp(s.now())
		}
		form.EnsureShareToken()
		id, err := s.forms.Create(ctx, form)
		if err != nil {
			return nil, fmt.Errorf("create form: %w", err)
		}
		form.ID = id
		return form, nil
	}

	existing, err := s.Get(ctx, form.ID)
	if err != nil {
		return nil, err
	}
	form.CreatedAt = existing.CreatedAt
	if existing.ShareToken != "" {
		form.ShareToken = existing.ShareToken
	} else {
		form.EnsureShareToken()
	}
	if err := s.update(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

func (s *FormService) Get(ctx context.Context, id string) (*models.Form, error) {
	form, err := s.forms.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get form: %w", err)
	}
	if form == nil {
		return nil, ErrFormNotFound
	}
	return form, nil
}

// GetByShareToken resolves a public link. Unknown and empty tokens both
// report ErrFormNotFound.
func (s *FormService) GetByShareToken(ctx context.Context, token string) (*models.Form, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrFormNotFound
	}
	form, err := s.forms.FindByShareToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("resolve share token: %w", err)
	}
	if form == nil {
		return nil, ErrFormNotFound
	}
	return form, nil
}

func (s *FormService) List(ctx context.Context) ([]models.Form, error) {
	return s.forms.FindAll(ctx)
}

// Delete removes the form only. Its submissions stay and keep their
// formTitle snapshot.
func (s *FormService) Delete(ctx context.Context, id string) error {
	err := s.forms.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrFormNotFound
	}
	if err != nil {
		return fmt.Errorf("delete form: %w", err)
	}
	s.log.Info("form deleted", zap.String("form_id", id))
	return nil
}

// ShareInfo is what the builder shows in its share dialog.
type ShareInfo struct {
	Token string `json:"token"`
	Link  string `json:"link"`
}

// EnsureShareToken returns the form's token, generating and persisting
// one first when the form has none.
func (s *FormService) EnsureShareToken(ctx context.Context, id string) (string, error) {
	form, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	token, generated := form.EnsureShareToken()
	if generated {
		if err := s.update(ctx, form); err != nil {
			return "", err
		}
		s.log.Info("share token generated", zap.String("form_id", id))
	}
	return token, nil
}

func (s *FormService) Share(ctx context.Context, id string) (*ShareInfo, error) {
	token, err := s.EnsureShareToken(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ShareInfo{Token: token, Link: s.ShareLink(token)}, nil
}

// ShareLink is the public URL of a form.
func (s *FormService) ShareLink(token string) string {
	return s.origin + "/#/form/" + token
}

func (s *FormService) AddField(ctx context.Context, formID string, t models.FieldType) (*models.Form, *models.Field, error) {
	if !t.Valid() {
		return nil, nil, fmt.Errorf("%w: unknown field type %q", ErrInvalidInput, t)
	}
	var added models.Field
	form, err := s.edit(ctx, formID, func(f *models.Form) {
		added = f.AddField(t)
	})
	if err != nil {
		return nil, nil, err
	}
	return form, &added, nil
}

// UpdateField merges patch into one field. An unknown field id leaves the
// form as it was.
func (s *FormService) UpdateField(ctx context.Context, formID, fieldID string, patch models.FieldPatch) (*models.Form, error) {
	return s.edit(ctx, formID, func(f *models.Form) {
		f.UpdateField(fieldID, patch)
	})
}

func (s *FormService) RemoveField(ctx context.Context, formID, fieldID string) (*models.Form, error) {
	return s.edit(ctx, formID, func(f *models.Form) {
		f.RemoveField(fieldID)
	})
}

func (s *FormService) MoveField(ctx context.Context, formID, fieldID string, to int) (*models.Form, error) {
	return s.edit(ctx, formID, func(f *models.Form) {
		f.MoveField(fieldID, to)
	})
}

// edit loads a form, applies fn and saves it. A form opened for editing
// gets a share token if it still lacks one.
func (s *FormService) edit(ctx context.Context, id string, fn func(*models.Form)) (*models.Form, error) {
	form, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fn(form)
	form.EnsureShareToken()
	form.Normalize()
	if err := s.update(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

func (s *FormService) update(ctx context.Context, form *models.Form) error {
	err := s.forms.Update(ctx, form.ID, form)
	if errors.Is(err, store.ErrNotFound) {
		return ErrFormNotFound
	}
	if err != nil {
		return fmt.Errorf("update form: %w", err)
	}
	return nil
}
