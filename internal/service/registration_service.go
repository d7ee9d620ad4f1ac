package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ontohin26/ontohin/internal/metrics"
	"github.com/ontohin26/ontohin/internal/models"
	"github.com/ontohin26/ontohin/internal/repository"
	"github.com/ontohin26/ontohin/internal/store"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type RegistrationService struct {
	regs    *repository.RegistrationRepo
	events  *repository.EventRepo
	metrics *metrics.Collector
	log     *zap.Logger
	now     func() time.Time
}

func NewRegistrationService(regs *repository.RegistrationRepo, events *repository.EventRepo, mc *metrics.Collector, log *zap.Logger) *RegistrationService {
	return &RegistrationService{
		regs:    regs,
		events:  events,
		metrics: mc,
		log:     log.With(zap.String("service", "registrations")),
		now:     time.Now,
	}
}

// Register signs someone up for an event. The event must exist now; its
// title is copied so the registration reads well after the event is gone.
func (s *RegistrationService) Register(ctx context.Context, eventID string, in models.RegistrationInput) (*models.Registration, error) {
	in = trimInput(in)
	if in.SSCBatch == "" {
		in.SSCBatch = models.DefaultSSCBatch
	}
	if missing := missingRegistrationFields(in); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}

	ev, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if ev == nil {
		return nil, ErrEventNotFound
	}

	reg := &models.Registration{
		EventID:           ev.ID,
		EventName:         ev.Title,
		RegistrationInput: in,
		SubmittedAt:       models.Timestamp(s.now()),
	}
	id, err := s.regs.Create(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("create registration: %w", err)
	}
	reg.ID = id
	s.metrics.Inc(metrics.RegistrationsCreated, nil)
	s.log.Info("registration created", zap.String("event_id", ev.ID), zap.String("registration_id", id))
	return reg, nil
}

// List returns registrations newest first, filtered by a case-insensitive
// term over first name, last name, event name and email.
func (s *RegistrationService) List(ctx context.Context, term string) ([]models.Registration, error) {
	regs, err := s.regs.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return filterRegistrations(regs, term), nil
}

func (s *RegistrationService) Delete(ctx context.Context, id string) error {
	err := s.regs.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrRegistrationNotFound
	}
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	return nil
}

func (s *RegistrationService) Watch(ctx context.Context, term string) (<-chan []models.Registration, error) {
	lists, err := s.regs.Watch(ctx)
	if err != nil {
		return nil, fmt.Errorf("watch registrations: %w", err)
	}
	out := make(chan []models.Registration)
	go func() {
		defer close(out)
		for regs := range lists {
			select {
			case out <- filterRegistrations(regs, term):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func filterRegistrations(regs []models.Registration, term string) []models.Registration {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return regs
	}
	return lo.Filter(regs, func(r models.Registration, _ int) bool {
		for _, v := range []string{r.FirstName, r.LastName, r.EventName, r.Email} {
			if strings.Contains(strings.ToLower(v), term) {
				return true
			}
		}
		return false
	})
}

func trimInput(in models.RegistrationInput) models.RegistrationInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Instagram = strings.TrimSpace(in.Instagram)
	in.SSCBatch = strings.TrimSpace(in.SSCBatch)
	in.Section = strings.TrimSpace(in.Section)
	return in
}

func missingRegistrationFields(in models.RegistrationInput) []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"firstName", in.FirstName},
		{"lastName", in.LastName},
		{"email", in.Email},
		{"phone", in.Phone},
		{"instagram", in.Instagram},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
