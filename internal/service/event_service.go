package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ontohin26/ontohin/internal/models"
	"github.com/ontohin26/ontohin/internal/repository"
	"github.com/ontohin26/ontohin/internal/store"
	"go.uber.org/zap"
)

type EventService struct {
	events *repository.EventRepo
	log    *zap.Logger
}

func NewEventService(events *repository.EventRepo, log *zap.Logger) *EventService {
	return &EventService{events: events, log: log.With(zap.String("service", "events"))}
}

func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	return s.events.FindAll(ctx)
}

// ListPublished is what the public site shows, latest date first.
func (s *EventService) ListPublished(ctx context.Context) ([]models.Event, error) {
	return s.events.FindByStatus(ctx, models.EventPublished)
}

func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	ev, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if ev == nil {
		return nil, ErrEventNotFound
	}
	return ev, nil
}

func (s *EventService) Create(ctx context.Context, ev *models.Event) (*models.Event, error) {
	if err := normalizeEvent(ev); err != nil {
		return nil, err
	}
	ev.ID = ""
	id, err := s.events.Create(ctx, ev)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	ev.ID = id
	s.log.Info("event created", zap.String("event_id", id))
	return ev, nil
}

func (s *EventService) Update(ctx context.Context, id string, ev *models.Event) (*models.Event, error) {
	if err := normalizeEvent(ev); err != nil {
		return nil, err
	}
	ev.ID = id
	err := s.events.Update(ctx, id, ev)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return ev, nil
}

// Delete removes the event. Registrations keep their eventName snapshot.
func (s *EventService) Delete(ctx context.Context, id string) error {
	err := s.events.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	s.log.Info("event deleted", zap.String("event_id", id))
	return nil
}

func normalizeEvent(ev *models.Event) error {
	ev.Title = strings.TrimSpace(ev.Title)
	if ev.Title == "" {
		return fmt.Errorf("%w: event title is required", ErrInvalidInput)
	}
	if ev.Status == "" {
		ev.Status = models.EventDraft
	}
	if !ev.Status.Valid() {
		return fmt.Errorf("%w: unknown event status %q", ErrInvalidInput, ev.Status)
	}
	return nil
}
