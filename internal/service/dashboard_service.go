package service

import (
	"context"
	"fmt"

	"github.com/ontohin26/ontohin/internal/metrics"
	"github.com/ontohin26/ontohin/internal/models"
	"github.com/ontohin26/ontohin/internal/repository"
)

type FormStat struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Status          models.FormStatus `json:"status"`
	SubmissionCount int               `json:"submissionCount"`
	FieldCount      int               `json:"fieldCount"`
	CreatedAt       string            `json:"createdAt"`
}

type Dashboard struct {
	FormCount           int              `json:"formCount"`
	SubmissionCount     int              `json:"submissionCount"`
	EventCount          int              `json:"eventCount"`
	PublishedEventCount int              `json:"publishedEventCount"`
	RegistrationCount   int              `json:"registrationCount"`
	Forms               []FormStat       `json:"forms"`
	Pipeline            metrics.Snapshot `json:"pipeline"`
}

type DashboardService struct {
	forms   *repository.FormRepo
	subs    *repository.SubmissionRepo
	events  *repository.EventRepo
	regs    *repository.RegistrationRepo
	metrics *metrics.Collector
}

func NewDashboardService(forms *repository.FormRepo, subs *repository.SubmissionRepo, events *repository.EventRepo, regs *repository.RegistrationRepo, mc *metrics.Collector) *DashboardService {
	return &DashboardService{forms: forms, subs: subs, events: events, regs: regs, metrics: mc}
}

// Summary counts everything the console overview shows. The submission
// total includes orphans whose form has been deleted.
func (s *DashboardService) Summary(ctx context.Context) (*Dashboard, error) {
	forms, err := s.forms.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	d := &Dashboard{FormCount: len(forms), Forms: make([]FormStat, 0, len(forms))}
	for _, f := range forms {
		n, err := s.subs.Count(ctx, f.ID)
		if err != nil {
			return nil, fmt.Errorf("count submissions: %w", err)
		}
		d.Forms = append(d.Forms, FormStat{
			ID:              f.ID,
			Title:           f.Title,
			Status:          f.Status,
			SubmissionCount: n,
			FieldCount:      len(f.Fields),
			CreatedAt:       f.CreatedAt,
		})
	}

	if d.SubmissionCount, err = s.subs.Count(ctx, ""); err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}
	if d.EventCount, err = s.events.Count(ctx, ""); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	if d.PublishedEventCount, err = s.events.Count(ctx, models.EventPublished); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	if d.RegistrationCount, err = s.regs.Count(ctx); err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	d.Pipeline = s.metrics.Snapshot()
	return d, nil
}
