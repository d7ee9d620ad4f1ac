package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ontohin26/ontohin/internal/export"
	"github.com/ontohin26/ontohin/internal/metrics"
	"github.com/ontohin26/ontohin/internal/models"
	"github.com/ontohin26/ontohin/internal/repository"
	"github.com/ontohin26/ontohin/internal/task"
	"go.uber.org/zap"
)

// Exporter delivers a payload to a webhook and reports its encoded size.
type Exporter interface {
	Send(ctx context.Context, url string, p export.Payload) (int, error)
}

// SubmissionService is the submission pipeline. Persisting is the
// authoritative step and its error is returned; the webhook export only
// starts after a successful write and its outcome is never returned.
type SubmissionService struct {
	subs     *repository.SubmissionRepo
	exporter Exporter
	runner   *task.Runner
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewSubmissionService(subs *repository.SubmissionRepo, exporter Exporter, runner *task.Runner, mc *metrics.Collector, log *zap.Logger) *SubmissionService {
	return &SubmissionService{
		subs:     subs,
		exporter: exporter,
		runner:   runner,
		metrics:  mc,
		log:      log.With(zap.String("service", "pipeline")),
	}
}

// Submit persists sub and, if form exports, queues the webhook post.
// files holds uploads by field id; they go to the webhook only.
func (s *SubmissionService) Submit(ctx context.Context, form *models.Form, sub *models.Submission, files map[string]models.Attachment) (string, error) {
	log := s.log.With(zap.String("form_id", form.ID))

	start := time.Now()
	id, err := s.subs.Create(ctx, sub)
	s.metrics.ObserveLatency(metrics.PersistLatency, time.Since(start))
	if err != nil {
		s.metrics.Inc(metrics.SubmissionsFailed, nil)
		log.Error("persist submission failed", zap.Error(err))
		return "", fmt.Errorf("persist submission: %w", err)
	}
	sub.ID = id
	s.metrics.Inc(metrics.SubmissionsPersisted, nil)
	log.Info("submission persisted", zap.String("submission_id", id))

	url, ok := form.ExportTarget()
	if !ok {
		return id, nil
	}
	payload := export.BuildPayload(form, sub, files)
	s.runner.Go("export", func(ctx context.Context) error {
		sent := time.Now()
		n, err := s.exporter.Send(ctx, url, payload)
		s.metrics.ObserveLatency(metrics.ExportLatency, time.Since(sent))
		if n > 0 {
			s.metrics.ObserveSize(metrics.ExportSize, float64(n))
		}
		if err != nil {
			s.metrics.Inc(metrics.ExportsFailed, nil)
			return err
		}
		s.metrics.Inc(metrics.ExportsSent, nil)
		return nil
	}, zap.String("form_id", form.ID), zap.String("submission_id", id))

	return id, nil
}
