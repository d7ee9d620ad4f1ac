// Command seed fills a store with demo data: a few events with
// registrations, a registration form and a large batch of submissions.
// It reads the same environment as the server.
//
// Usage:
//
//	STORE_BACKEND=oxidb go run ./cmd/seed -submissions 100000
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/ontohin26/ontohin/internal/config"
	"github.com/ontohin26/ontohin/internal/db"
	"github.com/ontohin26/ontohin/internal/logging"
	"github.com/ontohin26/ontohin/internal/models"
	"github.com/ontohin26/ontohin/internal/repository"
	"github.com/ontohin26/ontohin/internal/service"
	"github.com/ontohin26/ontohin/internal/store"
	"github.com/ontohin26/ontohin/internal/store/memstore"
	"github.com/ontohin26/ontohin/internal/store/mongostore"
	"github.com/ontohin26/ontohin/internal/store/oxistore"
	"go.uber.org/zap"
)

var (
	firstNames = []string{"Rahim", "Karim", "Nusrat", "Tania", "Fahim", "Sadia", "Arif", "Mitu", "Shuvo", "Rumana", "Tanvir", "Jannat"}
	lastNames  = []string{"Uddin", "Hossain", "Ahmed", "Islam", "Chowdhury", "Rahman", "Khan", "Sarker", "Akter", "Haque"}
	sections   = []string{"A", "B", "C", "D"}
	payments   = []string{"bKash", "Nagad", "Rocket"}
)

func main() {
	submissions := flag.Int("submissions", 1000, "number of form submissions to create")
	regsPerEvent := flag.Int("registrations", 50, "registrations per event")
	flag.Parse()

	cfg := config.Load()
	logger, closeLog, err := logging.New(cfg.Env, cfg.LogLevel, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: logger: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx := context.Background()
	st, err := open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer st.Close(ctx)

	rng := rand.New(rand.NewPCG(42, 2026))
	events := service.NewEventService(repository.NewEventRepo(st), logger)
	forms := service.NewFormService(repository.NewFormRepo(st), cfg.PublicOrigin, logger)
	subs := repository.NewSubmissionRepo(st)
	regs := repository.NewRegistrationRepo(st)

	// Events and registrations
	for i, title := range []string{"পুনর্মিলনী ২০২৬", "Iftar Mahfil", "Picnic"} {
		ev, err := events.Create(ctx, &models.Event{
			Title:    title,
			Date:     fmt.Sprintf("2026-%02d-15", 3+i*3),
			Time:     "10:00",
			Location: "Dhaka",
			Status:   models.EventPublished,
			Category: "alumni",
		})
		if err != nil {
			logger.Fatal("create event", zap.Error(err))
		}
		for j := 0; j < *regsPerEvent; j++ {
			first, last := pick(rng, firstNames), pick(rng, lastNames)
			_, err := regs.Create(ctx, &models.Registration{
				EventID:   ev.ID,
				EventName: ev.Title,
				RegistrationInput: models.RegistrationInput{
					FirstName: first,
					LastName:  last,
					Email:     fmt.Sprintf("%s.%s.%d@example.com", strings.ToLower(first), strings.ToLower(last), j),
					Phone:     fmt.Sprintf("01%09d", rng.IntN(1_000_000_000)),
					Instagram: "@" + strings.ToLower(first),
					SSCBatch:  models.DefaultSSCBatch,
					Section:   pick(rng, sections),
				},
				SubmittedAt: models.Timestamp(time.Now()),
			})
			if err != nil {
				logger.Fatal("create registration", zap.Error(err))
			}
		}
	}
	logger.Info("events seeded", zap.Int("registrations_per_event", *regsPerEvent))

	// Form and submissions
	form, err := forms.Create(ctx, "রেজিস্ট্রেশন ফর্ম", "Batch reunion fee")
	if err != nil {
		logger.Fatal("create form", zap.Error(err))
	}
	form.Status = models.StatusPublished
	form.Fields = []models.Field{
		{ID: "name", Type: models.FieldShortText, Label: "Name", Required: true},
		{ID: "email", Type: models.FieldEmail, Label: "Email"},
		{ID: "guests", Type: models.FieldNumber, Label: "Guests"},
		{ID: "pay", Type: models.FieldPaymentMethod, Label: "Payment", Options: payments, Required: true},
		{ID: "txn", Type: models.FieldTransactionID, Label: "Transaction ID", Required: true},
	}
	if form, err = forms.Save(ctx, form); err != nil {
		logger.Fatal("save form", zap.Error(err))
	}

	start := time.Now()
	lastReport := start
	for i := 0; i < *submissions; i++ {
		first, last := pick(rng, firstNames), pick(rng, lastNames)
		_, err := subs.Create(ctx, &models.Submission{
			FormID:      form.ID,
			FormTitle:   form.Title,
			SubmittedAt: models.Timestamp(start.Add(-time.Duration(i) * time.Minute)),
			Data: map[string]string{
				"name":   first + " " + last,
				"email":  fmt.Sprintf("%s.%d@example.com", strings.ToLower(first), i),
				"guests": fmt.Sprint(rng.IntN(4)),
				"pay":    pick(rng, payments),
				"txn":    fmt.Sprintf("TXN%08d", rng.IntN(100_000_000)),
			},
		})
		if err != nil {
			logger.Fatal("create submission", zap.Int("seq", i), zap.Error(err))
		}
		if time.Since(lastReport) >= 2*time.Second {
			elapsed := time.Since(start)
			logger.Info("seeding submissions",
				zap.Int("done", i+1),
				zap.Int("total", *submissions),
				zap.Float64("docs_per_sec", float64(i+1)/elapsed.Seconds()))
			lastReport = time.Now()
		}
	}
	elapsed := time.Since(start)
	logger.Info("submissions seeded",
		zap.Int("total", *submissions),
		zap.Duration("took", elapsed),
		zap.Float64("docs_per_sec", float64(*submissions)/elapsed.Seconds()),
		zap.String("share_link", forms.ShareLink(form.ShareToken)))
}

func open(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.DocumentStore, error) {
	switch cfg.StoreBackend {
	case "oxidb":
		pool, err := db.NewPool(cfg.OxiDBHost, cfg.OxiDBPort, cfg.PoolSize, log)
		if err != nil {
			return nil, err
		}
		return oxistore.New(pool, cfg.PollInterval, log), nil
	case "mongo":
		return mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB, cfg.PollInterval, log)
	case "memory":
		log.Warn("seeding the memory backend; data is gone when this command exits")
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func pick(rng *rand.Rand, xs []string) string {
	return xs[rng.IntN(len(xs))]
}
