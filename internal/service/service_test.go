package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ontohin26/ontohin/internal/auth"
	"github.com/ontohin26/ontohin/internal/export"
	"github.com/ontohin26/ontohin/internal/metrics"
	"github.com/ontohin26/ontohin/internal/models"
	"github.com/ontohin26/ontohin/internal/repository"
	"github.com/ontohin26/ontohin/internal/store"
	"github.com/ontohin26/ontohin/internal/store/memstore"
	"github.com/ontohin26/ontohin/internal/task"
	"go.uber.org/zap"
)

type sentPayload struct {
	url     string
	payload export.Payload
}

type fakeExporter struct {
	mu   sync.Mutex
	sent []sentPayload
	err  error
}

func (f *fakeExporter) Send(_ context.Context, url string, p export.Payload) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentPayload{url: url, payload: p})
	return 128, f.err
}

func (f *fakeExporter) calls() []sentPayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentPayload(nil), f.sent...)
}

// failingStore rejects every insert.
type failingStore struct {
	store.DocumentStore
}

func (failingStore) Insert(context.Context, string, store.Document) (string, error) {
	return "", errors.New("store unavailable")
}

type fixture struct {
	store    store.DocumentStore
	forms    *FormService
	pipeline *SubmissionService
	inbox    *InboxService
	exporter *fakeExporter
	runner   *task.Runner
	metrics  *metrics.Collector
}

func newFixture(t *testing.T, s store.DocumentStore) *fixture {
	t.Helper()
	log := zap.NewNop()
	formRepo := repository.NewFormRepo(s)
	subRepo := repository.NewSubmissionRepo(s)
	exp := &fakeExporter{}
	runner := task.NewRunner(log, time.Second)
	mc := metrics.NewCollector()
	return &fixture{
		store:    s,
		forms:    NewFormService(formRepo, "https://ontohin.org/", log),
		pipeline: NewSubmissionService(subRepo, exp, runner, mc, log),
		inbox:    NewInboxService(subRepo, formRepo, log),
		exporter: exp,
		runner:   runner,
		metrics:  mc,
	}
}

func (f *fixture) wait(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := f.runner.Wait(ctx); err != nil {
		t.Fatalf("background tasks did not finish: %v", err)
	}
}

func TestCreateFormDefaults(t *testing.T) {
	fx := newFixture(t, memstore.New())
	ctx := context.Background()

	form, err := fx.forms.Create(ctx, "  ", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if form.ID == "" || form.Title != models.DefaultFormTitle || form.Status != models.StatusDraft {
		t.Fatalf("unexpected new form %+v", form)
	}
	if form.ShareToken == "" {
		t.Fatal("new forms must carry a share token")
	}
}

func TestSavePreservesCreatedAtAndToken(t *testing.T) {
	fx := newFixture(t, memstore.New())
	ctx := context.Background()
	form, _ := fx.forms.Create(ctx, "RSVP", "")

	edited := *form
	edited.ShareToken = "forged"
	edited.CreatedAt = "1999-01-01T00:00:00.000Z"
	edited.Status = models.StatusPublished
	edited.Fields = []models.Field{{ID: "f1", Type: models.FieldShortText, Label: "Name"}}
	saved, err := fx.forms.Save(ctx, &edited)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ShareToken != form.ShareToken || saved.CreatedAt != form.CreatedAt {
		t.Fatalf("save overwrote immutable fields: %+v", saved)
	}

	got, _ := fx.forms.Get(ctx, form.ID)
	if got.Status != models.StatusPublished || len(got.Fields) != 1 {
		t.Fatalf("save not persisted: %+v", got)
	}

	bad := *got
	bad.Fields = append(bad.Fields, models.Field{ID: "f1", Type: models.FieldEmail})
	if _, err := fx.forms.Save(ctx, &bad); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("duplicate field id must be rejected, got %v", err)
	}

	ghost := models.Form{ID: "missing", Status: models.StatusDraft}
	if _, err := fx.forms.Save(ctx, &ghost); !errors.Is(err, ErrFormNotFound) {
		t.Fatalf("expected ErrFormNotFound, got %v", err)
	}
}

func TestEnsureShareTokenIsStable(t *testing.T) {
	fx := newFixture(t, memstore.New())
	ctx := context.Background()

	id, err := repository.NewFormRepo(fx.store).Create(ctx, &models.Form{Title: "Old", Status: models.StatusDraft, Fields: []models.Field{}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := fx.forms.EnsureShareToken(ctx, id)
	if err != nil || first == "" {
		t.Fatalf("ensure: %q, %v", first, err)
	}
	for i := 0; i < 3; i++ {
		again, err := fx.forms.EnsureShareToken(ctx, id)
		if err != nil || again != first {
			t.Fatalf("token changed on call %d: %q -> %q (%v)", i, first, again, err)
		}
	}

	resolved, err := fx.forms.GetByShareToken(ctx, first)
	if err != nil || resolved.ID != id {
		t.Fatalf("persisted token does not resolve: %v, %v", resolved, err)
	}

	info, _ := fx.forms.Share(ctx, id)
	if info.Link != "https://ontohin.org/#/form/"+first {
		t.Fatalf("unexpected share link %q", info.Link)
	}
}

func TestGetByShareTokenUnknown(t *testing.T) {
	fx := newFixture(t, memstore.New())
	for _, tok := range []string{"", "nope"} {
		if _, err := fx.forms.GetByShareToken(context.Background(), tok); !errors.Is(err, ErrFormNotFound) {
			t.Errorf("token %q: expected ErrFormNotFound, got %v", tok, err)
		}
	}
}

func TestFieldEditing(t *testing.T) {
	fx := newFixture(t, memstore.New())
	ctx := context.Background()
	form, _ := fx.forms.Create(ctx, "RSVP", "")

	_, name, err := fx.forms.AddField(ctx, form.ID, models.FieldShortText)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	_, pay, _ := fx.forms.AddField(ctx, form.ID, models.FieldPaymentMethod)
	if _, _, err := fx.forms.AddField(ctx, form.ID, "date"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown type must be rejected, got %v", err)
	}

	label := "Name"
	if _, err := fx.forms.UpdateField(ctx, form.ID, name.ID, models.FieldPatch{Label: &label}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := fx.forms.MoveField(ctx, form.ID, pay.ID, 0); err != nil {
		t.Fatalf("move: %v", err)
	}

	got, _ := fx.forms.Get(ctx, form.ID)
	if len(got.Fields) != 2 || got.Fields[0].ID != pay.ID || got.Fields[1].Label != "Name" {
		t.Fatalf("unexpected fields %+v", got.Fields)
	}

	if _, err := fx.forms.RemoveField(ctx, form.ID, pay.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, _ = fx.forms.Get(ctx, form.ID)
	if len(got.Fields) != 1 || got.Fields[0].ID != name.ID {
		t.Fatalf("remove not persisted: %+v", got.Fields)
	}

	if _, err := fx.forms.RemoveField(ctx, "missing", name.ID); !errors.Is(err, ErrFormNotFound) {
		t.Fatalf("expected ErrFormNotFound, got %v", err)
	}
}

func exportingForm() *models.Form {
	return &models.Form{
		ID:     "form-1",
		Title:  "Newsletter",
		Status: models.StatusPublished,
		Fields: []models.Field{
			{ID: "d", Type: models.FieldDescription, Label: "Intro"},
			{ID: "f2", Type: models.FieldEmail, Label: "Email"},
		},
		GoogleIntegration: &models.GoogleIntegration{Enabled: true, ScriptURL: "https://x"},
	}
}

func TestSubmitExportsByLabel(t *testing.T) {
	fx := newFixture(t, memstore.New())
	ctx := context.Background()
	form := exportingForm()

	sub := &models.Submission{FormID: form.ID, FormTitle: form.Title, SubmittedAt: "2026-01-01T00:00:00.000Z", Data: map[string]string{"f2": "a@b.com"}}
	id, err := fx.pipeline.Submit(ctx, form, sub, nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	fx.wait(t)

	stored, _ := repository.NewSubmissionRepo(fx.store).FindByID(ctx, id)
	if stored == nil || len(stored.Data) != 1 || stored.Data["f2"] != "a@b.com" {
		t.Fatalf("unexpected stored submission %+v", stored)
	}

	calls := fx.exporter.calls()
	if len(calls) != 1 {
		t.Fatalf("expected one export, got %d", len(calls))
	}
	if calls[0].url != "https://x" {
		t.Errorf("exported to %q", calls[0].url)
	}
	fd := calls[0].payload.FormData
	if len(fd) != 1 || fd["Email"] != "a@b.com" {
		t.Errorf("formData must be keyed by label: %v", fd)
	}
	if fx.metrics.Total(metrics.ExportsSent) != 1 || fx.metrics.Total(metrics.SubmissionsPersisted) != 1 {
		t.Errorf("metrics not recorded: %+v", fx.metrics.Snapshot().Counters)
	}
}

func TestSubmitWithoutIntegrationSkipsExport(t *testing.T) {
	fx := newFixture(t, memstore.New())
	form := exportingForm()
	form.GoogleIntegration.Enabled = false

	if _, err := fx.pipeline.Submit(context.Background(), form, &models.Submission{FormID: form.ID, Data: map[string]string{}}, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	fx.wait(t)
	if n := len(fx.exporter.calls()); n != 0 {
		t.Fatalf("expected no export, got %d", n)
	}
}

func TestPersistFailureSkipsExport(t *testing.T) {
	fx := newFixture(t, failingStore{memstore.New()})
	form := exportingForm()

	_, err := fx.pipeline.Submit(context.Background(), form, &models.Submission{FormID: form.ID, Data: map[string]string{"f2": "a@b.com"}}, nil)
	if err == nil {
		t.Fatal("expected the persistence error")
	}
	fx.wait(t)
	if n := len(fx.exporter.calls()); n != 0 {
		t.Fatalf("export attempted after failed write: %d calls", n)
	}
	if fx.metrics.Total(metrics.SubmissionsFailed) != 1 {
		t.Error("failure not counted")
	}
}

func TestExportFailureIsNotReturned(t *testing.T) {
	fx := newFixture(t, memstore.New())
	fx.exporter.err = errors.New("webhook down")
	form := exportingForm()

	id, err := fx.pipeline.Submit(context.Background(), form, &models.Submission{FormID: form.ID, Data: map[string]string{"f2": "a@b.com"}}, nil)
	if err != nil || id == "" {
		t.Fatalf("export failure leaked into submit: %q, %v", id, err)
	}
	fx.wait(t)
	if fx.metrics.Total(metrics.ExportsFailed) != 1 {
		t.Error("export failure not counted")
	}
}

func TestInboxKeepsSubmissionsOfDeletedForms(t *testing.T) {
	fx := newFixture(t, memstore.New())
	ctx := context.Background()

	form, _ := fx.forms.Create(ctx, "RSVP", "")
	form.Fields = []models.Field{{ID: "f1", Type: models.FieldShortText, Label: "Name"}}
	if _, err := fx.forms.Save(ctx, form); err != nil {
		t.Fatalf("save: %v", err)
	}
	sub := &models.Submission{FormID: form.ID, FormTitle: "RSVP", SubmittedAt: "2026-01-01T00:00:00.000Z", Data: map[string]string{"f1": "Rahim"}}
	if _, err := fx.pipeline.Submit(ctx, form, sub, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := fx.forms.Delete(ctx, form.ID); err != nil {
		t.Fatalf("delete form: %v", err)
	}

	list, err := fx.inbox.List(ctx, InboxQuery{FormID: "all"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Title != "RSVP" {
		t.Fatalf("orphaned submission lost: %+v", list)
	}
	if a := list[0].Answers; len(a) != 1 || a[0].Label != "f1" || a[0].Value != "Rahim" {
		t.Fatalf("orphan answers should fall back to raw keys: %+v", a)
	}

	if err := fx.inbox.Delete(ctx, list[0].ID); err != nil {
		t.Fatalf("delete submission: %v", err)
	}
	if err := fx.inbox.Delete(ctx, list[0].ID); !errors.Is(err, ErrSubmissionNotFound) {
		t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
	}
}

func TestInboxFilters(t *testing.T) {
	fx := newFixture(t, memstore.New())
	ctx := context.Background()
	subs := repository.NewSubmissionRepo(fx.store)

	for _, s := range []models.Submission{
		{FormID: "a", FormTitle: "A", SubmittedAt: "2026-01-01T00:00:00.000Z", Data: map[string]string{"f1": "Rahim Uddin"}},
		{FormID: "a", FormTitle: "A", SubmittedAt: "2026-01-02T00:00:00.000Z", Data: map[string]string{"f1": "Karim"}},
		{FormID: "b", FormTitle: "B", SubmittedAt: "2026-01-03T00:00:00.000Z", Data: map[string]string{"f1": "rahim@x.com"}},
	} {
		subs.Create(ctx, &s)
	}

	tests := []struct {
		name string
		q    InboxQuery
		want int
	}{
		{"everything", InboxQuery{}, 3},
		{"all keyword", InboxQuery{FormID: "all"}, 3},
		{"one form", InboxQuery{FormID: "a"}, 2},
		{"term across forms", InboxQuery{Term: "RAHIM"}, 2},
		{"term and form", InboxQuery{FormID: "a", Term: "rahim"}, 1},
		{"no match", InboxQuery{Term: "zzz"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fx.inbox.List(ctx, tt.q)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("got %d submissions, want %d", len(got), tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	form := &models.Form{
		Title: "Current title",
		Fields: []models.Field{
			{ID: "d", Type: models.FieldDescription, Label: "Intro"},
			{ID: "b", Type: models.FieldShortText, Label: "Second"},
			{ID: "a", Type: models.FieldShortText, Label: "First"},
		},
	}
	sub := models.Submission{Data: map[string]string{"a": "1", "b": "2", "z": "9", "old": "8"}}

	d := Resolve(sub, form)
	if d.Title != "Current title" {
		t.Errorf("title fallback to form: %q", d.Title)
	}
	want := []models.ResolvedAnswer{
		{FieldID: "b", Label: "Second", Value: "2"},
		{FieldID: "a", Label: "First", Value: "1"},
		{FieldID: "old", Label: "old", Value: "8"},
		{FieldID: "z", Label: "z", Value: "9"},
	}
	if len(d.Answers) != len(want) {
		t.Fatalf("got %+v", d.Answers)
	}
	for i := range want {
		if d.Answers[i] != want[i] {
			t.Errorf("answer %d = %+v, want %+v", i, d.Answers[i], want[i])
		}
	}

	if got := Resolve(models.Submission{}, nil); got.Title != UnknownFormTitle || len(got.Answers) != 0 {
		t.Errorf("unexpected fallback detail %+v", got)
	}
	if got := Resolve(models.Submission{FormTitle: "Snapshot"}, form); got.Title != "Snapshot" {
		t.Errorf("snapshot title must win, got %q", got.Title)
	}
}

func TestRegistration(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	events := NewEventService(repository.NewEventRepo(s), zap.NewNop())
	mc := metrics.NewCollector()
	regs := NewRegistrationService(repository.NewRegistrationRepo(s), repository.NewEventRepo(s), mc, zap.NewNop())

	ev, err := events.Create(ctx, &models.Event{Title: "Reunion", Date: "2026-12-01", Status: models.EventPublished})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	in := models.RegistrationInput{FirstName: "Rahim", LastName: "Uddin", Email: "r@x.com", Phone: "017", Instagram: "@rahim"}
	reg, err := regs.Register(ctx, ev.ID, in)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.EventName != "Reunion" || reg.SSCBatch != models.DefaultSSCBatch || reg.SubmittedAt == "" {
		t.Fatalf("unexpected registration %+v", reg)
	}

	missing := in
	missing.Instagram = "  "
	if _, err := regs.Register(ctx, ev.ID, missing); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := regs.Register(ctx, "nope", in); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}

	if err := events.Delete(ctx, ev.ID); err != nil {
		t.Fatalf("delete event: %v", err)
	}
	list, _ := regs.List(ctx, "reunion")
	if len(list) != 1 || list[0].EventName != "Reunion" {
		t.Fatalf("registration must outlive its event: %+v", list)
	}
	if list, _ := regs.List(ctx, "karim"); len(list) != 0 {
		t.Fatalf("unexpected match %+v", list)
	}
	if mc.Total(metrics.RegistrationsCreated) != 1 {
		t.Error("registration not counted")
	}
}

func TestEventValidation(t *testing.T) {
	events := NewEventService(repository.NewEventRepo(memstore.New()), zap.NewNop())
	ctx := context.Background()

	if _, err := events.Create(ctx, &models.Event{Title: " "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank title: %v", err)
	}
	if _, err := events.Create(ctx, &models.Event{Title: "x", Status: "Live"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad status: %v", err)
	}
	ev, err := events.Create(ctx, &models.Event{Title: "x"})
	if err != nil || ev.Status != models.EventDraft {
		t.Fatalf("default status: %+v, %v", ev, err)
	}
	if _, err := events.Update(ctx, "missing", &models.Event{Title: "x"}); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(repository.NewUserRepo(memstore.New()), auth.NewIssuer("secret", time.Hour), zap.NewNop())

	if err := svc.SeedAdmin(ctx, " Admin@Ontohin.org ", "hunter22"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.SeedAdmin(ctx, "admin@ontohin.org", "other"); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	res, err := svc.Login(ctx, "admin@ontohin.org", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token == "" || res.User.Role != models.RoleAdmin {
		t.Fatalf("unexpected result %+v", res)
	}
	me, err := svc.Me(ctx, res.User.ID)
	if err != nil || me.Email != "admin@ontohin.org" {
		t.Fatalf("me: %+v, %v", me, err)
	}

	if _, err := svc.Login(ctx, "admin@ontohin.org", "other"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("reseeding must not change the password: %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@ontohin.org", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestDashboardSummary(t *testing.T) {
	fx := newFixture(t, memstore.New())
	ctx := context.Background()
	form, _ := fx.forms.Create(ctx, "RSVP", "")
	fx.forms.AddField(ctx, form.ID, models.FieldShortText)
	fx.pipeline.Submit(ctx, form, &models.Submission{FormID: form.ID, Data: map[string]string{}}, nil)
	fx.pipeline.Submit(ctx, form, &models.Submission{FormID: "gone", Data: map[string]string{}}, nil)

	dash := NewDashboardService(
		repository.NewFormRepo(fx.store),
		repository.NewSubmissionRepo(fx.store),
		repository.NewEventRepo(fx.store),
		repository.NewRegistrationRepo(fx.store),
		fx.metrics,
	)
	d, err := dash.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if d.FormCount != 1 || d.SubmissionCount != 2 || len(d.Forms) != 1 {
		t.Fatalf("unexpected summary %+v", d)
	}
	if st := d.Forms[0]; st.SubmissionCount != 1 || st.FieldCount != 1 {
		t.Fatalf("unexpected form stat %+v", st)
	}
	if d.Pipeline.Counters[metrics.SubmissionsPersisted]["default"] != 2 {
		t.Fatalf("pipeline counters missing: %+v", d.Pipeline.Counters)
	}
}

func TestInboxWatchFollowsFormEdits(t *testing.T) {
	fx := newFixture(t, memstore.New())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	form, _ := fx.forms.Create(ctx, "RSVP", "")
	form.Fields = []models.Field{{ID: "f1", Type: models.FieldShortText, Label: "Name"}}
	if _, err := fx.forms.Save(ctx, form); err != nil {
		t.Fatalf("save: %v", err)
	}
	sub := &models.Submission{FormID: form.ID, SubmittedAt: "2026-01-01T00:00:00.000Z", Data: map[string]string{"f1": "Rahim"}}
	if _, err := fx.pipeline.Submit(ctx, form, sub, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}

	ch, err := fx.inbox.Watch(ctx, InboxQuery{})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	firstLabel := func(list []models.SubmissionDetail) string {
		if len(list) != 1 || len(list[0].Answers) != 1 {
			return ""
		}
		return list[0].Answers[0].Label
	}
	until := func(want string) {
		t.Helper()
		deadline := time.After(2 * time.Second)
		for {
			select {
			case list, ok := <-ch:
				if !ok {
					t.Fatal("inbox stream closed")
				}
				if firstLabel(list) == want {
					return
				}
			case <-deadline:
				t.Fatalf("no snapshot with label %q", want)
			}
		}
	}
	until("Name")

	label := "Full name"
	if _, err := fx.forms.UpdateField(ctx, form.ID, "f1", models.FieldPatch{Label: &label}); err != nil {
		t.Fatalf("update field: %v", err)
	}
	until("Full name")

	if err := fx.forms.Delete(ctx, form.ID); err != nil {
		t.Fatalf("delete form: %v", err)
	}
	until("f1")
}

func TestAnnouncements(t *testing.T) {
	ctx := context.Background()
	svc := NewAnnouncementService(repository.NewAnnouncementRepo(memstore.New()), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC) }

	a, err := svc.Create(ctx, &models.Announcement{Title: " Reunion dinner "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Title != "Reunion dinner" || a.Priority != models.PriorityNormal || a.Date != "2026-03-05" {
		t.Fatalf("defaults not applied: %+v", a)
	}
	if _, err := svc.Create(ctx, &models.Announcement{Title: "Fees due", Priority: models.PriorityHigh, Date: "2026-04-01"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, &models.Announcement{Title: " "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank title err = %v", err)
	}

	all, _ := svc.List(ctx, "", "")
	if len(all) != 2 || all[0].Title != "Fees due" {
		t.Fatalf("list should be latest first: %+v", all)
	}
	if got, _ := svc.List(ctx, models.PriorityHigh, ""); len(got) != 1 {
		t.Fatalf("priority filter = %+v", got)
	}
	if got, _ := svc.List(ctx, "", "DINNER"); len(got) != 1 || got[0].ID != a.ID {
		t.Fatalf("title search = %+v", got)
	}
	if _, err := svc.List(ctx, "Urgent", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown priority err = %v", err)
	}

	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Update(ctx, a.ID, &models.Announcement{Title: "gone"}); !errors.Is(err, ErrAnnouncementNotFound) {
		t.Fatalf("update deleted err = %v", err)
	}
}

func TestGallery(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	svc := NewGalleryService(repository.NewGalleryRepo(s), repository.NewLinkRepo(s), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC) }

	item, err := svc.AddItem(ctx, &models.GalleryItem{Title: "Picnic", Category: "Event", ImageURL: "data:image/jpeg;base64,AA==", Date: "1999-01-01"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if item.Date != "2026-01-10" || item.Featured {
		t.Fatalf("new item = %+v", item)
	}
	if _, err := svc.AddItem(ctx, &models.GalleryItem{Title: "Picnic", Category: "Event"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing image err = %v", err)
	}

	for i, want := range []bool{true, false} {
		got, err := svc.ToggleFeatured(ctx, item.ID)
		if err != nil || got.Featured != want {
			t.Fatalf("toggle %d = %+v, %v", i, got, err)
		}
	}
	if _, err := svc.ToggleFeatured(ctx, "missing"); !errors.Is(err, ErrGalleryItemNotFound) {
		t.Fatalf("toggle missing err = %v", err)
	}
	if got, _ := svc.ListItems(ctx, "Campus"); len(got) != 0 {
		t.Fatalf("category filter = %+v", got)
	}

	link, err := svc.AddLink(ctx, &models.RedirectLink{Label: "Album", URL: " https://photos.example "})
	if err != nil || link.URL != "https://photos.example" {
		t.Fatalf("add link = %+v, %v", link, err)
	}
	if _, err := svc.UpdateLink(ctx, link.ID, &models.RedirectLink{Label: "Album"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("link without url err = %v", err)
	}
	if _, err := svc.UpdateLink(ctx, link.ID, &models.RedirectLink{Label: "Drive", URL: "https://drive.example"}); err != nil {
		t.Fatalf("update link: %v", err)
	}
	links, _ := svc.ListLinks(ctx)
	if len(links) != 1 || links[0].Label != "Drive" {
		t.Fatalf("links = %+v", links)
	}
}

func TestSiteSections(t *testing.T) {
	ctx := context.Background()
	svc := NewSiteService(memstore.New(), zap.NewNop())

	about, err := svc.About(ctx)
	if err != nil || about.Title != "" {
		t.Fatalf("unsaved about = %+v, %v", about, err)
	}
	saved, err := svc.SaveAbout(ctx, &models.About{Title: "About", Cards: []models.AboutCard{{Title: "Unity"}, {ID: "keep", Title: "Service"}}})
	if err != nil {
		t.Fatalf("save about: %v", err)
	}
	if saved.Cards[0].ID == "" || saved.Cards[1].ID != "keep" {
		t.Fatalf("card ids = %+v", saved.Cards)
	}

	history, err := svc.SaveHistory(ctx, &models.History{HeaderTitle: "Since 2016"})
	if err != nil || history.ContentBlocks == nil {
		t.Fatalf("save history = %+v, %v", history, err)
	}

	if _, err := svc.SaveHero(ctx, &models.Hero{Title: "Ontohin", Button: models.HeroButton{Type: "popup"}}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad button err = %v", err)
	}
	if _, err := svc.SaveFooter(ctx, &models.Footer{EstablishedYear: "2016"}); err != nil {
		t.Fatalf("save footer: %v", err)
	}

	gotAbout, _ := svc.About(ctx)
	gotFooter, _ := svc.Footer(ctx)
	gotHero, _ := svc.Hero(ctx)
	if gotAbout.Title != "About" || len(gotAbout.Cards) != 2 || gotFooter.EstablishedYear != "2016" || gotHero.Title != "" {
		t.Fatalf("sections = %+v %+v %+v", gotAbout, gotFooter, gotHero)
	}
}
