package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/ontohin26/ontohin/internal/models"
	"github.com/ontohin26/ontohin/internal/repository"
	"github.com/ontohin26/ontohin/internal/store"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type AnnouncementService struct {
	repo *repository.AnnouncementRepo
	log  *zap.Logger
	now  func() time.Time
}

func NewAnnouncementService(repo *repository.AnnouncementRepo, log *zap.Logger) *AnnouncementService {
	return &AnnouncementService{repo: repo, log: log.With(zap.String("service", "announcements")), now: time.Now}
}

// List filters by priority and by a case-insensitive match on the title.
func (s *AnnouncementService) List(ctx context.Context, priority models.Priority, term string) ([]models.Announcement, error) {
	if priority != "" && !priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, priority)
	}
	all, err := s.repo.FindAll(ctx, priority)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return all, nil
	}
	return lo.Filter(all, func(a models.Announcement, _ int) bool {
		return strings.Contains(strings.ToLower(a.Title), term)
	}), nil
}

func (s *AnnouncementService) Get(ctx context.Context, id string) (*models.Announcement, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get announcement: %w", err)
	}
	if a == nil {
		return nil, ErrAnnouncementNotFound
	}
	return a, nil
}

// Create fills in today's date and normal priority when they are missing.
func (s *AnnouncementService) Create(ctx context.Context, a *models.Announcement) (*models.Announcement, error) {
	if err := s.normalize(a); err != nil {
		return nil, err
	}
	a.ID = ""
	id, err := s.repo.Create(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("create announcement: %w", err)
	}
	a.ID = id
	s.log.Info("announcement created", zap.String("announcement_id", id), zap.String("priority", string(a.Priority)))
	return a, nil
}

func (s *AnnouncementService) Update(ctx context.Context, id string, a *models.Announcement) (*models.Announcement, error) {
	if err := s.normalize(a); err != nil {
		return nil, err
	}
	a.ID = id
	err := s.repo.Update(ctx, id, a)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAnnouncementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update announcement: %w", err)
	}
	return a, nil
}

func (s *AnnouncementService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrAnnouncementNotFound
	}
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	s.log.Info("announcement deleted", zap.String("announcement_id", id))
	return nil
}

func (s *AnnouncementService) normalize(a *models.Announcement) error {
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		return fmt.Errorf("%w: announcement title is required", ErrInvalidInput)
	}
	if a.Priority == "" {
		a.Priority = models.PriorityNormal
	}
	if !a.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, a.Priority)
	}
	if a.Date == "" {
		a.Date = s.now().Format(dateLayout)
	}
	return nil
}

// GalleryService manages gallery pictures and the redirect links shown
// beside them.
type GalleryService struct {
	items *repository.GalleryRepo
	links *repository.LinkRepo
	log   *zap.Logger
	now   func() time.Time
}

func NewGalleryService(items *repository.GalleryRepo, links *repository.LinkRepo, log *zap.Logger) *GalleryService {
	return &GalleryService{items: items, links: links, log: log.With(zap.String("service", "gallery")), now: time.Now}
}

func (s *GalleryService) ListItems(ctx context.Context, category string) ([]models.GalleryItem, error) {
	return s.items.FindAll(ctx, strings.TrimSpace(category))
}

// AddItem needs a title, an image and a category. The date is always the
// upload day.
func (s *GalleryService) AddItem(ctx context.Context, item *models.GalleryItem) (*models.GalleryItem, error) {
	item.Title = strings.TrimSpace(item.Title)
	item.Category = strings.TrimSpace(item.Category)
	if item.Title == "" || item.ImageURL == "" || item.Category == "" {
		return nil, fmt.Errorf("%w: title, image and category are required", ErrInvalidInput)
	}
	item.ID = ""
	item.Date = s.now().Format(dateLayout)
	id, err := s.items.Create(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("add gallery item: %w", err)
	}
	item.ID = id
	s.log.Info("gallery item added", zap.String("item_id", id), zap.String("category", item.Category))
	return item, nil
}

func (s *GalleryService) ToggleFeatured(ctx context.Context, id string) (*models.GalleryItem, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get gallery item: %w", err)
	}
	if item == nil {
		return nil, ErrGalleryItemNotFound
	}
	item.Featured = !item.Featured
	err = s.items.Update(ctx, id, item)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrGalleryItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update gallery item: %w", err)
	}
	item.ID = id
	return item, nil
}

func (s *GalleryService) DeleteItem(ctx context.Context, id string) error {
	err := s.items.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrGalleryItemNotFound
	}
	if err != nil {
		return fmt.Errorf("delete gallery item: %w", err)
	}
	s.log.Info("gallery item deleted", zap.String("item_id", id))
	return nil
}

// ListLinks returns the links in label order.
func (s *GalleryService) ListLinks(ctx context.Context) ([]models.RedirectLink, error) {
	return s.links.FindAll(ctx)
}

func (s *GalleryService) AddLink(ctx context.Context, l *models.RedirectLink) (*models.RedirectLink, error) {
	if err := normalizeLink(l); err != nil {
		return nil, err
	}
	l.ID = ""
	id, err := s.links.Create(ctx, l)
	if err != nil {
		return nil, fmt.Errorf("add link: %w", err)
	}
	l.ID = id
	return l, nil
}

func (s *GalleryService) UpdateLink(ctx context.Context, id string, l *models.RedirectLink) (*models.RedirectLink, error) {
	if err := normalizeLink(l); err != nil {
		return nil, err
	}
	l.ID = id
	err := s.links.Update(ctx, id, l)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update link: %w", err)
	}
	return l, nil
}

func (s *GalleryService) DeleteLink(ctx context.Context, id string) error {
	err := s.links.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrLinkNotFound
	}
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	return nil
}

func normalizeLink(l *models.RedirectLink) error {
	l.Label = strings.TrimSpace(l.Label)
	l.URL = strings.TrimSpace(l.URL)
	if l.Label == "" || l.URL == "" {
		return fmt.Errorf("%w: link label and url are required", ErrInvalidInput)
	}
	return nil
}

// SiteService reads and saves the single-document sections of the public
// site: about, history, hero and footer.
type SiteService struct {
	about   *repository.SectionRepo[models.About]
	history *repository.SectionRepo[models.History]
	hero    *repository.SectionRepo[models.Hero]
	footer  *repository.SectionRepo[models.Footer]
	log     *zap.Logger
}

func NewSiteService(s store.DocumentStore, log *zap.Logger) *SiteService {
	return &SiteService{
		about:   repository.NewSectionRepo[models.About](s, models.SectionAbout),
		history: repository.NewSectionRepo[models.History](s, models.SectionHistory),
		hero:    repository.NewSectionRepo[models.Hero](s, models.SectionHero),
		footer:  repository.NewSectionRepo[models.Footer](s, models.SectionFooter),
		log:     log.With(zap.String("service", "site")),
	}
}

// section loads a section, handing back its zero value when it was
// never saved.
func section[T any](ctx context.Context, repo *repository.SectionRepo[T], name string) (*T, error) {
	v, err := repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	if v == nil {
		v = new(T)
	}
	return v, nil
}

func (s *SiteService) saved(name string, err error) error {
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	s.log.Info("site section saved", zap.String("section", name))
	return nil
}

func (s *SiteService) About(ctx context.Context) (*models.About, error) {
	return section(ctx, s.about, models.SectionAbout)
}

// SaveAbout gives new cards an id.
func (s *SiteService) SaveAbout(ctx context.Context, a *models.About) (*models.About, error) {
	if a.Cards == nil {
		a.Cards = []models.AboutCard{}
	}
	for i := range a.Cards {
		if a.Cards[i].ID == "" {
			a.Cards[i].ID = uuid.NewString()
		}
	}
	if err := s.saved(models.SectionAbout, s.about.Put(ctx, a)); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *SiteService) History(ctx context.Context) (*models.History, error) {
	return section(ctx, s.history, models.SectionHistory)
}

// SaveHistory gives new content blocks an id.
func (s *SiteService) SaveHistory(ctx context.Context, h *models.History) (*models.History, error) {
	if h.ContentBlocks == nil {
		h.ContentBlocks = []models.HistoryBlock{}
	}
	for i := range h.ContentBlocks {
		if h.ContentBlocks[i].ID == "" {
			h.ContentBlocks[i].ID = uuid.NewString()
		}
	}
	if err := s.saved(models.SectionHistory, s.history.Put(ctx, h)); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *SiteService) Hero(ctx context.Context) (*models.Hero, error) {
	return section(ctx, s.hero, models.SectionHero)
}

// SaveHero defaults the button to scrolling within the page.
func (s *SiteService) SaveHero(ctx context.Context, h *models.Hero) (*models.Hero, error) {
	if h.Button.Type == "" {
		h.Button.Type = models.HeroScroll
	}
	if !h.Button.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown hero button type %q", ErrInvalidInput, h.Button.Type)
	}
	if err := s.saved(models.SectionHero, s.hero.Put(ctx, h)); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *SiteService) Footer(ctx context.Context) (*models.Footer, error) {
	return section(ctx, s.footer, models.SectionFooter)
}

func (s *SiteService) SaveFooter(ctx context.Context, f *models.Footer) (*models.Footer, error) {
	if err := s.saved(models.SectionFooter, s.footer.Put(ctx, f)); err != nil {
		return nil, err
	}
	return f, nil
}
