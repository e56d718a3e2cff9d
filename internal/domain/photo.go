package domain

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
)

// PhysicalSlot is the 3-valued storage-schema field. The persistence layer
// enforces at most one photo per (tenant, client, date, slot); the slot is a
// storage artifact, not the semantic category.
type PhysicalSlot string

const (
	SlotFront PhysicalSlot = "front"
	SlotSide  PhysicalSlot = "side"
	SlotBack  PhysicalSlot = "back"
)

// PhotoCategory is the true semantic type of an upload.
type PhotoCategory string

const (
	CategoryProgress PhotoCategory = "progress"
	CategoryMeal     PhotoCategory = "meal"
	CategoryWorkout  PhotoCategory = "workout"
	CategoryVictory  PhotoCategory = "victory"
)

// MaxNonProgressPerDay is the representable ceiling for meal/workout/victory
// photos on a single day. The third and every later non-progress photo all
// map to the back slot, so a fourth collides at write time. Raising this
// requires widening the physical slot enumeration in the schema.
const MaxNonProgressPerDay = 3

var (
	ErrPhotoNotFound   = errors.New("photo not found")
	ErrInvalidCategory = errors.New("invalid photo category")
	ErrInvalidSubtype  = errors.New("progress subtype must be front or side")
	// ErrSlotTaken indicates the computed physical slot is already occupied
	// for the client and day.
	ErrSlotTaken = errors.New("physical slot already taken for this day")
)

// PhotoMetadata is the sidecar carrying category-specific detail. The
// physical schema only models the slot, so the domain truth rides here.
type PhotoMetadata struct {
	MealType string
	Exercise string
	Rating   int
}

// ProgressPhoto is one uploaded image plus its paired storage object.
type ProgressPhoto struct {
	ID            string
	TenantID      string
	ClientID      string
	Date          time.Time
	PhysicalSlot  PhysicalSlot
	Category      PhotoCategory
	IsFridayPhoto bool
	ObjectKey     string
	URL           string
	ContentType   string
	SizeBytes     int64
	Metadata      PhotoMetadata
	CreatedAt     time.Time
}

// DisplayCategory returns the category to present to callers, re-derived
// from metadata and never from the physical slot.
func (p ProgressPhoto) DisplayCategory() PhotoCategory {
	return p.Category
}

// DisplayType returns the slot for progress photos, where it doubles as the
// meaningful front/side subtype, and the category for everything else.
func (p ProgressPhoto) DisplayType() string {
	if p.Category == CategoryProgress {
		return string(p.PhysicalSlot)
	}
	return string(p.Category)
}

// PhotoCursor is the keyset position for paginated photo history.
type PhotoCursor struct {
	Date      time.Time
	CreatedAt time.Time
	ID        string
}

// PhotoRepository captures persistence operations for photos.
type PhotoRepository interface {
	Create(ctx context.Context, photo ProgressPhoto) error
	Get(ctx context.Context, tenantID, photoID string) (*ProgressPhoto, error)
	Delete(ctx context.Context, tenantID, photoID string) error
	// ListByDate returns all photos for one calendar day, oldest first.
	ListByDate(ctx context.Context, tenantID, clientID string, date time.Time) ([]ProgressPhoto, error)
	// ListSince returns photos with date >= since, newest first.
	ListSince(ctx context.Context, tenantID, clientID string, since time.Time) ([]ProgressPhoto, error)
	// ListRecent pages through history ordered by date desc, created_at desc.
	ListRecent(ctx context.Context, tenantID, clientID string, cursor *PhotoCursor, limit int) ([]ProgressPhoto, *PhotoCursor, error)
	// ListFridayPhotos returns every Friday progress photo ever recorded.
	ListFridayPhotos(ctx context.Context, tenantID, clientID string) ([]ProgressPhoto, error)
}

// ObjectStore is the boundary to the photo blob storage.
type ObjectStore interface {
	// Put writes the object and returns its public URL.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, keys ...string) error
}

// AssignSlot maps a semantic category onto the physical slot enumeration.
// Progress photos carry their subtype directly; other categories rotate by
// same-day upload position: first front, second side, third and beyond back.
func AssignSlot(category PhotoCategory, subtype PhysicalSlot, storedNonProgress int) (PhysicalSlot, error) {
	if category == CategoryProgress {
		if subtype != SlotFront && subtype != SlotSide {
			return "", ErrInvalidSubtype
		}
		return subtype, nil
	}
	switch storedNonProgress {
	case 0:
		return SlotFront, nil
	case 1:
		return SlotSide, nil
	default:
		return SlotBack, nil
	}
}

// PhotoService implements photo uploads, slot assignment, and the
// aggregations consumed by dashboards and the challenge calculator.
type PhotoService struct {
	repo   PhotoRepository
	store  ObjectStore
	now    func() time.Time
	logger *log.Logger
}

// PhotoOption configures optional behaviour for the PhotoService.
type PhotoOption func(*PhotoService)

// WithPhotoClock overrides the clock, primarily for tests.
func WithPhotoClock(now func() time.Time) PhotoOption {
	return func(s *PhotoService) {
		s.now = now
	}
}

// WithPhotoLogger overrides the logger used to report tolerated failures.
func WithPhotoLogger(logger *log.Logger) PhotoOption {
	return func(s *PhotoService) {
		s.logger = logger
	}
}

// NewPhotoService constructs a PhotoService.
func NewPhotoService(repo PhotoRepository, store ObjectStore, opts ...PhotoOption) *PhotoService {
	s := &PhotoService{
		repo:   repo,
		store:  store,
		now:    time.Now,
		logger: log.New(log.Writer(), "[photos] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UploadPhotoInput captures the payload for a photo upload.
type UploadPhotoInput struct {
	TenantID    string
	ClientID    string
	Category    PhotoCategory
	Subtype     PhysicalSlot
	ContentType string
	Data        []byte
	Metadata    PhotoMetadata
	// Date defaults to today when zero.
	Date time.Time
}

// UploadPhoto stores the binary first and the database row second. When the
// row write fails the just-written object is removed again, so a failed
// upload leaves neither an orphaned blob nor an orphaned row.
//
// Slot assignment reads the current same-day count and then writes without
// a lock; two concurrent uploads can compute the same slot and the second
// write fails on the slot uniqueness key.
func (s *PhotoService) UploadPhoto(ctx context.Context, input UploadPhotoInput) (*ProgressPhoto, error) {
	if len(input.Data) == 0 {
		return nil, errors.New("photo data is empty")
	}
	switch input.Category {
	case CategoryProgress, CategoryMeal, CategoryWorkout, CategoryVictory:
	default:
		return nil, ErrInvalidCategory
	}

	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	day := DayOf(date)

	storedNonProgress := 0
	if input.Category != CategoryProgress {
		existing, err := s.repo.ListByDate(ctx, input.TenantID, input.ClientID, day)
		if err != nil {
			return nil, err
		}
		for _, p := range existing {
			if p.Category != CategoryProgress {
				storedNonProgress++
			}
		}
	}

	slot, err := AssignSlot(input.Category, input.Subtype, storedNonProgress)
	if err != nil {
		return nil, err
	}

	photo := ProgressPhoto{
		ID:            uuid.NewString(),
		TenantID:      input.TenantID,
		ClientID:      input.ClientID,
		Date:          day,
		PhysicalSlot:  slot,
		Category:      input.Category,
		IsFridayPhoto: input.Category == CategoryProgress && IsFriday(day),
		ObjectKey:     storageKey(input.TenantID, input.ClientID, day, photoFileName(input.ContentType)),
		ContentType:   input.ContentType,
		SizeBytes:     int64(len(input.Data)),
		Metadata:      input.Metadata,
		CreatedAt:     s.now().UTC(),
	}

	url, err := s.store.Put(ctx, photo.ObjectKey, input.Data, input.ContentType)
	if err != nil {
		return nil, fmt.Errorf("storage put: %w", err)
	}
	photo.URL = url

	if err := s.repo.Create(ctx, photo); err != nil {
		// Compensating cleanup, not a transaction: drop the blob so the
		// failed row write leaves nothing behind.
		if removeErr := s.store.Remove(ctx, photo.ObjectKey); removeErr != nil {
			s.logger.Printf("orphaned object cleanup failed (key=%s): %v", photo.ObjectKey, removeErr)
		}
		return nil, err
	}

	return &photo, nil
}

// DeletePhoto removes the storage object and then the row. A storage
// failure is logged and tolerated so the user-visible delete still lands.
func (s *PhotoService) DeletePhoto(ctx context.Context, tenantID, photoID string) error {
	photo, err := s.repo.Get(ctx, tenantID, photoID)
	if err != nil {
		return err
	}
	if photo == nil {
		return ErrPhotoNotFound
	}

	if err := s.store.Remove(ctx, photo.ObjectKey); err != nil {
		s.logger.Printf("storage remove failed, deleting row anyway (key=%s): %v", photo.ObjectKey, err)
	}

	return s.repo.Delete(ctx, tenantID, photoID)
}

// TodayPhotos buckets one day's photos by semantic category.
type TodayPhotos struct {
	Date              time.Time
	ByCategory        map[PhotoCategory][]ProgressPhoto
	HasCompleteFriday bool
}

// GetTodayPhotos fetches today's photos and reports whether the front+side
// progress pair is complete.
func (s *PhotoService) GetTodayPhotos(ctx context.Context, tenantID, clientID string) (TodayPhotos, error) {
	day := DayOf(s.now())
	photos, err := s.repo.ListByDate(ctx, tenantID, clientID, day)
	if err != nil {
		return TodayPhotos{}, err
	}

	out := TodayPhotos{Date: day, ByCategory: make(map[PhotoCategory][]ProgressPhoto)}
	for _, p := range photos {
		out.ByCategory[p.Category] = append(out.ByCategory[p.Category], p)
	}
	out.HasCompleteFriday = hasCompletePair(photos)
	return out, nil
}

// hasCompletePair reports whether both the front and the side progress
// photo are present in the given set.
func hasCompletePair(photos []ProgressPhoto) bool {
	var front, side bool
	for _, p := range photos {
		if p.Category != CategoryProgress {
			continue
		}
		switch p.PhysicalSlot {
		case SlotFront:
			front = true
		case SlotSide:
			side = true
		}
	}
	return front && side
}

// PhotoDayGroup is one calendar day's photos within a recent-history page.
type PhotoDayGroup struct {
	Date   time.Time
	Photos []ProgressPhoto
}

// GetRecentPhotos pages through the client's photo history grouped by day,
// newest day first.
func (s *PhotoService) GetRecentPhotos(ctx context.Context, tenantID, clientID string, cursor *PhotoCursor, limit int) ([]PhotoDayGroup, *PhotoCursor, error) {
	photos, next, err := s.repo.ListRecent(ctx, tenantID, clientID, cursor, limit)
	if err != nil {
		return nil, nil, err
	}

	groups := make([]PhotoDayGroup, 0, len(photos))
	for _, p := range photos {
		if n := len(groups); n > 0 && groups[n-1].Date.Equal(p.Date) {
			groups[n-1].Photos = append(groups[n-1].Photos, p)
			continue
		}
		groups = append(groups, PhotoDayGroup{Date: p.Date, Photos: []ProgressPhoto{p}})
	}
	return groups, next, nil
}

// WeeklyPhotoStats summarizes the trailing 7 days of uploads.
type WeeklyPhotoStats struct {
	Total      int
	ByCategory map[PhotoCategory]int
	ActiveDays int
	// DailyAverage divides by 7 unconditionally, even for clients with
	// fewer than 7 days of history.
	DailyAverage int
}

// GetWeeklyStats computes upload counts over the trailing 7 days.
func (s *PhotoService) GetWeeklyStats(ctx context.Context, tenantID, clientID string) (WeeklyPhotoStats, error) {
	since := DayOf(s.now()).AddDate(0, 0, -6)
	photos, err := s.repo.ListSince(ctx, tenantID, clientID, since)
	if err != nil {
		return WeeklyPhotoStats{}, err
	}

	stats := WeeklyPhotoStats{ByCategory: make(map[PhotoCategory]int)}
	days := make(map[time.Time]struct{})
	for _, p := range photos {
		stats.Total++
		stats.ByCategory[p.Category]++
		days[DayOf(p.Date)] = struct{}{}
	}
	stats.ActiveDays = len(days)
	stats.DailyAverage = int(math.Round(float64(stats.Total) / 7))
	return stats, nil
}

// storageKey builds a date-partitioned object key for an upload.
func storageKey(tenantID, clientID string, day time.Time, fileName string) string {
	return fmt.Sprintf("progress/%s/%s/%s/%s", tenantID, clientID, day.Format("2006/01/02"), fileName)
}

func photoFileName(contentType string) string {
	ext := ".jpg"
	switch contentType {
	case "image/png":
		ext = ".png"
	case "image/webp":
		ext = ".webp"
	case "image/heic":
		ext = ".heic"
	}
	return uuid.NewString() + ext
}
