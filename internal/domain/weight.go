// Package domain defines the business logic for the progress service:
// the daily weight ledger, progress photo slot assignment, and the
// 8-week challenge compliance calculations.
package domain

import (
	"context"
	"errors"
	"math"
	"time"
)

const (
	// ChallengeTotalWeeks is the fixed length of the accountability challenge.
	ChallengeTotalWeeks = 8

	// statsWindowDays is the trailing fetch window backing weight statistics.
	statsWindowDays = 56

	// complianceWindowDays anchors the Friday weigh-in window; 55 days back
	// plus today always covers exactly eight Fridays.
	complianceWindowDays = 55
)

// ErrInvalidWeight is returned when a weight measurement is not positive.
var ErrInvalidWeight = errors.New("weight must be > 0 kg")

// WeightEntry is one client's weight measurement for one calendar day.
// At most one entry exists per (tenant, client, date); writes are upserts.
type WeightEntry struct {
	TenantID        string
	ClientID        string
	Date            time.Time
	WeightKg        float64
	IsFridayWeighIn bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// WeightStats aggregates the trailing statistics window. All fields are nil
// when the client has no history in the window.
type WeightStats struct {
	Current     *float64
	WeekChange  *float64
	MonthChange *float64
	TotalChange *float64
	Average     *float64
	Lowest      *float64
	Highest     *float64
}

// FridayCompliance reports weigh-in compliance over the trailing 8-week window.
type FridayCompliance struct {
	TotalFridays     int
	CompletedFridays int
	MissingFridays   []time.Time
	Percentage       int
	IsCompliant      bool
}

// WeightRepository captures persistence operations for the weight ledger.
type WeightRepository interface {
	UpsertEntry(ctx context.Context, entry WeightEntry) error
	GetEntry(ctx context.Context, tenantID, clientID string, date time.Time) (*WeightEntry, error)
	// ListEntriesSince returns entries with date >= since, newest first.
	ListEntriesSince(ctx context.Context, tenantID, clientID string, since time.Time) ([]WeightEntry, error)
	// ListFridayEntriesBetween returns Friday weigh-ins with from <= date <= to.
	ListFridayEntriesBetween(ctx context.Context, tenantID, clientID string, from, to time.Time) ([]WeightEntry, error)
	DeleteEntry(ctx context.Context, tenantID, clientID string, date time.Time) error
}

// WeightService implements the daily weight ledger and its derived statistics.
type WeightService struct {
	repo WeightRepository
	now  func() time.Time
}

// WeightOption configures optional behaviour for the WeightService.
type WeightOption func(*WeightService)

// WithWeightClock overrides the clock, primarily for tests.
func WithWeightClock(now func() time.Time) WeightOption {
	return func(s *WeightService) {
		s.now = now
	}
}

// NewWeightService constructs a WeightService.
func NewWeightService(repo WeightRepository, opts ...WeightOption) *WeightService {
	s := &WeightService{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveWeightInput captures the payload for a weight save.
type SaveWeightInput struct {
	TenantID string
	ClientID string
	WeightKg float64
	// Date defaults to today when zero.
	Date time.Time
}

// SaveWeight upserts the entry for (client, date) and returns the stored
// record. The second call for the same day wins over the first.
func (s *WeightService) SaveWeight(ctx context.Context, input SaveWeightInput) (*WeightEntry, error) {
	if input.WeightKg <= 0 {
		return nil, ErrInvalidWeight
	}

	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	day := DayOf(date)

	now := s.now().UTC()
	entry := WeightEntry{
		TenantID:        input.TenantID,
		ClientID:        input.ClientID,
		Date:            day,
		WeightKg:        input.WeightKg,
		IsFridayWeighIn: IsFriday(day),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.UpsertEntry(ctx, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetWeightHistory returns all entries with date >= today - days, newest
// first. An empty window yields an empty slice, never an error.
func (s *WeightService) GetWeightHistory(ctx context.Context, tenantID, clientID string, days int) ([]WeightEntry, error) {
	since := DayOf(s.now()).AddDate(0, 0, -days)
	return s.repo.ListEntriesSince(ctx, tenantID, clientID, since)
}

// GetTodayEntry returns the entry for today's date, or nil when the client
// has not weighed in yet.
func (s *WeightService) GetTodayEntry(ctx context.Context, tenantID, clientID string) (*WeightEntry, error) {
	return s.repo.GetEntry(ctx, tenantID, clientID, DayOf(s.now()))
}

// DeleteEntry removes the entry for the given calendar day.
func (s *WeightService) DeleteEntry(ctx context.Context, tenantID, clientID string, date time.Time) error {
	return s.repo.DeleteEntry(ctx, tenantID, clientID, DayOf(date))
}

// GetWeightStats derives statistics from the trailing 56-day window.
//
// Week and month deltas use a nearest-at-or-before rule: scanning newest to
// oldest, the first entry whose date is at or before the boundary is the
// comparison point. An entry from 10 days ago serves the 7-day delta when
// nothing exists between day 7 and day 10.
func (s *WeightService) GetWeightStats(ctx context.Context, tenantID, clientID string) (WeightStats, error) {
	today := DayOf(s.now())
	history, err := s.repo.ListEntriesSince(ctx, tenantID, clientID, today.AddDate(0, 0, -statsWindowDays))
	if err != nil {
		return WeightStats{}, err
	}
	if len(history) == 0 {
		return WeightStats{}, nil
	}

	current := history[0].WeightKg
	oldest := history[len(history)-1].WeightKg

	sum, lowest, highest := 0.0, history[0].WeightKg, history[0].WeightKg
	for _, e := range history {
		sum += e.WeightKg
		if e.WeightKg < lowest {
			lowest = e.WeightKg
		}
		if e.WeightKg > highest {
			highest = e.WeightKg
		}
	}
	average := sum / float64(len(history))
	total := current - oldest

	stats := WeightStats{
		Current:     &current,
		TotalChange: &total,
		Average:     &average,
		Lowest:      &lowest,
		Highest:     &highest,
	}

	if ref := firstAtOrBefore(history, today.AddDate(0, 0, -7)); ref != nil {
		change := current - ref.WeightKg
		stats.WeekChange = &change
	}
	if ref := firstAtOrBefore(history, today.AddDate(0, 0, -30)); ref != nil {
		change := current - ref.WeightKg
		stats.MonthChange = &change
	}
	return stats, nil
}

// firstAtOrBefore finds the first entry, scanning newest to oldest, whose
// date is at or before the boundary day.
func firstAtOrBefore(newestFirst []WeightEntry, boundary time.Time) *WeightEntry {
	for i := range newestFirst {
		if !newestFirst[i].Date.After(boundary) {
			return &newestFirst[i]
		}
	}
	return nil
}

// GetFridayCompliance computes weigh-in compliance over the trailing
// 55-day window anchored to today.
//
// TotalFridays is capped at the 8-week goal, but the percentage denominator
// stays fixed at 8: a client cannot reach 100% before eight real Fridays
// have occurred.
func (s *WeightService) GetFridayCompliance(ctx context.Context, tenantID, clientID string) (FridayCompliance, error) {
	today := DayOf(s.now())
	from := today.AddDate(0, 0, -complianceWindowDays)

	expected := FridaysBetween(from, today)
	entries, err := s.repo.ListFridayEntriesBetween(ctx, tenantID, clientID, from, today)
	if err != nil {
		return FridayCompliance{}, err
	}

	present := make(map[time.Time]struct{}, len(entries))
	for _, e := range entries {
		present[DayOf(e.Date)] = struct{}{}
	}

	missing := make([]time.Time, 0, len(expected))
	completed := 0
	for _, friday := range expected {
		if _, ok := present[friday]; ok {
			completed++
		} else {
			missing = append(missing, friday)
		}
	}

	total := len(expected)
	if total > ChallengeTotalWeeks {
		total = ChallengeTotalWeeks
	}

	return FridayCompliance{
		TotalFridays:     total,
		CompletedFridays: completed,
		MissingFridays:   missing,
		Percentage:       int(math.Round(float64(completed) * 100 / ChallengeTotalWeeks)),
		IsCompliant:      completed >= ChallengeTotalWeeks,
	}, nil
}
