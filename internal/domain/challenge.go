package domain

import (
	"context"
	"log"
	"math"
	"time"
)

// ChallengeAssignment links a client to an active 8-week accountability
// program. Assignments are created and deactivated by coach action in the
// coaching service; this service only ingests and reads them.
type ChallengeAssignment struct {
	ID        string
	TenantID  string
	ClientID  string
	CoachID   string
	StartDate time.Time
	EndDate   time.Time
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChallengeRepository captures persistence operations for assignments.
type ChallengeRepository interface {
	// ActiveAssignment returns the client's active assignment, or nil.
	ActiveAssignment(ctx context.Context, tenantID, clientID string) (*ChallengeAssignment, error)
	Upsert(ctx context.Context, assignment ChallengeAssignment) error
	Deactivate(ctx context.Context, tenantID, assignmentID string, occurredAt time.Time) error
}

// ComplianceSnapshot is the derived compliance state for an active
// challenge. It is computed on demand and never persisted.
type ComplianceSnapshot struct {
	CurrentWeek     int
	TotalWeeks      int
	CompletedWeeks  int
	Percentage      int
	DaysUntilFriday int
	DayNumber       int
	IsCompliant     bool
}

// ChallengeState is the output of the state machine: either no active
// challenge, or an assignment with its snapshot.
type ChallengeState struct {
	Active     bool
	Assignment *ChallengeAssignment
	Snapshot   *ComplianceSnapshot
}

// ComputeSnapshot derives the compliance snapshot for a challenge that
// started on startDate, given the distinct Friday dates with a complete
// front+side progress pair.
func ComputeSnapshot(startDate, today time.Time, completedWeeks int) ComplianceSnapshot {
	daysSinceStart := DaysBetween(startDate, today)
	currentWeek := daysSinceStart/7 + 1
	if currentWeek > ChallengeTotalWeeks {
		currentWeek = ChallengeTotalWeeks
	}

	return ComplianceSnapshot{
		CurrentWeek:     currentWeek,
		TotalWeeks:      ChallengeTotalWeeks,
		CompletedWeeks:  completedWeeks,
		Percentage:      int(math.Round(float64(completedWeeks) * 100 / ChallengeTotalWeeks)),
		DaysUntilFriday: DaysUntilFriday(DayOf(today)),
		DayNumber:       daysSinceStart + 1,
		IsCompliant:     completedWeeks >= currentWeek-1,
	}
}

// CompletedFridaySets counts the distinct dates carrying a complete
// front+side progress pair.
func CompletedFridaySets(photos []ProgressPhoto) int {
	type pair struct{ front, side bool }
	byDate := make(map[time.Time]*pair)
	for _, p := range photos {
		if p.Category != CategoryProgress {
			continue
		}
		day := DayOf(p.Date)
		set, ok := byDate[day]
		if !ok {
			set = &pair{}
			byDate[day] = set
		}
		switch p.PhysicalSlot {
		case SlotFront:
			set.front = true
		case SlotSide:
			set.side = true
		}
	}

	completed := 0
	for _, set := range byDate {
		if set.front && set.side {
			completed++
		}
	}
	return completed
}

// ChallengeService combines the active assignment with the client's Friday
// photo history into a compliance state.
type ChallengeService struct {
	assignments ChallengeRepository
	photos      PhotoRepository
	now         func() time.Time
	logger      *log.Logger
}

// ChallengeOption configures optional behaviour for the ChallengeService.
type ChallengeOption func(*ChallengeService)

// WithChallengeClock overrides the clock, primarily for tests.
func WithChallengeClock(now func() time.Time) ChallengeOption {
	return func(s *ChallengeService) {
		s.now = now
	}
}

// WithChallengeLogger overrides the logger.
func WithChallengeLogger(logger *log.Logger) ChallengeOption {
	return func(s *ChallengeService) {
		s.logger = logger
	}
}

// NewChallengeService constructs a ChallengeService.
func NewChallengeService(assignments ChallengeRepository, photos PhotoRepository, opts ...ChallengeOption) *ChallengeService {
	s := &ChallengeService{
		assignments: assignments,
		photos:      photos,
		now:         time.Now,
		logger:      log.New(log.Writer(), "[challenge] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComplianceState loads the client's active assignment and derives the
// snapshot. A missing assignment, or a failed lookup, yields the inactive
// state; callers degrade instead of crashing.
//
// Completed weeks draw on the client's entire Friday photo history, not the
// 55-day weigh-in window.
func (s *ChallengeService) ComplianceState(ctx context.Context, tenantID, clientID string) (ChallengeState, error) {
	assignment, err := s.assignments.ActiveAssignment(ctx, tenantID, clientID)
	if err != nil {
		s.logger.Printf("active assignment lookup failed (client=%s): %v", clientID, err)
		return ChallengeState{}, nil
	}
	if assignment == nil {
		return ChallengeState{}, nil
	}

	fridayPhotos, err := s.photos.ListFridayPhotos(ctx, tenantID, clientID)
	if err != nil {
		return ChallengeState{}, err
	}

	snapshot := ComputeSnapshot(assignment.StartDate, s.now(), CompletedFridaySets(fridayPhotos))
	return ChallengeState{Active: true, Assignment: assignment, Snapshot: &snapshot}, nil
}

// Watcher refreshes a client's compliance state on a fixed cadence. The
// coaching dashboard polls rather than subscribes; the watcher stops when
// its context is cancelled so no recurring work outlives the client session.
type Watcher struct {
	service  *ChallengeService
	tenantID string
	clientID string
	interval time.Duration
	onUpdate func(ChallengeState)
	done     chan struct{}
}

// NewWatcher constructs a Watcher that invokes onUpdate with each refreshed
// state, once immediately on start and then every interval.
func NewWatcher(service *ChallengeService, tenantID, clientID string, interval time.Duration, onUpdate func(ChallengeState)) *Watcher {
	return &Watcher{
		service:  service,
		tenantID: tenantID,
		clientID: clientID,
		interval: interval,
		onUpdate: onUpdate,
		done:     make(chan struct{}),
	}
}

// Start launches the polling loop. It should be called in a goroutine.
func (w *Watcher) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer func() {
		ticker.Stop()
		close(w.done)
	}()

	for {
		state, err := w.service.ComplianceState(ctx, w.tenantID, w.clientID)
		if err != nil {
			w.service.logger.Printf("compliance refresh failed (client=%s): %v", w.clientID, err)
		} else {
			w.onUpdate(state)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Wait blocks until the watcher has stopped.
func (w *Watcher) Wait() {
	<-w.done
}
