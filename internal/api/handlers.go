// Package api exposes HTTP handlers for the progress service.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"example.com/progress/internal/auth"
	"example.com/progress/internal/domain"
	"example.com/progress/internal/observability"
	"example.com/progress/internal/persistence"
)

// maxPhotoBytes caps multipart photo uploads.
const maxPhotoBytes = 15 << 20

// defaultWatchInterval is the compliance stream refresh cadence when none is
// configured.
const defaultWatchInterval = 5 * time.Minute

// Handler coordinates HTTP requests with the domain services.
type Handler struct {
	weights       *domain.WeightService
	photos        *domain.PhotoService
	challenges    *domain.ChallengeService
	watchInterval time.Duration
}

// HandlerOption configures optional Handler behaviour.
type HandlerOption func(*Handler)

// WithWatchInterval overrides the compliance stream refresh cadence.
func WithWatchInterval(interval time.Duration) HandlerOption {
	return func(h *Handler) {
		if interval > 0 {
			h.watchInterval = interval
		}
	}
}

// NewHandler builds a Handler.
func NewHandler(weights *domain.WeightService, photos *domain.PhotoService, challenges *domain.ChallengeService, opts ...HandlerOption) *Handler {
	h := &Handler{
		weights:       weights,
		photos:        photos,
		challenges:    challenges,
		watchInterval: defaultWatchInterval,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/weights", h.weightCollection)
	mux.HandleFunc("/v1/weights/today", h.todayWeight)
	mux.HandleFunc("/v1/weights/stats", h.weightStats)
	mux.HandleFunc("/v1/weights/friday-compliance", h.fridayCompliance)
	mux.HandleFunc("/v1/weights/", h.weightByDate)
	mux.HandleFunc("/v1/photos", h.photoCollection)
	mux.HandleFunc("/v1/photos/today", h.todayPhotos)
	mux.HandleFunc("/v1/photos/weekly-stats", h.weeklyPhotoStats)
	mux.HandleFunc("/v1/photos/", h.photoByID)
	mux.HandleFunc("/v1/challenge/compliance", h.challengeCompliance)
	mux.HandleFunc("/v1/challenge/compliance/watch", h.watchCompliance)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) weightCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.saveWeight(w, r)
	case http.MethodGet:
		h.listWeights(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) saveWeight(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeProgressWrite)
	if !ok {
		return
	}

	var req SaveWeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	entry, err := h.weights.SaveWeight(r.Context(), domain.SaveWeightInput{
		TenantID: claims.TenantID,
		ClientID: req.ClientID,
		WeightKg: req.WeightKg,
		Date:     req.Date,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidWeight) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toWeightView(*entry))
}

func (h *Handler) listWeights(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireReadScope(w, r)
	if !ok {
		return
	}

	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing client_id parameter")
		return
	}

	days := 56
	if raw := r.URL.Query().Get("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			days = parsed
		}
	}

	entries, err := h.weights.GetWeightHistory(r.Context(), claims.TenantID, clientID, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]WeightView, 0, len(entries))
	for _, entry := range entries {
		items = append(items, toWeightView(entry))
	}
	writeJSON(w, http.StatusOK, WeightHistoryResponse{Items: items, Days: days})
}

func (h *Handler) todayWeight(w http.ResponseWriter, r *http.Request) {
	claims, clientID, ok := requireReadWithClient(w, r)
	if !ok {
		return
	}

	entry, err := h.weights.GetTodayEntry(r.Context(), claims.TenantID, clientID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	if entry == nil {
		writeJSON(w, http.StatusOK, TodayWeightResponse{Recorded: false})
		return
	}
	view := toWeightView(*entry)
	writeJSON(w, http.StatusOK, TodayWeightResponse{Recorded: true, Entry: &view})
}

func (h *Handler) weightStats(w http.ResponseWriter, r *http.Request) {
	claims, clientID, ok := requireReadWithClient(w, r)
	if !ok {
		return
	}

	stats, err := h.weights.GetWeightStats(r.Context(), claims.TenantID, clientID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, WeightStatsResponse{
		Current:     stats.Current,
		WeekChange:  stats.WeekChange,
		MonthChange: stats.MonthChange,
		TotalChange: stats.TotalChange,
		Average:     stats.Average,
		Lowest:      stats.Lowest,
		Highest:     stats.Highest,
	})
}

func (h *Handler) fridayCompliance(w http.ResponseWriter, r *http.Request) {
	claims, clientID, ok := requireReadWithClient(w, r)
	if !ok {
		return
	}

	compliance, err := h.weights.GetFridayCompliance(r.Context(), claims.TenantID, clientID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	missing := make([]string, 0, len(compliance.MissingFridays))
	for _, friday := range compliance.MissingFridays {
		missing = append(missing, friday.Format("2006-01-02"))
	}

	writeJSON(w, http.StatusOK, FridayComplianceResponse{
		TotalFridays:     compliance.TotalFridays,
		CompletedFridays: compliance.CompletedFridays,
		MissingFridays:   missing,
		Percentage:       compliance.Percentage,
		IsCompliant:      compliance.IsCompliant,
	})
}

func (h *Handler) weightByDate(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, "/v1/weights/")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing entry date")
		return
	}
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := requireScope(w, r, auth.ScopeProgressWrite)
	if !ok {
		return
	}

	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing client_id parameter")
		return
	}

	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "entry date must be YYYY-MM-DD")
		return
	}

	if err := h.weights.DeleteEntry(r.Context(), claims.TenantID, clientID, date); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) photoCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.uploadPhoto(w, r)
	case http.MethodGet:
		h.recentPhotos(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) uploadPhoto(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeProgressWrite)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse multipart body")
		return
	}

	clientID := r.FormValue("client_id")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing client_id field")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing photo file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to read photo file")
		return
	}
	if len(data) > maxPhotoBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "validation_failed", "photo exceeds size limit")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	var date time.Time
	if raw := r.FormValue("date"); raw != "" {
		date, err = time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "date must be YYYY-MM-DD")
			return
		}
	}

	rating := 0
	if raw := r.FormValue("rating"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			rating = parsed
		}
	}

	photo, err := h.photos.UploadPhoto(r.Context(), domain.UploadPhotoInput{
		TenantID:    claims.TenantID,
		ClientID:    clientID,
		Category:    domain.PhotoCategory(r.FormValue("category")),
		Subtype:     domain.PhysicalSlot(r.FormValue("subtype")),
		ContentType: contentType,
		Data:        data,
		Date:        date,
		Metadata: domain.PhotoMetadata{
			MealType: r.FormValue("meal_type"),
			Exercise: r.FormValue("exercise"),
			Rating:   rating,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCategory), errors.Is(err, domain.ErrInvalidSubtype):
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		case errors.Is(err, domain.ErrSlotTaken):
			observability.RecordSlotCollision()
			writeError(w, http.StatusConflict, "slot_taken", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		}
		return
	}

	observability.RecordPhotoUploaded(string(photo.Category))
	writeJSON(w, http.StatusCreated, toPhotoView(*photo))
}

func (h *Handler) recentPhotos(w http.ResponseWriter, r *http.Request) {
	claims, clientID, ok := requireReadWithClient(w, r)
	if !ok {
		return
	}

	limit := 30
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	groups, next, err := h.photos.GetRecentPhotos(r.Context(), claims.TenantID, clientID, cursor, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	days := make([]PhotoDayView, 0, len(groups))
	for _, group := range groups {
		day := PhotoDayView{Date: group.Date.Format("2006-01-02")}
		for _, photo := range group.Photos {
			day.Photos = append(day.Photos, toPhotoView(photo))
		}
		days = append(days, day)
	}

	writeJSON(w, http.StatusOK, RecentPhotosResponse{
		Days:       days,
		NextCursor: persistence.EncodeCursor(next),
	})
}

func (h *Handler) todayPhotos(w http.ResponseWriter, r *http.Request) {
	claims, clientID, ok := requireReadWithClient(w, r)
	if !ok {
		return
	}

	today, err := h.photos.GetTodayPhotos(r.Context(), claims.TenantID, clientID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	byCategory := make(map[string][]PhotoView, len(today.ByCategory))
	for category, photos := range today.ByCategory {
		views := make([]PhotoView, 0, len(photos))
		for _, photo := range photos {
			views = append(views, toPhotoView(photo))
		}
		byCategory[string(category)] = views
	}

	writeJSON(w, http.StatusOK, TodayPhotosResponse{
		Date:                 today.Date.Format("2006-01-02"),
		ByCategory:           byCategory,
		HasCompleteFridaySet: today.HasCompleteFriday,
	})
}

func (h *Handler) weeklyPhotoStats(w http.ResponseWriter, r *http.Request) {
	claims, clientID, ok := requireReadWithClient(w, r)
	if !ok {
		return
	}

	stats, err := h.photos.GetWeeklyStats(r.Context(), claims.TenantID, clientID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	byCategory := make(map[string]int, len(stats.ByCategory))
	for category, count := range stats.ByCategory {
		byCategory[string(category)] = count
	}

	writeJSON(w, http.StatusOK, WeeklyPhotoStatsResponse{
		Total:        stats.Total,
		ByCategory:   byCategory,
		ActiveDays:   stats.ActiveDays,
		DailyAverage: stats.DailyAverage,
	})
}

func (h *Handler) photoByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/photos/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing photo id")
		return
	}
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := requireScope(w, r, auth.ScopeProgressWrite)
	if !ok {
		return
	}

	if err := h.photos.DeletePhoto(r.Context(), claims.TenantID, id); err != nil {
		if errors.Is(err, domain.ErrPhotoNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "photo not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) challengeCompliance(w http.ResponseWriter, r *http.Request) {
	claims, clientID, ok := requireReadWithClient(w, r)
	if !ok {
		return
	}

	state, err := h.challenges.ComplianceState(r.Context(), claims.TenantID, clientID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	observability.RecordComplianceRefresh()
	writeJSON(w, http.StatusOK, toComplianceResponse(state))
}

// watchCompliance streams the compliance state as newline-delimited JSON,
// refreshed on the configured cadence. The stream emits once immediately and
// stops when the client disconnects; no refresh loop outlives the request.
func (h *Handler) watchCompliance(w http.ResponseWriter, r *http.Request) {
	claims, clientID, ok := requireReadWithClient(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "server_error", "streaming unsupported")
		return
	}

	// The stream outlives the server's write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	encoder := json.NewEncoder(w)
	watcher := domain.NewWatcher(h.challenges, claims.TenantID, clientID, h.watchInterval, func(state domain.ChallengeState) {
		observability.RecordComplianceRefresh()
		if err := encoder.Encode(toComplianceResponse(state)); err != nil {
			return
		}
		flusher.Flush()
	})

	go watcher.Start(r.Context())
	watcher.Wait()
}

func toComplianceResponse(state domain.ChallengeState) ChallengeComplianceResponse {
	resp := ChallengeComplianceResponse{Active: state.Active}
	if state.Assignment != nil {
		resp.Assignment = &AssignmentView{
			AssignmentID: state.Assignment.ID,
			ClientID:     state.Assignment.ClientID,
			CoachID:      state.Assignment.CoachID,
			StartDate:    state.Assignment.StartDate.Format("2006-01-02"),
			EndDate:      state.Assignment.EndDate.Format("2006-01-02"),
		}
	}
	if state.Snapshot != nil {
		resp.Snapshot = &SnapshotView{
			CurrentWeek:     state.Snapshot.CurrentWeek,
			TotalWeeks:      state.Snapshot.TotalWeeks,
			CompletedWeeks:  state.Snapshot.CompletedWeeks,
			Percentage:      state.Snapshot.Percentage,
			DaysUntilFriday: state.Snapshot.DaysUntilFriday,
			DayNumber:       state.Snapshot.DayNumber,
			IsCompliant:     state.Snapshot.IsCompliant,
		}
	}
	return resp
}

// requireScope resolves claims and checks one scope.
func requireScope(w http.ResponseWriter, r *http.Request, scope string) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	if !claims.HasScope(scope) {
		writeError(w, http.StatusForbidden, "forbidden", "scope "+scope+" required")
		return nil, false
	}
	return claims, true
}

// requireReadScope accepts either the read or the write scope.
func requireReadScope(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	if !claims.HasScope(auth.ScopeProgressRead) && !claims.HasScope(auth.ScopeProgressWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope "+auth.ScopeProgressRead+" required")
		return nil, false
	}
	return claims, true
}

func requireReadWithClient(w http.ResponseWriter, r *http.Request) (*auth.Claims, string, bool) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return nil, "", false
	}
	claims, ok := requireReadScope(w, r)
	if !ok {
		return nil, "", false
	}
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing client_id parameter")
		return nil, "", false
	}
	return claims, clientID, true
}

// SaveWeightRequest is the payload for POST /v1/weights.
type SaveWeightRequest struct {
	ClientID string    `json:"client_id"`
	WeightKg float64   `json:"weight_kg"`
	Date     time.Time `json:"date,omitempty"`
}

// Validate ensures request correctness.
func (r SaveWeightRequest) Validate() error {
	if strings.TrimSpace(r.ClientID) == "" {
		return errors.New("client_id is required")
	}
	if r.WeightKg <= 0 {
		return errors.New("weight_kg must be > 0")
	}
	return nil
}

// WeightView exposes one weight ledger entry.
type WeightView struct {
	ClientID        string    `json:"client_id"`
	Date            string    `json:"date"`
	WeightKg        float64   `json:"weight_kg"`
	IsFridayWeighIn bool      `json:"is_friday_weigh_in"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// WeightHistoryResponse packages list results.
type WeightHistoryResponse struct {
	Items []WeightView `json:"items"`
	Days  int          `json:"days"`
}

// TodayWeightResponse reports whether today's weigh-in has happened.
type TodayWeightResponse struct {
	Recorded bool        `json:"recorded"`
	Entry    *WeightView `json:"entry,omitempty"`
}

// WeightStatsResponse mirrors the trailing statistics window. Fields are
// omitted when the client has no history to derive them from.
type WeightStatsResponse struct {
	Current     *float64 `json:"current,omitempty"`
	WeekChange  *float64 `json:"week_change,omitempty"`
	MonthChange *float64 `json:"month_change,omitempty"`
	TotalChange *float64 `json:"total_change,omitempty"`
	Average     *float64 `json:"average,omitempty"`
	Lowest      *float64 `json:"lowest,omitempty"`
	Highest     *float64 `json:"highest,omitempty"`
}

// FridayComplianceResponse reports the trailing 8-week weigh-in compliance.
type FridayComplianceResponse struct {
	TotalFridays     int      `json:"total_fridays"`
	CompletedFridays int      `json:"completed_fridays"`
	MissingFridays   []string `json:"missing_fridays"`
	Percentage       int      `json:"percentage"`
	IsCompliant      bool     `json:"is_compliant"`
}

// PhotoMetadataView carries category-specific photo detail.
type PhotoMetadataView struct {
	MealType string `json:"meal_type,omitempty"`
	Exercise string `json:"exercise,omitempty"`
	Rating   int    `json:"rating,omitempty"`
}

// PhotoView exposes one stored photo.
type PhotoView struct {
	PhotoID       string            `json:"photo_id"`
	ClientID      string            `json:"client_id"`
	Date          string            `json:"date"`
	Category      string            `json:"category"`
	Type          string            `json:"type"`
	IsFridayPhoto bool              `json:"is_friday_photo"`
	URL           string            `json:"url"`
	ContentType   string            `json:"content_type"`
	SizeBytes     int64             `json:"size_bytes"`
	Metadata      PhotoMetadataView `json:"metadata"`
	CreatedAt     time.Time         `json:"created_at"`
}

// PhotoDayView groups one calendar day's photos.
type PhotoDayView struct {
	Date   string      `json:"date"`
	Photos []PhotoView `json:"photos"`
}

// RecentPhotosResponse packages paginated photo history.
type RecentPhotosResponse struct {
	Days       []PhotoDayView `json:"days"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// TodayPhotosResponse buckets today's photos by semantic category.
type TodayPhotosResponse struct {
	Date                 string                 `json:"date"`
	ByCategory           map[string][]PhotoView `json:"by_category"`
	HasCompleteFridaySet bool                   `json:"has_complete_friday_set"`
}

// WeeklyPhotoStatsResponse summarizes the trailing 7 days of uploads.
type WeeklyPhotoStatsResponse struct {
	Total        int            `json:"total"`
	ByCategory   map[string]int `json:"by_category"`
	ActiveDays   int            `json:"active_days"`
	DailyAverage int            `json:"daily_average"`
}

// AssignmentView exposes the active challenge assignment.
type AssignmentView struct {
	AssignmentID string `json:"assignment_id"`
	ClientID     string `json:"client_id"`
	CoachID      string `json:"coach_id"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

// SnapshotView exposes the derived compliance snapshot.
type SnapshotView struct {
	CurrentWeek     int  `json:"current_week"`
	TotalWeeks      int  `json:"total_weeks"`
	CompletedWeeks  int  `json:"completed_weeks"`
	Percentage      int  `json:"percentage"`
	DaysUntilFriday int  `json:"days_until_friday"`
	DayNumber       int  `json:"day_number"`
	IsCompliant     bool `json:"is_compliant"`
}

// ChallengeComplianceResponse is the state machine output for a client.
type ChallengeComplianceResponse struct {
	Active     bool            `json:"active"`
	Assignment *AssignmentView `json:"assignment,omitempty"`
	Snapshot   *SnapshotView   `json:"snapshot,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toWeightView(entry domain.WeightEntry) WeightView {
	return WeightView{
		ClientID:        entry.ClientID,
		Date:            entry.Date.Format("2006-01-02"),
		WeightKg:        entry.WeightKg,
		IsFridayWeighIn: entry.IsFridayWeighIn,
		CreatedAt:       entry.CreatedAt,
		UpdatedAt:       entry.UpdatedAt,
	}
}

func toPhotoView(photo domain.ProgressPhoto) PhotoView {
	return PhotoView{
		PhotoID:       photo.ID,
		ClientID:      photo.ClientID,
		Date:          photo.Date.Format("2006-01-02"),
		Category:      string(photo.DisplayCategory()),
		Type:          photo.DisplayType(),
		IsFridayPhoto: photo.IsFridayPhoto,
		URL:           photo.URL,
		ContentType:   photo.ContentType,
		SizeBytes:     photo.SizeBytes,
		Metadata: PhotoMetadataView{
			MealType: photo.Metadata.MealType,
			Exercise: photo.Metadata.Exercise,
			Rating:   photo.Metadata.Rating,
		},
		CreatedAt: photo.CreatedAt,
	}
}
