// Package api exposes HTTP handlers for the workout service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"example.com/workout/internal/auth"
	"example.com/workout/internal/domain"
	"example.com/workout/internal/identity"
	"example.com/workout/internal/observability"
	"example.com/workout/internal/persistence"
	"example.com/workout/internal/stats"
)

// credentialVerifier abstracts the external identity service for tests.
type credentialVerifier interface {
	Verify(ctx context.Context, username, password string) (*identity.Profile, error)
}

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service  *domain.Service
	verifier credentialVerifier
	authCfg  auth.Config
	goalCfg  stats.GoalConfig
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, verifier credentialVerifier, authCfg auth.Config, goalCfg stats.GoalConfig, log logrus.FieldLogger) *Handler {
	return &Handler{
		service:  service,
		verifier: verifier,
		authCfg:  authCfg,
		goalCfg:  goalCfg,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/auth/login", h.login)
	mux.HandleFunc("/v1/workouts", h.workouts)
	mux.HandleFunc("/v1/workouts/", h.workoutByID)
	mux.HandleFunc("/v1/workouts/stats", h.workoutStats)
	mux.HandleFunc("/v1/workouts/heatmap", h.workoutHeatmap)
	mux.HandleFunc("/v1/workouts/months", h.workoutMonths)
	mux.HandleFunc("/v1/weights", h.weights)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "username and password are required")
		return
	}

	profile, err := h.verifier.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			observability.RecordLogin("rejected")
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
			return
		}
		observability.RecordLogin("error")
		h.log.WithError(err).Error("identity verification failed")
		writeError(w, http.StatusBadGateway, "identity_unavailable", "credential verification unavailable")
		return
	}

	user, err := h.service.UpsertUser(r.Context(), domain.User{
		Username:    req.Username,
		Name:        profile.Name,
		ExternalRef: profile.ExternalRef,
	})
	if err != nil {
		observability.RecordLogin("error")
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	token, err := auth.Sign(user.ID, user.Name, auth.SessionScopes, h.authCfg, h.now())
	if err != nil {
		observability.RecordLogin("error")
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	observability.RecordLogin("ok")
	writeJSON(w, http.StatusOK, LoginResponse{
		Token: token,
		User: UserView{
			UserID:      user.ID,
			Username:    user.Username,
			Name:        user.Name,
			ExternalRef: user.ExternalRef,
		},
	})
}

func (h *Handler) workouts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.logWorkout(w, r)
	case http.MethodGet:
		h.listWorkouts(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) workoutByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/workouts/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing workout id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getWorkout(w, r, id)
	case http.MethodDelete:
		h.deleteWorkout(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) logWorkout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeWorkoutsWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope workouts:write required")
		return
	}

	var req LogWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")

	workout, replay, err := h.service.LogWorkout(r.Context(), domain.LogWorkoutInput{
		UserID:         claims.Subject,
		Category:       req.Category,
		Date:           parseFlexibleTime(req.Date),
		DurationMin:    int(req.Duration),
		Exercises:      toDomainExercises(req.Exercises),
		Calories:       req.Calories,
		Notes:          req.Notes,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	resp := LogWorkoutResponse{
		WorkoutID: workout.ID,
		Replay:    replay,
	}

	status := http.StatusAccepted
	if replay {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (h *Handler) getWorkout(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireRead(w, r)
	if !ok {
		return
	}

	workout, err := h.service.GetWorkout(r.Context(), claims.Subject, id)
	if err != nil {
		if errors.Is(err, domain.ErrWorkoutNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "workout not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toWorkoutView(*workout))
}

func (h *Handler) deleteWorkout(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeWorkoutsWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope workouts:write required")
		return
	}

	if err := h.service.DeleteWorkout(r.Context(), claims.Subject, id); err != nil {
		if errors.Is(err, domain.ErrWorkoutNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "workout not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireRead(w, r)
	if !ok {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > 100 {
				parsed = 100
			}
			limit = parsed
		}
	}

	cursorToken := r.URL.Query().Get("cursor")
	cursor, err := persistence.DecodeCursor(cursorToken)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	workouts, next, err := h.service.ListWorkouts(r.Context(), claims.Subject, cursor, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]WorkoutView, 0, len(workouts))
	for _, workout := range workouts {
		items = append(items, toWorkoutView(workout))
	}

	writeJSON(w, http.StatusOK, ListWorkoutsResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

func (h *Handler) workoutStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireRead(w, r)
	if !ok {
		return
	}

	started := time.Now()
	history, err := h.service.History(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	now := h.now()
	summary := stats.ComputeSummary(history, now)
	streak := stats.ComputeStreak(history)
	goals := stats.ComputeGoals(history, summary.ThisWeekCount, h.goalCfg)
	recent := stats.Recent(history, 5)
	categories := stats.CategoryTotals(history)
	observability.ObserveStatsRequest(time.Since(started))

	goalViews := make([]GoalView, 0, len(goals))
	for _, g := range goals {
		goalViews = append(goalViews, GoalView{Goal: g, Percent: g.Percent()})
	}
	recentViews := make([]WorkoutView, 0, len(recent))
	for _, workout := range recent {
		recentViews = append(recentViews, toWorkoutView(workout))
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		Summary:    summary,
		Streak:     streak,
		Goals:      goalViews,
		Recent:     recentViews,
		Categories: categories,
	})
}

func (h *Handler) workoutHeatmap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireRead(w, r)
	if !ok {
		return
	}

	now := h.now()
	end := now
	if raw := r.URL.Query().Get("end"); raw != "" {
		if parsed := parseFlexibleTime(raw); !parsed.IsZero() {
			end = parsed
		}
	}
	start := end.AddDate(-1, 0, 0)
	if raw := r.URL.Query().Get("start"); raw != "" {
		if parsed := parseFlexibleTime(raw); !parsed.IsZero() {
			start = parsed
		}
	}

	metric := stats.HeatmapMetric(r.URL.Query().Get("metric"))
	if metric == "" {
		metric = stats.MetricFrequency
	}
	category := r.URL.Query().Get("category")
	if category == "" {
		category = stats.CategoryAll
	}

	history, err := h.service.History(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	buckets := stats.BucketForHeatmap(history, metric, category, start, end)
	writeJSON(w, http.StatusOK, HeatmapResponse{
		Metric:   string(metric),
		Category: category,
		Start:    start,
		End:      end,
		Buckets:  buckets,
	})
}

func (h *Handler) workoutMonths(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireRead(w, r)
	if !ok {
		return
	}

	history, err := h.service.History(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	groups := stats.GroupByMonth(history)
	views := make([]MonthGroupView, 0, len(groups))
	for _, g := range groups {
		items := make([]WorkoutView, 0, len(g.Records))
		for _, workout := range g.Records {
			items = append(items, toWorkoutView(workout))
		}
		views = append(views, MonthGroupView{Label: g.Label, Items: items})
	}

	writeJSON(w, http.StatusOK, MonthsResponse{Groups: views})
}

func (h *Handler) weights(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.recordWeight(w, r)
	case http.MethodGet:
		h.listWeights(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) recordWeight(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeWorkoutsWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope workouts:write required")
		return
	}

	var req LogWeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if req.Value <= 0 {
		writeError(w, http.StatusBadRequest, "validation_failed", "value must be > 0")
		return
	}

	day := parseFlexibleTime(req.Day)
	if day.IsZero() {
		day = h.now()
	}
	unit := req.Unit
	if unit == "" {
		unit = "kg"
	}

	entry, err := h.service.RecordWeight(r.Context(), claims.Subject, day, req.Value, unit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, toWeightView(*entry))
}

func (h *Handler) listWeights(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireRead(w, r)
	if !ok {
		return
	}

	limit := 90
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, err := h.service.ListWeights(r.Context(), claims.Subject, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]WeightView, 0, len(entries))
	for _, entry := range entries {
		items = append(items, toWeightView(entry))
	}

	writeJSON(w, http.StatusOK, WeightsResponse{
		Items: items,
		Trend: stats.ComputeWeightTrend(entries),
	})
}

// requireRead extracts claims and enforces read access, writing the error
// response itself when the check fails.
func requireRead(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	if !claims.HasScope(auth.ScopeWorkoutsRead) && !claims.HasScope(auth.ScopeWorkoutsWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope workouts:read required")
		return nil, false
	}
	return claims, true
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
