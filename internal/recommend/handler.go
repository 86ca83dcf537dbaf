package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/2beens/weeklyfit/internal/telemetry/metrics"
	"github.com/2beens/weeklyfit/internal/telemetry/tracing"
	"github.com/2beens/weeklyfit/internal/weekly"
	"github.com/2beens/weeklyfit/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=recommend_test

type weeklyStore interface {
	Current(ctx context.Context) weekly.WeeklyRecord
	Apply(ctx context.Context, cmd weekly.Command) (weekly.WeeklyRecord, error)
	NutritionTargets() weekly.NutritionTargets
}

type CommitRequest struct {
	Name string `json:"name"`
	// Group defaults to the suggestion's focus, e.g. "Cardio".
	Group string `json:"group,omitempty"`
}

type Handler struct {
	store   weeklyStore
	engine  *Engine
	planner *MealPlanner
	metrics *metrics.Manager
}

func NewHandler(
	store weeklyStore,
	engine *Engine,
	planner *MealPlanner,
	metrics *metrics.Manager,
) *Handler {
	return &Handler{
		store:   store,
		engine:  engine,
		planner: planner,
		metrics: metrics,
	}
}

func (h *Handler) HandleWorkouts(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.recommend.workouts")
	defer span.End()

	rec := h.engine.Recommend(h.store.Current(ctx))
	h.metrics.CounterRecommendations.WithLabelValues(string(rec.Level), string(rec.Focus)).Inc()
	pkg.WriteJSON(w, rec, http.StatusOK)
}

// HandleCommit logs a suggested workout as an exercise of the live week.
func (h *Handler) HandleCommit(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.recommend.commit")
	defer span.End()

	if !strings.HasPrefix(r.Header.Get("Content-Type"), pkg.ContentType.JSON) {
		pkg.WriteJSONError(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req CommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("commit suggestion, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid commit request", http.StatusBadRequest)
		return
	}

	suggestion, _, focus, found := h.engine.Library().Find(req.Name)
	if !found {
		pkg.WriteJSONError(w, "suggestion not found", http.StatusNotFound)
		return
	}

	group := strings.TrimSpace(req.Group)
	if group == "" {
		group = capitalize(string(focus))
	}

	record, err := h.store.Apply(ctx, weekly.LogExercise{
		Group: group,
		Exercise: weekly.Exercise{
			Name:     suggestion.Name,
			Duration: float64(suggestion.DurationMinutes),
			Type:     string(focus),
			Category: focus,
		},
	})
	if errors.Is(err, weekly.ErrInvalidInput) {
		pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Errorf("commit suggestion [%s]: %s", suggestion.Name, err)
		pkg.WriteJSONError(w, "failed to log suggested workout", http.StatusInternalServerError)
		return
	}

	log.Debugf("suggestion [%s] logged under [%s]", suggestion.Name, group)
	pkg.WriteJSON(w, record, http.StatusCreated)
}

func (h *Handler) HandleMealPlan(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.recommend.meals")
	defer span.End()

	pkg.WriteJSON(w, h.planner.Plan(h.store.NutritionTargets()), http.StatusOK)
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	recRouter := router.PathPrefix("/recommendations").Subrouter()
	recRouter.HandleFunc("/workouts", h.HandleWorkouts).Methods("GET")
	recRouter.HandleFunc("/workouts/commit", h.HandleCommit).Methods("POST")
	recRouter.HandleFunc("/meals", h.HandleMealPlan).Methods("GET")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
