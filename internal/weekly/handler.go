package weekly

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/2beens/weeklyfit/internal/telemetry/tracing"
	"github.com/2beens/weeklyfit/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{
		store: store,
	}
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), pkg.ContentType.JSON)
}

func decodeJSON(r *http.Request, v any) error {
	if !isJSON(r) {
		return errors.New("invalid content type")
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		return fmt.Errorf("unmarshal json body: %w", err)
	}
	return nil
}

// readDocument returns the raw body if it is a JSON object. Documents are
// then shaped by the Normalize functions, so clients may still send legacy
// field shapes.
func readDocument(r *http.Request) ([]byte, error) {
	if !isJSON(r) {
		return nil, errors.New("invalid content type")
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, errors.New("body must be a json object")
	}
	return raw, nil
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request, cmd Command, successStatus int) {
	record, err := h.store.Apply(r.Context(), cmd)
	if errors.Is(err, ErrInvalidInput) {
		pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Errorf("weekly handler, apply %s: %s", cmd.Name(), err)
		pkg.WriteJSONError(w, "failed to save weekly data", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSON(w, record, successStatus)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	pkg.WriteJSON(w, h.store.Current(r.Context()), http.StatusOK)
}

func (h *Handler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weekly.replace")
	defer span.End()

	raw, err := readDocument(r)
	if err != nil {
		log.Tracef("replace weekly data: %s", err)
		pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res := Normalize(raw)
	if len(res.Repairs) > 0 {
		log.Debugf("replace weekly data, repaired fields: %v", res.Repairs)
	}
	if err := h.store.Replace(ctx, res.Record); err != nil {
		log.Errorf("replace weekly data: %s", err)
		pkg.WriteJSONError(w, "failed to save weekly data", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSON(w, h.store.Record(), http.StatusOK)
}

func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, ArchiveWeek{}, http.StatusOK)
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Reset(r.Context()); err != nil {
		log.Errorf("reset weekly data: %s", err)
		pkg.WriteJSONError(w, "failed to reset weekly data", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSON(w, h.store.Record(), http.StatusOK)
}

func (h *Handler) HandleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearHistory(r.Context()); err != nil {
		log.Errorf("clear history: %s", err)
		pkg.WriteJSONError(w, "failed to clear history", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSON(w, h.store.Record(), http.StatusOK)
}

func (h *Handler) HandleLogExercise(w http.ResponseWriter, r *http.Request) {
	var cmd LogExercise
	if err := decodeJSON(r, &cmd); err != nil {
		log.Tracef("log exercise: %s", err)
		pkg.WriteJSONError(w, "invalid exercise", http.StatusBadRequest)
		return
	}
	h.apply(w, r, cmd, http.StatusCreated)
}

func (h *Handler) HandleLogHydration(w http.ResponseWriter, r *http.Request) {
	var cmd LogHydration
	if err := decodeJSON(r, &cmd); err != nil {
		// a non-numeric amount ends up here
		log.Tracef("log hydration: %s", err)
		pkg.WriteJSONError(w, "invalid water amount", http.StatusBadRequest)
		return
	}
	h.apply(w, r, cmd, http.StatusCreated)
}

func (h *Handler) HandleSetMeal(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &body); err != nil {
		log.Tracef("set meal: %s", err)
		pkg.WriteJSONError(w, "invalid meal", http.StatusBadRequest)
		return
	}
	h.apply(w, r, SetMeal{
		Slot:        mux.Vars(r)["slot"],
		Description: body.Description,
	}, http.StatusOK)
}

func (h *Handler) HandleSetGoals(w http.ResponseWriter, r *http.Request) {
	var goals Goals
	if err := decodeJSON(r, &goals); err != nil {
		log.Tracef("set goals: %s", err)
		pkg.WriteJSONError(w, "invalid goals", http.StatusBadRequest)
		return
	}
	h.apply(w, r, SetGoals{Goals: goals}, http.StatusOK)
}

func (h *Handler) HandleSetUserInfo(w http.ResponseWriter, r *http.Request) {
	var info UserInfo
	if err := decodeJSON(r, &info); err != nil {
		log.Tracef("set user info: %s", err)
		pkg.WriteJSONError(w, "invalid user info", http.StatusBadRequest)
		return
	}
	h.apply(w, r, SetUserInfo{UserInfo: info}, http.StatusOK)
}

func (h *Handler) HandleNutrition(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, h.store.NutritionTargets(), http.StatusOK)
}

func (h *Handler) HandleSummary(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, h.store.Summary(), http.StatusOK)
}

func (h *Handler) HandleGetPreferences(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, h.store.Preferences(), http.StatusOK)
}

func (h *Handler) HandleReplacePreferences(w http.ResponseWriter, r *http.Request) {
	raw, err := readDocument(r)
	if err != nil {
		pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	prefs, _ := NormalizePreferences(raw)
	if err := h.store.ReplacePreferences(r.Context(), prefs); err != nil {
		log.Errorf("replace preferences: %s", err)
		pkg.WriteJSONError(w, "failed to save preferences", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSON(w, prefs, http.StatusOK)
}

func (h *Handler) HandleGetReminders(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, h.store.Reminders(), http.StatusOK)
}

func (h *Handler) HandleReplaceReminders(w http.ResponseWriter, r *http.Request) {
	raw, err := readDocument(r)
	if err != nil {
		pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	reminders, _ := NormalizeReminders(raw)
	if err := h.store.ReplaceReminders(r.Context(), reminders); err != nil {
		log.Errorf("replace reminders: %s", err)
		pkg.WriteJSONError(w, "failed to save reminders", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSON(w, reminders, http.StatusOK)
}

// RegisterRoutes mounts the weekly data endpoints on router.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/weekly", h.HandleGet).Methods("GET")
	router.HandleFunc("/weekly", h.HandleReplace).Methods("PUT")

	weeklyRouter := router.PathPrefix("/weekly").Subrouter()
	weeklyRouter.HandleFunc("/archive", h.HandleArchive).Methods("POST")
	weeklyRouter.HandleFunc("/reset", h.HandleReset).Methods("POST")
	weeklyRouter.HandleFunc("/history", h.HandleClearHistory).Methods("DELETE")
	weeklyRouter.HandleFunc("/exercises", h.HandleLogExercise).Methods("POST")
	weeklyRouter.HandleFunc("/hydration", h.HandleLogHydration).Methods("POST")
	weeklyRouter.HandleFunc("/meals/{slot}", h.HandleSetMeal).Methods("PUT")
	weeklyRouter.HandleFunc("/goals", h.HandleSetGoals).Methods("PUT")
	weeklyRouter.HandleFunc("/userinfo", h.HandleSetUserInfo).Methods("PUT")
	weeklyRouter.HandleFunc("/nutrition", h.HandleNutrition).Methods("GET")
	weeklyRouter.HandleFunc("/summary", h.HandleSummary).Methods("GET")

	router.HandleFunc("/preferences", h.HandleGetPreferences).Methods("GET")
	router.HandleFunc("/preferences", h.HandleReplacePreferences).Methods("PUT")
	router.HandleFunc("/reminders", h.HandleGetReminders).Methods("GET")
	router.HandleFunc("/reminders", h.HandleReplaceReminders).Methods("PUT")
}
