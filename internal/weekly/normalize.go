package weekly

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NormalizeResult carries the repaired document plus the paths of the fields
// that failed their shape check and were replaced by defaults.
type NormalizeResult struct {
	Record  WeeklyRecord
	Repairs []string
}

// Normalize turns whatever was last persisted under KeyWeeklyData into a
// well shaped record. It never fails: absent, null, invalid or non-object
// input yields DefaultRecord, and every malformed field falls back to its
// default on its own.
func Normalize(raw []byte) NormalizeResult {
	n := &normalizer{}
	record := DefaultRecord()

	obj, ok := n.document(raw)
	if !ok {
		return NormalizeResult{Record: record, Repairs: n.repairs}
	}

	record.Workouts = n.workouts(obj["workouts"], "workouts")
	record.Meals = n.meals(obj["meals"], "meals")
	record.Hydration = n.hydration(obj["hydration"], "hydration")
	record.Goals = n.goals(obj["goals"], "goals")
	record.History = n.history(obj["history"], "history")
	record.UserInfo = n.userInfo(obj["userInfo"], "userInfo")

	return NormalizeResult{Record: record, Repairs: n.repairs}
}

func NormalizePreferences(raw []byte) (Preferences, []string) {
	n := &normalizer{}
	prefs := DefaultPreferences()

	obj, ok := n.document(raw)
	if !ok {
		return prefs, n.repairs
	}

	prefs.Theme = n.nonEmptyString(obj, "theme", "", prefs.Theme)
	prefs.MeasurementSystem = n.nonEmptyString(obj, "measurementSystem", "", prefs.MeasurementSystem)
	if prefs.MeasurementSystem != "metric" && prefs.MeasurementSystem != "imperial" {
		n.repair("measurementSystem")
		prefs.MeasurementSystem = DefaultPreferences().MeasurementSystem
	}
	prefs.ShareProgress = n.boolean(obj, "shareProgress", "", prefs.ShareProgress)
	prefs.ShowRecommendations = n.boolean(obj, "showRecommendations", "", prefs.ShowRecommendations)

	return prefs, n.repairs
}

func NormalizeReminders(raw []byte) (Reminders, []string) {
	n := &normalizer{}
	reminders := DefaultReminders()

	obj, ok := n.document(raw)
	if !ok {
		return reminders, n.repairs
	}

	reminders.Enabled = n.boolean(obj, "enabled", "", reminders.Enabled)
	reminders.WorkoutDays = n.weekdays(obj["workoutDays"], "workoutDays")
	reminders.WorkoutTime = n.nonEmptyString(obj, "workoutTime", "", reminders.WorkoutTime)
	if _, err := time.Parse("15:04", reminders.WorkoutTime); err != nil {
		n.repair("workoutTime")
		reminders.WorkoutTime = DefaultReminders().WorkoutTime
	}
	reminders.HydrationReminders = n.boolean(obj, "hydrationReminders", "", reminders.HydrationReminders)
	reminders.HydrationInterval = n.positiveInt(obj, "hydrationInterval", "", reminders.HydrationInterval)

	return reminders, n.repairs
}

type normalizer struct {
	repairs []string
}

func (n *normalizer) repair(path string) {
	n.repairs = append(n.repairs, path)
}

// document decodes the top level blob. Only a JSON object is accepted.
func (n *normalizer) document(raw []byte) (map[string]any, bool) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, false
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		n.repair("$")
		return nil, false
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		// null is "nothing persisted yet", not a broken document
		if doc != nil {
			n.repair("$")
		}
		return nil, false
	}
	return obj, true
}

// object reports whether v is a JSON object. An absent or null value is not
// counted as a repair.
func (n *normalizer) object(v any, path string) (map[string]any, bool) {
	if v == nil {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	if !ok {
		n.repair(path)
	}
	return obj, ok
}

func (n *normalizer) workouts(v any, path string) map[string][]Exercise {
	workouts := map[string][]Exercise{}
	obj, ok := n.object(v, path)
	if !ok {
		return workouts
	}

	for group, entries := range obj {
		groupPath := path + "." + group
		switch typed := entries.(type) {
		case []any:
			exercises := make([]Exercise, 0, len(typed))
			for i, entry := range typed {
				if ex, ok := n.exercise(entry, fmt.Sprintf("%s[%d]", groupPath, i)); ok {
					exercises = append(exercises, ex)
				}
			}
			workouts[group] = exercises
		case map[string]any:
			// older logger variants stored one entry per group
			n.repair(groupPath)
			exercises := []Exercise{}
			if ex, ok := n.exercise(typed, groupPath); ok {
				exercises = append(exercises, ex)
			}
			workouts[group] = exercises
		default:
			n.repair(groupPath)
		}
	}
	return workouts
}

func (n *normalizer) exercise(v any, path string) (Exercise, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		n.repair(path)
		return Exercise{}, false
	}

	ex := Exercise{
		Name:      n.str(obj, "name", path, ""),
		Sets:      int(n.nonNegative(obj, "sets", path)),
		Reps:      int(n.nonNegative(obj, "reps", path)),
		Weight:    n.nonNegative(obj, "weight", path),
		Duration:  n.nonNegative(obj, "duration", path),
		Type:      n.str(obj, "type", path, ""),
		Intensity: n.nonNegative(obj, "intensity", path),
		Date:      n.str(obj, "date", path, ""),
	}
	if raw, present := obj["category"]; present && raw != "" && raw != nil {
		s, _ := raw.(string)
		if c, ok := ParseCategory(s); ok {
			ex.Category = c
		} else {
			n.repair(path + ".category")
		}
	}
	ex.migrateCategory()

	return ex, true
}

func (n *normalizer) meals(v any, path string) map[string]string {
	meals := map[string]string{}
	obj, ok := n.object(v, path)
	if !ok {
		return meals
	}
	for slot, desc := range obj {
		s, ok := desc.(string)
		if !ok {
			n.repair(path + "." + slot)
			continue
		}
		meals[slot] = s
	}
	return meals
}

func (n *normalizer) hydration(v any, path string) []HydrationEntry {
	entries := []HydrationEntry{}
	switch typed := v.(type) {
	case nil:
	case []any:
		for i, entry := range typed {
			entryPath := fmt.Sprintf("%s[%d]", path, i)
			obj, ok := entry.(map[string]any)
			if !ok {
				n.repair(entryPath)
				continue
			}
			entries = append(entries, HydrationEntry{
				Day:       n.str(obj, "day", entryPath, ""),
				Amount:    n.nonNegative(obj, "amount", entryPath),
				Timestamp: n.str(obj, "timestamp", entryPath, ""),
			})
		}
	default:
		// legacy shape: a bare running total
		n.repair(path)
		total, ok := toNumber(typed)
		if ok && total > 0 {
			entries = append(entries, HydrationEntry{Amount: total})
		}
	}
	return entries
}

func (n *normalizer) goals(v any, path string) Goals {
	goals := DefaultGoals()
	obj, ok := n.object(v, path)
	if !ok {
		return goals
	}
	goals.WorkoutDays = n.positiveInt(obj, "workoutDays", path, goals.WorkoutDays)
	goals.Calories = n.positiveInt(obj, "calories", path, goals.Calories)
	goals.Protein = n.positiveInt(obj, "protein", path, goals.Protein)
	goals.WaterIntake = n.positiveInt(obj, "waterIntake", path, goals.WaterIntake)
	return goals
}

func (n *normalizer) history(v any, path string) History {
	history := History{
		PreviousWeeks: []WeekSnapshot{},
	}
	obj, ok := n.object(v, path)
	if !ok {
		return history
	}

	weeksPath := path + ".previousWeeks"
	switch weeks := obj["previousWeeks"].(type) {
	case nil:
	case []any:
		for i, week := range weeks {
			if snap, ok := n.snapshot(week, fmt.Sprintf("%s[%d]", weeksPath, i)); ok {
				history.PreviousWeeks = append(history.PreviousWeeks, snap)
			}
		}
	default:
		n.repair(weeksPath)
	}
	return history
}

func (n *normalizer) snapshot(v any, path string) (WeekSnapshot, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		n.repair(path)
		return WeekSnapshot{}, false
	}

	snap := WeekSnapshot{
		Workouts:  n.workouts(obj["workouts"], path+".workouts"),
		Meals:     n.meals(obj["meals"], path+".meals"),
		Hydration: n.hydration(obj["hydration"], path+".hydration"),
	}
	if rawID := n.str(obj, "id", path, ""); rawID != "" {
		id, err := uuid.Parse(rawID)
		if err != nil {
			n.repair(path + ".id")
		} else {
			snap.ID = id
		}
	}

	// exported archives used "timestamp" before "archivedAt"
	archivedAtKey := "archivedAt"
	if _, present := obj[archivedAtKey]; !present {
		archivedAtKey = "timestamp"
	}
	if rawTime := n.str(obj, archivedAtKey, path, ""); rawTime != "" {
		archivedAt, err := time.Parse(time.RFC3339Nano, rawTime)
		if err != nil {
			n.repair(path + "." + archivedAtKey)
		} else {
			snap.ArchivedAt = archivedAt
		}
	}

	return snap, true
}

func (n *normalizer) userInfo(v any, path string) UserInfo {
	info := DefaultUserInfo()
	obj, ok := n.object(v, path)
	if !ok {
		return info
	}

	info.Weight = n.positive(obj, "weight", path, info.Weight)
	info.Height = n.positive(obj, "height", path, info.Height)
	info.Age = n.positiveInt(obj, "age", path, info.Age)

	switch gender := Gender(strings.ToLower(n.str(obj, "gender", path, ""))); gender {
	case GenderMale, GenderFemale:
		info.Gender = gender
	case "":
	default:
		n.repair(path + ".gender")
	}

	// unknown activity levels are kept, the calorie factor falls back instead
	if level := n.str(obj, "activityLevel", path, ""); level != "" {
		info.ActivityLevel = ActivityLevel(level)
	}

	switch goal := BodyGoal(n.str(obj, "goal", path, "")); {
	case goal == "":
	case goal.valid():
		info.Goal = goal
	default:
		n.repair(path + ".goal")
	}

	return info
}

func (n *normalizer) weekdays(v any, path string) []string {
	days := []string{}
	switch typed := v.(type) {
	case nil:
	case []any:
		for i, day := range typed {
			s, ok := day.(string)
			if !ok || s == "" {
				n.repair(fmt.Sprintf("%s[%d]", path, i))
				continue
			}
			days = append(days, s)
		}
	default:
		n.repair(path)
	}
	return days
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func (n *normalizer) str(obj map[string]any, key, path, def string) string {
	v, present := obj[key]
	if !present || v == nil {
		return def
	}
	s, ok := v.(string)
	if !ok {
		n.repair(join(path, key))
		return def
	}
	return s
}

func (n *normalizer) nonEmptyString(obj map[string]any, key, path, def string) string {
	s := n.str(obj, key, path, def)
	if strings.TrimSpace(s) == "" {
		if _, present := obj[key]; present {
			n.repair(join(path, key))
		}
		return def
	}
	return s
}

func (n *normalizer) boolean(obj map[string]any, key, path string, def bool) bool {
	v, present := obj[key]
	if !present || v == nil {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		n.repair(join(path, key))
		return def
	}
	return b
}

// number accepts JSON numbers and numeric strings, since form inputs were
// persisted as typed. An empty string counts as absent.
func (n *normalizer) number(obj map[string]any, key, path string, def float64) float64 {
	v, present := obj[key]
	if !present || v == nil {
		return def
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return def
	}
	f, ok := toNumber(v)
	if !ok {
		n.repair(join(path, key))
		return def
	}
	return f
}

func (n *normalizer) nonNegative(obj map[string]any, key, path string) float64 {
	f := n.number(obj, key, path, 0)
	if f < 0 {
		n.repair(join(path, key))
		return 0
	}
	return f
}

func (n *normalizer) positive(obj map[string]any, key, path string, def float64) float64 {
	f := n.number(obj, key, path, def)
	if f <= 0 {
		n.repair(join(path, key))
		return def
	}
	return f
}

func (n *normalizer) positiveInt(obj map[string]any, key, path string, def int) int {
	f := n.positive(obj, key, path, float64(def))
	if f < 1 {
		n.repair(join(path, key))
		return def
	}
	return int(f)
}

func toNumber(v any) (float64, bool) {
	var f float64
	switch typed := v.(type) {
	case float64:
		f = typed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
