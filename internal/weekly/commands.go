package weekly

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidInput = errors.New("invalid input")

// Command is a single mutation of the weekly record. Commands are applied
// one at a time by Store.Apply; a rejected command leaves the record as it
// was.
type Command interface {
	Name() string
	apply(r *WeeklyRecord, env commandEnv) error
}

type commandEnv struct {
	now   time.Time
	newID func() uuid.UUID
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

type LogExercise struct {
	Group    string   `json:"group"`
	Exercise Exercise `json:"exercise"`
}

func (c LogExercise) Name() string { return "log_exercise" }

func (c LogExercise) apply(r *WeeklyRecord, env commandEnv) error {
	group := strings.TrimSpace(c.Group)
	if group == "" {
		return invalid("muscle group empty")
	}

	ex := c.Exercise
	ex.Name = strings.TrimSpace(ex.Name)
	if ex.Name == "" {
		return invalid("exercise name empty")
	}
	if ex.Sets < 0 || ex.Reps < 0 {
		return invalid("sets and reps must not be negative")
	}
	for field, value := range map[string]float64{
		"weight":   ex.Weight,
		"duration": ex.Duration,
	} {
		if !finite(value) || value < 0 {
			return invalid("%s must be a non-negative number", field)
		}
	}
	if !finite(ex.Intensity) || ex.Intensity < 0 || ex.Intensity > 10 {
		return invalid("intensity must be between 0 and 10")
	}
	if ex.Category != "" && !ex.Category.Valid() {
		return invalid("unknown category %q", ex.Category)
	}
	if ex.Date == "" {
		ex.Date = env.now.Format(time.DateOnly)
	} else if _, err := time.Parse(time.DateOnly, ex.Date); err != nil {
		return invalid("date %q is not YYYY-MM-DD", ex.Date)
	}
	ex.migrateCategory()

	r.Workouts[group] = append(r.Workouts[group], ex)
	return nil
}

type LogHydration struct {
	Amount float64 `json:"amount"`
	// Day defaults to the current weekday.
	Day string `json:"day,omitempty"`
}

func (c LogHydration) Name() string { return "log_hydration" }

func (c LogHydration) apply(r *WeeklyRecord, env commandEnv) error {
	if !finite(c.Amount) || c.Amount <= 0 {
		return invalid("water amount must be a positive number")
	}

	day := strings.TrimSpace(c.Day)
	if day == "" {
		day = env.now.Weekday().String()
	}
	r.Hydration = append(r.Hydration, HydrationEntry{
		Day:       day,
		Amount:    c.Amount,
		Timestamp: env.now.UTC().Format(time.RFC3339),
	})
	return nil
}

// SetMeal replaces the description of a meal slot. An empty description
// clears the slot.
type SetMeal struct {
	Slot        string `json:"slot"`
	Description string `json:"description"`
}

func (c SetMeal) Name() string { return "set_meal" }

func (c SetMeal) apply(r *WeeklyRecord, _ commandEnv) error {
	slot := strings.TrimSpace(c.Slot)
	if slot == "" {
		return invalid("meal slot empty")
	}
	desc := strings.TrimSpace(c.Description)
	if desc == "" {
		delete(r.Meals, slot)
		return nil
	}
	r.Meals[slot] = desc
	return nil
}

type SetGoals struct {
	Goals Goals `json:"goals"`
}

func (c SetGoals) Name() string { return "set_goals" }

func (c SetGoals) apply(r *WeeklyRecord, _ commandEnv) error {
	g := c.Goals
	if g.WorkoutDays <= 0 || g.Calories <= 0 || g.Protein <= 0 || g.WaterIntake <= 0 {
		return invalid("goals must be positive")
	}
	if g.WorkoutDays > 7 {
		return invalid("at most 7 workout days per week")
	}
	r.Goals = g
	return nil
}

type SetUserInfo struct {
	UserInfo UserInfo `json:"userInfo"`
}

func (c SetUserInfo) Name() string { return "set_user_info" }

func (c SetUserInfo) apply(r *WeeklyRecord, _ commandEnv) error {
	info := c.UserInfo
	if !finite(info.Weight) || info.Weight <= 0 || !finite(info.Height) || info.Height <= 0 || info.Age <= 0 {
		return invalid("weight, height and age must be positive")
	}
	if info.Gender != GenderMale && info.Gender != GenderFemale {
		return invalid("unknown gender %q", info.Gender)
	}
	if _, known := activityFactors[info.ActivityLevel]; !known {
		return invalid("unknown activity level %q", info.ActivityLevel)
	}
	if info.Goal == "" {
		info.Goal = GoalMaintain
	}
	if !info.Goal.valid() {
		return invalid("unknown goal %q", info.Goal)
	}
	r.UserInfo = info
	return nil
}

// ArchiveWeek moves the live week into history and starts an empty one.
type ArchiveWeek struct{}

func (c ArchiveWeek) Name() string { return "archive_week" }

func (c ArchiveWeek) apply(r *WeeklyRecord, env commandEnv) error {
	snap := WeekSnapshot{
		ID:         env.newID(),
		ArchivedAt: env.now.UTC(),
		Workouts:   cloneWorkouts(r.Workouts),
		Meals:      cloneMeals(r.Meals),
		Hydration:  cloneHydration(r.Hydration),
	}
	r.History.PreviousWeeks = append([]WeekSnapshot{snap}, r.History.PreviousWeeks...)
	r.Workouts = map[string][]Exercise{}
	r.Meals = map[string]string{}
	r.Hydration = []HydrationEntry{}
	return nil
}
