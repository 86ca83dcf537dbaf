package weekly

import (
	"time"

	"github.com/google/uuid"
)

// persistence keys
const (
	KeyWeeklyData  = "weeklyData"
	KeyPreferences = "preferences"
	KeyReminders   = "reminders"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "veryActive"
)

type BodyGoal string

const (
	GoalLose     BodyGoal = "lose"
	GoalMaintain BodyGoal = "maintain"
	GoalGain     BodyGoal = "gain"
)

// WeeklyRecord is the root document of one active tracking week.
type WeeklyRecord struct {
	Workouts  map[string][]Exercise `json:"workouts"`
	Meals     map[string]string     `json:"meals"`
	Hydration []HydrationEntry      `json:"hydration"`
	Goals     Goals                 `json:"goals"`
	History   History               `json:"history"`
	UserInfo  UserInfo              `json:"userInfo"`
}

type Exercise struct {
	Name     string          `json:"name"`
	Sets     int             `json:"sets"`
	Reps     int             `json:"reps"`
	Weight   float64         `json:"weight"` // lbs
	Duration float64         `json:"duration,omitempty"` // minutes
	Type     string          `json:"type,omitempty"`
	Category WorkoutCategory `json:"category,omitempty"`
	// Intensity is a self reported 1-10 effort score.
	Intensity float64 `json:"intensity,omitempty"`
	Date      string  `json:"date,omitempty"` // YYYY-MM-DD
}

type HydrationEntry struct {
	Day       string  `json:"day"`
	Amount    float64 `json:"amount"` // ml
	Timestamp string  `json:"timestamp"`
}

type Goals struct {
	WorkoutDays int `json:"workoutDays"`
	Calories    int `json:"calories"`
	Protein     int `json:"protein"`     // grams
	WaterIntake int `json:"waterIntake"` // ml
}

type History struct {
	PreviousWeeks []WeekSnapshot `json:"previousWeeks"`
}

type WeekSnapshot struct {
	ID         uuid.UUID             `json:"id"`
	ArchivedAt time.Time             `json:"archivedAt"`
	Workouts   map[string][]Exercise `json:"workouts"`
	Meals      map[string]string     `json:"meals"`
	Hydration  []HydrationEntry      `json:"hydration"`
}

type UserInfo struct {
	Weight        float64       `json:"weight"` // kg
	Height        float64       `json:"height"` // cm
	Age           int           `json:"age"`
	Gender        Gender        `json:"gender"`
	ActivityLevel ActivityLevel `json:"activityLevel"`
	Goal          BodyGoal      `json:"goal"`
}

type Preferences struct {
	Theme               string `json:"theme"`
	MeasurementSystem   string `json:"measurementSystem"`
	ShareProgress       bool   `json:"shareProgress"`
	ShowRecommendations bool   `json:"showRecommendations"`
}

type Reminders struct {
	Enabled            bool     `json:"enabled"`
	WorkoutDays        []string `json:"workoutDays"`
	WorkoutTime        string   `json:"workoutTime"` // HH:MM
	HydrationReminders bool     `json:"hydrationReminders"`
	HydrationInterval  int      `json:"hydrationInterval"` // minutes
}

func DefaultGoals() Goals {
	return Goals{
		WorkoutDays: 4,
		Calories:    2000,
		Protein:     150,
		WaterIntake: 2000,
	}
}

func DefaultUserInfo() UserInfo {
	return UserInfo{
		Weight:        70,
		Height:        170,
		Age:           30,
		Gender:        GenderMale,
		ActivityLevel: ActivityModerate,
		Goal:          GoalMaintain,
	}
}

func DefaultRecord() WeeklyRecord {
	return WeeklyRecord{
		Workouts:  map[string][]Exercise{},
		Meals:     map[string]string{},
		Hydration: []HydrationEntry{},
		Goals:     DefaultGoals(),
		History: History{
			PreviousWeeks: []WeekSnapshot{},
		},
		UserInfo: DefaultUserInfo(),
	}
}

func DefaultPreferences() Preferences {
	return Preferences{
		Theme:               "dark",
		MeasurementSystem:   "metric",
		ShareProgress:       false,
		ShowRecommendations: true,
	}
}

func DefaultReminders() Reminders {
	return Reminders{
		Enabled:            false,
		WorkoutDays:        []string{},
		WorkoutTime:        "18:00",
		HydrationReminders: false,
		HydrationInterval:  60,
	}
}

// Clone returns a deep copy, so that callers never share maps or slices
// with the store.
func (r WeeklyRecord) Clone() WeeklyRecord {
	c := r
	c.Workouts = cloneWorkouts(r.Workouts)
	c.Meals = cloneMeals(r.Meals)
	c.Hydration = cloneHydration(r.Hydration)
	c.History.PreviousWeeks = make([]WeekSnapshot, len(r.History.PreviousWeeks))
	for i, snap := range r.History.PreviousWeeks {
		c.History.PreviousWeeks[i] = snap.Clone()
	}
	return c
}

func (s WeekSnapshot) Clone() WeekSnapshot {
	c := s
	c.Workouts = cloneWorkouts(s.Workouts)
	c.Meals = cloneMeals(s.Meals)
	c.Hydration = cloneHydration(s.Hydration)
	return c
}

func (r Reminders) Clone() Reminders {
	c := r
	c.WorkoutDays = append([]string{}, r.WorkoutDays...)
	return c
}

// ExerciseCount is the number of logged exercises across all groups.
func (r WeeklyRecord) ExerciseCount() int {
	count := 0
	for _, entries := range r.Workouts {
		count += len(entries)
	}
	return count
}

// ensureShape applies the same field defaults as Normalize to a typed
// record, so that whatever is persisted reloads into an equal record.
func (r *WeeklyRecord) ensureShape() {
	r.Workouts = shapeWorkouts(r.Workouts)
	if r.Meals == nil {
		r.Meals = map[string]string{}
	}
	if r.Hydration == nil {
		r.Hydration = []HydrationEntry{}
	}
	if r.History.PreviousWeeks == nil {
		r.History.PreviousWeeks = []WeekSnapshot{}
	}
	for i := range r.History.PreviousWeeks {
		snap := &r.History.PreviousWeeks[i]
		snap.Workouts = shapeWorkouts(snap.Workouts)
		if snap.Meals == nil {
			snap.Meals = map[string]string{}
		}
		if snap.Hydration == nil {
			snap.Hydration = []HydrationEntry{}
		}
	}

	def := DefaultGoals()
	if r.Goals.WorkoutDays <= 0 {
		r.Goals.WorkoutDays = def.WorkoutDays
	}
	if r.Goals.Calories <= 0 {
		r.Goals.Calories = def.Calories
	}
	if r.Goals.Protein <= 0 {
		r.Goals.Protein = def.Protein
	}
	if r.Goals.WaterIntake <= 0 {
		r.Goals.WaterIntake = def.WaterIntake
	}

	defInfo := DefaultUserInfo()
	if r.UserInfo.Weight <= 0 {
		r.UserInfo.Weight = defInfo.Weight
	}
	if r.UserInfo.Height <= 0 {
		r.UserInfo.Height = defInfo.Height
	}
	if r.UserInfo.Age <= 0 {
		r.UserInfo.Age = defInfo.Age
	}
	if r.UserInfo.Gender != GenderMale && r.UserInfo.Gender != GenderFemale {
		r.UserInfo.Gender = defInfo.Gender
	}
	if r.UserInfo.ActivityLevel == "" {
		r.UserInfo.ActivityLevel = defInfo.ActivityLevel
	}
	if !r.UserInfo.Goal.valid() {
		r.UserInfo.Goal = defInfo.Goal
	}
}

func (g BodyGoal) valid() bool {
	return g == GoalLose || g == GoalMaintain || g == GoalGain
}

func shapeWorkouts(workouts map[string][]Exercise) map[string][]Exercise {
	if workouts == nil {
		return map[string][]Exercise{}
	}
	for group, entries := range workouts {
		if entries == nil {
			workouts[group] = []Exercise{}
			continue
		}
		for i := range entries {
			entries[i].migrateCategory()
		}
	}
	return workouts
}

func cloneWorkouts(workouts map[string][]Exercise) map[string][]Exercise {
	c := make(map[string][]Exercise, len(workouts))
	for group, entries := range workouts {
		c[group] = append([]Exercise{}, entries...)
	}
	return c
}

func cloneMeals(meals map[string]string) map[string]string {
	c := make(map[string]string, len(meals))
	for slot, desc := range meals {
		c[slot] = desc
	}
	return c
}

func cloneHydration(entries []HydrationEntry) []HydrationEntry {
	return append([]HydrationEntry{}, entries...)
}
