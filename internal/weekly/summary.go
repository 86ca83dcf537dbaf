package weekly

import "math"

// Summary holds the dashboard numbers derived from the live week.
type Summary struct {
	TotalWater       float64            `json:"totalWater"` // ml
	WaterByDay       map[string]float64 `json:"waterByDay"`
	WaterGoalPercent float64            `json:"waterGoalPercent"`
	ExercisesByGroup map[string]int     `json:"exercisesByGroup"`
	TotalExercises   int                `json:"totalExercises"`
	TotalMinutes     float64            `json:"totalMinutes"`
	WorkoutDays      int                `json:"workoutDays"`
	WorkoutDaysGoal  int                `json:"workoutDaysGoal"`
	MealsLogged      int                `json:"mealsLogged"`
	ArchivedWeeks    int                `json:"archivedWeeks"`
}

func Summarize(r WeeklyRecord) Summary {
	s := Summary{
		WaterByDay:       map[string]float64{},
		ExercisesByGroup: map[string]int{},
		WorkoutDaysGoal:  r.Goals.WorkoutDays,
		MealsLogged:      len(r.Meals),
		ArchivedWeeks:    len(r.History.PreviousWeeks),
	}

	for _, entry := range r.Hydration {
		s.TotalWater += entry.Amount
		if entry.Day != "" {
			s.WaterByDay[entry.Day] += entry.Amount
		}
	}
	if r.Goals.WaterIntake > 0 {
		pct := s.TotalWater / float64(r.Goals.WaterIntake) * 100
		s.WaterGoalPercent = math.Round(math.Min(100, pct)*10) / 10
	}

	days := map[string]struct{}{}
	for group, entries := range r.Workouts {
		s.ExercisesByGroup[group] = len(entries)
		s.TotalExercises += len(entries)
		for _, ex := range entries {
			s.TotalMinutes += ex.Duration
			if ex.Date != "" {
				days[ex.Date] = struct{}{}
			}
		}
	}
	s.WorkoutDays = len(days)

	return s
}
