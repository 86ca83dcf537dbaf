package recommend

import (
	"strings"

	"github.com/2beens/weeklyfit/internal/weekly"
)

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

var levels = []Level{
	LevelBeginner,
	LevelIntermediate,
	LevelAdvanced,
}

type Suggestion struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"durationMinutes"`
}

// Library holds the suggested workouts per experience level and focus.
type Library map[Level]map[weekly.WorkoutCategory][]Suggestion

func (l Library) lookup(level Level, focus weekly.WorkoutCategory) ([]Suggestion, bool) {
	byFocus, ok := l[level]
	if !ok {
		return nil, false
	}
	suggestions, ok := byFocus[focus]
	if !ok || len(suggestions) == 0 {
		return nil, false
	}
	return suggestions, true
}

// Find looks a suggestion up by name (case insensitive), walking levels
// and categories in their fixed order.
func (l Library) Find(name string) (Suggestion, Level, weekly.WorkoutCategory, bool) {
	for _, level := range levels {
		for _, focus := range weekly.Categories {
			for _, s := range l[level][focus] {
				if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
					return s, level, focus, true
				}
			}
		}
	}
	return Suggestion{}, "", "", false
}

func DefaultLibrary() Library {
	return Library{
		LevelBeginner: {
			weekly.CategoryStrength: {
				{Name: "Bodyweight Basics", Description: "Squats, push-ups, lunges, planks", DurationMinutes: 20},
				{Name: "Light Dumbbell Circuit", Description: "3 rounds of dumbbell exercises with 60s rest", DurationMinutes: 25},
				{Name: "Core Foundations", Description: "Focus on developing core strength and stability", DurationMinutes: 15},
			},
			weekly.CategoryCardio: {
				{Name: "Beginner HIIT", Description: "20s on, 40s off - jumping jacks, high knees, etc.", DurationMinutes: 15},
				{Name: "Walk-Jog Intervals", Description: "1 min walk, 1 min light jog for 20 minutes", DurationMinutes: 20},
				{Name: "Step Aerobics", Description: "Low impact cardio with stepping patterns", DurationMinutes: 20},
			},
			weekly.CategoryFlexibility: {
				{Name: "Basic Stretching", Description: "Full body stretch routine, hold each for 30s", DurationMinutes: 15},
				{Name: "Intro to Yoga", Description: "Basic yoga poses for beginners", DurationMinutes: 20},
				{Name: "Mobility Basics", Description: "Joint mobility exercises for better movement", DurationMinutes: 15},
			},
		},
		LevelIntermediate: {
			weekly.CategoryStrength: {
				{Name: "Dumbbell Strength", Description: "4 sets of 8-12 reps of compound movements", DurationMinutes: 40},
				{Name: "Bodyweight Advanced", Description: "Progressive variations of push-ups, squats, etc.", DurationMinutes: 35},
				{Name: "Supersets Challenge", Description: "Paired exercises with minimal rest between sets", DurationMinutes: 30},
			},
			weekly.CategoryCardio: {
				{Name: "Intermediate HIIT", Description: "30s work, 30s rest for 8 rounds", DurationMinutes: 30},
				{Name: "Tempo Run", Description: "5 min warm-up, 20 min steady pace, 5 min cool-down", DurationMinutes: 30},
				{Name: "Jump Rope Intervals", Description: "1 min high intensity, 30s rest for 10 rounds", DurationMinutes: 25},
			},
			weekly.CategoryFlexibility: {
				{Name: "Dynamic Stretching", Description: "Movement-based stretching routine", DurationMinutes: 20},
				{Name: "Intermediate Yoga", Description: "Flow sequences with moderate difficulty", DurationMinutes: 30},
				{Name: "Foam Rolling", Description: "Self-myofascial release for tight muscles", DurationMinutes: 20},
			},
		},
		LevelAdvanced: {
			weekly.CategoryStrength: {
				{Name: "Heavy Compound Lifts", Description: "5x5 of squats, deadlifts, bench press, rows", DurationMinutes: 50},
				{Name: "Pyramid Sets", Description: "Increasing weight, decreasing reps for maximum stimulus", DurationMinutes: 45},
				{Name: "Calisthenics Mastery", Description: "Advanced bodyweight movements like muscle-ups", DurationMinutes: 40},
			},
			weekly.CategoryCardio: {
				{Name: "Advanced HIIT", Description: "40s work, 20s rest for 10 rounds of complex movements", DurationMinutes: 40},
				{Name: "Tabata Protocol", Description: "20s max effort, 10s rest for 8 rounds of 4 exercises", DurationMinutes: 35},
				{Name: "Sprint Intervals", Description: "30s all-out sprint, 90s recovery jog for 8 rounds", DurationMinutes: 40},
			},
			weekly.CategoryFlexibility: {
				{Name: "Advanced Yoga", Description: "Challenging poses and longer holds", DurationMinutes: 40},
				{Name: "PNF Stretching", Description: "Contract-relax technique for improved flexibility", DurationMinutes: 30},
				{Name: "Full Mobility Routine", Description: "Comprehensive mobility work for all joints", DurationMinutes: 35},
			},
		},
	}
}
