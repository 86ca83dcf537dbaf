package recommend

import (
	"sort"

	"github.com/2beens/weeklyfit/internal/weekly"

	log "github.com/sirupsen/logrus"
)

// minEntries is the history needed before level and focus are computed.
const minEntries = 3

type Recommendation struct {
	Level       Level                  `json:"level"`
	Focus       weekly.WorkoutCategory `json:"focus"`
	Suggestions []Suggestion           `json:"suggestions"`
}

// Engine picks a training focus from the logged workouts. It holds no state
// besides the library, so Recommend is a pure function of the record.
type Engine struct {
	library Library
}

func NewEngine(library Library) *Engine {
	return &Engine{
		library: library,
	}
}

func (e *Engine) Library() Library {
	return e.library
}

func (e *Engine) Recommend(record weekly.WeeklyRecord) Recommendation {
	// walk groups in a fixed order so float sums never depend on map order
	groups := make([]string, 0, len(record.Workouts))
	for group := range record.Workouts {
		groups = append(groups, group)
	}
	sort.Strings(groups)

	var entries []weekly.Exercise
	for _, group := range groups {
		entries = append(entries, record.Workouts[group]...)
	}

	level, focus := LevelBeginner, weekly.CategoryStrength
	if len(entries) >= minEntries {
		level = levelFor(entries)
		focus = focusFor(entries)
	}

	return Recommendation{
		Level:       level,
		Focus:       focus,
		Suggestions: e.suggestions(level, focus),
	}
}

func (e *Engine) suggestions(level Level, focus weekly.WorkoutCategory) []Suggestion {
	suggestions, ok := e.library.lookup(level, focus)
	if !ok {
		log.Errorf("recommend: workout library has no [%s][%s] entries, falling back to beginner strength", level, focus)
		suggestions, ok = e.library.lookup(LevelBeginner, weekly.CategoryStrength)
		if !ok {
			log.Errorf("recommend: workout library has no beginner strength entries")
			return []Suggestion{}
		}
	}
	return append([]Suggestion{}, suggestions...)
}

// levelFor uses strict thresholds: an average of exactly 7 or 4 stays in the
// lower tier.
func levelFor(entries []weekly.Exercise) Level {
	total := 0.0
	for _, ex := range entries {
		total += ex.Intensity
	}
	avg := total / float64(len(entries))

	switch {
	case avg > 7:
		return LevelAdvanced
	case avg > 4:
		return LevelIntermediate
	default:
		return LevelBeginner
	}
}

// focusFor suggests the first category missing from the log. With all of
// them present it picks the least trained one; ties go to the earlier
// category in weekly.Categories.
func focusFor(entries []weekly.Exercise) weekly.WorkoutCategory {
	counts := map[weekly.WorkoutCategory]int{}
	for _, ex := range entries {
		for _, c := range ex.Categories() {
			counts[c]++
		}
	}

	for _, c := range weekly.Categories {
		if counts[c] == 0 {
			return c
		}
	}

	focus := weekly.Categories[0]
	for _, c := range weekly.Categories[1:] {
		if counts[c] < counts[focus] {
			focus = c
		}
	}
	return focus
}
