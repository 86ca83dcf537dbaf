package weekly

import "strings"

type WorkoutCategory string

const (
	CategoryStrength    WorkoutCategory = "strength"
	CategoryCardio      WorkoutCategory = "cardio"
	CategoryFlexibility WorkoutCategory = "flexibility"
)

// Categories in priority order, used to break ties.
var Categories = []WorkoutCategory{
	CategoryStrength,
	CategoryCardio,
	CategoryFlexibility,
}

var categoryKeywords = map[WorkoutCategory][]string{
	CategoryStrength:    {"strength", "weight"},
	CategoryCardio:      {"cardio", "run", "hiit"},
	CategoryFlexibility: {"yoga", "stretch", "mobility"},
}

func ParseCategory(s string) (WorkoutCategory, bool) {
	c := WorkoutCategory(strings.ToLower(strings.TrimSpace(s)))
	return c, c.Valid()
}

func (c WorkoutCategory) Valid() bool {
	_, ok := categoryKeywords[c]
	return ok
}

// MatchCategories classifies a free-text type tag by keyword substring.
// A tag like "hiit & stretch" matches more than one category.
func MatchCategories(typeTag string) []WorkoutCategory {
	typeTag = strings.ToLower(typeTag)
	if typeTag == "" {
		return nil
	}

	var matched []WorkoutCategory
	for _, c := range Categories {
		for _, kw := range categoryKeywords[c] {
			if strings.Contains(typeTag, kw) {
				matched = append(matched, c)
				break
			}
		}
	}
	return matched
}

// InferCategory returns the single category a type tag maps to. Ambiguous
// or unknown tags are left for the caller to keep as free text.
func InferCategory(typeTag string) (WorkoutCategory, bool) {
	matched := MatchCategories(typeTag)
	if len(matched) != 1 {
		return "", false
	}
	return matched[0], true
}

// Categories returns the explicit category if set, otherwise whatever the
// free-text type matches.
func (e Exercise) Categories() []WorkoutCategory {
	if e.Category.Valid() {
		return []WorkoutCategory{e.Category}
	}
	return MatchCategories(e.Type)
}

func (e *Exercise) migrateCategory() {
	if e.Category.Valid() {
		return
	}
	e.Category = ""
	if c, ok := InferCategory(e.Type); ok {
		e.Category = c
	}
}
