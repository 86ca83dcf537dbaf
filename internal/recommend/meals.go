package recommend

import (
	"math"

	"github.com/2beens/weeklyfit/internal/weekly"

	log "github.com/sirupsen/logrus"
)

type Meal struct {
	Name     string `json:"name"`
	Calories int    `json:"calories"`
	Protein  int    `json:"protein"`
	Carbs    int    `json:"carbs"`
	Fat      int    `json:"fat"`
}

// MealDatabase lists the candidate meals per meal slot.
type MealDatabase map[string][]Meal

type PlannedMeal struct {
	Slot           string  `json:"slot"`
	TargetCalories float64 `json:"targetCalories"`
	Meal           Meal    `json:"meal"`
}

type MealPlan struct {
	TotalCalories  int           `json:"totalCalories"`
	Meals          []PlannedMeal `json:"meals"`
	ActualCalories int           `json:"actualCalories"`
	ActualProtein  int           `json:"actualProtein"`
	ActualCarbs    int           `json:"actualCarbs"`
	ActualFat      int           `json:"actualFat"`
}

// share of the daily calories per slot
var slotShares = []struct {
	slot  string
	share float64
}{
	{slot: "breakfast", share: 0.25},
	{slot: "lunch", share: 0.35},
	{slot: "dinner", share: 0.30},
	{slot: "snacks", share: 0.10},
}

type MealPlanner struct {
	db MealDatabase
}

func NewMealPlanner(db MealDatabase) *MealPlanner {
	return &MealPlanner{
		db: db,
	}
}

func (p *MealPlanner) Plan(targets weekly.NutritionTargets) MealPlan {
	plan := MealPlan{
		TotalCalories: targets.Calories,
		Meals:         []PlannedMeal{},
	}

	for _, s := range slotShares {
		target := float64(targets.Calories) * s.share
		meal, ok := closestMeal(p.db[s.slot], target)
		if !ok {
			log.Warnf("meal planner: no meals for slot [%s]", s.slot)
			continue
		}
		plan.Meals = append(plan.Meals, PlannedMeal{
			Slot:           s.slot,
			TargetCalories: target,
			Meal:           meal,
		})
		plan.ActualCalories += meal.Calories
		plan.ActualProtein += meal.Protein
		plan.ActualCarbs += meal.Carbs
		plan.ActualFat += meal.Fat
	}

	return plan
}

// closestMeal keeps the first candidate on ties.
func closestMeal(meals []Meal, target float64) (Meal, bool) {
	if len(meals) == 0 {
		return Meal{}, false
	}
	best := meals[0]
	for _, m := range meals[1:] {
		if math.Abs(float64(m.Calories)-target) < math.Abs(float64(best.Calories)-target) {
			best = m
		}
	}
	return best, true
}

func DefaultMealDatabase() MealDatabase {
	return MealDatabase{
		"breakfast": {
			{Name: "Greek Yogurt with Berries", Calories: 250, Protein: 20, Carbs: 30, Fat: 5},
			{Name: "Avocado Toast with Egg", Calories: 350, Protein: 15, Carbs: 25, Fat: 20},
			{Name: "Protein Smoothie", Calories: 300, Protein: 25, Carbs: 35, Fat: 8},
			{Name: "Oatmeal with Nuts & Fruit", Calories: 380, Protein: 12, Carbs: 45, Fat: 15},
			{Name: "Veggie Omelet", Calories: 280, Protein: 22, Carbs: 8, Fat: 18},
		},
		"lunch": {
			{Name: "Grilled Chicken Salad", Calories: 380, Protein: 35, Carbs: 15, Fat: 18},
			{Name: "Turkey & Avocado Wrap", Calories: 420, Protein: 28, Carbs: 35, Fat: 20},
			{Name: "Quinoa Buddha Bowl", Calories: 450, Protein: 15, Carbs: 60, Fat: 15},
			{Name: "Tuna Salad with Crackers", Calories: 350, Protein: 30, Carbs: 25, Fat: 15},
			{Name: "Lentil Soup with Side Salad", Calories: 320, Protein: 18, Carbs: 40, Fat: 8},
		},
		"dinner": {
			{Name: "Salmon with Roasted Vegetables", Calories: 420, Protein: 38, Carbs: 20, Fat: 22},
			{Name: "Stir-Fried Tofu with Vegetables", Calories: 380, Protein: 20, Carbs: 30, Fat: 18},
			{Name: "Lean Beef Chili", Calories: 450, Protein: 35, Carbs: 35, Fat: 15},
			{Name: "Baked Chicken with Sweet Potato", Calories: 410, Protein: 35, Carbs: 40, Fat: 12},
			{Name: "Shrimp and Vegetable Pasta", Calories: 480, Protein: 25, Carbs: 60, Fat: 12},
		},
		"snacks": {
			{Name: "Apple with Peanut Butter", Calories: 200, Protein: 7, Carbs: 25, Fat: 8},
			{Name: "Protein Bar", Calories: 180, Protein: 15, Carbs: 20, Fat: 6},
			{Name: "Mixed Nuts", Calories: 170, Protein: 6, Carbs: 5, Fat: 15},
			{Name: "Greek Yogurt with Honey", Calories: 150, Protein: 12, Carbs: 15, Fat: 3},
			{Name: "Vegetable Sticks with Hummus", Calories: 120, Protein: 5, Carbs: 15, Fat: 5},
		},
	}
}
