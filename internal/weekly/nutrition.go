package weekly

import "math"

const defaultActivityFactor = 1.55

var activityFactors = map[ActivityLevel]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
	// ids used by the meal planner form
	"very":    1.725,
	"extreme": 1.9,
}

type NutritionTargets struct {
	BMR      float64 `json:"bmr"`
	Calories int     `json:"calories"`
	Protein  int     `json:"protein"` // grams
	Carbs    int     `json:"carbs"`   // grams
	Fat      int     `json:"fat"`     // grams
}

// ActivityFactor maps an activity level to its calorie multiplier.
// Unrecognized levels get the moderate factor.
func ActivityFactor(level ActivityLevel) float64 {
	if factor, ok := activityFactors[level]; ok {
		return factor
	}
	return defaultActivityFactor
}

// BMR is the Mifflin-St Jeor basal metabolic rate in kcal/day.
func BMR(info UserInfo) float64 {
	bmr := 10*info.Weight + 6.25*info.Height - 5*float64(info.Age)
	if info.Gender == GenderFemale {
		return bmr - 161
	}
	return bmr + 5
}

func ComputeNutritionTargets(info UserInfo) NutritionTargets {
	bmr := BMR(info)
	calories := bmr * ActivityFactor(info.ActivityLevel)
	switch info.Goal {
	case GoalLose:
		calories -= 500
	case GoalGain:
		calories += 500
	}
	calories = math.Round(calories)

	return NutritionTargets{
		BMR:      bmr,
		Calories: int(calories),
		Protein:  int(math.Round(2 * info.Weight)),
		Carbs:    int(math.Round(calories * 0.45 / 4)),
		Fat:      int(math.Round(calories * 0.25 / 9)),
	}
}
