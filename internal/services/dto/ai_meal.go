package dto

// AiMeal is the generated meal plan document returned by the model and
// stored alongside the meal plan.
type AiMeal struct {
	Days             []AiMealDay     `json:"days"`
	NutritionSummary *AiNutrition    `json:"nutritionSummary,omitempty"`
	ShoppingList     *AiShoppingList `json:"shoppingList,omitempty"`
	Notes            []string        `json:"notes,omitempty"`
}

type AiMealDay struct {
	Day            int          `json:"day"`
	Date           string       `json:"date,omitempty"`
	Meals          []AiMealItem `json:"meals"`
	DailyNutrition *AiNutrition `json:"dailyNutrition,omitempty"`
}

type AiMealItem struct {
	Type                string         `json:"type"`
	Name                string         `json:"name"`
	Ingredients         []AiIngredient `json:"ingredients"`
	Portions            float64        `json:"portions"`
	PreparationTime     int            `json:"preparationTime,omitempty"`
	CookingTime         int            `json:"cookingTime,omitempty"`
	Instructions        []string       `json:"instructions,omitempty"`
	NutritionPerServing *AiNutrition   `json:"nutritionPerServing,omitempty"`
}

type AiIngredient struct {
	Name         string   `json:"name"`
	Amount       float64  `json:"amount"`
	Unit         string   `json:"unit"`
	Alternatives []string `json:"alternatives,omitempty"`
}

type AiNutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

type AiShoppingList struct {
	Categories []AiShoppingCategory `json:"categories"`
}

type AiShoppingCategory struct {
	Name  string           `json:"name"`
	Items []AiShoppingItem `json:"items"`
}

type AiShoppingItem struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}
