package catalog

import (
	"fmt"
	"sync"

	"server/internal/domain"
)

// NutritionInfo describes the published nutrition facts for a menu item.
type NutritionInfo struct {
	Calories int    `json:"calories"`
	Protein  string `json:"protein"`
	Carbs    string `json:"carbs"`
	Fat      string `json:"fat"`
	Fiber    string `json:"fiber"`
}

// MenuItem is one catalog entry. The catalog is read-only after construction.
type MenuItem struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	PlanName    domain.PlanName `json:"planType"`
	Description string          `json:"description"`
	Price       int64           `json:"price"`
	CookingTime string          `json:"cookingTime"`
	Servings    int             `json:"servings"`
	Featured    bool            `json:"isFeatured,omitempty"`
	Nutrition   NutritionInfo   `json:"nutrition"`
}

var planPrices = map[domain.PlanName]int64{
	domain.PlanDiet:    30000,
	domain.PlanProtein: 40000,
	domain.PlanRoyal:   60000,
}

// PlanPrice returns the per-meal price for a plan in IDR.
func PlanPrice(plan domain.PlanName) (int64, bool) {
	price, ok := planPrices[plan]
	return price, ok
}

// Catalog is an immutable menu table with indexed lookups.
type Catalog struct {
	items  []MenuItem
	byID   map[int]int
	byPlan map[domain.PlanName][]int
}

// New builds a catalog from the given items. Items are copied; the catalog
// never mutates after this point.
func New(items []MenuItem) *Catalog {
	c := &Catalog{
		items:  make([]MenuItem, len(items)),
		byID:   make(map[int]int, len(items)),
		byPlan: make(map[domain.PlanName][]int),
	}
	copy(c.items, items)
	for i, item := range c.items {
		c.byID[item.ID] = i
		c.byPlan[item.PlanName] = append(c.byPlan[item.PlanName], i)
	}
	return c
}

// Items returns a copy of all menu items in catalog order.
func (c *Catalog) Items() []MenuItem {
	out := make([]MenuItem, len(c.items))
	copy(out, c.items)
	return out
}

// ByID resolves one menu item by identifier.
func (c *Catalog) ByID(id int) (MenuItem, bool) {
	i, ok := c.byID[id]
	if !ok {
		return MenuItem{}, false
	}
	return c.items[i], true
}

// FirstForPlan returns the first catalog item for the plan, in catalog order.
// Every meal slot of a new schedule is populated with this item.
func (c *Catalog) FirstForPlan(plan domain.PlanName) (MenuItem, bool) {
	idx, ok := c.byPlan[plan]
	if !ok || len(idx) == 0 {
		return MenuItem{}, false
	}
	return c.items[idx[0]], true
}

// ItemsForPlan returns all items of a plan tier, in catalog order.
func (c *Catalog) ItemsForPlan(plan domain.PlanName) []MenuItem {
	idx := c.byPlan[plan]
	out := make([]MenuItem, 0, len(idx))
	for _, i := range idx {
		out = append(out, c.items[i])
	}
	return out
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in menu catalog, built once per process.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog = New(defaultItems())
	})
	return defaultCatalog
}

const defaultDescription = "A healthy and delicious option, prepared with high-quality ingredients to support your healthy lifestyle."

var defaultTitles = []string{
	"Grilled Chicken & Asparagus",
	"Spicy Tuna Salad Bowl",
	"Royal Wagyu Steak",
	"Lemon Herb Baked Dory",
	"Lean Beef Stir-Fry",
	"Golden Turmeric Chicken Curry",
	"Salmon Quinoa Bowl",
	"Vegan Lentil Soup",
	"Pesto Shrimp Zoodles",
	"Chicken Caesar Light Wrap",
	"Tofu & Edamame Power Bowl",
	"Blackened Fish Tacos",
	"Mediterranean Chickpea Salad",
	"Egg White & Spinach Omelette",
	"Classic Beef Rendang",
	"Teriyaki Glazed Tempeh",
	"Thai Green Curry Chicken",
	"Garlic Butter Shrimp",
	"Mushroom & Truffle Pasta",
	"Korean Bulgogi Beef Bowl",
	"Spinach Ricotta Stuffed Chicken",
	"Honey Glazed Salmon",
	"Avocado & Shrimp Salad",
	"Spicy Basil Minced Chicken",
	"Creamy Tuscan Salmon",
	"Vietnamese Pho Noodle Soup",
	"Black Pepper Beef",
	"Lemon Dill Fish Fillet",
	"Hearty Beef & Barley Soup",
	"Sundried Tomato Chicken Pasta",
}

var defaultPlans = []domain.PlanName{domain.PlanDiet, domain.PlanProtein, domain.PlanRoyal}

var featuredIndices = map[int]bool{0: true, 6: true, 15: true, 22: true}

func defaultItems() []MenuItem {
	items := make([]MenuItem, 0, len(defaultTitles))
	for i, title := range defaultTitles {
		plan := defaultPlans[i%3]
		items = append(items, MenuItem{
			ID:          i + 1,
			Title:       title,
			PlanName:    plan,
			Description: defaultDescription,
			Price:       planPrices[plan],
			CookingTime: fmt.Sprintf("%d min", 20+(i%15)),
			Servings:    (i % 3) + 1,
			Featured:    featuredIndices[i],
			Nutrition: NutritionInfo{
				Calories: 350 + i*5,
				Protein:  fmt.Sprintf("%dg", 20+(i%10)),
				Carbs:    fmt.Sprintf("%dg", 30+(i%15)),
				Fat:      fmt.Sprintf("%dg", 10+(i%10)),
				Fiber:    fmt.Sprintf("%dg", 5+(i%5)),
			},
		})
	}
	return items
}
