package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"server/internal/catalog"
	"server/internal/domain"
	"server/internal/middleware"
)

type menuItemDTO struct {
	ID             int                   `json:"id"`
	Title          string                `json:"title"`
	PlanType       domain.PlanName       `json:"planType"`
	Description    string                `json:"description"`
	Price          int64                 `json:"price"`
	PriceFormatted string                `json:"priceFormatted"`
	CookingTime    string                `json:"cookingTime"`
	Servings       int                   `json:"servings"`
	Featured       bool                  `json:"isFeatured"`
	Nutrition      catalog.NutritionInfo `json:"nutrition"`
}

func menuItemToDTO(item catalog.MenuItem, locale string) menuItemDTO {
	return menuItemDTO{
		ID:             item.ID,
		Title:          item.Title,
		PlanType:       item.PlanName,
		Description:    item.Description,
		Price:          item.Price,
		PriceFormatted: catalog.FormatPrice(locale, item.Price),
		CookingTime:    item.CookingTime,
		Servings:       item.Servings,
		Featured:       item.Featured,
		Nutrition:      item.Nutrition,
	}
}

// MenuList serves the catalog, optionally filtered by ?plan=.
func (a *App) MenuList(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())

	items := a.Catalog.Items()
	if planParam := r.URL.Query().Get("plan"); planParam != "" {
		plan, ok := domain.ParsePlanName(planParam)
		if !ok {
			a.error(w, http.StatusBadRequest, "bad_request", "unknown plan")
			return
		}
		items = a.Catalog.ItemsForPlan(plan)
	}

	dtos := make([]menuItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, menuItemToDTO(item, locale))
	}
	a.json(w, http.StatusOK, map[string]any{"items": dtos})
}

func (a *App) MenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid menu item id")
		return
	}
	item, ok := a.Catalog.ByID(id)
	if !ok {
		a.domainError(w, domain.ErrNotFound)
		return
	}
	a.json(w, http.StatusOK, menuItemToDTO(item, middleware.LocaleFromContext(r.Context())))
}
