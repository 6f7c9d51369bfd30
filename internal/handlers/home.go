package handlers

import (
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/auroramart/storefront/internal/models"
	"github.com/auroramart/storefront/internal/service/recommend"
)

const (
	toggleCookie     = "showRecommendations"
	onboardingCookie = "onboardingCategory"
)

type HomeHandler struct {
	DB        *gorm.DB
	Recommend *recommend.Service
	JWTSecret []byte
}

// recommendationFilter reports whether the personalisation toggle is on
// and which onboarding category label the session carries.
func recommendationFilter(c echo.Context) (string, bool) {
	toggle, err := c.Cookie(toggleCookie)
	if err != nil || toggle.Value != "1" {
		return "", false
	}
	labelCookie, err := c.Cookie(onboardingCookie)
	if err != nil || labelCookie.Value == "" {
		return "", false
	}
	label, err := url.QueryUnescape(labelCookie.Value)
	if err != nil || label == "" {
		return "", false
	}
	return label, true
}

type categoryCount struct {
	models.Category
	ProductCount int64 `json:"product_count"`
}

// Home returns the storefront landing feed: featured categories, trending
// products, new arrivals and, when onboarding ran and the toggle is on, a
// personalized block for the predicted category.
func (h *HomeHandler) Home(c echo.Context) error {
	var featured []categoryCount
	err := h.DB.Model(&models.Category{}).
		Select("categories.*, COUNT(products.id) AS product_count").
		Joins("LEFT JOIN products ON products.category_id = categories.id").
		Group("categories.id").
		Order("product_count DESC").
		Limit(6).
		Scan(&featured).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := map[string]any{
		"featured_categories": featured,
	}

	label, on := recommendationFilter(c)
	resp["show_recommendations"] = on
	if on {
		resp["onboarding_category"] = label

		var predicted models.Category
		q := h.DB.Model(&models.Product{}).Where("is_active = ?", true)
		if err := h.DB.Where("LOWER(name) = LOWER(?)", label).First(&predicted).Error; err == nil {
			resp["predicted_category"] = predicted
			q = q.Where("category_id = ?", predicted.ID)
		}
		var recommended []models.Product
		if err := q.Order("rating DESC NULLS LAST").
			Order("quantity_on_hand DESC").
			Limit(8).
			Find(&recommended).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		resp["recommended_products"] = recommended
	} else {
		var trending []models.Product
		if err := h.DB.Where("is_active = ?", true).
			Order("rating DESC NULLS LAST").
			Order("quantity_on_hand DESC").
			Limit(8).
			Find(&trending).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		resp["trending_products"] = trending
	}

	var arrivals []models.Product
	if err := h.DB.Where("is_active = ?", true).
		Order("created_at DESC").
		Limit(6).
		Find(&arrivals).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp["new_arrivals"] = arrivals

	return c.JSON(http.StatusOK, resp)
}

// Onboarding runs the classifier over the submitted demographics, remembers
// the predicted label in the session and reports where to browse next.
func (h *HomeHandler) Onboarding(c echo.Context) error {
	var req recommend.OnboardingData
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if req.Age < 18 || req.Age > 120 {
		return echo.NewHTTPError(http.StatusBadRequest, "age must be between 18 and 120")
	}
	if req.HouseholdSize < 1 || req.HouseholdSize > 20 {
		return echo.NewHTTPError(http.StatusBadRequest, "household_size must be between 1 and 20")
	}
	if req.MonthlyIncomeSGD < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "monthly_income_sgd must not be negative")
	}

	label := h.Recommend.PredictPreferredCategory(c.Request().Context(), &req)

	resp := echo.Map{"predicted_category": label}
	if label != "" {
		c.SetCookie(CreateCookie(onboardingCookie, url.QueryEscape(label), "/", time.Now().Add(30*24*time.Hour)))
		var category models.Category
		if err := h.DB.Where("LOWER(name) = LOWER(?)", label).First(&category).Error; err == nil {
			resp["category"] = category
		}
	}

	// onboarding runs without auth middleware, so a logged-in customer is
	// recognised straight from the access cookie
	if userID, ok := CookieUserID(c, h.JWTSecret); ok {
		h.saveProfile(c, userID, &req, label)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *HomeHandler) saveProfile(c echo.Context, userID uint, data *recommend.OnboardingData, label string) {
	var categoryID *uint
	var category models.Category
	if label != "" {
		if err := h.DB.Where("LOWER(name) = LOWER(?)", label).First(&category).Error; err == nil {
			categoryID = &category.ID
		}
	}

	profile := models.CustomerProfile{
		UserID:            userID,
		Age:               data.Age,
		Gender:            data.Gender,
		EmploymentStatus:  data.EmploymentStatus,
		Occupation:        data.Occupation,
		Education:         data.Education,
		HouseholdSize:     data.HouseholdSize,
		HasChildren:       data.HasChildren,
		MonthlyIncomeSGD:  data.MonthlyIncomeSGD,
		PreferredLabel:    label,
		PreferredCategory: categoryID,
	}

	var existing models.CustomerProfile
	if err := h.DB.Where("user_id = ?", userID).First(&existing).Error; err == nil {
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
	}
	if err := h.DB.Save(&profile).Error; err != nil {
		c.Logger().Errorf("profile save error: %v", err)
	}
}

func (h *HomeHandler) ToggleRecommendations(c echo.Context) error {
	current := false
	if ck, err := c.Cookie(toggleCookie); err == nil && ck.Value == "1" {
		current = true
	}
	next := !current

	value := "0"
	message := "Showing all products"
	if next {
		value = "1"
		message = "Recommendations enabled"
	}
	c.SetCookie(CreateCookie(toggleCookie, value, "/", time.Now().Add(30*24*time.Hour)))

	return c.JSON(http.StatusOK, echo.Map{
		"success":              true,
		"show_recommendations": next,
		"message":              message,
	})
}
