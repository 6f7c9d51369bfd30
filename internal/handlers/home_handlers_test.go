package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/auroramart/storefront/internal/models"
)

func TestOnboardingPredictsAndSetsCookie(t *testing.T) {
	env := newTestEnv(t)
	env.createCategory("Beauty & Personal Care")

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/onboarding", map[string]any{
		"age":                30,
		"gender":             "female",
		"employment_status":  "employed",
		"household_size":     2,
		"monthly_income_sgd": 4500,
	})
	require.NoError(t, env.Home.Onboarding(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// no artifact in the test env, the heuristic answers
	require.Equal(t, "Beauty & Personal Care", resp["predicted_category"])

	var labelCookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == onboardingCookie {
			labelCookie = ck
		}
	}
	require.NotNil(t, labelCookie)
	label, err := url.QueryUnescape(labelCookie.Value)
	require.NoError(t, err)
	require.Equal(t, "Beauty & Personal Care", label)
}

func TestOnboardingValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []map[string]any{
		{"age": 17, "household_size": 2},
		{"age": 121, "household_size": 2},
		{"age": 30, "household_size": 0},
		{"age": 30, "household_size": 21},
		{"age": 30, "household_size": 2, "monthly_income_sgd": -1},
	}
	for _, payload := range cases {
		_, c := env.doJSONRequest(http.MethodPost, "/api/v1/onboarding", payload)
		err := env.Home.Onboarding(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		require.Equal(t, http.StatusBadRequest, he.Code)
	}
}

func TestOnboardingSavesProfileForUser(t *testing.T) {
	env := newTestEnv(t)
	cat := env.createCategory("Electronics")
	alice := env.createUser("alice", "user")

	// the route carries no auth middleware, only the access cookie
	// identifies the customer
	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/onboarding", map[string]any{
		"age":            40,
		"gender":         "male",
		"household_size": 3,
	}, env.accessCookieFor(alice))
	require.NoError(t, env.Home.Onboarding(c))

	var profile models.CustomerProfile
	require.NoError(t, env.DB.Where("user_id = ?", alice.ID).First(&profile).Error)
	require.Equal(t, uint(40), profile.Age)
	require.Equal(t, "Electronics", profile.PreferredLabel)
	require.NotNil(t, profile.PreferredCategory)
	require.Equal(t, cat.ID, *profile.PreferredCategory)
}

func TestOnboardingAnonymousSkipsProfile(t *testing.T) {
	env := newTestEnv(t)
	env.createCategory("Electronics")

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/onboarding", map[string]any{
		"age":            40,
		"gender":         "male",
		"household_size": 3,
	})
	require.NoError(t, env.Home.Onboarding(c))

	var count int64
	require.NoError(t, env.DB.Model(&models.CustomerProfile{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestToggleRecommendations(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/recommendations/toggle", nil)
	require.NoError(t, env.Home.ToggleRecommendations(c))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, true, resp["show_recommendations"])

	var cookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == toggleCookie {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	require.Equal(t, "1", cookie.Value)

	// toggling again flips it back off
	rec, c = env.doJSONRequest(http.MethodPost, "/api/v1/recommendations/toggle", nil, cookie)
	require.NoError(t, env.Home.ToggleRecommendations(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, false, resp["show_recommendations"])
}

func TestHomePersonalizedBlock(t *testing.T) {
	env := newTestEnv(t)
	electronics := env.createCategory("Electronics")
	beauty := env.createCategory("Beauty")
	env.createProduct("EL-001", "Headphones", electronics.ID, 199.90, 10, 4.5)
	env.createProduct("BT-001", "Face Cream", beauty.ID, 25.00, 50, 4.9)

	// toggle off: trending block
	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/home", nil)
	require.NoError(t, env.Home.Home(c))
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, false, resp["show_recommendations"])
	require.Contains(t, resp, "trending_products")
	require.NotContains(t, resp, "recommended_products")

	// toggle on with an onboarding label: personalized block
	rec, c = env.doJSONRequest(http.MethodGet, "/api/v1/home", nil,
		&http.Cookie{Name: toggleCookie, Value: "1"},
		&http.Cookie{Name: onboardingCookie, Value: url.QueryEscape("Electronics")},
	)
	require.NoError(t, env.Home.Home(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, true, resp["show_recommendations"])
	require.Equal(t, "Electronics", resp["onboarding_category"])

	recommended, ok := resp["recommended_products"].([]any)
	require.True(t, ok)
	require.Len(t, recommended, 1)
	first, ok := recommended[0].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "EL-001", first["sku"])
}
