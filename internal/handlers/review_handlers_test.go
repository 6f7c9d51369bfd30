package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/auroramart/storefront/internal/models"
)

func TestCreateReviewAndRatingRefresh(t *testing.T) {
	env := newTestEnv(t)
	category := env.createCategory("Electronics")
	prod := env.createProduct("EL-001", "Headphones", category.ID, 199.90, 10, 0)
	alice := env.createUser("alice", "user")
	bob := env.createUser("bob", "user")

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/account/products/EL-001/reviews", map[string]any{
		"rating":  5,
		"comment": "excellent",
	})
	c.SetParamNames("sku")
	c.SetParamValues("EL-001")
	c.Set("userID", alice.ID)
	require.NoError(t, env.Review.CreateReview(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, c = env.doJSONRequest(http.MethodPost, "/api/v1/account/products/EL-001/reviews", map[string]any{
		"rating":  3,
		"comment": "decent",
	})
	c.SetParamNames("sku")
	c.SetParamValues("EL-001")
	c.Set("userID", bob.ID)
	require.NoError(t, env.Review.CreateReview(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var refreshed models.Product
	require.NoError(t, env.DB.First(&refreshed, prod.ID).Error)
	require.NotNil(t, refreshed.Rating)
	require.InDelta(t, 4.0, *refreshed.Rating, 0.001)
}

func TestCreateReviewReplacesOwnReview(t *testing.T) {
	env := newTestEnv(t)
	category := env.createCategory("Electronics")
	prod := env.createProduct("EL-001", "Headphones", category.ID, 199.90, 10, 0)
	alice := env.createUser("alice", "user")

	for _, rating := range []int{2, 5} {
		rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/account/products/EL-001/reviews", map[string]any{
			"rating": rating,
		})
		c.SetParamNames("sku")
		c.SetParamValues("EL-001")
		c.Set("userID", alice.ID)
		require.NoError(t, env.Review.CreateReview(c))
		if rating == 2 {
			require.Equal(t, http.StatusCreated, rec.Code)
		} else {
			require.Equal(t, http.StatusOK, rec.Code)
		}
	}

	var count int64
	require.NoError(t, env.DB.Model(&models.Review{}).Where("product_id = ?", prod.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)

	var review models.Review
	require.NoError(t, env.DB.Where("product_id = ? AND user_id = ?", prod.ID, alice.ID).First(&review).Error)
	require.Equal(t, 5, review.Rating)

	var refreshed models.Product
	require.NoError(t, env.DB.First(&refreshed, prod.ID).Error)
	require.NotNil(t, refreshed.Rating)
	require.InDelta(t, 5.0, *refreshed.Rating, 0.001)
}

func TestCreateReviewRatingBounds(t *testing.T) {
	env := newTestEnv(t)
	category := env.createCategory("Electronics")
	env.createProduct("EL-001", "Headphones", category.ID, 199.90, 10, 0)
	alice := env.createUser("alice", "user")

	for _, rating := range []int{0, 6, -1} {
		_, c := env.doJSONRequest(http.MethodPost, "/api/v1/account/products/EL-001/reviews", map[string]any{
			"rating": rating,
		})
		c.SetParamNames("sku")
		c.SetParamValues("EL-001")
		c.Set("userID", alice.ID)
		err := env.Review.CreateReview(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		require.Equal(t, http.StatusBadRequest, he.Code)
	}
}

func TestGetReviews(t *testing.T) {
	env := newTestEnv(t)
	category := env.createCategory("Electronics")
	prod := env.createProduct("EL-001", "Headphones", category.ID, 199.90, 10, 0)
	alice := env.createUser("alice", "user")
	require.NoError(t, env.DB.Create(&models.Review{
		ProductID: prod.ID, UserID: alice.ID, Rating: 4, Comment: "good",
	}).Error)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/products/EL-001/reviews", nil)
	c.SetParamNames("sku")
	c.SetParamValues("EL-001")
	require.NoError(t, env.Review.GetReviews(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var reviews []models.Review
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reviews))
	require.Len(t, reviews, 1)
	require.Equal(t, "good", reviews[0].Comment)
}
