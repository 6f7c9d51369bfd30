package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/auroramart/storefront/internal/models"
)

func TestCreateCategoryAndSubcategory(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/admin/categories", map[string]any{
		"name": "Beauty & Personal Care",
	})
	require.NoError(t, env.Category.CreateCategory(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var category models.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &category))
	require.Equal(t, "beauty-personal-care", category.Slug)

	rec, c = env.doJSONRequest(http.MethodPost, "/api/v1/admin/subcategories", map[string]any{
		"category_id": category.ID,
		"name":        "Skincare",
	})
	require.NoError(t, env.Category.CreateSubcategory(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var sub models.Subcategory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
	require.Equal(t, "beauty-personal-care-skincare", sub.Slug)

	// duplicate category names collide
	_, c = env.doJSONRequest(http.MethodPost, "/api/v1/admin/categories", map[string]any{
		"name": "Beauty & Personal Care",
	})
	err := env.Category.CreateCategory(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusConflict, he.Code)
}

func TestGetCategoriesWithCounts(t *testing.T) {
	env := newTestEnv(t)
	electronics := env.createCategory("Electronics")
	env.createCategory("Beauty")
	env.createProduct("EL-001", "Headphones", electronics.ID, 199.90, 10, 4.5)
	env.createProduct("EL-002", "Speaker", electronics.ID, 89.00, 5, 4.8)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/categories", nil)
	require.NoError(t, env.Category.GetCategories(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Categories []struct {
			Name         string `json:"name"`
			ProductCount int64  `json:"product_count"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Categories, 2)
	require.Equal(t, "Beauty", resp.Categories[0].Name)
	require.Equal(t, int64(0), resp.Categories[0].ProductCount)
	require.Equal(t, "Electronics", resp.Categories[1].Name)
	require.Equal(t, int64(2), resp.Categories[1].ProductCount)
}

func TestDeleteCategoryWithProducts(t *testing.T) {
	env := newTestEnv(t)
	electronics := env.createCategory("Electronics")
	env.createProduct("EL-001", "Headphones", electronics.ID, 199.90, 10, 4.5)

	_, c := env.doJSONRequest(http.MethodDelete, "/api/v1/admin/categories/1", nil)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(electronics.ID))
	err := env.Category.DeleteCategory(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusConflict, he.Code)

	// empty categories go away together with their subcategories
	empty := env.createCategory("Empty")
	require.NoError(t, env.DB.Create(&models.Subcategory{
		CategoryID: empty.ID, Name: "Nothing", Slug: "empty-nothing",
	}).Error)

	rec, c := env.doJSONRequest(http.MethodDelete, "/api/v1/admin/categories/2", nil)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(empty.ID))
	require.NoError(t, env.Category.DeleteCategory(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var subs int64
	require.NoError(t, env.DB.Model(&models.Subcategory{}).Count(&subs).Error)
	require.Equal(t, int64(0), subs)
}
