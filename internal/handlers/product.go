package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/auroramart/storefront/internal/es"
	"github.com/auroramart/storefront/internal/models"
	"github.com/auroramart/storefront/internal/mykafka"
	"github.com/auroramart/storefront/internal/service/recommend"
	"github.com/auroramart/storefront/internal/util"
)

type ProductHandler struct {
	DB        *gorm.DB
	Producer  *mykafka.Producer
	ES        *elasticsearch.Client
	Recommend *recommend.Service
}

type productPayload struct {
	SKU            string   `json:"sku"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	CategoryID     uint     `json:"category_id"`
	SubcategoryID  *uint    `json:"subcategory_id"`
	UnitPrice      float64  `json:"unit_price"`
	Rating         *float64 `json:"rating"`
	QuantityOnHand uint     `json:"quantity_on_hand"`
	ReorderQty     uint     `json:"reorder_quantity"`
	IsActive       *bool    `json:"is_active"`
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["productID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *ProductHandler) index(c echo.Context, p *models.Product) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := es.IndexProduct(ctx, h.ES, p); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
}

// GetProducts lists active products with the storefront filters: free-text
// q over name/description/sku, category and subcategory slugs, sort order.
// When the recommendation toggle is on and an onboarding category is known,
// the listing narrows to the predicted category.
func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.Product{}).Where("is_active = ?", true)

	if search := c.QueryParam("q"); search != "" {
		like := "%" + search + "%"
		q = q.Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR LOWER(sku) LIKE LOWER(?)",
			like, like, like)
	}
	if slug := c.QueryParam("category"); slug != "" {
		var cat models.Category
		if err := h.DB.Where("slug = ?", slug).First(&cat).Error; err == nil {
			q = q.Where("category_id = ?", cat.ID)
		}
	} else if label, on := recommendationFilter(c); on {
		var cat models.Category
		if err := h.DB.Where("LOWER(name) = LOWER(?)", label).First(&cat).Error; err == nil {
			q = q.Where("category_id = ?", cat.ID)
		}
	}
	if slug := c.QueryParam("subcategory"); slug != "" {
		var sub models.Subcategory
		if err := h.DB.Where("slug = ?", slug).First(&sub).Error; err == nil {
			q = q.Where("subcategory_id = ?", sub.ID)
		}
	}

	switch c.QueryParam("sort") {
	case "-name":
		q = q.Order("name DESC")
	case "price":
		q = q.Order("unit_price ASC")
	case "-price":
		q = q.Order("unit_price DESC")
	default:
		q = q.Order("name ASC")
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var items []models.Product
	if err := q.Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// "complete the set" block for the current page
	skus := make([]string, 0, len(items))
	for _, p := range items {
		skus = append(skus, p.SKU)
	}
	var nextBest []models.Product
	if h.Recommend != nil && len(skus) > 0 {
		nextBest = h.Recommend.RecommendAssociated(c.Request().Context(), skus, 4)
		if label, on := recommendationFilter(c); on {
			nextBest = h.filterByCategoryLabel(c, nextBest, label, skus)
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data":             items,
		"next_best_action": nextBest,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

// filterByCategoryLabel narrows recommendations to the predicted category
// and tops the list back up from that category's best-rated products.
func (h *ProductHandler) filterByCategoryLabel(c echo.Context, products []models.Product, label string, excludeSKUs []string) []models.Product {
	var cat models.Category
	if err := h.DB.Where("LOWER(name) = LOWER(?)", label).First(&cat).Error; err != nil {
		return products
	}

	kept := products[:0]
	for _, p := range products {
		if p.CategoryID == cat.ID {
			kept = append(kept, p)
		}
	}

	if len(kept) < 4 {
		exclude := append([]string{}, excludeSKUs...)
		for _, p := range kept {
			exclude = append(exclude, p.SKU)
		}
		var extra []models.Product
		q := h.DB.Where("is_active = ? AND category_id = ?", true, cat.ID)
		if len(exclude) > 0 {
			q = q.Where("sku NOT IN ?", exclude)
		}
		if err := q.Order("rating DESC NULLS LAST").
			Order("quantity_on_hand DESC").
			Limit(4 - len(kept)).
			Find(&extra).Error; err == nil {
			kept = append(kept, extra...)
		}
	}
	return kept
}

// GetProduct returns the product detail page payload: the product itself,
// its reviews and "complete the set" recommendations.
func (h *ProductHandler) GetProduct(c echo.Context) error {
	sku := c.Param("sku")

	var product models.Product
	if err := h.DB.Where("sku = ? AND is_active = ?", sku, true).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var reviews []models.Review
	if err := h.DB.Where("product_id = ?", product.ID).Order("created_at DESC").Find(&reviews).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var recommendations []models.Product
	if h.Recommend != nil {
		recommendations = h.Recommend.RecommendAssociated(c.Request().Context(), []string{product.SKU}, 4)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"product":         product,
		"reviews":         reviews,
		"recommendations": recommendations,
	})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req productPayload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if req.SKU == "" || req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "sku and name are required")
	}

	var existing models.Product
	if err := h.DB.Where("sku = ?", req.SKU).First(&existing).Error; err == nil {
		return echo.NewHTTPError(http.StatusConflict, "sku already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	prod := models.Product{
		SKU:            req.SKU,
		Name:           req.Name,
		Description:    req.Description,
		CategoryID:     req.CategoryID,
		SubcategoryID:  req.SubcategoryID,
		UnitPrice:      req.UnitPrice,
		Rating:         req.Rating,
		QuantityOnHand: req.QuantityOnHand,
		ReorderQty:     req.ReorderQty,
		IsActive:       active,
	}

	if err := h.DB.Create(&prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.index(c, &prod)
	h.publish(c, map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"sku":       prod.SKU,
		"name":      prod.Name,
	})

	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	sku := c.Param("sku")

	var prod models.Product
	if err := h.DB.Where("sku = ?", sku).First(&prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	var req productPayload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	if req.Name != "" {
		prod.Name = req.Name
	}
	if req.Description != "" {
		prod.Description = req.Description
	}
	if req.CategoryID != 0 {
		prod.CategoryID = req.CategoryID
	}
	if req.SubcategoryID != nil {
		prod.SubcategoryID = req.SubcategoryID
	}
	if req.UnitPrice != 0 {
		prod.UnitPrice = req.UnitPrice
	}
	if req.Rating != nil {
		prod.Rating = req.Rating
	}
	if req.QuantityOnHand != 0 {
		prod.QuantityOnHand = req.QuantityOnHand
	}
	if req.ReorderQty != 0 {
		prod.ReorderQty = req.ReorderQty
	}
	if req.IsActive != nil {
		prod.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.index(c, &prod)
	h.publish(c, map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"sku":       prod.SKU,
		"name":      prod.Name,
	})

	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	sku := c.Param("sku")

	var prod models.Product
	if err := h.DB.Where("sku = ?", sku).First(&prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err := h.DB.Delete(&prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if h.ES != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if err := es.DeleteProduct(ctx, h.ES, prod.ID); err != nil {
			c.Logger().Errorf("ES delete error: %v", err)
		}
	}
	h.publish(c, map[string]any{
		"type":      "product_deleted",
		"productID": prod.ID,
		"sku":       prod.SKU,
	})

	return c.NoContent(http.StatusNoContent)
}
