package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/auroramart/storefront/internal/models"
	"github.com/auroramart/storefront/internal/mykafka"
)

type ReviewHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *ReviewHandler) GetReviews(c echo.Context) error {
	sku := c.Param("sku")

	var product models.Product
	if err := h.DB.Where("sku = ?", sku).First(&product).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	var reviews []models.Review
	if err := h.DB.Where("product_id = ?", product.ID).Order("created_at DESC").Find(&reviews).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, reviews)
}

// CreateReview creates or replaces the calling user's review for a product.
// One review per user per product; the product's average rating is
// recomputed on every write.
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	userID, err := ContextUserID(c)
	if err != nil {
		return err
	}

	sku := c.Param("sku")
	var product models.Product
	if err := h.DB.Where("sku = ?", sku).First(&product).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if req.Rating < 1 || req.Rating > 5 {
		return echo.NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}

	review := models.Review{
		ProductID: product.ID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	status := http.StatusCreated
	var existing models.Review
	err = h.DB.Where("product_id = ? AND user_id = ?", product.ID, userID).First(&existing).Error
	switch {
	case err == nil:
		review.ID = existing.ID
		review.CreatedAt = existing.CreatedAt
		status = http.StatusOK
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.DB.Save(&review).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.refreshRating(&product); err != nil {
		c.Logger().Errorf("rating refresh error: %v", err)
	}

	if h.Producer != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		event := map[string]any{
			"type":      "review_posted",
			"userID":    userID,
			"productID": product.ID,
			"rating":    review.Rating,
		}
		if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(product.ID), event); err != nil {
			c.Logger().Errorf("Kafka publish error: %v", err)
		}
	}

	return c.JSON(status, review)
}

func (h *ReviewHandler) refreshRating(product *models.Product) error {
	var avg *float64
	err := h.DB.Model(&models.Review{}).
		Where("product_id = ?", product.ID).
		Select("AVG(rating)").
		Scan(&avg).Error
	if err != nil {
		return err
	}
	return h.DB.Model(product).Update("rating", avg).Error
}
