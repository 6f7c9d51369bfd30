package basket

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/auroramart/storefront/internal/handlers"
	"github.com/auroramart/storefront/internal/models"
	"github.com/auroramart/storefront/internal/mykafka"
	"github.com/auroramart/storefront/internal/service/recommend"
)

const sessionCookie = "basketSession"

type BasketHandler struct {
	DB        *gorm.DB
	Producer  *mykafka.Producer
	JWTSecret []byte
	Recommend *recommend.Service
}

func (h *BasketHandler) publish(c echo.Context, topic string, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, topic, fmt.Sprint(event["basketID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

// resolveBasket finds the caller's open basket, creating one on demand.
// Logged-in users own their basket; anonymous sessions are keyed by a
// random cookie.
func (h *BasketHandler) resolveBasket(c echo.Context) (*models.Basket, error) {
	if userID, ok := handlers.CookieUserID(c, h.JWTSecret); ok {
		var basket models.Basket
		err := h.DB.Where("user_id = ? AND is_converted = ?", userID, false).First(&basket).Error
		if err == nil {
			return &basket, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		basket = models.Basket{UserID: &userID}
		if err := h.DB.Create(&basket).Error; err != nil {
			return nil, err
		}
		return &basket, nil
	}

	var key string
	if ck, err := c.Cookie(sessionCookie); err == nil && ck.Value != "" {
		key = ck.Value
		var basket models.Basket
		err := h.DB.Where("session_key = ? AND is_converted = ?", key, false).First(&basket).Error
		if err == nil {
			return &basket, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	} else {
		key = uuid.NewString()
		c.SetCookie(handlers.CreateCookie(sessionCookie, key, "/", time.Now().Add(30*24*time.Hour)))
	}

	basket := models.Basket{SessionKey: key}
	if err := h.DB.Create(&basket).Error; err != nil {
		return nil, err
	}
	return &basket, nil
}

type basketLine struct {
	models.BasketItem
	SKU         string  `json:"sku"`
	ProductName string  `json:"product_name"`
	LineTotal   float64 `json:"line_total"`
}

func (h *BasketHandler) basketLines(basket *models.Basket) ([]basketLine, float64, error) {
	var items []models.BasketItem
	if err := h.DB.Where("basket_id = ?", basket.ID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, 0, err
	}

	lines := make([]basketLine, 0, len(items))
	var subtotal float64
	for _, item := range items {
		var product models.Product
		if err := h.DB.First(&product, item.ProductID).Error; err != nil {
			continue
		}
		total := float64(item.Quantity) * item.UnitPrice
		subtotal += total
		lines = append(lines, basketLine{
			BasketItem:  item,
			SKU:         product.SKU,
			ProductName: product.Name,
			LineTotal:   total,
		})
	}
	return lines, subtotal, nil
}
