package basket

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/auroramart/storefront/internal/models"
)

func (h *BasketHandler) GetBasket(c echo.Context) error {
	basket, err := h.resolveBasket(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	lines, subtotal, err := h.basketLines(basket)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var recommendations []models.Product
	if h.Recommend != nil {
		skus := make([]string, 0, len(lines))
		for _, line := range lines {
			skus = append(skus, line.SKU)
		}
		recommendations = h.Recommend.RecommendAssociated(c.Request().Context(), skus, 4)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"basket":          basket,
		"items":           lines,
		"subtotal":        subtotal,
		"recommendations": recommendations,
	})
}

// AddItem puts a product into the basket. Quantities merge and are capped
// at the quantity on hand; the captured unit price follows the catalog.
func (h *BasketHandler) AddItem(c echo.Context) error {
	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	var product models.Product
	if err := h.DB.Where("id = ? AND is_active = ?", req.ProductID, true).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if product.QuantityOnHand == 0 {
		return echo.NewHTTPError(http.StatusConflict, "product out of stock")
	}
	if req.Quantity > product.QuantityOnHand {
		return echo.NewHTTPError(http.StatusConflict, "only "+strconv.FormatUint(uint64(product.QuantityOnHand), 10)+" units available in stock")
	}

	basket, err := h.resolveBasket(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var item models.BasketItem
	tx := h.DB.Where("basket_id = ? AND product_id = ?", basket.ID, product.ID).First(&item)
	if tx.Error == nil {
		item.Quantity += req.Quantity
		if item.Quantity > product.QuantityOnHand {
			item.Quantity = product.QuantityOnHand
		}
		item.UnitPrice = product.UnitPrice
		if err := h.DB.Save(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	} else if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		item = models.BasketItem{
			BasketID:  basket.ID,
			ProductID: product.ID,
			Quantity:  req.Quantity,
			UnitPrice: product.UnitPrice,
		}
		if err := h.DB.Create(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	} else {
		return echo.NewHTTPError(http.StatusInternalServerError, tx.Error.Error())
	}

	h.publish(c, "basket_events", map[string]any{
		"type":      "basket_item_added",
		"basketID":  basket.ID,
		"productID": product.ID,
		"sku":       product.SKU,
		"quantity":  item.Quantity,
	})

	return c.JSON(http.StatusOK, item)
}

// UpdateItem sets a line's quantity. Zero removes the line; anything above
// the quantity on hand is clamped.
func (h *BasketHandler) UpdateItem(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Quantity uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	basket, err := h.resolveBasket(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var item models.BasketItem
	if err := h.DB.Where("id = ? AND basket_id = ?", id, basket.ID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if req.Quantity == 0 {
		if err := h.DB.Delete(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		h.publish(c, "basket_events", map[string]any{
			"type":     "basket_item_removed",
			"basketID": basket.ID,
			"itemID":   item.ID,
		})
		return c.NoContent(http.StatusNoContent)
	}

	var product models.Product
	if err := h.DB.First(&product, item.ProductID).Error; err == nil {
		if product.QuantityOnHand > 0 && req.Quantity > product.QuantityOnHand {
			req.Quantity = product.QuantityOnHand
		}
	}

	item.Quantity = req.Quantity
	if err := h.DB.Save(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, "basket_events", map[string]any{
		"type":     "basket_item_updated",
		"basketID": basket.ID,
		"itemID":   item.ID,
		"quantity": item.Quantity,
	})
	return c.JSON(http.StatusOK, item)
}

func (h *BasketHandler) RemoveItem(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	basket, err := h.resolveBasket(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var item models.BasketItem
	if err := h.DB.Where("id = ? AND basket_id = ?", id, basket.ID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.DB.Delete(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, "basket_events", map[string]any{
		"type":     "basket_item_removed",
		"basketID": basket.ID,
		"itemID":   item.ID,
	})
	return c.NoContent(http.StatusNoContent)
}
