package basket

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/auroramart/storefront/internal/handlers"
	"github.com/auroramart/storefront/internal/models"
)

type shippingAddress struct {
	FullName      string `json:"full_name"`
	AddressLine1  string `json:"address_line_1"`
	AddressLine2  string `json:"address_line_2"`
	City          string `json:"city"`
	PostalCode    string `json:"postal_code"`
	ContactNumber string `json:"contact_number"`
}

type paymentDetails struct {
	CardholderName string `json:"cardholder_name"`
	CardNumber     string `json:"card_number"`
	ExpiryMonth    int    `json:"expiry_month"`
	ExpiryYear     int    `json:"expiry_year"`
	CVV            string `json:"cvv"`
}

func (h *BasketHandler) checkoutState(basketID uint) (*models.CheckoutState, error) {
	var state models.CheckoutState
	err := h.DB.Where("basket_id = ?", basketID).First(&state).Error
	if err == nil {
		return &state, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return &models.CheckoutState{BasketID: basketID}, nil
}

func (h *BasketHandler) Shipping(c echo.Context) error {
	var req shippingAddress
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if req.FullName == "" || req.AddressLine1 == "" || req.City == "" ||
		req.PostalCode == "" || req.ContactNumber == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "all shipping fields except address_line_2 are required")
	}

	basket, err := h.resolveBasket(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	state, err := h.checkoutState(basket.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	data, _ := json.Marshal(req)
	state.ShippingJSON = string(data)
	if err := h.DB.Save(state).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"shipping": req, "next": "payment"})
}

// Payment captures card details for the review step. Only the last four
// digits are retained and the CVV is never stored.
func (h *BasketHandler) Payment(c echo.Context) error {
	var req paymentDetails
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	digits := strings.ReplaceAll(req.CardNumber, " ", "")
	if len(digits) < 12 || len(digits) > 19 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid card number")
	}
	if req.ExpiryMonth < 1 || req.ExpiryMonth > 12 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid expiry month")
	}
	now := time.Now()
	if req.ExpiryYear < now.Year() ||
		(req.ExpiryYear == now.Year() && time.Month(req.ExpiryMonth) < now.Month()) {
		return echo.NewHTTPError(http.StatusBadRequest, "card expired")
	}
	if req.CardholderName == "" || req.CVV == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "cardholder name and cvv are required")
	}

	basket, err := h.resolveBasket(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	state, err := h.checkoutState(basket.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	masked := paymentDetails{
		CardholderName: req.CardholderName,
		CardNumber:     "**** **** **** " + digits[len(digits)-4:],
		ExpiryMonth:    req.ExpiryMonth,
		ExpiryYear:     req.ExpiryYear,
		CVV:            "***",
	}
	data, _ := json.Marshal(masked)
	state.PaymentJSON = string(data)
	if err := h.DB.Save(state).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"payment": masked, "next": "review"})
}

func (h *BasketHandler) Review(c echo.Context) error {
	basket, err := h.resolveBasket(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	lines, subtotal, err := h.basketLines(basket)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if len(lines) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "basket is empty")
	}

	state, err := h.checkoutState(basket.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := map[string]any{
		"basket":   basket,
		"items":    lines,
		"subtotal": subtotal,
	}
	if state.ShippingJSON != "" {
		var shipping shippingAddress
		_ = json.Unmarshal([]byte(state.ShippingJSON), &shipping)
		resp["shipping"] = shipping
	}
	if state.PaymentJSON != "" {
		var payment paymentDetails
		_ = json.Unmarshal([]byte(state.PaymentJSON), &payment)
		resp["payment"] = payment
	}

	return c.JSON(http.StatusOK, resp)
}

// Confirm converts the basket to an immutable order: totals come from the
// captured line prices, stock is decremented and the basket is marked
// converted, all inside one transaction.
func (h *BasketHandler) Confirm(c echo.Context) error {
	basket, err := h.resolveBasket(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	state, err := h.checkoutState(basket.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if state.ShippingJSON == "" || state.PaymentJSON == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "please complete the checkout steps")
	}

	var (
		order      models.Order
		orderItems []models.OrderItem
	)

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var items []models.BasketItem
		if err := tx.Where("basket_id = ?", basket.ID).Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "basket is empty")
		}

		var total float64
		for _, item := range items {
			total += float64(item.Quantity) * item.UnitPrice

			var product models.Product
			if err := tx.First(&product, item.ProductID).Error; err != nil {
				continue
			}
			if product.QuantityOnHand >= item.Quantity {
				product.QuantityOnHand -= item.Quantity
				if err := tx.Save(&product).Error; err != nil {
					return err
				}
			}
		}

		order = models.Order{
			BasketID:    basket.ID,
			UserID:      basket.UserID,
			OrderNumber: newOrderNumber(),
			Total:       total,
			Status:      "Placed",
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		orderItems = make([]models.OrderItem, 0, len(items))
		for _, item := range items {
			oi := models.OrderItem{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			}
			if err := tx.Create(&oi).Error; err != nil {
				return err
			}
			orderItems = append(orderItems, oi)
		}

		basket.IsConverted = true
		if err := tx.Save(basket).Error; err != nil {
			return err
		}

		return tx.Where("basket_id = ?", basket.ID).Delete(&models.CheckoutState{}).Error
	})
	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	// the session basket is gone, drop the cookie
	c.SetCookie(handlers.CreateCookie(sessionCookie, "", "/", time.Now().Add(-1*time.Hour)))

	h.publish(c, "order_events", map[string]any{
		"type":        "order_created",
		"basketID":    basket.ID,
		"orderID":     order.ID,
		"orderNumber": order.OrderNumber,
		"total":       order.Total,
	})

	return c.JSON(http.StatusCreated, map[string]any{
		"order_number": order.OrderNumber,
		"total":        order.Total,
		"status":       order.Status,
		"items":        orderItems,
	})
}

func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return "ORD-" + suffix
}
