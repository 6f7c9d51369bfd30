package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/auroramart/storefront/internal/models"
	"github.com/auroramart/storefront/internal/util"
)

type CustomerHandler struct {
	DB *gorm.DB
}

func (h *CustomerHandler) GetProfile(c echo.Context) error {
	userID, err := ContextUserID(c)
	if err != nil {
		return err
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	resp := map[string]any{"user": user}

	var profile models.CustomerProfile
	if err := h.DB.Where("user_id = ?", userID).First(&profile).Error; err == nil {
		resp["profile"] = profile
		resp["has_profile"] = true
	} else {
		resp["has_profile"] = false
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *CustomerHandler) UpdateProfile(c echo.Context) error {
	userID, err := ContextUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		Email            string   `json:"email"`
		FirstName        string   `json:"first_name"`
		LastName         string   `json:"last_name"`
		Age              *uint    `json:"age"`
		Gender           *string  `json:"gender"`
		EmploymentStatus *string  `json:"employment_status"`
		Occupation       *string  `json:"occupation"`
		Education        *string  `json:"education"`
		HouseholdSize    *uint    `json:"household_size"`
		HasChildren      *bool    `json:"has_children"`
		MonthlyIncomeSGD *float64 `json:"monthly_income_sgd"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if err := h.DB.Save(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var profile models.CustomerProfile
	if err := h.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		profile = models.CustomerProfile{UserID: userID}
	}
	if req.Age != nil {
		profile.Age = *req.Age
	}
	if req.Gender != nil {
		profile.Gender = *req.Gender
	}
	if req.EmploymentStatus != nil {
		profile.EmploymentStatus = *req.EmploymentStatus
	}
	if req.Occupation != nil {
		profile.Occupation = *req.Occupation
	}
	if req.Education != nil {
		profile.Education = *req.Education
	}
	if req.HouseholdSize != nil {
		profile.HouseholdSize = *req.HouseholdSize
	}
	if req.HasChildren != nil {
		profile.HasChildren = *req.HasChildren
	}
	if req.MonthlyIncomeSGD != nil {
		profile.MonthlyIncomeSGD = *req.MonthlyIncomeSGD
	}
	if err := h.DB.Save(&profile).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{"user": user, "profile": profile})
}

func (h *CustomerHandler) GetOrders(c echo.Context) error {
	userID, err := ContextUserID(c)
	if err != nil {
		return err
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), 10)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.Order{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var orders []models.Order
	if err := h.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": orders,
		"meta": map[string]any{
			"page":  page,
			"size":  limit,
			"total": total,
		},
	})
}

func (h *CustomerHandler) GetOrder(c echo.Context) error {
	userID, err := ContextUserID(c)
	if err != nil {
		return err
	}

	number := c.Param("number")
	var order models.Order
	if err := h.DB.Where("order_number = ? AND user_id = ?", number, userID).First(&order).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}

	var items []models.OrderItem
	if err := h.DB.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{"order": order, "items": items})
}

// Staff endpoints.

func (h *CustomerHandler) ListCustomers(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), 25)
	offset, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.User{}).Where("role = ?", "user")
	if search := c.QueryParam("q"); search != "" {
		like := "%" + search + "%"
		q = q.Where("LOWER(username) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?) OR LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?)",
			like, like, like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var customers []models.User
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&customers).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": customers,
		"meta": map[string]any{
			"page":  page,
			"size":  limit,
			"total": total,
		},
	})
}

func (h *CustomerHandler) GetCustomer(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var customer models.User
	if err := h.DB.Where("id = ? AND role = ?", id, "user").First(&customer).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "customer not found")
	}

	resp := map[string]any{"customer": customer}

	var profile models.CustomerProfile
	if err := h.DB.Where("user_id = ?", customer.ID).First(&profile).Error; err == nil {
		resp["profile"] = profile
	}

	var orders []models.Order
	if err := h.DB.Where("user_id = ?", customer.ID).
		Order("created_at DESC").
		Limit(10).
		Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp["orders"] = orders

	return c.JSON(http.StatusOK, resp)
}

func (h *CustomerHandler) ToggleCustomerActive(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var customer models.User
	if err := h.DB.Where("id = ? AND role = ?", id, "user").First(&customer).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "customer not found")
	}

	customer.IsActive = !customer.IsActive
	if err := h.DB.Save(&customer).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, customer)
}
