package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/auroramart/storefront/internal/config"
	"github.com/auroramart/storefront/internal/hash"
	"github.com/auroramart/storefront/internal/models"
	"github.com/auroramart/storefront/internal/service/recommend"
)

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB

	Auth     *AuthHandler
	Product  *ProductHandler
	Category *CategoryHandler
	Review   *ReviewHandler
	Customer *CustomerHandler
	Home     *HomeHandler

	JWTSecret, RefreshSecret []byte
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	jwtSecret := []byte("test-jwt-secret")
	refreshSecret := []byte("test-refresh-secret")

	recommender := recommend.NewService(db, t.TempDir())

	env := &testEnv{
		T:             t,
		E:             echo.New(),
		DB:            db,
		JWTSecret:     jwtSecret,
		RefreshSecret: refreshSecret,
	}
	env.Auth = &AuthHandler{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret}
	env.Product = &ProductHandler{DB: db, Recommend: recommender}
	env.Category = &CategoryHandler{DB: db}
	env.Review = &ReviewHandler{DB: db}
	env.Customer = &CustomerHandler{DB: db}
	env.Home = &HomeHandler{DB: db, Recommend: recommender, JWTSecret: jwtSecret}

	return env
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) createUser(username, role string) *models.User {
	env.T.Helper()
	passwordHash, err := hash.HashPassword("password")
	require.NoError(env.T, err)
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(env.T, env.DB.Create(user).Error)
	return user
}

// accessCookieFor signs a short-lived access token for the user, the way
// Login would set it.
func (env *testEnv) accessCookieFor(user *models.User) *http.Cookie {
	env.T.Helper()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"exp":  time.Now().Add(15 * time.Minute).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(env.JWTSecret)
	require.NoError(env.T, err)
	return &http.Cookie{Name: "accessToken", Value: signed}
}

func (env *testEnv) createCategory(name string) *models.Category {
	env.T.Helper()
	category := &models.Category{Name: name, Slug: slugOf(name)}
	require.NoError(env.T, env.DB.Create(category).Error)
	return category
}

func slugOf(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+'a'-'A')
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			out = append(out, r)
		default:
			out = append(out, '-')
		}
	}
	return string(out)
}

func (env *testEnv) createProduct(sku, name string, categoryID uint, price float64, stock uint, rating float64) *models.Product {
	env.T.Helper()
	product := &models.Product{
		SKU:            sku,
		Name:           name,
		CategoryID:     categoryID,
		UnitPrice:      price,
		QuantityOnHand: stock,
		IsActive:       true,
	}
	if rating > 0 {
		product.Rating = &rating
	}
	require.NoError(env.T, env.DB.Create(product).Error)
	return product
}
