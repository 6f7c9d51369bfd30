package basket

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/auroramart/storefront/internal/config"
	"github.com/auroramart/storefront/internal/models"
	"github.com/auroramart/storefront/internal/service/recommend"
)

type testEnv struct {
	T       *testing.T
	E       *echo.Echo
	DB      *gorm.DB
	Handler *BasketHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	return &testEnv{
		T:  t,
		E:  echo.New(),
		DB: db,
		Handler: &BasketHandler{
			DB:        db,
			JWTSecret: []byte("test-jwt-secret"),
			Recommend: recommend.NewService(db, t.TempDir()),
		},
	}
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

func (env *testEnv) createProduct(sku, name string, price float64, stock uint) *models.Product {
	env.T.Helper()
	category := models.Category{Name: "Electronics " + sku, Slug: "electronics-" + sku}
	require.NoError(env.T, env.DB.Create(&category).Error)
	product := &models.Product{
		SKU:            sku,
		Name:           name,
		CategoryID:     category.ID,
		UnitPrice:      price,
		QuantityOnHand: stock,
		IsActive:       true,
	}
	require.NoError(env.T, env.DB.Create(product).Error)
	return product
}

// sessionFor returns the basketSession cookie a handler set on the
// recorder, so followup requests land on the same anonymous basket.
func sessionFor(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionCookie && ck.Value != "" {
			return ck
		}
	}
	t.Fatal("no basket session cookie set")
	return nil
}
