package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/auroramart/storefront/internal/models"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]string{
		"username":   "alice",
		"email":      "alice@example.com",
		"first_name": "Alice",
		"last_name":  "Tan",
		"password":   "secret123",
	}

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/register", payload)
	require.NoError(t, env.Auth.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.Equal(t, "alice", user.Username)
	require.Equal(t, "user", user.Role)
	require.NotEmpty(t, user.ID)

	var stored models.User
	require.NoError(t, env.DB.Where("username = ?", "alice").First(&stored).Error)
	require.NotEqual(t, "secret123", stored.PasswordHash)

	// duplicate username is rejected
	_, cDup := env.doJSONRequest(http.MethodPost, "/api/v1/register", payload)
	err := env.Auth.Register(cDup)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusConflict, he.Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("bob", "user")

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/login", map[string]string{
		"username": "bob",
		"password": "password",
	})
	require.NoError(t, env.Auth.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		IsAdmin      bool   `json:"is_admin"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.False(t, resp.IsAdmin)

	var stored models.RefreshToken
	require.NoError(t, env.DB.Where("token = ?", resp.RefreshToken).First(&stored).Error)
	require.False(t, stored.Revoked)

	cookies := rec.Result().Cookies()
	names := make(map[string]bool, len(cookies))
	for _, ck := range cookies {
		names[ck.Name] = true
	}
	require.True(t, names["accessToken"])
	require.True(t, names["refreshToken"])
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("bob", "user")

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/login", map[string]string{
		"username": "bob",
		"password": "wrong",
	})
	err := env.Auth.Login(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestLoginDisabledAccount(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("bob", "user")
	require.NoError(t, env.DB.Model(user).Update("is_active", false).Error)

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/login", map[string]string{
		"username": "bob",
		"password": "password",
	})
	err := env.Auth.Login(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusForbidden, he.Code)
}

func TestLogOutRevokesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("bob", "user")

	recLogin, cLogin := env.doJSONRequest(http.MethodPost, "/api/v1/login", map[string]string{
		"username": "bob",
		"password": "password",
	})
	require.NoError(t, env.Auth.Login(cLogin))

	var resp struct {
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(recLogin.Body.Bytes(), &resp))

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/logout", nil,
		&http.Cookie{Name: "refreshToken", Value: resp.RefreshToken})
	require.NoError(t, env.Auth.LogOut(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.RefreshToken
	require.NoError(t, env.DB.Where("token = ?", resp.RefreshToken).First(&stored).Error)
	require.True(t, stored.Revoked)
}
