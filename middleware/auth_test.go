package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hotel-reservation/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticator_IssueAndParse(t *testing.T) {
	auth := NewAuthenticator("secret")

	token, err := auth.IssueToken(42, services.RoleManager, 3, time.Hour)
	require.NoError(t, err)

	actor, err := auth.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, services.Actor{UserID: 42, Role: services.RoleManager, HotelID: 3}, actor)
}

func TestAuthenticator_ParseRejects(t *testing.T) {
	auth := NewAuthenticator("secret")

	expired, err := auth.IssueToken(1, services.RoleCustomer, 0, -time.Minute)
	require.NoError(t, err)
	otherKey, err := NewAuthenticator("other").IssueToken(1, services.RoleCustomer, 0, time.Hour)
	require.NoError(t, err)
	system, err := auth.IssueToken(1, services.RoleSystem, 0, time.Hour)
	require.NoError(t, err)
	anonymous, err := auth.IssueToken(0, services.RoleCustomer, 0, time.Hour)
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1, Role: "customer"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":       "",
		"garbage":     "not.a.jwt",
		"expired":     expired,
		"wrong key":   otherKey,
		"system role": system,
		"no user":     anonymous,
		"alg none":    unsigned,
	} {
		_, err := auth.Parse(token)
		assert.Error(t, err, name)
	}
}

func TestAuthenticator_ParseNormalisesRole(t *testing.T) {
	auth := NewAuthenticator("secret")
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: 9,
		Role:   "Customer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	actor, err := auth.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, services.RoleCustomer, actor.Role)
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := NewAuthenticator("secret")

	r := gin.New()
	r.GET("/me", auth.RequireAuth(), func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user": actor.UserID, "role": actor.Role})
	})

	token, err := auth.IssueToken(7, services.RoleCustomer, 0, time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tc.status == http.StatusOK {
				assert.Equal(t, float64(7), body["user"])
				return
			}
			assert.Equal(t, false, body["success"])
			errBody := body["error"].(map[string]interface{})
			assert.Equal(t, "error.unauthenticated", errBody["code"])
		})
	}
}
