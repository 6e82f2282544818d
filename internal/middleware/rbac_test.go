package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/scholarsync/scholarsync-api/internal/models"
)

func performWithClaims(t *testing.T, claims *models.JWTClaims, path string, handlers ...gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
		c.Next()
	})
	chain := append(handlers, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/students/:roll", chain...)
	r.GET("/users/:id", chain...)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRBACAllowsRole(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}
	rec := performWithClaims(t, claims, "/students/2021A042", RequireRoles(models.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRBACDeniesRole(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleStudent}
	rec := performWithClaims(t, claims, "/students/2021A042", RequireRoles(models.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRBACDeniesMissingClaims(t *testing.T) {
	rec := performWithClaims(t, nil, "/students/2021A042", RequireRoles(models.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRBACSelfMatchesRollParam(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Identifier: "2021A042", Role: models.RoleStudent}
	rec := performWithClaims(t, claims, "/students/2021A042", RBAC(string(models.RoleAdmin), "SELF"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRBACSelfRejectsOtherRoll(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Identifier: "2021A042", Role: models.RoleStudent}
	rec := performWithClaims(t, claims, "/students/2021B001", RBAC(string(models.RoleAdmin), "SELF"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRBACSelfMatchesUserID(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleStudent}
	rec := performWithClaims(t, claims, "/users/u1", RBAC(string(models.RoleAdmin), "SELF"))
	assert.Equal(t, http.StatusOK, rec.Code)
}
