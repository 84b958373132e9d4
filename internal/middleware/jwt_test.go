package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/david16260/gestor-documental/internal/models"
	"github.com/david16260/gestor-documental/internal/service"
)

const testSecret = "test_secret"

func testAuthService() *service.AuthService {
	return service.NewAuthService(nil, nil, nil, service.AuthConfig{
		AccessTokenSecret: testSecret,
		AccessTokenExpiry: time.Hour,
		Issuer:            "gestor-documental",
	})
}

func signToken(t *testing.T, role models.UserRole, expiry time.Duration) string {
	t.Helper()
	claims := &models.JWTClaims{
		UserID: 7,
		Name:   "Prueba",
		Email:  "p@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newProtectedRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{JWT(testAuthService())}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		claims := c.MustGet(ContextUserKey).(*models.JWTClaims)
		c.JSON(http.StatusOK, gin.H{"usuario_id": claims.UserID})
	})
	r.GET("/protegido/:id", handlers...)
	return r
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	r := newProtectedRouter()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protegido/1", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTRejectsMalformedHeader(t *testing.T) {
	r := newProtectedRouter()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protegido/1", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	r := newProtectedRouter()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protegido/1", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleEditor, -time.Minute))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAcceptsValidToken(t *testing.T) {
	r := newProtectedRouter()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protegido/1", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleEditor, time.Hour))
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"usuario_id":7`)
}

func TestRBACBlocksViewerRole(t *testing.T) {
	r := newProtectedRouter(RequireRoles(models.RoleAdmin, models.RoleEditor))
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protegido/1", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleUsuario, time.Hour))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRBACAllowsSelfParam(t *testing.T) {
	r := newProtectedRouter(RBAC(string(models.RoleAdmin), "SELF"))
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protegido/7", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleUsuario, time.Hour))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/protegido/8", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleUsuario, time.Hour))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
