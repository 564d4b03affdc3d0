package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/culokossa/culib-api/internal/models"
	"github.com/culokossa/culib-api/internal/service"
)

type stubUserRepo struct{ user models.User }

func (s *stubUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if username == s.user.Username {
		user := s.user
		return &user, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubUserRepo) FindByID(_ context.Context, id int) (*models.User, error) {
	if id == s.user.ID {
		user := s.user
		return &user, nil
	}
	return nil, sql.ErrNoRows
}

func newAuthService(t *testing.T) *service.AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &stubUserRepo{user: models.User{ID: 1, Username: "admin", PasswordHash: string(hash), Name: "Administrateur", Role: models.RoleAdmin}}
	return service.NewAuthService(repo, nil, nil, service.AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
	})
}

func protectedRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", JWT(newAuthService(t)), func(c *gin.Context) {
		claims, _ := c.Get(ContextUserKey)
		user := claims.(*models.JWTClaims)
		c.JSON(http.StatusOK, gin.H{"username": user.Username})
	})
	return r
}

func TestJWTMiddlewareMissingHeader(t *testing.T) {
	r := protectedRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewareMalformedHeader(t *testing.T) {
	r := protectedRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewareInvalidToken(t *testing.T) {
	r := protectedRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewareValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newAuthService(t)
	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/private", JWT(svc), func(c *gin.Context) {
		claims, _ := c.Get(ContextUserKey)
		user := claims.(*models.JWTClaims)
		c.JSON(http.StatusOK, gin.H{"username": user.Username})
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+res.AccessToken)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin")
}
