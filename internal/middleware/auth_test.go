package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/choreboard-dev/choreboard/internal/auth"
	"github.com/choreboard-dev/choreboard/internal/middleware"
	"github.com/choreboard-dev/choreboard/internal/testutil"
	"github.com/choreboard-dev/choreboard/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func protectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/me", middleware.AuthMiddleware(), func(ctx *gin.Context) {
		user, err := utils.GetCurrentUser(ctx)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"username": user.Username})
	})

	return r
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	testutil.SetupTestDB(t)

	r := protectedRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	testutil.SetupTestDB(t)

	r := protectedRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abcdef")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	testutil.SetupTestDB(t)

	r := protectedRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareAcceptsBearerToken(t *testing.T) {
	database := testutil.SetupTestDB(t)
	user := testutil.CreateUser(t, database, "alice")

	token, err := auth.GenerateJWT(user.ID, user.Username)
	require.NoError(t, err)

	r := protectedRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "alice")
}

func TestAuthMiddlewareAcceptsQueryToken(t *testing.T) {
	database := testutil.SetupTestDB(t)
	user := testutil.CreateUser(t, database, "bob")

	token, err := auth.GenerateJWT(user.ID, user.Username)
	require.NoError(t, err)

	r := protectedRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me?token="+token, nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "bob")
}

func TestAuthMiddlewareRejectsDeletedUser(t *testing.T) {
	database := testutil.SetupTestDB(t)
	user := testutil.CreateUser(t, database, "ghost")

	token, err := auth.GenerateJWT(user.ID, user.Username)
	require.NoError(t, err)

	require.NoError(t, database.Unscoped().Delete(user).Error)

	r := protectedRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
