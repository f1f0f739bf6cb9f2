package middleware

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookit/booking-backend/internal/database"
	"github.com/bookit/booking-backend/pkg/jwt"
)

func setupTestJWTService() *jwt.Service {
	return jwt.NewService(
		"test-access-secret-key-123456789",
		"test-refresh-secret-key-123456789",
		time.Hour,
		24*time.Hour,
	)
}

func setupAuthTest(t *testing.T) (gin.HandlerFunc, *jwt.Service, sqlmock.Sqlmock, func()) {
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	postgresDB := &database.PostgresDB{DB: sqlxDB}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	jwtService := setupTestJWTService()
	mw := AuthMiddleware(jwtService, database.NewRevokedTokenRepository(postgresDB), logger)

	cleanup := func() {
		db.Close()
	}

	return mw, jwtService, mock, cleanup
}

func expectNotRevoked(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
}

func TestAuthMiddleware_Success(t *testing.T) {
	mw, jwtService, mock, cleanup := setupAuthTest(t)
	defer cleanup()

	userID := uuid.New()
	token, err := jwtService.GenerateAccessToken(userID, "casey@example.com", "user")
	require.NoError(t, err)

	router := gin.New()
	router.GET("/protected", mw, func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		require.True(t, exists)
		c.JSON(http.StatusOK, gin.H{
			"message": "success",
			"user_id": userCtx.UserID,
			"email":   userCtx.Email,
			"role":    userCtx.Role,
		})
	})

	expectNotRevoked(mock)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "success")
	assert.Contains(t, w.Body.String(), "casey@example.com")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthMiddleware_MissingAuthHeader(t *testing.T) {
	mw, _, mock, cleanup := setupAuthTest(t)
	defer cleanup()

	router := gin.New()
	router.GET("/protected", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization header is required")
	assert.Contains(t, w.Body.String(), "MISSING_AUTH_HEADER")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthMiddleware_InvalidAuthFormat(t *testing.T) {
	mw, _, mock, cleanup := setupAuthTest(t)
	defer cleanup()

	router := gin.New()
	router.GET("/protected", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	tests := []struct {
		name   string
		header string
	}{
		{"Missing Bearer", "some-token"},
		{"Wrong prefix", "Basic some-token"},
		{"Empty Bearer", "Bearer "},
		{"No token", "Bearer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/protected", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "INVALID_AUTH_FORMAT")
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	mw, _, mock, cleanup := setupAuthTest(t)
	defer cleanup()

	router := gin.New()
	router.GET("/protected", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	tests := []struct {
		name  string
		token string
	}{
		{"Malformed token", "invalid.token.here"},
		{"Random string", "randomstringnotavalidtoken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			body := w.Body.String()
			hasValidError := strings.Contains(body, "INVALID_TOKEN") || strings.Contains(body, "TOKEN_EXPIRED")
			assert.True(t, hasValidError, "Expected INVALID_TOKEN or TOKEN_EXPIRED error, got: %s", body)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	postgresDB := &database.PostgresDB{DB: sqlxDB}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	// Service with a very short expiry
	jwtService := jwt.NewService(
		"test-access-secret-key-123456789",
		"test-refresh-secret-key-123456789",
		1*time.Millisecond,
		24*time.Hour,
	)

	token, err := jwtService.GenerateAccessToken(uuid.New(), "casey@example.com", "user")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	router := gin.New()
	router.GET("/protected",
		AuthMiddleware(jwtService, database.NewRevokedTokenRepository(postgresDB), logger),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
		})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	mw, _, mock, cleanup := setupAuthTest(t)
	defer cleanup()

	wrongService := jwt.NewService(
		"wrong-secret-key",
		"wrong-refresh-secret",
		time.Hour,
		24*time.Hour,
	)

	token, err := wrongService.GenerateAccessToken(uuid.New(), "casey@example.com", "user")
	require.NoError(t, err)

	router := gin.New()
	router.GET("/protected", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthMiddleware_RevokedToken(t *testing.T) {
	mw, jwtService, mock, cleanup := setupAuthTest(t)
	defer cleanup()

	token, err := jwtService.GenerateAccessToken(uuid.New(), "casey@example.com", "user")
	require.NoError(t, err)

	router := gin.New()
	router.GET("/protected", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_REVOKED")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthMiddleware_DenylistUnavailable(t *testing.T) {
	mw, jwtService, mock, cleanup := setupAuthTest(t)
	defer cleanup()

	token, err := jwtService.GenerateAccessToken(uuid.New(), "casey@example.com", "user")
	require.NoError(t, err)

	router := gin.New()
	router.GET("/protected", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnError(fmt.Errorf("connection refused"))

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_CHECK_FAILED")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	t.Run("Context exists", func(t *testing.T) {
		expectedCtx := UserContext{
			UserID: uuid.New(),
			Email:  "casey@example.com",
			Role:   "user",
		}

		c.Set(UserContextKey, expectedCtx)

		userCtx, exists := GetUserContext(c)
		assert.True(t, exists)
		assert.Equal(t, expectedCtx.UserID, userCtx.UserID)
		assert.Equal(t, expectedCtx.Email, userCtx.Email)
		assert.Equal(t, expectedCtx.Role, userCtx.Role)
		assert.False(t, userCtx.IsAdmin())
	})

	t.Run("Context not found", func(t *testing.T) {
		c2, _ := gin.CreateTestContext(httptest.NewRecorder())
		userCtx, exists := GetUserContext(c2)
		assert.False(t, exists)
		assert.Equal(t, UserContext{}, userCtx)
	})

	t.Run("Context wrong type", func(t *testing.T) {
		c3, _ := gin.CreateTestContext(httptest.NewRecorder())
		c3.Set(UserContextKey, "wrong type")
		userCtx, exists := GetUserContext(c3)
		assert.False(t, exists)
		assert.Equal(t, UserContext{}, userCtx)
	})
}

func TestMustGetUserContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Context exists - no panic", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		expectedCtx := UserContext{
			UserID: uuid.New(),
			Email:  "casey@example.com",
		}
		c.Set(UserContextKey, expectedCtx)

		assert.NotPanics(t, func() {
			userCtx := MustGetUserContext(c)
			assert.Equal(t, expectedCtx.UserID, userCtx.UserID)
		})
	})

	t.Run("Context not found - panic", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		assert.Panics(t, func() {
			MustGetUserContext(c)
		})
	})
}

func TestRequireRole(t *testing.T) {
	mw, jwtService, mock, cleanup := setupAuthTest(t)
	defer cleanup()

	t.Run("User has required role", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(uuid.New(), "admin@example.com", "admin")
		require.NoError(t, err)

		router := gin.New()
		router.GET("/admin-only", mw, RequireRole("admin"), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "success"})
		})

		expectNotRevoked(mock)

		req := httptest.NewRequest("GET", "/admin-only", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "success")
	})

	t.Run("User doesn't have required role", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(uuid.New(), "casey@example.com", "user")
		require.NoError(t, err)

		router := gin.New()
		router.GET("/admin-only", mw, RequireRole("admin"), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
		})

		expectNotRevoked(mock)

		req := httptest.NewRequest("GET", "/admin-only", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "INSUFFICIENT_PERMISSIONS")
	})

	t.Run("Multiple roles allowed", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(uuid.New(), "casey@example.com", "user")
		require.NoError(t, err)

		router := gin.New()
		router.GET("/any-account", mw, RequireRole("admin", "user"), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "success"})
		})

		expectNotRevoked(mock)

		req := httptest.NewRequest("GET", "/any-account", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "success")
	})

	t.Run("No user context", func(t *testing.T) {
		router := gin.New()
		// RequireRole without AuthMiddleware in front
		router.GET("/no-auth", RequireRole("admin"), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
		})

		req := httptest.NewRequest("GET", "/no-auth", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "MISSING_USER_CONTEXT")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
