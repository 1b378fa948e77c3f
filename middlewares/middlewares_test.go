package middlewares

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"munhub/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newRouter(logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	verify := func(token string) (models.Principal, error) {
		if token != "good" {
			return models.Principal{}, errors.New("bad token")
		}
		return models.Principal{ID: "1", Role: models.RolePresidium}, nil
	}
	r := gin.New()
	r.Use(RequestID(), RequestLogger(logger))
	r.GET("/private", AuthMiddleware(verify), func(c *gin.Context) {
		p, ok := Principal(c)
		if !ok {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"role": p.Role})
	})
	return r
}

func TestAuthMiddlewareResponses(t *testing.T) {
	r := newRouter(zap.NewNop())
	cases := map[string]struct {
		header string
		status int
	}{
		"missing":    {"", http.StatusUnauthorized},
		"bad format": {"good", http.StatusBadRequest},
		"bad token":  {"Bearer nope", http.StatusUnauthorized},
		"ok":         {"Bearer good", http.StatusOK},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			assert.NotEmpty(t, w.Header().Get(requestIDHeader))
		})
	}
}

func TestRequestLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := newRouter(zap.New(core))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer good")
	req.Header.Set(requestIDHeader, "req-42")
	r.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer nope")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "req-42", entries[0].ContextMap()["requestId"])
	assert.Equal(t, "presidium", entries[0].ContextMap()["role"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.EqualValues(t, http.StatusUnauthorized, entries[1].ContextMap()["status"])

	for _, e := range entries {
		for k, v := range e.ContextMap() {
			assert.NotContains(t, k, "uthorization")
			assert.NotEqual(t, "Bearer good", v)
		}
	}
}
