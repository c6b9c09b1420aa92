package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"credloom-coordinator/internal/core/ports"
	"credloom-coordinator/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID_GeneratesWhenAbsent(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := performRequest(r, http.MethodGet, "/ping", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestID_HonorsCallerSupplied(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := performRequest(r, http.MethodGet, "/ping", map[string]string{"X-Request-ID": "trace-123"})
	assert.Equal(t, "trace-123", w.Header().Get("X-Request-ID"))
}

func TestJWTAuth_ValidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokenSvc := mocks.NewMockTokenService(ctrl)
	userID := uuid.New()
	tokenSvc.EXPECT().Validate("good-token").Return(&ports.TokenClaims{
		UserID: userID,
		Wallet: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
	}, nil)

	r := gin.New()
	r.Use(JWTAuth(tokenSvc, zerolog.Nop()))
	r.GET("/protected", func(c *gin.Context) {
		assert.Equal(t, userID, c.MustGet(CtxUserID))
		assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", c.GetString(CtxWallet))
		c.Status(http.StatusOK)
	})

	w := performRequest(r, http.MethodGet, "/protected", map[string]string{"Authorization": "Bearer good-token"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokenSvc := mocks.NewMockTokenService(ctrl)

	r := gin.New()
	r.Use(JWTAuth(tokenSvc, zerolog.Nop()))
	r.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := performRequest(r, http.MethodGet, "/protected", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_004")
}

func TestJWTAuth_MalformedScheme(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokenSvc := mocks.NewMockTokenService(ctrl)

	r := gin.New()
	r.Use(JWTAuth(tokenSvc, zerolog.Nop()))
	r.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := performRequest(r, http.MethodGet, "/protected", map[string]string{"Authorization": "Basic abc"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("bad-token").Return(nil, errors.New("signature invalid"))

	r := gin.New()
	r.Use(JWTAuth(tokenSvc, zerolog.Nop()))
	r.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := performRequest(r, http.MethodGet, "/protected", map[string]string{"Authorization": "Bearer bad-token"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecovery_PanicReturns500(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zerolog.Nop()))
	r.GET("/boom", func(c *gin.Context) { panic("unexpected") })

	w := performRequest(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SYS_001")
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.POST("/offers", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := performRequest(r, http.MethodOptions, "/offers", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
