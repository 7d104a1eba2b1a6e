package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/tests/testutil"
)

type channelRequest struct {
	Channels []string `json:"channels" binding:"omitempty,dive,channel"`
	Interval int      `json:"interval_minutes" binding:"required,min=1"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req channelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(req.Channels))
	})
	return router
}

func TestChannelTag(t *testing.T) {
	router := newValidationRouter()

	t.Run("accepts known channels in any case", func(t *testing.T) {
		body := map[string]any{"channels": []string{"amazon", "ETSY", "pwa"}, "interval_minutes": 5}
		w := testutil.PerformRequest(t, router, http.MethodPost, "/test", body, nil)

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("rejects an unknown channel with the element path", func(t *testing.T) {
		body := map[string]any{"channels": []string{"AMAZON", "EBAY"}, "interval_minutes": 5}
		w := testutil.PerformRequest(t, router, http.MethodPost, "/test", body, nil)

		testutil.AssertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
		assert.Contains(t, w.Body.String(), "channels[1]")
		assert.Contains(t, w.Body.String(), "Unknown channel")
	})

	t.Run("reports required fields by json name", func(t *testing.T) {
		w := testutil.PerformRequest(t, router, http.MethodPost, "/test", map[string]any{}, nil)

		testutil.AssertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
		assert.Contains(t, w.Body.String(), "interval_minutes")
	})
}

func TestHandleValidationError_MalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"channels": [`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newValidationRouter().ServeHTTP(w, req)

	testutil.AssertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeInvalidJSON)
}
