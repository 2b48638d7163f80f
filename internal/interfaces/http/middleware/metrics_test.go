package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestHTTPMetricsDisabled(t *testing.T) {
	router := gin.New()
	router.Use(HTTPMetrics(HTTPMetricsConfig{Enabled: false}))
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPMetricsWithMeter(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	router := gin.New()
	router.Use(HTTPMetricsWithMeter(meter, true))
	router.GET("/items/:id", func(c *gin.Context) {
		c.String(http.StatusOK, "item")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPMetricsWithMeter_Disabled(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	router := gin.New()
	router.Use(HTTPMetricsWithMeter(meter, false))
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutePattern(t *testing.T) {
	router := gin.New()

	var pattern string
	router.GET("/items/:id", func(c *gin.Context) {
		pattern = routePattern(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))

	assert.Equal(t, "/items/:id", pattern)
}

func TestRoutePattern_Unmatched(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/nope", nil)

	assert.Equal(t, "unknown", routePattern(c))
}
