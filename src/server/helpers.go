package server

import (
	"net/http"
	"strconv"
	"strings"

	"stock-dashboard/src/helpers"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// -----------------------------------------------------------------------------

// htmlStatus maps an error kind to the status code of a rendered page. Data
// problems keep the page itself intact, so only bad input changes the code.
func htmlStatus(kind helpers.ErrorKind) int {
	if kind == helpers.KindInvalidInput {
		return http.StatusBadRequest
	}
	return http.StatusOK
}

// jsonStatus maps an error kind to an API status code.
func jsonStatus(kind helpers.ErrorKind) int {
	switch kind {
	case helpers.KindNoData:
		return http.StatusNotFound
	case helpers.KindInvalidInput:
		return http.StatusBadRequest
	case helpers.KindAccessDenied:
		return http.StatusUnauthorized
	default:
		return http.StatusServiceUnavailable
	}
}

// -----------------------------------------------------------------------------

// abortJSON writes the uniform API error body. The cause is logged, never sent.
func (s *DashboardServer) abortJSON(c *gin.Context, err error, symbol string) {
	kind := helpers.KindOf(err)
	if kind == helpers.KindUnknown {
		kind = helpers.KindProviderError
	}
	s.Logger.Warning("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	c.AbortWithStatusJSON(jsonStatus(kind), gin.H{
		"error":   kind.String(),
		"message": helpers.UserMessage(kind, symbol),
	})
}

// -----------------------------------------------------------------------------

func queryFloat(c *gin.Context, key string, def float64) (float64, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, true
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

