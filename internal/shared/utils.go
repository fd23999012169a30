// Package shared holds request helpers used by the HTTP handlers.
package shared

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ParseEnabledFilter parses the enabled query parameter. It returns nil when
// the parameter is absent or not a boolean.
func ParseEnabledFilter(c *gin.Context) *bool {
	enabled, err := strconv.ParseBool(c.Query("enabled"))
	if err != nil {
		return nil
	}
	return &enabled
}

// ParsePagination reads page and limit query parameters, clamping them to
// sane values
func ParsePagination(c *gin.Context) (page, limit int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageLimit)))
	if err != nil || limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

// Paginate returns the bounds of page within total items
func Paginate(total, page, limit int) (start, end int) {
	start = (page - 1) * limit
	if start > total {
		start = total
	}
	end = start + limit
	if end > total {
		end = total
	}
	return start, end
}

// MaskAPIKey hides all but the edges of an API key
func MaskAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 8 {
		return "***"
	}
	return apiKey[:4] + "..." + apiKey[len(apiKey)-4:]
}
