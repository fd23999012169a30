package shared

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func contextFor(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestParseEnabledFilter(t *testing.T) {
	assert.Nil(t, ParseEnabledFilter(contextFor("/llms")))
	assert.Nil(t, ParseEnabledFilter(contextFor("/llms?enabled=maybe")))

	enabled := ParseEnabledFilter(contextFor("/llms?enabled=true"))
	if assert.NotNil(t, enabled) {
		assert.True(t, *enabled)
	}
	disabled := ParseEnabledFilter(contextFor("/llms?enabled=false"))
	if assert.NotNil(t, disabled) {
		assert.False(t, *disabled)
	}
}

func TestParsePagination(t *testing.T) {
	page, limit := ParsePagination(contextFor("/schedules"))
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageLimit, limit)

	page, limit = ParsePagination(contextFor("/schedules?page=3&limit=500"))
	assert.Equal(t, 3, page)
	assert.Equal(t, MaxPageLimit, limit)

	page, limit = ParsePagination(contextFor("/schedules?page=-1&limit=x"))
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageLimit, limit)
}

func TestPaginate(t *testing.T) {
	start, end := Paginate(25, 2, 10)
	assert.Equal(t, 10, start)
	assert.Equal(t, 20, end)

	start, end = Paginate(25, 3, 10)
	assert.Equal(t, 20, start)
	assert.Equal(t, 25, end)

	start, end = Paginate(5, 4, 10)
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "", MaskAPIKey(""))
	assert.Equal(t, "***", MaskAPIKey("short"))
	assert.Equal(t, "sk-t...7890", MaskAPIKey("sk-test-1234567890"))
}
