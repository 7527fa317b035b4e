package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/inkpress/core/internal/pkg/pagination"
)

func queryFrom(rawQuery string) pagination.Query {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return pagination.FromContext(c)
}

func TestFromContext(t *testing.T) {
	q := queryFrom("page=3&size=50")
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 50, q.Size)
}

func TestFromContext_Defaults(t *testing.T) {
	q := queryFrom("")
	assert.Equal(t, pagination.DefaultPage, q.Page)
	assert.Equal(t, pagination.DefaultSize, q.Size)
}

func TestFromContext_ClampsBadValues(t *testing.T) {
	q := queryFrom("page=-2&size=0")
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, pagination.DefaultSize, q.Size)

	q = queryFrom("page=abc&size=9999")
	assert.Equal(t, pagination.DefaultPage, q.Page)
	assert.Equal(t, pagination.MaxSize, q.Size)
}
