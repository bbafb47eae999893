package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testContext(t *testing.T, query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest("GET", "/test?"+query, nil)
	assert.NoError(t, err)
	c.Request = req
	return c
}

func TestBindPagination(t *testing.T) {
	t.Run("默认值", func(t *testing.T) {
		p := BindPagination(testContext(t, ""))
		assert.Equal(t, 1, p.Skip)
		assert.Equal(t, 10, p.Limit)
		assert.Equal(t, 0, p.Offset())
	})

	t.Run("正常翻页", func(t *testing.T) {
		p := BindPagination(testContext(t, "skip=3&limit=20"))
		assert.Equal(t, 3, p.Skip)
		assert.Equal(t, 20, p.Limit)
		assert.Equal(t, 40, p.Offset())
	})

	t.Run("越界收敛", func(t *testing.T) {
		p := BindPagination(testContext(t, "skip=0&limit=99999"))
		assert.Equal(t, 1, p.Skip)
		assert.Equal(t, 1000, p.Limit)
	})

	t.Run("非法参数", func(t *testing.T) {
		p := BindPagination(testContext(t, "skip=abc&limit=-5"))
		assert.Equal(t, 1, p.Skip)
		assert.Equal(t, 10, p.Limit)
	})
}

func TestBindOrder(t *testing.T) {
	allowed := []string{"id", "username", "created_at"}

	t.Run("缺省字段", func(t *testing.T) {
		order, err := BindOrder(testContext(t, ""), allowed, "id")
		assert.NoError(t, err)
		assert.Equal(t, "id desc", order.Clause())
	})

	t.Run("白名单字段", func(t *testing.T) {
		order, err := BindOrder(testContext(t, "order_by=username&order_direction=asc"), allowed, "id")
		assert.NoError(t, err)
		assert.Equal(t, "username asc", order.Clause())
	})

	t.Run("非白名单字段", func(t *testing.T) {
		_, err := BindOrder(testContext(t, "order_by=hashed_password"), allowed, "id")
		assert.ErrorIs(t, err, ErrInvalidOrderField)
	})

	t.Run("非法方向回退", func(t *testing.T) {
		order, err := BindOrder(testContext(t, "order_by=id&order_direction=sideways"), allowed, "id")
		assert.NoError(t, err)
		assert.Equal(t, "id desc", order.Clause())
	})
}

func TestParseCommonSearch(t *testing.T) {
	t.Run("空参数", func(t *testing.T) {
		params, err := ParseCommonSearch("")
		assert.NoError(t, err)
		assert.Nil(t, params)
	})

	t.Run("合法条件", func(t *testing.T) {
		params, err := ParseCommonSearch(`[{"field":"username","value":"admin","operator":"eq"}]`)
		assert.NoError(t, err)
		assert.Len(t, params, 1)
		assert.Equal(t, "username", params[0].Field)
		assert.Equal(t, OperatorEq, params[0].Operator)
	})

	t.Run("未知操作符在触达存储层之前拒绝", func(t *testing.T) {
		_, err := ParseCommonSearch(`[{"field":"username","value":"admin","operator":"DROP"}]`)
		assert.ErrorIs(t, err, ErrInvalidOperator)
	})

	t.Run("非法JSON", func(t *testing.T) {
		_, err := ParseCommonSearch("not-json")
		assert.Error(t, err)
	})
}

func TestApplyCommonSearchFieldWhitelist(t *testing.T) {
	params := []SearchParam{{Field: "hashed_password", Value: "x", Operator: OperatorEq}}
	_, err := ApplyCommonSearch(nil, params, []string{"username"})
	assert.ErrorIs(t, err, ErrInvalidSearchField)
}

func TestApplyCommonSearchRangeValue(t *testing.T) {
	t.Run("缺少分隔符", func(t *testing.T) {
		params := []SearchParam{{Field: "created_at", Value: "2024-01-01", Operator: OperatorRange}}
		_, err := ApplyCommonSearch(nil, params, []string{"created_at"})
		assert.ErrorIs(t, err, ErrInvalidSearchValue)
	})

	t.Run("非法时间格式", func(t *testing.T) {
		params := []SearchParam{{
			Field:    "created_at",
			Value:    "not-a-time,2024-01-02 00:00:00",
			Operator: OperatorRange,
			Render:   "datetime",
		}}
		_, err := ApplyCommonSearch(nil, params, []string{"created_at"})
		assert.ErrorIs(t, err, ErrInvalidSearchValue)
	})
}
