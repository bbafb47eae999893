package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 定义错误
var (
	ErrInvalidOrderField  = errors.New("无效的排序字段")
	ErrInvalidSearchField = errors.New("无效的搜索字段")
	ErrInvalidOperator    = errors.New("无效的搜索操作符")
	ErrInvalidSearchValue = errors.New("无效的搜索值")
)

// PaginationParams 分页参数，skip为页码，从1开始
type PaginationParams struct {
	Skip  int `form:"skip"`
	Limit int `form:"limit"`
}

// BindPagination 绑定分页参数并收敛到合法区间
func BindPagination(c *gin.Context) PaginationParams {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if skip < 1 {
		skip = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 1000 {
		limit = 1000
	}
	return PaginationParams{Skip: skip, Limit: limit}
}

// Offset 换算为记录偏移量
func (p PaginationParams) Offset() int {
	return (p.Skip - 1) * p.Limit
}

// OrderDirection 排序方向
type OrderDirection string

const (
	OrderAsc  OrderDirection = "asc"
	OrderDesc OrderDirection = "desc"
)

// OrderParams 排序参数
type OrderParams struct {
	OrderBy        string
	OrderDirection OrderDirection
}

// BindOrder 绑定排序参数。排序字段必须在白名单内，缺省用defaultBy。
func BindOrder(c *gin.Context, allowed []string, defaultBy string) (OrderParams, error) {
	order := OrderParams{
		OrderBy:        c.Query("order_by"),
		OrderDirection: OrderDirection(c.DefaultQuery("order_direction", string(OrderDesc))),
	}
	if order.OrderDirection != OrderAsc && order.OrderDirection != OrderDesc {
		order.OrderDirection = OrderDesc
	}
	if order.OrderBy == "" {
		order.OrderBy = defaultBy
		return order, nil
	}
	for _, field := range allowed {
		if order.OrderBy == field {
			return order, nil
		}
	}
	return order, ErrInvalidOrderField
}

// Clause 生成排序子句，OrderBy已经过白名单校验
func (o OrderParams) Clause() string {
	return fmt.Sprintf("%s %s", o.OrderBy, o.OrderDirection)
}

// Operator 搜索操作符
type Operator string

const (
	OperatorEq       Operator = "eq"
	OperatorNe       Operator = "ne"
	OperatorGt       Operator = "gt"
	OperatorEgt      Operator = "egt"
	OperatorLt       Operator = "lt"
	OperatorElt      Operator = "elt"
	OperatorLike     Operator = "LIKE"
	OperatorNotLike  Operator = "NOT LIKE"
	OperatorIn       Operator = "IN"
	OperatorNotIn    Operator = "NOT IN"
	OperatorRange    Operator = "RANGE"
	OperatorNotRange Operator = "NOT RANGE"
	OperatorNull     Operator = "NULL"
	OperatorNotNull  Operator = "NOT NULL"
)

var knownOperators = map[Operator]struct{}{
	OperatorEq: {}, OperatorNe: {}, OperatorGt: {}, OperatorEgt: {},
	OperatorLt: {}, OperatorElt: {}, OperatorLike: {}, OperatorNotLike: {},
	OperatorIn: {}, OperatorNotIn: {}, OperatorRange: {}, OperatorNotRange: {},
	OperatorNull: {}, OperatorNotNull: {},
}

// SearchParam 通用搜索条件
type SearchParam struct {
	Field    string      `json:"field"`
	Value    interface{} `json:"value"`
	Operator Operator    `json:"operator"`
	Render   string      `json:"render,omitempty"`
}

// ParseCommonSearch 解析common_search查询参数（JSON数组）。
// 未知操作符在触达存储层之前拒绝。
func ParseCommonSearch(raw string) ([]SearchParam, error) {
	if raw == "" {
		return nil, nil
	}
	var params []SearchParam
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, fmt.Errorf("解析搜索参数失败: %w", err)
	}
	for _, p := range params {
		if _, ok := knownOperators[p.Operator]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidOperator, p.Operator)
		}
	}
	return params, nil
}

const datetimeLayout = "2006-01-02 15:04:05"

// ApplyCommonSearch 把通用搜索条件拼接到查询上，字段必须在白名单内
func ApplyCommonSearch(query *gorm.DB, params []SearchParam, allowed []string) (*gorm.DB, error) {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, field := range allowed {
		allowedSet[field] = struct{}{}
	}

	for _, p := range params {
		if _, ok := allowedSet[p.Field]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSearchField, p.Field)
		}

		value := fmt.Sprintf("%v", p.Value)
		switch p.Operator {
		case OperatorEq:
			query = query.Where(p.Field+" = ?", p.Value)
		case OperatorNe:
			query = query.Where(p.Field+" <> ?", p.Value)
		case OperatorGt:
			query = query.Where(p.Field+" > ?", p.Value)
		case OperatorEgt:
			query = query.Where(p.Field+" >= ?", p.Value)
		case OperatorLt:
			query = query.Where(p.Field+" < ?", p.Value)
		case OperatorElt:
			query = query.Where(p.Field+" <= ?", p.Value)
		case OperatorLike:
			query = query.Where(p.Field+" LIKE ?", "%"+value+"%")
		case OperatorNotLike:
			query = query.Where(p.Field+" NOT LIKE ?", "%"+value+"%")
		case OperatorIn:
			query = query.Where(p.Field+" IN ?", strings.Split(value, ","))
		case OperatorNotIn:
			query = query.Where(p.Field+" NOT IN ?", strings.Split(value, ","))
		case OperatorRange, OperatorNotRange:
			var err error
			query, err = applyRange(query, p, value)
			if err != nil {
				return nil, err
			}
		case OperatorNull:
			query = query.Where(p.Field + " IS NULL")
		case OperatorNotNull:
			query = query.Where(p.Field + " IS NOT NULL")
		default:
			return nil, fmt.Errorf("%w: %s", ErrInvalidOperator, p.Operator)
		}
	}
	return query, nil
}

// applyRange 处理闭区间条件，值为“起,止”，任一端可省略
func applyRange(query *gorm.DB, p SearchParam, value string) (*gorm.DB, error) {
	parts := strings.SplitN(value, ",", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSearchValue, value)
	}

	render := func(raw string) (interface{}, error) {
		if p.Render == "datetime" {
			t, err := time.Parse(datetimeLayout, raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrInvalidSearchValue, raw)
			}
			return t, nil
		}
		return raw, nil
	}

	start, end := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	var conds []string
	var args []interface{}
	if start != "" {
		v, err := render(start)
		if err != nil {
			return nil, err
		}
		conds = append(conds, p.Field+" >= ?")
		args = append(args, v)
	}
	if end != "" {
		v, err := render(end)
		if err != nil {
			return nil, err
		}
		conds = append(conds, p.Field+" <= ?")
		args = append(args, v)
	}
	if len(conds) == 0 {
		return query, nil
	}

	if p.Operator == OperatorNotRange {
		// 区间取反：任一边界越界即命中
		negated := make([]string, 0, len(conds))
		for _, cond := range conds {
			if strings.Contains(cond, ">=") {
				negated = append(negated, strings.Replace(cond, ">=", "<", 1))
			} else {
				negated = append(negated, strings.Replace(cond, "<=", ">", 1))
			}
		}
		return query.Where("("+strings.Join(negated, " OR ")+")", args...), nil
	}
	return query.Where(strings.Join(conds, " AND "), args...), nil
}

// ApplyQuickSearch 快速搜索：对白名单字段做大小写不敏感的模糊匹配，任一命中即可
func ApplyQuickSearch(query *gorm.DB, quickSearch string, fields []string) *gorm.DB {
	if quickSearch == "" || len(fields) == 0 {
		return query
	}
	conds := make([]string, 0, len(fields))
	args := make([]interface{}, 0, len(fields))
	for _, field := range fields {
		conds = append(conds, field+" ILIKE ?")
		args = append(args, "%"+quickSearch+"%")
	}
	return query.Where("("+strings.Join(conds, " OR ")+")", args...)
}
