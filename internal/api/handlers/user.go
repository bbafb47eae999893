package handlers

import (
	"sort"
	"strings"
	"time"

	"github.com/Xingwd/xadmin/internal/auth"
	"github.com/Xingwd/xadmin/internal/config"
	"github.com/Xingwd/xadmin/internal/db/models"
	"github.com/Xingwd/xadmin/internal/logger"
	"github.com/Xingwd/xadmin/internal/rule"
	"github.com/Xingwd/xadmin/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// loginPath 登录接口路径，用于统计登录行为
const loginPath = "/api/v1/login/access-token"

// 用户列表的排序和搜索字段白名单
var userFields = []string{
	"id", "username", "is_active", "is_superuser", "full_name",
	"source", "last_login_at", "created_at", "updated_at",
}

// UserHandler 用户管理处理器
type UserHandler struct {
	BaseHandler
	DB        *gorm.DB
	store     *rule.Store
	appConfig *config.AppConfig
}

// NewUserHandler 创建用户管理处理器
func NewUserHandler(db *gorm.DB, appConfig *config.AppConfig) *UserHandler {
	return &UserHandler{
		DB:        db,
		store:     rule.NewStore(db),
		appConfig: appConfig,
	}
}

// List 获取用户列表，支持分页、排序、快速搜索和通用搜索
func (h *UserHandler) List(c *gin.Context) {
	pagination := utils.BindPagination(c)
	order, err := utils.BindOrder(c, userFields, "id")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	searchParams, err := utils.ParseCommonSearch(c.Query("common_search"))
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	query := h.DB.Model(&models.User{})
	query = utils.ApplyQuickSearch(query, c.Query("quick_search"), []string{"username", "full_name"})
	query, err = utils.ApplyCommonSearch(query, searchParams, userFields)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("获取用户总数失败", zap.Error(err))
		h.InternalError(c, "获取用户总数失败")
		return
	}

	var users []models.User
	if err := query.Preload("Roles").
		Order(order.Clause()).
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&users).Error; err != nil {
		logger.Error("获取用户列表失败", zap.Error(err))
		h.InternalError(c, "获取用户列表失败")
		return
	}

	h.Success(c, gin.H{"data": users, "total": total})
}

// Create 创建用户
func (h *UserHandler) Create(c *gin.Context) {
	var req struct {
		Username    string `json:"username" binding:"required,min=2,max=50"`
		Password    string `json:"password" binding:"required,min=8,max=40"`
		FullName    string `json:"full_name" binding:"max=50"`
		IsActive    *bool  `json:"is_active"`
		IsSuperuser bool   `json:"is_superuser"`
		Roles       []uint `json:"roles"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "参数错误")
		return
	}

	// 用户名冲突与参数错误区分开
	var count int64
	if err := h.DB.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		h.InternalError(c, "检查用户名失败")
		return
	}
	if count > 0 {
		h.Conflict(c, "用户名已存在")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("生成密码哈希失败", zap.Error(err))
		h.InternalError(c, "创建用户失败")
		return
	}

	user := models.User{
		Username:       req.Username,
		HashedPassword: hashed,
		IsActive:       true,
		IsSuperuser:    req.IsSuperuser,
		FullName:       req.FullName,
		Source:         models.UserSourceSystem,
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return replaceUserRoles(tx, &user, req.Roles)
	})
	if err != nil {
		logger.Error("创建用户失败", zap.String("username", req.Username), zap.Error(err))
		h.InternalError(c, "创建用户失败")
		return
	}

	h.Message(c, "用户创建成功")
}

// Get 获取用户详情
func (h *UserHandler) Get(c *gin.Context) {
	var user models.User
	if err := h.DB.Preload("Roles").First(&user, c.Param("id")).Error; err != nil {
		h.NotFound(c, "用户不存在")
		return
	}
	h.Success(c, &user)
}

// Update 更新用户，角色列表整体替换
func (h *UserHandler) Update(c *gin.Context) {
	var user models.User
	if err := h.DB.First(&user, c.Param("id")).Error; err != nil {
		h.NotFound(c, "用户不存在")
		return
	}

	var req struct {
		Username    *string `json:"username" binding:"omitempty,min=2,max=50"`
		Password    *string `json:"password" binding:"omitempty,min=8,max=40"`
		FullName    *string `json:"full_name" binding:"omitempty,max=50"`
		IsActive    *bool   `json:"is_active"`
		IsSuperuser *bool   `json:"is_superuser"`
		Roles       []uint  `json:"roles"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "参数错误")
		return
	}

	updates := make(map[string]interface{})
	if req.Username != nil && *req.Username != user.Username {
		var count int64
		if err := h.DB.Model(&models.User{}).
			Where("username = ? AND id <> ?", *req.Username, user.ID).Count(&count).Error; err != nil {
			h.InternalError(c, "检查用户名失败")
			return
		}
		if count > 0 {
			h.Conflict(c, "用户名已存在")
			return
		}
		updates["username"] = *req.Username
	}
	if req.Password != nil {
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			h.InternalError(c, "更新用户失败")
			return
		}
		updates["hashed_password"] = hashed
	}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsSuperuser != nil {
		updates["is_superuser"] = *req.IsSuperuser
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&user).Updates(updates).Error; err != nil {
				return err
			}
		}
		return replaceUserRoles(tx, &user, req.Roles)
	})
	if err != nil {
		logger.Error("更新用户失败", zap.Uint("id", user.ID), zap.Error(err))
		h.InternalError(c, "更新用户失败")
		return
	}

	h.Message(c, "用户更新成功")
}

// Delete 删除用户，先解除角色关联
func (h *UserHandler) Delete(c *gin.Context) {
	var user models.User
	if err := h.DB.First(&user, c.Param("id")).Error; err != nil {
		h.NotFound(c, "用户不存在")
		return
	}

	// 超级用户不允许删除自己
	if user.IsSuperuser && user.ID == c.GetUint("userID") {
		h.Forbidden(c, "超级用户不允许删除自己")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Association("Roles").Clear(); err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		logger.Error("删除用户失败", zap.Uint("id", user.ID), zap.Error(err))
		h.InternalError(c, "删除用户失败")
		return
	}

	h.Message(c, "用户删除成功")
}

// Me 获取当前用户，附带其可见的规则树
func (h *UserHandler) Me(c *gin.Context) {
	var user models.User
	if err := h.DB.Preload("Roles").First(&user, c.GetUint("userID")).Error; err != nil {
		h.NotFound(c, "用户不存在")
		return
	}

	rules, err := h.store.UserRules(&user)
	if err != nil {
		logger.Error("获取用户规则树失败", zap.Uint("userID", user.ID), zap.Error(err))
		h.InternalError(c, "获取用户规则树失败")
		return
	}

	h.Success(c, gin.H{
		"id":            user.ID,
		"username":      user.Username,
		"is_active":     user.IsActive,
		"is_superuser":  user.IsSuperuser,
		"full_name":     user.FullName,
		"source":        user.Source,
		"last_login_at": user.LastLoginAt,
		"created_at":    user.CreatedAt,
		"updated_at":    user.UpdatedAt,
		"roles":         user.Roles,
		"rules":         rules,
	})
}

// UpdateMe 更新当前用户的姓名或密码
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req struct {
		FullName *string `json:"full_name" binding:"omitempty,max=50"`
		Password *string `json:"password" binding:"omitempty,min=8,max=40"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "参数错误")
		return
	}

	updates := make(map[string]interface{})
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Password != nil {
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			h.InternalError(c, "更新失败")
			return
		}
		updates["hashed_password"] = hashed
	}

	if len(updates) > 0 {
		if err := h.DB.Model(&models.User{}).Where("id = ?", c.GetUint("userID")).
			Updates(updates).Error; err != nil {
			logger.Error("更新当前用户失败", zap.Uint("userID", c.GetUint("userID")), zap.Error(err))
			h.InternalError(c, "更新失败")
			return
		}
	}

	h.Message(c, "用户更新成功")
}

// DeleteMe 注销当前用户，超级用户不允许自行注销
func (h *UserHandler) DeleteMe(c *gin.Context) {
	var user models.User
	if err := h.DB.First(&user, c.GetUint("userID")).Error; err != nil {
		h.NotFound(c, "用户不存在")
		return
	}

	if user.IsSuperuser {
		h.Forbidden(c, "超级用户不允许注销自己")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Association("Roles").Clear(); err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		logger.Error("注销用户失败", zap.Uint("id", user.ID), zap.Error(err))
		h.InternalError(c, "注销用户失败")
		return
	}

	h.Message(c, "用户删除成功")
}

// Signup 开放注册，注册用户来源标记为signup
func (h *UserHandler) Signup(c *gin.Context) {
	if !h.appConfig.OpenRegistration {
		h.Forbidden(c, "注册未开放")
		return
	}

	var req struct {
		Username string `json:"username" binding:"required,min=2,max=50"`
		Password string `json:"password" binding:"required,min=8,max=40"`
		FullName string `json:"full_name" binding:"max=50"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "参数错误")
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		h.InternalError(c, "检查用户名失败")
		return
	}
	if count > 0 {
		h.Conflict(c, "用户名已存在")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		h.InternalError(c, "注册失败")
		return
	}

	user := models.User{
		Username:       req.Username,
		HashedPassword: hashed,
		IsActive:       true,
		FullName:       req.FullName,
		Source:         models.UserSourceSignup,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		logger.Error("注册用户失败", zap.String("username", req.Username), zap.Error(err))
		h.InternalError(c, "注册失败")
		return
	}

	h.Message(c, "用户注册成功")
}

// OperationLogs 获取当前用户的操作日志
func (h *UserHandler) OperationLogs(c *gin.Context) {
	pagination := utils.BindPagination(c)
	userID := c.GetUint("userID")

	query := h.DB.Model(&models.OperationLog{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		h.InternalError(c, "获取操作日志总数失败")
		return
	}

	var logs []models.OperationLog
	if err := query.Order("created_at desc").
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&logs).Error; err != nil {
		logger.Error("获取用户操作日志失败", zap.Uint("userID", userID), zap.Error(err))
		h.InternalError(c, "获取操作日志失败")
		return
	}

	h.Success(c, gin.H{"data": logs, "total": total})
}

// replaceUserRoles 整体替换用户的角色关联
func replaceUserRoles(tx *gorm.DB, user *models.User, roleIDs []uint) error {
	roles := []*models.Role{}
	if len(roleIDs) > 0 {
		if err := tx.Find(&roles, roleIDs).Error; err != nil {
			return err
		}
	}
	return tx.Model(user).Association("Roles").Replace(roles)
}

// behaviorCount 按天统计的行为次数
type behaviorCount struct {
	Dt       string `json:"dt"`
	Behavior string `json:"behavior"`
	Count    int64  `json:"count"`
}

// menuCount 按菜单统计的操作次数
type menuCount struct {
	Menu  string `json:"menu"`
	Count int64  `json:"count"`
}

type dateCount struct {
	Dt    time.Time
	Count int64
}

// Home 当前用户的首页统计：近一周/一月的登录与操作次数、
// 按天的行为明细以及按菜单聚合的操作分布
func (h *UserHandler) Home(c *gin.Context) {
	userID := c.GetUint("userID")
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	countSince := func(from, to time.Time, loginsOnly bool) int64 {
		query := h.DB.Model(&models.OperationLog{}).
			Where("user_id = ? AND created_at > ?", userID, from)
		if !to.IsZero() {
			query = query.Where("created_at <= ?", to)
		}
		if loginsOnly {
			query = query.Where("request_path = ?", loginPath)
		}
		var count int64
		if err := query.Count(&count).Error; err != nil {
			logger.Error("统计操作日志失败", zap.Uint("userID", userID), zap.Error(err))
		}
		return count
	}

	weekAgo := today.AddDate(0, 0, -7)
	twoWeeksAgo := today.AddDate(0, 0, -14)
	monthAgo := today.AddDate(0, 0, -30)
	twoMonthsAgo := today.AddDate(0, 0, -60)

	dailySeries := func(from time.Time, loginsOnly bool) map[string]int64 {
		query := h.DB.Model(&models.OperationLog{}).
			Select("date(created_at) as dt, count(*) as count").
			Where("user_id = ? AND created_at > ?", userID, from)
		if loginsOnly {
			query = query.Where("request_path = ?", loginPath)
		}
		var rows []dateCount
		if err := query.Group("dt").Order("dt").Scan(&rows).Error; err != nil {
			logger.Error("统计每日行为失败", zap.Uint("userID", userID), zap.Error(err))
		}
		series := make(map[string]int64, len(rows))
		for _, row := range rows {
			series[row.Dt.Format("2006-01-02")] = row.Count
		}
		return series
	}

	buildBehavior := func(days int) []behaviorCount {
		from := today.AddDate(0, 0, -days)
		logins := dailySeries(from, true)
		operations := dailySeries(from, false)
		behavior := make([]behaviorCount, 0, days*2)
		for i := 0; i < days; i++ {
			dt := today.AddDate(0, 0, -(days - i - 1)).Format("2006-01-02")
			behavior = append(behavior,
				behaviorCount{Dt: dt, Behavior: "登录", Count: logins[dt]},
				behaviorCount{Dt: dt, Behavior: "操作", Count: operations[dt]},
			)
		}
		return behavior
	}

	h.Success(c, gin.H{
		"logins_1w":              countSince(weekAgo, time.Time{}, true),
		"previous_logins_1w":     countSince(twoWeeksAgo, weekAgo, true),
		"logins_1m":              countSince(monthAgo, time.Time{}, true),
		"previous_logins_1m":     countSince(twoMonthsAgo, monthAgo, true),
		"operations_1w":          countSince(weekAgo, time.Time{}, false),
		"previous_operations_1w": countSince(twoWeeksAgo, weekAgo, false),
		"operations_1m":          countSince(monthAgo, time.Time{}, false),
		"previous_operations_1m": countSince(twoMonthsAgo, monthAgo, false),
		"behavior_1w":            buildBehavior(7),
		"behavior_1m":            buildBehavior(30),
		"menus":                  h.menuCounts(userID, monthAgo),
	})
}

// menuCounts 近一月按菜单聚合的操作次数，权限名去掉操作后缀归并到其菜单
func (h *UserHandler) menuCounts(userID uint, since time.Time) []menuCount {
	type nameCount struct {
		Name  string
		Count int64
	}
	var rows []nameCount
	if err := h.DB.Model(&models.OperationLog{}).
		Select("name, count(*) as count").
		Where("user_id = ? AND created_at > ? AND name <> ''", userID, since).
		Group("name").Scan(&rows).Error; err != nil {
		logger.Error("统计菜单操作失败", zap.Uint("userID", userID), zap.Error(err))
		return nil
	}

	merged := make(map[string]int64)
	for _, row := range rows {
		merged[menuOf(row.Name)] += row.Count
	}

	menus := make([]menuCount, 0, len(merged))
	for menu, count := range merged {
		menus = append(menus, menuCount{Menu: menu, Count: count})
	}
	sort.Slice(menus, func(i, j int) bool { return menus[i].Count > menus[j].Count })
	return menus
}

// menuOf 权限名归并到其菜单名：去掉末尾的操作后缀
func menuOf(name string) string {
	for _, op := range auth.Operations {
		suffix := ":" + string(op)
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}
