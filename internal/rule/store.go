package rule

import (
	"errors"
	"fmt"

	"github.com/Xingwd/xadmin/internal/db/models"
	"github.com/Xingwd/xadmin/internal/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 定义错误
var (
	ErrRuleNotFound       = errors.New("规则不存在")
	ErrRuleNameExists     = errors.New("规则名称已存在")
	ErrPermissionChildren = errors.New("权限类型规则不允许有子规则")
)

// menuTypes 菜单类节点类型
var menuTypes = []models.RuleType{models.RuleTypeMenuDir, models.RuleTypeMenuItem}

// CreateInput 创建规则入参，可携带子规则递归创建
type CreateInput struct {
	ParentID     *uint               `json:"parent_id"`
	Type         models.RuleType     `json:"type" binding:"required,oneof=menu_dir menu_item permission"`
	Title        string              `json:"title" binding:"required"`
	Name         string              `json:"name" binding:"required"`
	Path         string              `json:"path"`
	Icon         string              `json:"icon"`
	MenuItemType models.MenuItemType `json:"menu_item_type" binding:"omitempty,oneof=tab link iframe"`
	URL          string              `json:"url"`
	Component    string              `json:"component"`
	Remark       string              `json:"remark"`
	Cache        bool                `json:"cache"`
	Weight       int                 `json:"weight"`
	Status       *bool               `json:"status"`
	Children     []*CreateInput      `json:"children"`
}

// UpdateInput 部分更新规则入参，nil 字段保持不变
type UpdateInput struct {
	ParentID     *uint                `json:"parent_id"`
	Type         *models.RuleType     `json:"type" binding:"omitempty,oneof=menu_dir menu_item permission"`
	Title        *string              `json:"title"`
	Name         *string              `json:"name"`
	Path         *string              `json:"path"`
	Icon         *string              `json:"icon"`
	MenuItemType *models.MenuItemType `json:"menu_item_type" binding:"omitempty,oneof=tab link iframe"`
	URL          *string              `json:"url"`
	Component    *string              `json:"component"`
	Remark       *string              `json:"remark"`
	Cache        *bool                `json:"cache"`
	Weight       *int                 `json:"weight"`
	Status       *bool                `json:"status"`
}

// Store 规则树存储
type Store struct {
	db *gorm.DB
}

// NewStore 创建规则树存储
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create 创建规则。入参携带子规则时先创建父节点，
// 再以新生成的父节点id为parent_id逐个递归创建子节点。
func (s *Store) Create(in *CreateInput) (*models.Rule, error) {
	var created *models.Rule
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = createNode(tx, in, in.ParentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func createNode(tx *gorm.DB, in *CreateInput, parentID *uint) (*models.Rule, error) {
	// 权限类型规则只能作为叶子节点
	if in.Type == models.RuleTypePermission && len(in.Children) > 0 {
		return nil, ErrPermissionChildren
	}

	r := &models.Rule{
		ParentID:     parentID,
		Type:         in.Type,
		Title:        in.Title,
		Name:         in.Name,
		Path:         in.Path,
		Icon:         in.Icon,
		MenuItemType: in.MenuItemType,
		URL:          in.URL,
		Component:    in.Component,
		Remark:       in.Remark,
		Cache:        in.Cache,
		Weight:       in.Weight,
		Status:       true,
	}
	if in.Status != nil {
		r.Status = *in.Status
	}

	if err := tx.Create(r).Error; err != nil {
		return nil, fmt.Errorf("创建规则失败: %w", err)
	}

	for _, child := range in.Children {
		parentID := r.ID
		if _, err := createNode(tx, child, &parentID); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Update 部分更新规则，仅更新入参中出现的字段
func (s *Store) Update(id uint, in *UpdateInput) (*models.Rule, error) {
	rule, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	// 规则名变更时检查唯一性
	if in.Name != nil && *in.Name != rule.Name {
		existing, err := s.GetByName(*in.Name)
		if err != nil && !errors.Is(err, ErrRuleNotFound) {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, ErrRuleNameExists
		}
	}

	updates := make(map[string]interface{})
	if in.ParentID != nil {
		updates["parent_id"] = *in.ParentID
	}
	if in.Type != nil {
		updates["type"] = *in.Type
	}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Path != nil {
		updates["path"] = *in.Path
	}
	if in.Icon != nil {
		updates["icon"] = *in.Icon
	}
	if in.MenuItemType != nil {
		updates["menu_item_type"] = *in.MenuItemType
	}
	if in.URL != nil {
		updates["url"] = *in.URL
	}
	if in.Component != nil {
		updates["component"] = *in.Component
	}
	if in.Remark != nil {
		updates["remark"] = *in.Remark
	}
	if in.Cache != nil {
		updates["cache"] = *in.Cache
	}
	if in.Weight != nil {
		updates["weight"] = *in.Weight
	}
	if in.Status != nil {
		updates["status"] = *in.Status
	}

	if len(updates) == 0 {
		return rule, nil
	}

	if err := s.db.Model(rule).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("更新规则失败: %w", err)
	}
	return rule, nil
}

// Delete 删除规则：先解除角色关联，再把子规则的parent_id置空（子规则
// 提升为根节点，不级联删除），最后删除规则本身。
func (s *Store) Delete(id uint) error {
	rule, err := s.Get(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		// 解除角色关联，避免残留关联行
		if err := tx.Model(rule).Association("Roles").Clear(); err != nil {
			return fmt.Errorf("解除角色关联失败: %w", err)
		}

		// 子规则脱离父节点，不级联删除
		if err := tx.Model(&models.Rule{}).Where("parent_id = ?", id).
			Update("parent_id", nil).Error; err != nil {
			return fmt.Errorf("解除子规则关联失败: %w", err)
		}

		if err := tx.Delete(rule).Error; err != nil {
			return fmt.Errorf("删除规则失败: %w", err)
		}
		return nil
	})
}

// Get 按id获取规则
func (s *Store) Get(id uint) (*models.Rule, error) {
	var rule models.Rule
	if err := s.db.First(&rule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("查询规则失败: %w", err)
	}
	return &rule, nil
}

// GetByName 按名称获取规则
func (s *Store) GetByName(name string) (*models.Rule, error) {
	var rule models.Rule
	if err := s.db.Where("name = ?", name).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("查询规则失败: %w", err)
	}
	return &rule, nil
}

// List 获取全部规则的平铺列表
func (s *Store) List() ([]models.Rule, error) {
	var rules []models.Rule
	if err := s.db.Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("查询规则列表失败: %w", err)
	}
	return rules, nil
}

// ByType 按类型过滤规则
func (s *Store) ByType(types ...models.RuleType) ([]models.Rule, error) {
	var rules []models.Rule
	if err := s.db.Where("type IN ?", types).Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("查询规则列表失败: %w", err)
	}
	return rules, nil
}

// Trees 获取规则树。
// quickSearch非空时进入搜索模式：按标题大小写不敏感模糊匹配，
// 返回剥离子节点的平铺命中列表，不再重建树形。
// 否则返回完整规则树；onlyMenus时只保留菜单类节点并压平为带缩进标题的列表。
func (s *Store) Trees(onlyMenus bool, quickSearch string) ([]*models.Rule, error) {
	if quickSearch != "" {
		query := s.db.Where("title ILIKE ?", "%"+quickSearch+"%")
		if onlyMenus {
			query = query.Where("type IN ?", menuTypes)
		}
		var rules []models.Rule
		if err := query.Find(&rules).Error; err != nil {
			return nil, fmt.Errorf("搜索规则失败: %w", err)
		}
		matches := make([]*models.Rule, 0, len(rules))
		for i := range rules {
			matches = append(matches, copyNode(rules[i]))
		}
		return matches, nil
	}

	rules, err := s.List()
	if err != nil {
		return nil, err
	}
	roots := BuildForest(rules)
	if onlyMenus {
		return FlattenMenus(roots), nil
	}
	return roots, nil
}

// FullTitle 由规则名生成完整标题，规则不存在时返回空串
func (s *Store) FullTitle(name string) string {
	rules, err := s.List()
	if err != nil {
		logger.Error("生成完整标题失败", zap.String("name", name), zap.Error(err))
		return ""
	}
	return FullTitle(rules, name)
}

// UserPermissions 获取用户全部角色授予的规则名集合
func (s *Store) UserPermissions(userID uint) (map[string]struct{}, error) {
	var user models.User
	if err := s.db.Preload("Roles.Permissions").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("用户不存在: %w", err)
		}
		return nil, fmt.Errorf("查询用户权限失败: %w", err)
	}
	return PermissionsOf(&user), nil
}

// UserRules 计算用户可见的规则子树：启用状态的规则中，
// 超级用户可见全部，普通用户仅保留名称在其权限集合内的规则。
// 父节点被过滤掉的节点提升为根节点，各层按权重降序排列。
func (s *Store) UserRules(user *models.User) ([]*models.Rule, error) {
	query := s.db.Where("status = ?", true)
	if !user.IsSuperuser {
		permissions, err := s.UserPermissions(user.ID)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(permissions))
		for name := range permissions {
			names = append(names, name)
		}
		query = query.Where("name IN ?", names)
	}

	var rules []models.Rule
	if err := query.Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("查询用户规则失败: %w", err)
	}
	return BuildForest(rules), nil
}
