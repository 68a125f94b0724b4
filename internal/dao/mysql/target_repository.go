package mysql

import (
	"tool_review_server/internal/model"

	"gorm.io/gorm"
)

type targetRepository struct {
	db *gorm.DB
}

// NewTargetRepository 创建点评目标 Repository
func NewTargetRepository(db *gorm.DB) TargetRepository {
	return &targetRepository{db: db}
}

// FindByUuid 按 UUID 查找目标
func (r *targetRepository) FindByUuid(uuid string) (*model.Target, error) {
	var target model.Target
	if err := r.db.First(&target, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询目标 uuid=%s", uuid)
	}
	return &target, nil
}

// FindBySlug 按类型和短标识查找目标
func (r *targetRepository) FindBySlug(toolType model.ToolType, slug string) (*model.Target, error) {
	var target model.Target
	if err := r.db.First(&target, "type = ? AND slug = ?", toolType, slug).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询目标 slug=%s", slug)
	}
	return &target, nil
}

// FindAll 查找所有目标
func (r *targetRepository) FindAll(toolType model.ToolType) ([]model.Target, error) {
	var targets []model.Target
	query := r.db.Order("created_at DESC")
	if toolType != "" {
		query = query.Where("type = ?", toolType)
	}
	if err := query.Find(&targets).Error; err != nil {
		return nil, wrapDBError(err, "查询目标列表")
	}
	return targets, nil
}

// Create 创建目标
func (r *targetRepository) Create(target *model.Target) error {
	if err := r.db.Create(target).Error; err != nil {
		return wrapDBError(err, "创建目标")
	}
	return nil
}
