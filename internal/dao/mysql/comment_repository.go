package mysql

import (
	"tool_review_server/internal/model"

	"gorm.io/gorm"
)

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository 创建评论 Repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// FindByUuid 按 UUID 查找评论（不过滤状态）
func (r *commentRepository) FindByUuid(uuid string) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.First(&comment, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询评论 uuid=%s", uuid)
	}
	return &comment, nil
}

// ListPublishedByReview 分页查询点评下已发布评论
func (r *commentRepository) ListPublishedByReview(reviewUuid string, page, pageSize int) ([]model.Comment, int64, error) {
	query := r.db.Model(&model.Comment{}).
		Where("review_uuid = ? AND status = ?", reviewUuid, model.ContentPublished)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "统计评论数量")
	}

	var comments []model.Comment
	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&comments).Error
	if err != nil {
		return nil, 0, wrapDBError(err, "查询评论列表")
	}
	return comments, total, nil
}

// Create 创建评论
func (r *commentRepository) Create(comment *model.Comment) error {
	if err := r.db.Create(comment).Error; err != nil {
		return wrapDBError(err, "创建评论")
	}
	return nil
}

// UpdateStatus 更新评论状态
func (r *commentRepository) UpdateStatus(uuid string, status model.ContentStatus) error {
	err := r.db.Model(&model.Comment{}).Where("uuid = ?", uuid).Update("status", status).Error
	if err != nil {
		return wrapDBErrorf(err, "更新评论状态 uuid=%s", uuid)
	}
	return nil
}

// UpdateModeration 回写举报计数，hide 为 true 时同时置为 hidden
func (r *commentRepository) UpdateModeration(uuid string, reportsCount int, hide bool) error {
	updates := map[string]interface{}{"reports_count": reportsCount}
	if hide {
		updates["status"] = model.ContentHidden
	}
	err := r.db.Model(&model.Comment{}).Where("uuid = ?", uuid).Updates(updates).Error
	if err != nil {
		return wrapDBErrorf(err, "回写评论举报计数 uuid=%s", uuid)
	}
	return nil
}
