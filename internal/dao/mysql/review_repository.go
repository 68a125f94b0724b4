package mysql

import (
	"tool_review_server/internal/model"

	"gorm.io/gorm"
)

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建点评 Repository
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// FindByUuid 按 UUID 查找点评（不过滤状态，调用方自行判断可见性）
func (r *reviewRepository) FindByUuid(uuid string) (*model.Review, error) {
	var review model.Review
	if err := r.db.First(&review, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询点评 uuid=%s", uuid)
	}
	return &review, nil
}

// ListPublished 分页查询已发布点评
func (r *reviewRepository) ListPublished(filter ReviewFilter) ([]model.Review, int64, error) {
	query := r.db.Model(&model.Review{}).Where("status = ?", model.ContentPublished)
	if filter.TargetUuid != "" {
		query = query.Where("target_uuid = ?", filter.TargetUuid)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Language != "" {
		query = query.Where("language = ?", filter.Language)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "统计点评数量")
	}

	// hot 按点赞数排序，点赞数相同再按时间
	if filter.Sort == "hot" {
		query = query.Order("likes_count DESC").Order("created_at DESC")
	} else {
		query = query.Order("created_at DESC")
	}

	var reviews []model.Review
	offset := (filter.Page - 1) * filter.PageSize
	if err := query.Offset(offset).Limit(filter.PageSize).Find(&reviews).Error; err != nil {
		return nil, 0, wrapDBError(err, "查询点评列表")
	}
	return reviews, total, nil
}

// Create 创建点评
func (r *reviewRepository) Create(review *model.Review) error {
	if err := r.db.Create(review).Error; err != nil {
		return wrapDBError(err, "创建点评")
	}
	return nil
}

// UpdateStatus 更新点评状态
func (r *reviewRepository) UpdateStatus(uuid string, status model.ContentStatus) error {
	err := r.db.Model(&model.Review{}).Where("uuid = ?", uuid).Update("status", status).Error
	if err != nil {
		return wrapDBErrorf(err, "更新点评状态 uuid=%s", uuid)
	}
	return nil
}

// UpdateModeration 回写举报计数，hide 为 true 时同时置为 hidden
func (r *reviewRepository) UpdateModeration(uuid string, reportsCount int, hide bool) error {
	updates := map[string]interface{}{"reports_count": reportsCount}
	if hide {
		updates["status"] = model.ContentHidden
	}
	err := r.db.Model(&model.Review{}).Where("uuid = ?", uuid).Updates(updates).Error
	if err != nil {
		return wrapDBErrorf(err, "回写点评举报计数 uuid=%s", uuid)
	}
	return nil
}

// FindPublishedForStats 查询目标下已发布点评的评分与分类
func (r *reviewRepository) FindPublishedForStats(targetUuid string) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.Select("rating", "category").
		Where("target_uuid = ? AND status = ?", targetUuid, model.ContentPublished).
		Find(&reviews).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询点评统计 target=%s", targetUuid)
	}
	return reviews, nil
}

// AggregateByTargets 按目标聚合已发布点评数量与平均分
func (r *reviewRepository) AggregateByTargets() ([]TargetReviewAgg, error) {
	var aggs []TargetReviewAgg
	err := r.db.Model(&model.Review{}).
		Select("target_uuid, COUNT(*) AS total, AVG(rating) AS avg_rating").
		Where("status = ?", model.ContentPublished).
		Group("target_uuid").
		Scan(&aggs).Error
	if err != nil {
		return nil, wrapDBError(err, "聚合点评统计")
	}
	return aggs, nil
}
