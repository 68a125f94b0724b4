package mysql

import (
	"tool_review_server/internal/model"

	"gorm.io/gorm"
)

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository 创建举报 Repository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// FindByUuid 按 UUID 查找举报单
func (r *reportRepository) FindByUuid(uuid string) (*model.Report, error) {
	var report model.Report
	if err := r.db.First(&report, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询举报单 uuid=%s", uuid)
	}
	return &report, nil
}

// Create 创建举报单
func (r *reportRepository) Create(report *model.Report) error {
	if err := r.db.Create(report).Error; err != nil {
		return wrapDBError(err, "创建举报单")
	}
	return nil
}

// CountOpenByTarget 统计目标当前 open 状态的举报数
// 阈值判断必须用这里的权威计数，不用"上次计数+1"的估算，容忍并发举报乱序落库
func (r *reportRepository) CountOpenByTarget(targetType model.ReportTargetType, targetUuid string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Report{}).
		Where("target_type = ? AND target_uuid = ? AND status = ?", targetType, targetUuid, model.ReportOpen).
		Count(&count).Error
	if err != nil {
		return 0, wrapDBErrorf(err, "统计举报数 target=%s", targetUuid)
	}
	return count, nil
}

// List 分页查询举报单
func (r *reportRepository) List(status model.ReportStatus, page, pageSize int) ([]model.Report, int64, error) {
	query := r.db.Model(&model.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "统计举报单数量")
	}

	var reports []model.Report
	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&reports).Error
	if err != nil {
		return nil, 0, wrapDBError(err, "查询举报单列表")
	}
	return reports, total, nil
}

// UpdateStatus 更新举报单状态
func (r *reportRepository) UpdateStatus(uuid string, status model.ReportStatus) error {
	err := r.db.Model(&model.Report{}).Where("uuid = ?", uuid).Update("status", status).Error
	if err != nil {
		return wrapDBErrorf(err, "更新举报单状态 uuid=%s", uuid)
	}
	return nil
}
