package mysql

import (
	"tool_review_server/internal/model"

	"gorm.io/gorm"
)

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository 创建点赞 Repository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// FindByTargetAndActor 查找某行为人对某目标的存活点赞
func (r *likeRepository) FindByTargetAndActor(targetType model.ReportTargetType, targetUuid, actorKey string) (*model.LikeRecord, error) {
	var like model.LikeRecord
	err := r.db.First(&like, "target_type = ? AND target_uuid = ? AND actor_key = ?",
		targetType, targetUuid, actorKey).Error
	if err != nil {
		return nil, wrapDBError(err, "查询点赞记录")
	}
	return &like, nil
}

// CreateAndIncrement 事务内创建点赞记录并为目标的 likes_count +1
// 插入与计数自增在同一事务中：唯一索引冲突时整体回滚，计数不会多加。
// 冲突错误原样保留在错误链上，调用方用 errors.Is(err, gorm.ErrDuplicatedKey) 识别
func (r *likeRepository) CreateAndIncrement(like *model.LikeRecord) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(like).Error; err != nil {
			return err
		}
		switch like.TargetType {
		case model.TargetReview:
			return tx.Model(&model.Review{}).
				Where("uuid = ?", like.TargetUuid).
				UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
		case model.TargetComment:
			return tx.Model(&model.Comment{}).
				Where("uuid = ?", like.TargetUuid).
				UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
		}
		return nil
	})
	if err != nil {
		return wrapDBError(err, "创建点赞记录")
	}
	return nil
}

// StatsByTarget 统计目标的点赞总数及用户/匿名分布
func (r *likeRepository) StatsByTarget(targetType model.ReportTargetType, targetUuid string) (*LikeStatsRow, error) {
	var row LikeStatsRow
	err := r.db.Model(&model.LikeRecord{}).
		Select("COUNT(*) AS total, "+
			"SUM(CASE WHEN user_uuid <> '' THEN 1 ELSE 0 END) AS user_count, "+
			"SUM(CASE WHEN anonymous_uuid <> '' THEN 1 ELSE 0 END) AS anonymous_count").
		Where("target_type = ? AND target_uuid = ?", targetType, targetUuid).
		Scan(&row).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "统计点赞 target=%s", targetUuid)
	}
	return &row, nil
}

// ListRecentByTarget 查询目标最近的点赞记录
func (r *likeRepository) ListRecentByTarget(targetType model.ReportTargetType, targetUuid string, limit int) ([]model.LikeRecord, error) {
	var likes []model.LikeRecord
	err := r.db.Where("target_type = ? AND target_uuid = ?", targetType, targetUuid).
		Order("created_at DESC").Limit(limit).Find(&likes).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询点赞列表 target=%s", targetUuid)
	}
	return likes, nil
}

// FindLikedTargets 在给定目标集合中筛出某行为人已点赞的目标
func (r *likeRepository) FindLikedTargets(targetType model.ReportTargetType, targetUuids []string, actorKey string) (map[string]bool, error) {
	liked := make(map[string]bool, len(targetUuids))
	if len(targetUuids) == 0 || actorKey == "" {
		return liked, nil
	}
	var likes []model.LikeRecord
	err := r.db.Select("target_uuid").
		Where("target_type = ? AND target_uuid IN ? AND actor_key = ?", targetType, targetUuids, actorKey).
		Find(&likes).Error
	if err != nil {
		return nil, wrapDBError(err, "批量查询点赞状态")
	}
	for _, like := range likes {
		liked[like.TargetUuid] = true
	}
	return liked, nil
}
