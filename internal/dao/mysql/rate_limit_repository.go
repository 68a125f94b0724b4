package mysql

import (
	"errors"

	"tool_review_server/internal/model"
	"tool_review_server/pkg/errorx"

	"gorm.io/gorm"
)

type rateLimitRepository struct {
	db *gorm.DB
}

// NewRateLimitRepository 创建限流计数器 Repository
func NewRateLimitRepository(db *gorm.DB) RateLimitRepository {
	return &rateLimitRepository{db: db}
}

// Get 查询计数器
func (r *rateLimitRepository) Get(action string, scope model.ActorScope, actorKey, windowDate string) (*model.RateLimitCounter, error) {
	var counter model.RateLimitCounter
	err := r.db.First(&counter,
		"action = ? AND actor_scope = ? AND actor_key = ? AND window_date = ?",
		action, scope, actorKey, windowDate).Error
	if err != nil {
		return nil, wrapDBError(err, "查询限流计数器")
	}
	return &counter, nil
}

// TryConsume 原子地尝试消费配额
// 核心是带上限条件的单条 UPDATE：count = count + amount WHERE count + amount <= cap，
// 把"检查+自增"合成一次原子操作，两个并发请求不可能都通过检查后一起把计数推过上限。
// UPDATE 未命中时分三种情况：计数器不存在（尝试创建首条）、已到上限（拒绝）、
// 创建撞上唯一索引（首次消费竞争，重试一次条件 UPDATE）
func (r *rateLimitRepository) TryConsume(action string, scope model.ActorScope, actorKey, windowDate string, amount, cap int) (bool, int, error) {
	for attempt := 0; attempt < 2; attempt++ {
		res := r.db.Model(&model.RateLimitCounter{}).
			Where("action = ? AND actor_scope = ? AND actor_key = ? AND window_date = ? AND count + ? <= ?",
				action, scope, actorKey, windowDate, amount, cap).
			UpdateColumn("count", gorm.Expr("count + ?", amount))
		if res.Error != nil {
			return false, 0, wrapDBError(res.Error, "限流计数自增")
		}
		if res.RowsAffected == 1 {
			counter, err := r.Get(action, scope, actorKey, windowDate)
			if err != nil {
				return false, 0, err
			}
			return true, counter.Count, nil
		}

		// UPDATE 未命中：区分"计数器不存在"和"已到上限"
		existing, err := r.Get(action, scope, actorKey, windowDate)
		if err == nil {
			return false, existing.Count, nil // 已有计数器且额度不足，拒绝且不修改状态
		}
		if !errorx.IsNotFound(err) {
			return false, 0, err
		}

		// 窗口内首次消费
		if amount > cap {
			return false, 0, nil
		}
		counter := &model.RateLimitCounter{
			Action:     action,
			ActorScope: scope,
			ActorKey:   actorKey,
			WindowDate: windowDate,
			Count:      amount,
		}
		createErr := r.db.Create(counter).Error
		if createErr == nil {
			return true, amount, nil
		}
		if !errors.Is(createErr, gorm.ErrDuplicatedKey) {
			return false, 0, wrapDBError(createErr, "创建限流计数器")
		}
		// 首次消费竞争落败，计数器已由并发请求创建，回到条件 UPDATE
	}
	// 重试后仍未命中，按额度不足处理
	existing, err := r.Get(action, scope, actorKey, windowDate)
	if err != nil {
		return false, 0, err
	}
	return false, existing.Count, nil
}
