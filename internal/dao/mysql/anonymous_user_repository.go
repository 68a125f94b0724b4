package mysql

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tool_review_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type anonymousUserRepository struct {
	db *gorm.DB
}

// NewAnonymousUserRepository 创建匿名用户 Repository
func NewAnonymousUserRepository(db *gorm.DB) AnonymousUserRepository {
	return &anonymousUserRepository{db: db}
}

// FindByUuid 按 UUID 查找匿名用户
func (r *anonymousUserRepository) FindByUuid(uuid string) (*model.AnonymousUser, error) {
	var anon model.AnonymousUser
	if err := r.db.First(&anon, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询匿名用户 uuid=%s", uuid)
	}
	return &anon, nil
}

// FindByUuids 按 UUID 列表查找匿名用户
func (r *anonymousUserRepository) FindByUuids(uuids []string) ([]model.AnonymousUser, error) {
	if len(uuids) == 0 {
		return nil, nil
	}
	var anons []model.AnonymousUser
	if err := r.db.Where("uuid IN ?", uuids).Find(&anons).Error; err != nil {
		return nil, wrapDBError(err, "批量查询匿名用户")
	}
	return anons, nil
}

// FindByFingerprint 按设备指纹查找匿名用户
func (r *anonymousUserRepository) FindByFingerprint(fingerprint string) (*model.AnonymousUser, error) {
	var anon model.AnonymousUser
	if err := r.db.First(&anon, "device_fingerprint = ?", fingerprint).Error; err != nil {
		return nil, wrapDBError(err, "查询匿名用户指纹")
	}
	return &anon, nil
}

// TouchLastSeen 更新最近活跃时间
func (r *anonymousUserRepository) TouchLastSeen(uuid string) error {
	err := r.db.Model(&model.AnonymousUser{}).
		Where("uuid = ?", uuid).
		Update("last_seen_at", sql.NullTime{Time: time.Now(), Valid: true}).Error
	if err != nil {
		return wrapDBErrorf(err, "更新匿名用户活跃时间 uuid=%s", uuid)
	}
	return nil
}

// CreateWithNextSequence 在事务内分配下一个匿名序号并创建记录
// 对当前最大序号行加写锁再自增，保证并发创建不同指纹时序号不重复；
// 并发首见同一指纹的竞争由指纹唯一索引兜底，调用方按 gorm.ErrDuplicatedKey 处理
func (r *anonymousUserRepository) CreateWithNextSequence(anon *model.AnonymousUser, sequenceStart int) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var last model.AnonymousUser
		next := sequenceStart
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Order("sequence_number DESC").
			First(&last).Error
		if err == nil {
			next = last.SequenceNumber + 1
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		anon.SequenceNumber = next
		anon.DisplayName = fmt.Sprintf("匿名#%d", next)
		anon.LastSeenAt = sql.NullTime{Time: time.Now(), Valid: true}
		return tx.Create(anon).Error
	})
	if err != nil {
		return wrapDBError(err, "创建匿名用户")
	}
	return nil
}
