package model

import (
	"gorm.io/gorm"
)

// LikeRecord 点赞记录模型
// (target_type, target_uuid, actor_key) 上的唯一索引是点赞幂等性的最终保证：
// 并发首赞时数据库层只会留下一条记录，落败方按"已点赞"处理
type LikeRecord struct {
	gorm.Model

	TargetType ReportTargetType `gorm:"column:target_type;uniqueIndex:uk_like_target_actor;type:varchar(10);not null;comment:目标类型"`
	TargetUuid string           `gorm:"column:target_uuid;uniqueIndex:uk_like_target_actor;type:char(20);not null;comment:目标id"`
	ActorKey   string           `gorm:"column:actor_key;uniqueIndex:uk_like_target_actor;type:varchar(64);not null;comment:行为人键"`

	// UserUuid / AnonymousUuid 用于按作者类型分组统计，恰好一个非空
	UserUuid      string `gorm:"column:user_uuid;index;type:char(20);comment:用户id"`
	AnonymousUuid string `gorm:"column:anonymous_uuid;index;type:char(20);comment:匿名id"`
}

// TableName 指定表名
func (LikeRecord) TableName() string {
	return "like_record"
}
