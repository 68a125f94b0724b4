// Package model 定义数据库实体模型
// 本文件定义匿名用户模型：以设备指纹为主键的持久化匿名身份
package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// AnonymousUser 匿名用户模型
// 首次见到某个设备指纹时创建，之后只更新 LastSeenAt，本流水线不会删除该记录
type AnonymousUser struct {
	gorm.Model

	// Uuid 匿名用户唯一标识
	// 格式：A + 13位时间戳随机字符串
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:匿名用户唯一id"`

	// DeviceFingerprint 客户端设备指纹（不透明字符串，长度 >= 10）
	// 唯一索引保证并发首见同一指纹时只创建一条记录
	DeviceFingerprint string `gorm:"column:device_fingerprint;uniqueIndex;type:varchar(128);not null;comment:设备指纹"`

	// DisplayName 展示名，创建时根据序号派生，如 "匿名#9527"
	DisplayName string `gorm:"column:display_name;type:varchar(30);not null;comment:展示名"`

	// SequenceNumber 匿名序号
	// 创建时分配，单调递增，从 9527 起，永不复用
	SequenceNumber int `gorm:"column:sequence_number;uniqueIndex;not null;comment:匿名序号"`

	// LastSeenAt 最近一次被解析到的时间
	LastSeenAt sql.NullTime `gorm:"column:last_seen_at;type:datetime;comment:最近活跃时间"`
}

// TableName 指定表名
func (AnonymousUser) TableName() string {
	return "anonymous_user"
}
