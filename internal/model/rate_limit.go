package model

import (
	"gorm.io/gorm"
)

// RateLimitCounter 限流计数器模型
// 一条记录对应 (action, actor_scope, actor_key, window_date) 一个自然日窗口：
// 窗口日期按固定时区（UTC+8）计算，跨天后旧计数器不再被读取，也不主动删除。
// 唯一索引保证并发首次消费只会创建一条计数器，之后的消费走条件自增
type RateLimitCounter struct {
	gorm.Model

	Action     string     `gorm:"column:action;uniqueIndex:uk_rate_limit_window;type:varchar(30);not null;comment:动作"`
	ActorScope ActorScope `gorm:"column:actor_scope;uniqueIndex:uk_rate_limit_window;type:varchar(12);not null;comment:限流维度"`
	ActorKey   string     `gorm:"column:actor_key;uniqueIndex:uk_rate_limit_window;type:varchar(64);not null;comment:行为人键"`

	// WindowDate 窗口日期，固定时区下的 "2006-01-02"
	WindowDate string `gorm:"column:window_date;uniqueIndex:uk_rate_limit_window;type:char(10);not null;comment:窗口日期"`

	// Count 窗口内已消费的次数，恒 >= 0，且不会超过该动作的配额上限
	Count int `gorm:"column:count;not null;default:0;comment:已消费次数"`
}

// TableName 指定表名
func (RateLimitCounter) TableName() string {
	return "rate_limit_counter"
}
