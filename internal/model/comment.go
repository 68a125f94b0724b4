package model

import (
	"gorm.io/gorm"
)

// Comment 点评下的评论模型
// 作者结构与 Review 一致：UserUuid / AnonymousUuid 二选一，ActorKey 冗余
type Comment struct {
	gorm.Model

	// Uuid 评论唯一标识，格式：C + 13位时间戳随机字符串
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:评论唯一id"`

	ReviewUuid string `gorm:"column:review_uuid;index;type:char(20);not null;comment:所属点评id"`

	UserUuid      string `gorm:"column:user_uuid;index;type:char(20);comment:作者用户id"`
	AnonymousUuid string `gorm:"column:anonymous_uuid;index;type:char(20);comment:作者匿名id"`
	ActorKey      string `gorm:"column:actor_key;index;type:varchar(64);not null;comment:行为人键"`

	// Content 评论正文，10-500 字符
	Content string `gorm:"column:content;type:varchar(1000);not null;comment:正文"`

	Language string `gorm:"column:language;type:char(5);default:zh;comment:语言"`

	Status ContentStatus `gorm:"column:status;index;type:varchar(10);not null;comment:状态"`

	LikesCount   int `gorm:"column:likes_count;not null;default:0;comment:点赞数"`
	ReportsCount int `gorm:"column:reports_count;not null;default:0;comment:举报数"`
}

// TableName 指定表名
func (Comment) TableName() string {
	return "comment"
}
