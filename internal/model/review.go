package model

import (
	"gorm.io/gorm"
)

// Review 点评模型
// 作者是注册用户或匿名用户二选一（UserUuid / AnonymousUuid 恰好一个非空），
// ActorKey 冗余存储解析后的行为人键，供点赞/限流等处按键匹配
type Review struct {
	gorm.Model

	// Uuid 点评唯一标识，格式：R + 13位时间戳随机字符串
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:点评唯一id"`

	TargetUuid string `gorm:"column:target_uuid;index;type:char(20);not null;comment:目标工具id"`

	UserUuid      string `gorm:"column:user_uuid;index;type:char(20);comment:作者用户id"`
	AnonymousUuid string `gorm:"column:anonymous_uuid;index;type:char(20);comment:作者匿名id"`
	ActorKey      string `gorm:"column:actor_key;index;type:varchar(64);not null;comment:行为人键"`

	// Category 点评分类，如 "日常编码"、"大型重构"
	Category string `gorm:"column:category;index;type:varchar(20);comment:分类"`

	// Rating 评分 1-5
	Rating int `gorm:"column:rating;not null;comment:评分1-5"`

	// Content 点评正文，50-2000 字符
	Content string `gorm:"column:content;type:text;not null;comment:正文"`

	// Language 内容语言，默认 zh
	Language string `gorm:"column:language;type:char(5);default:zh;comment:语言"`

	// Status 内容状态，初始值由内容评估器决定（pending 或 published）
	Status ContentStatus `gorm:"column:status;index;type:varchar(10);not null;comment:状态"`

	// LikesCount / ReportsCount 反范式计数
	// 必须与存活的点赞记录数 / open 举报数保持一致
	LikesCount   int `gorm:"column:likes_count;not null;default:0;comment:点赞数"`
	ReportsCount int `gorm:"column:reports_count;not null;default:0;comment:举报数"`
}

// TableName 指定表名
func (Review) TableName() string {
	return "review"
}
