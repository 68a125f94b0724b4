package model

import (
	"gorm.io/gorm"
)

// Report 举报单模型
// 同一行为人可对同一目标重复举报（不做去重），只受每日举报限流约束
type Report struct {
	gorm.Model

	// Uuid 举报唯一标识，格式：P + 13位时间戳随机字符串
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:举报唯一id"`

	TargetType ReportTargetType `gorm:"column:target_type;index:idx_report_target;type:varchar(10);not null;comment:目标类型"`
	TargetUuid string           `gorm:"column:target_uuid;index:idx_report_target;type:char(20);not null;comment:目标id"`

	// ReporterUserUuid / ReporterAnonymousUuid 举报人，恰好一个非空
	ReporterUserUuid      string `gorm:"column:reporter_user_uuid;index;type:char(20);comment:举报用户id"`
	ReporterAnonymousUuid string `gorm:"column:reporter_anonymous_uuid;index;type:char(20);comment:举报匿名id"`
	ReporterActorKey      string `gorm:"column:reporter_actor_key;type:varchar(64);not null;comment:举报人键"`

	// Reason 举报理由，去除首尾空白后长度 >= 5
	Reason string `gorm:"column:reason;type:varchar(500);not null;comment:举报理由"`

	// Status open 状态计入自动隐藏阈值
	Status ReportStatus `gorm:"column:status;index;type:varchar(10);not null;comment:状态"`
}

// TableName 指定表名
func (Report) TableName() string {
	return "report"
}
