package model

import (
	"gorm.io/gorm"
)

// Target 点评目标（AI 编程工具）模型
type Target struct {
	gorm.Model

	// Uuid 目标唯一标识，格式：T + 13位时间戳随机字符串
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:目标唯一id"`

	Name string `gorm:"column:name;type:varchar(50);not null;comment:工具名称"`

	// Slug 用于 URL 的短标识，同类型内唯一
	Slug string `gorm:"column:slug;uniqueIndex;type:varchar(50);not null;comment:短标识"`

	Type ToolType `gorm:"column:type;index;type:varchar(10);not null;comment:工具类型"`

	LogoUrl     string `gorm:"column:logo_url;type:varchar(255);comment:图标地址"`
	Description string `gorm:"column:description;type:varchar(500);comment:简介"`
	WebsiteUrl  string `gorm:"column:website_url;type:varchar(255);comment:官网地址"`
	Developer   string `gorm:"column:developer;type:varchar(50);comment:开发商"`

	// Features 功能标签，JSON 数组字符串，如 ["代码补全","代码解释"]
	Features string `gorm:"column:features;type:varchar(500);comment:功能标签JSON"`
}

// TableName 指定表名
func (Target) TableName() string {
	return "target"
}
