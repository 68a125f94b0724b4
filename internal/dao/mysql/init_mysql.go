package mysql

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"tool_review_server/internal/config"
	"tool_review_server/internal/model"
)

// Init 初始化 MySQL 数据库连接
// 从配置中读取连接参数，建立 GORM 连接并自动迁移表结构
// 返回 Repositories 聚合供 Service 层使用
func Init() (*Repositories, error) {
	cfg := config.GetConfig().MysqlConfig
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DatabaseName,
	)

	// TranslateError 开启后，唯一键冲突会被转换为 gorm.ErrDuplicatedKey
	// 并发写入依赖此错误识别重复记录
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		zap.L().Error("连接 MySQL 失败", zap.Error(err))
		return nil, err
	}

	// 自动迁移表结构
	err = db.AutoMigrate(
		&model.UserInfo{},
		&model.AnonymousUser{},
		&model.Target{},
		&model.Review{},
		&model.Comment{},
		&model.LikeRecord{},
		&model.Report{},
		&model.RateLimitCounter{},
	)
	if err != nil {
		zap.L().Error("自动迁移表结构失败", zap.Error(err))
		return nil, err
	}

	zap.L().Info("MySQL 初始化成功",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("dbname", cfg.DatabaseName))

	return NewRepositories(db), nil
}
