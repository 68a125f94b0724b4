package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tool_review_server/internal/config"
	dao "tool_review_server/internal/dao/mysql"
	myredis "tool_review_server/internal/dao/redis"
	"tool_review_server/internal/handler"
	"tool_review_server/internal/http_server"
	"tool_review_server/internal/infrastructure/eventbus"
	"tool_review_server/internal/infrastructure/logger"
	"tool_review_server/internal/service"
	"tool_review_server/pkg/util/jwt"
	"tool_review_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	if err := config.LoadConfig(); err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化雪花算法节点
	snowflake.Init(conf.SnowflakeConfig.MachineID)

	// 4. 初始化数据库
	repos, err := dao.Init()
	if err != nil {
		zap.L().Fatal("数据库初始化失败", zap.Error(err))
	}
	zap.L().Info("数据库初始化成功")

	// 5. 初始化 Redis
	myredis.Init()
	zap.L().Info("Redis 初始化成功")

	// 6. 初始化 JWT
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)
	zap.L().Info("JWT 初始化成功")

	// 7. 初始化事件总线 (channel / kafka 由配置决定)
	publisher := eventbus.NewPublisher()
	zap.L().Info("事件总线初始化成功")

	// 8. 初始化 Service 层 (依赖注入)
	service.InitServices(repos, myredis.GetCacheService(), publisher)
	zap.L().Info("Service 层初始化成功")

	// 9. 初始化参数校验错误翻译器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("翻译器初始化失败", zap.Error(err))
	}
	zap.L().Info("翻译器初始化成功")

	// 10. 初始化 HTTP 服务器
	handlers := handler.NewHandlers(service.Svc)
	engine := http_server.Init(handlers, repos)
	zap.L().Info("HTTP 服务器初始化成功")

	// 11. 启动服务
	host := conf.MainConfig.Host
	port := conf.MainConfig.Port

	go func() {
		if err := engine.Run(fmt.Sprintf("%s:%d", host, port)); err != nil {
			zap.L().Fatal("server running fault")
			return
		}
	}()

	// 设置信号监听
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// 等待信号
	<-quit

	zap.L().Info("关闭服务器...")

	publisher.Close()

	zap.L().Info("服务器已关闭")
}
