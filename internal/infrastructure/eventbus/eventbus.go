// Package eventbus 滥用/审核事件总线
// 反滥用流水线产生的事件（内容被标记、举报创建、自动隐藏等）通过本包发布，
// 供审计与离线分析消费。支持两种模式：
// 1. channel：进程内通道消费，仅落日志（开发/单机部署）
// 2. kafka：写入 Kafka 主题（生产部署）
package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"tool_review_server/internal/config"
	"tool_review_server/pkg/constants"
	"tool_review_server/pkg/util/snowflake"
)

// 事件类型
const (
	EventContentFlagged  = "content_flagged"   // 内容评估器标记内容进入待审核
	EventReportCreated   = "report_created"    // 举报单创建
	EventAutoHidden      = "auto_hidden"       // open 举报数达到阈值，内容被自动隐藏
	EventReportResolved  = "report_resolved"   // 审核员确认举报
	EventReportRejected  = "report_rejected"   // 审核员驳回举报
	EventRateLimitDenied = "rate_limit_denied" // 限流拒绝（仅记录，不含原始 IP）
)

// AbuseEvent 滥用/审核事件
type AbuseEvent struct {
	EventId    int64     `json:"eventId"`              // 事件 id，雪花算法生成
	Type       string    `json:"type"`                 // 事件类型
	TargetType string    `json:"targetType,omitempty"` // 目标类型：review / comment
	TargetUuid string    `json:"targetUuid,omitempty"` // 目标 id
	ActorKey   string    `json:"actorKey,omitempty"`   // 触发事件的行为人键
	Reason     string    `json:"reason,omitempty"`     // 附加原因，如 sensitive_word
	OccurredAt time.Time `json:"occurredAt"`           // 事件时间
}

// Publisher 事件发布接口
type Publisher interface {
	// Publish 发布事件，失败只记日志不阻塞业务流程
	Publish(ctx context.Context, event AbuseEvent)
	// Close 释放底层资源
	Close()
}

// ==================== channel 模式 ====================

// ChannelBus 进程内事件总线
// 事件进入带缓冲通道，由单个消费协程落日志；通道满时丢弃并告警
type ChannelBus struct {
	events chan AbuseEvent
	done   chan struct{}
}

// NewChannelBus 创建进程内事件总线并启动消费协程
func NewChannelBus() *ChannelBus {
	b := &ChannelBus{
		events: make(chan AbuseEvent, constants.EVENT_CHANNEL_SIZE),
		done:   make(chan struct{}),
	}
	go b.consume()
	return b
}

func (b *ChannelBus) consume() {
	defer close(b.done)
	for event := range b.events {
		zap.L().Info("abuse event",
			zap.Int64("eventId", event.EventId),
			zap.String("type", event.Type),
			zap.String("targetType", event.TargetType),
			zap.String("targetUuid", event.TargetUuid),
			zap.String("actorKey", event.ActorKey),
			zap.String("reason", event.Reason),
			zap.Time("occurredAt", event.OccurredAt))
	}
}

// Publish 发布事件到进程内通道
func (b *ChannelBus) Publish(ctx context.Context, event AbuseEvent) {
	event.EventId = snowflake.GenerateID()
	select {
	case b.events <- event:
	default:
		zap.L().Warn("事件通道已满，丢弃事件", zap.String("type", event.Type))
	}
}

// Close 关闭通道并等待消费协程退出
func (b *ChannelBus) Close() {
	close(b.events)
	<-b.done
}

// ==================== kafka 模式 ====================

// KafkaBus Kafka 事件总线
type KafkaBus struct {
	writer *kafka.Writer
}

// NewKafkaBus 创建 Kafka 事件总线
func NewKafkaBus() *KafkaBus {
	kafkaConfig := config.GetConfig().KafkaConfig
	return &KafkaBus{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(kafkaConfig.HostPort),
			Topic:                  kafkaConfig.AbuseTopic,
			Balancer:               &kafka.Hash{},
			WriteTimeout:           kafkaConfig.Timeout * time.Second,
			RequiredAcks:           kafka.RequireNone,
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish 发布事件到 Kafka
// 以目标 id 为 key，保证同一目标的事件落在同一分区（分区内有序）
func (b *KafkaBus) Publish(ctx context.Context, event AbuseEvent) {
	event.EventId = snowflake.GenerateID()
	value, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("序列化事件失败", zap.Error(err))
		return
	}
	err = b.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.TargetUuid),
		Value: value,
	})
	if err != nil {
		zap.L().Error("写入事件到 Kafka 失败", zap.String("type", event.Type), zap.Error(err))
	}
}

// Close 关闭 Kafka Writer
func (b *KafkaBus) Close() {
	if err := b.writer.Close(); err != nil {
		zap.L().Error(err.Error())
	}
}

// NewPublisher 按配置创建事件发布器
// messageMode 为 "kafka" 时使用 Kafka，其余情况使用进程内通道
func NewPublisher() Publisher {
	if config.GetConfig().KafkaConfig.MessageMode == "kafka" {
		zap.L().Info("事件总线使用 kafka 模式")
		return NewKafkaBus()
	}
	zap.L().Info("事件总线使用 channel 模式")
	return NewChannelBus()
}
