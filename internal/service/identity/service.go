// Package identity 行为人解析服务
// 将入站请求携带的会话、设备指纹、来源 IP 解析为稳定的行为人身份（Actor），
// 后续的限流、点赞、举报均以 Actor.ActorKey 作为去重键
package identity

import (
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tool_review_server/internal/dao/mysql"
	"tool_review_server/internal/model"
	"tool_review_server/pkg/constants"
	"tool_review_server/pkg/errorx"
	"tool_review_server/pkg/util/random"
)

// Kind 行为人类型
type Kind string

const (
	KindUser      Kind = "user"      // 已登录注册用户
	KindAnonymous Kind = "anonymous" // 匿名用户（含仅 IP 的裸匿名）
)

// Actor 解析后的行为人身份，请求作用域内的临时值，不落库
// UserUuid / AnonymousUuid 至多一个非空；裸匿名行为人两者皆空，
// 只能用于读侧个性化，不具备写侧身份
type Actor struct {
	Kind          Kind
	UserUuid      string
	AnonymousUuid string
	DisplayName   string // 匿名行为人的展示名，如 "匿名#9527"
	ActorKey      string // 稳定去重键："user:<uuid>" / "anonymous:<uuid>" / "ip:<hash>"
	IPHash        string // 客户端 IP 的单向哈希，永不存原始 IP
}

// Scope 返回行为人对应的限流维度
func (a *Actor) Scope() model.ActorScope {
	if a.Kind == KindUser {
		return model.ScopeUser
	}
	return model.ScopeAnonymous
}

// CanWrite 判断行为人是否具备写侧身份
// 裸匿名（仅 IP 指纹）不允许创建内容、点赞或举报
func (a *Actor) CanWrite() bool {
	return a.UserUuid != "" || a.AnonymousUuid != ""
}

// Service 行为人解析服务
type Service struct {
	userRepo mysql.UserRepository
	anonRepo mysql.AnonymousUserRepository
}

// NewService 创建行为人解析服务
func NewService(userRepo mysql.UserRepository, anonRepo mysql.AnonymousUserRepository) *Service {
	return &Service{
		userRepo: userRepo,
		anonRepo: anonRepo,
	}
}

// Resolve 将请求上下文解析为行为人
// userUuid 来自已验证的会话（空串表示未登录），fingerprint 为客户端设备指纹，
// clientIP 为 ClientIPFromHeaders 得到的客户端地址
// 解析优先级：会话 > 设备指纹 > 裸 IP；已登录用户即使携带指纹也按用户处理
func (s *Service) Resolve(userUuid, fingerprint, clientIP string) (*Actor, error) {
	ipHash := HashIP(clientIP)

	// 已验证会话：权威身份，忽略指纹
	if userUuid != "" {
		return &Actor{
			Kind:     KindUser,
			UserUuid: userUuid,
			ActorKey: "user:" + userUuid,
			IPHash:   ipHash,
		}, nil
	}

	// 未携带指纹：裸匿名行为人，仅以 IP 哈希为键
	if fingerprint == "" {
		return &Actor{
			Kind:     KindAnonymous,
			ActorKey: "ip:" + ipHash,
			IPHash:   ipHash,
		}, nil
	}

	// 指纹存在但过短视为非法输入
	if len(fingerprint) < constants.MIN_FINGERPRINT_LENGTH {
		return nil, errorx.NewIdent(errorx.CodeInvalidParam, errorx.IdentFingerprintInvalid, "设备指纹无效")
	}

	anon, err := s.ensureAnonymous(fingerprint)
	if err != nil {
		return nil, err
	}

	return &Actor{
		Kind:          KindAnonymous,
		AnonymousUuid: anon.Uuid,
		DisplayName:   anon.DisplayName,
		ActorKey:      "anonymous:" + anon.Uuid,
		IPHash:        ipHash,
	}, nil
}

// anonymousCreateRetries 首见创建的冲突重试上限
const anonymousCreateRetries = 3

// ensureAnonymous 按指纹查找或创建匿名身份
// 首见指纹时在事务内分配下一个序号并创建记录。唯一索引冲突有两种来源：
// 并发首见同一指纹（指纹索引），此时循环顶部的重读会命中对方已创建的记录；
// 并发首见不同指纹分到同一序号（序号索引），此时重读仍查不到，
// 重新进入循环分配新序号再建。冲突对调用方不可见
func (s *Service) ensureAnonymous(fingerprint string) (*model.AnonymousUser, error) {
	for attempt := 0; attempt < anonymousCreateRetries; attempt++ {
		anon, err := s.anonRepo.FindByFingerprint(fingerprint)
		if err == nil {
			// 已存在：仅更新最近活跃时间
			if touchErr := s.anonRepo.TouchLastSeen(anon.Uuid); touchErr != nil {
				zap.L().Warn("更新匿名用户活跃时间失败", zap.String("uuid", anon.Uuid), zap.Error(touchErr))
			}
			return anon, nil
		}
		if !errorx.IsNotFound(err) {
			return nil, err
		}

		newAnon := &model.AnonymousUser{
			Uuid:              "A" + random.GetNowAndLenRandomString(13),
			DeviceFingerprint: fingerprint,
			LastSeenAt:        sql.NullTime{Time: time.Now(), Valid: true},
		}
		err = s.anonRepo.CreateWithNextSequence(newAnon, constants.ANONYMOUS_SEQUENCE_START)
		if err == nil {
			zap.L().Info("创建匿名用户",
				zap.String("uuid", newAnon.Uuid),
				zap.Int("sequence", newAnon.SequenceNumber))
			return newAnon, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
	}
	return nil, errorx.New(errorx.CodeServerBusy, "匿名用户创建冲突重试超限")
}

// ClientIPFromHeaders 从转发头推导客户端地址
// 优先取 X-Forwarded-For 的第一段（逗号分隔，去空白），
// 其次取 X-Real-IP，两者皆空时返回哨兵值 "unknown"
func ClientIPFromHeaders(forwardedFor, realIP string) string {
	if forwardedFor != "" {
		first := forwardedFor
		if idx := strings.Index(forwardedFor, ","); idx >= 0 {
			first = forwardedFor[:idx]
		}
		first = strings.TrimSpace(first)
		if first != "" {
			return first
		}
	}
	if realIP != "" {
		return realIP
	}
	return "unknown"
}

// HashIP 对客户端 IP 做单向哈希
// 使用 FNV-1a 32 位哈希：不可逆、低碰撞，仅用于 ip_segment 粗粒度限流，
// 不承担任何安全职责
func HashIP(ip string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(ip))
	return fmt.Sprintf("%08x", h.Sum32())
}
