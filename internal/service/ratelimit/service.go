// Package ratelimit 按日配额限流服务
// 以 (action, actorScope, actorKey, windowDate) 为键维护计数器，
// 窗口是固定参考时区（UTC+8）的自然日，不是滚动窗口
package ratelimit

import (
	"time"

	"tool_review_server/internal/dao/mysql"
	"tool_review_server/internal/model"
	"tool_review_server/internal/service/identity"
	"tool_review_server/pkg/errorx"
)

// 受限动作名，同时作为计数器的 action 键
const (
	ActionReviewCreate  = "review_create"
	ActionCommentCreate = "comment_create"
	ActionLikeCreate    = "like_create"
	ActionReportCreate  = "report_create"
)

// limits 静态配额表：(action, scope) -> 每日上限
// 表中不存在的组合视为不限流
var limits = map[string]map[model.ActorScope]int{
	ActionReviewCreate: {
		model.ScopeUser:      10,
		model.ScopeAnonymous: 5,
	},
	ActionCommentCreate: {
		model.ScopeUser:      30,
		model.ScopeAnonymous: 20,
	},
	ActionLikeCreate: {
		model.ScopeUser:      50,
		model.ScopeAnonymous: 30,
		model.ScopeIpSegment: 200,
	},
	ActionReportCreate: {
		model.ScopeUser:      20,
		model.ScopeAnonymous: 10,
	},
}

// windowZone 窗口计算用的固定参考时区
// 所有计数器的日界线以 UTC+8 为准，与服务器本地时区无关
var windowZone = time.FixedZone("UTC+8", 8*3600)

// Result 限流判定结果
type Result struct {
	Allowed   bool      // 是否放行
	Remaining int       // 本窗口剩余配额，-1 表示不限流
	ResetAt   time.Time // 下一个窗口的起始时刻（配额重置时间）
}

// Service 限流服务
type Service struct {
	repo mysql.RateLimitRepository
	now  func() time.Time // 可注入的时钟，便于测试窗口边界
}

// NewService 创建限流服务
func NewService(repo mysql.RateLimitRepository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// CheckAndConsume 原子地尝试消费行为人在当前窗口的配额
// 放行时计数器自增 amount；会超出上限时不改动任何状态直接拒绝。
// 并发请求间的先检查后提交竞态由存储层的条件更新消除
func (s *Service) CheckAndConsume(action string, actor *identity.Actor, amount int) (*Result, error) {
	return s.consume(action, actor.Scope(), actor.ActorKey, amount)
}

// CheckIPSegmentLimit 消费 ip_segment 维度的配额
// 这是写密集动作（如点赞）的第二道独立限流：同一网络出口后的
// 大量匿名身份共享这一粗粒度上限，两道限流都通过动作才放行
func (s *Service) CheckIPSegmentLimit(action string, actor *identity.Actor) (*Result, error) {
	return s.consume(action, model.ScopeIpSegment, "ip:"+actor.IPHash, 1)
}

// RemainingQuota 只读查询剩余配额，不消费
func (s *Service) RemainingQuota(action string, actor *identity.Actor) (*Result, error) {
	nowTime := s.now()
	reset := resetAt(nowTime)

	cap, ok := capFor(action, actor.Scope())
	if !ok {
		return &Result{Allowed: true, Remaining: -1, ResetAt: reset}, nil
	}

	counter, err := s.repo.Get(action, actor.Scope(), actor.ActorKey, windowDate(nowTime))
	if err != nil {
		if errorx.IsNotFound(err) {
			return &Result{Allowed: true, Remaining: cap, ResetAt: reset}, nil
		}
		return nil, err
	}

	remaining := cap - counter.Count
	if remaining < 0 {
		remaining = 0
	}
	return &Result{Allowed: remaining > 0, Remaining: remaining, ResetAt: reset}, nil
}

// consume 在指定维度上执行原子的带上限自增
func (s *Service) consume(action string, scope model.ActorScope, actorKey string, amount int) (*Result, error) {
	nowTime := s.now()
	reset := resetAt(nowTime)

	cap, ok := capFor(action, scope)
	if !ok {
		// 配额表中不存在的组合不限流
		return &Result{Allowed: true, Remaining: -1, ResetAt: reset}, nil
	}

	allowed, count, err := s.repo.TryConsume(action, scope, actorKey, windowDate(nowTime), amount, cap)
	if err != nil {
		return nil, err
	}

	remaining := cap - count
	if remaining < 0 {
		remaining = 0
	}
	return &Result{Allowed: allowed, Remaining: remaining, ResetAt: reset}, nil
}

// capFor 查询配额表，ok 为 false 表示该组合不限流
func capFor(action string, scope model.ActorScope) (int, bool) {
	scopes, ok := limits[action]
	if !ok {
		return 0, false
	}
	cap, ok := scopes[scope]
	return cap, ok
}

// windowDate 计算时刻 t 所属的窗口键（UTC+8 自然日）
func windowDate(t time.Time) string {
	return t.In(windowZone).Format("2006-01-02")
}

// resetAt 计算时刻 t 所属窗口的下一个窗口起点（UTC+8 次日零点）
func resetAt(t time.Time) time.Time {
	local := t.In(windowZone)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, windowZone)
	return dayStart.AddDate(0, 0, 1)
}
