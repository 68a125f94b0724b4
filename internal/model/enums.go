// Package model 定义数据库实体模型
// 本文件定义各模型共用的枚举类型，取值与数据库存储一致（小写字符串）
package model

// ContentStatus 可审核内容（点评/评论）的状态
// 状态机只允许前向迁移：
//
//	pending   -> published | deleted  （审核员操作）
//	published -> hidden               （举报阈值或审核员操作）
//	hidden    -> published | deleted  （仅审核员操作，本流水线不会自动恢复）
//	deleted   终态
type ContentStatus string

const (
	ContentPending   ContentStatus = "pending"   // 待审核，不出现在公开列表
	ContentPublished ContentStatus = "published" // 已发布
	ContentHidden    ContentStatus = "hidden"    // 被隐藏（举报阈值触发或审核员操作）
	ContentDeleted   ContentStatus = "deleted"   // 已删除，对外等同于不存在
)

// CanTransition 判断状态机是否允许 from -> to 的迁移
func (from ContentStatus) CanTransition(to ContentStatus) bool {
	switch from {
	case ContentPending:
		return to == ContentPublished || to == ContentDeleted
	case ContentPublished:
		return to == ContentHidden
	case ContentHidden:
		return to == ContentPublished || to == ContentDeleted
	default: // deleted 终态
		return false
	}
}

// ReportStatus 举报单状态
type ReportStatus string

const (
	ReportOpen     ReportStatus = "open"     // 待处理，计入自动隐藏阈值
	ReportResolved ReportStatus = "resolved" // 审核员确认，目标会被强制隐藏
	ReportRejected ReportStatus = "rejected" // 审核员驳回，对目标无副作用
)

// ReportTargetType 举报/点赞目标类型
type ReportTargetType string

const (
	TargetReview  ReportTargetType = "review"
	TargetComment ReportTargetType = "comment"
)

// ActorScope 限流维度
// user/anonymous 按行为人本身限流，ip_segment 按 IP 指纹粗粒度限流
type ActorScope string

const (
	ScopeUser      ActorScope = "user"
	ScopeAnonymous ActorScope = "anonymous"
	ScopeIpSegment ActorScope = "ip_segment"
)

// ToolType 点评目标（AI 编程工具）类型
type ToolType string

const (
	ToolEditor ToolType = "editor" // AI 编辑器/IDE
	ToolCoding ToolType = "coding" // 编程辅助工具
)
