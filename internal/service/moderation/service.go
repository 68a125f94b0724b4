// Package moderation 本文件实现举报聚合器与内容状态机操作
package moderation

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"tool_review_server/internal/dao/mysql"
	"tool_review_server/internal/infrastructure/eventbus"
	"tool_review_server/internal/model"
	"tool_review_server/internal/service/identity"
	"tool_review_server/internal/service/ratelimit"
	"tool_review_server/pkg/constants"
	"tool_review_server/pkg/errorx"
	"tool_review_server/pkg/util/random"
)

// Service 举报聚合与审核服务
type Service struct {
	reportRepo  mysql.ReportRepository
	reviewRepo  mysql.ReviewRepository
	commentRepo mysql.CommentRepository
	limiter     *ratelimit.Service
	publisher   eventbus.Publisher
}

// NewService 创建举报聚合与审核服务
func NewService(
	reportRepo mysql.ReportRepository,
	reviewRepo mysql.ReviewRepository,
	commentRepo mysql.CommentRepository,
	limiter *ratelimit.Service,
	publisher eventbus.Publisher,
) *Service {
	return &Service{
		reportRepo:  reportRepo,
		reviewRepo:  reviewRepo,
		commentRepo: commentRepo,
		limiter:     limiter,
		publisher:   publisher,
	}
}

// CreateReport 创建举报单并重新评估目标可见性
// 流程：校验 reason -> 校验目标存在且未删除 -> 限流 -> 落库 -> 以权威
// open 举报数回写 reportsCount，达到阈值时自动隐藏目标
func (s *Service) CreateReport(ctx context.Context, targetType model.ReportTargetType, targetUuid, reason string, actor *identity.Actor) (*model.Report, error) {
	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) < 5 {
		return nil, errorx.NewIdent(errorx.CodeInvalidParam, errorx.IdentReportValidation, "举报理由至少 5 个字符")
	}

	// 已删除目标与不存在的目标同样返回未找到，不暴露删除痕迹
	if _, err := s.findLiveContent(targetType, targetUuid); err != nil {
		return nil, err
	}

	limit, err := s.limiter.CheckAndConsume(ratelimit.ActionReportCreate, actor, 1)
	if err != nil {
		return nil, err
	}
	if !limit.Allowed {
		s.publisher.Publish(ctx, eventbus.AbuseEvent{
			Type:       eventbus.EventRateLimitDenied,
			TargetType: string(targetType),
			TargetUuid: targetUuid,
			ActorKey:   actor.ActorKey,
			Reason:     ratelimit.ActionReportCreate,
			OccurredAt: time.Now(),
		})
		return nil, errorx.ErrRateLimited
	}

	report := &model.Report{
		Uuid:                  "P" + random.GetNowAndLenRandomString(13),
		TargetType:            targetType,
		TargetUuid:            targetUuid,
		ReporterUserUuid:      actor.UserUuid,
		ReporterAnonymousUuid: actor.AnonymousUuid,
		ReporterActorKey:      actor.ActorKey,
		Reason:                reason,
		Status:                model.ReportOpen,
	}
	if err := s.reportRepo.Create(report); err != nil {
		return nil, err
	}

	hidden, err := s.reevaluate(targetType, targetUuid)
	if err != nil {
		// 举报已落库，重评失败只记日志，下一次举报会重新触发
		zap.L().Error("重新评估目标可见性失败",
			zap.String("targetType", string(targetType)),
			zap.String("targetUuid", targetUuid),
			zap.Error(err))
	}

	s.publisher.Publish(ctx, eventbus.AbuseEvent{
		Type:       eventbus.EventReportCreated,
		TargetType: string(targetType),
		TargetUuid: targetUuid,
		ActorKey:   actor.ActorKey,
		OccurredAt: time.Now(),
	})
	if hidden {
		s.publisher.Publish(ctx, eventbus.AbuseEvent{
			Type:       eventbus.EventAutoHidden,
			TargetType: string(targetType),
			TargetUuid: targetUuid,
			OccurredAt: time.Now(),
		})
	}

	return report, nil
}

// reevaluate 以权威 open 举报数重算目标的 reportsCount
// 返回本次是否触发了自动隐藏。隐藏是单向自动触发：即便后续举报被驳回
// 也不会自动恢复。并发举报乱序落库时，这里读到的是重算时刻的真实计数
func (s *Service) reevaluate(targetType model.ReportTargetType, targetUuid string) (bool, error) {
	openCount, err := s.reportRepo.CountOpenByTarget(targetType, targetUuid)
	if err != nil {
		return false, err
	}

	status, err := s.contentStatus(targetType, targetUuid)
	if err != nil {
		return false, err
	}

	// 只有已发布内容会被自动隐藏，状态机不允许 pending/deleted -> hidden
	hide := openCount >= constants.AUTO_HIDE_THRESHOLD && status == model.ContentPublished

	if err := s.updateModeration(targetType, targetUuid, int(openCount), hide); err != nil {
		return false, err
	}

	if hide {
		zap.L().Info("举报达到阈值，自动隐藏内容",
			zap.String("targetType", string(targetType)),
			zap.String("targetUuid", targetUuid),
			zap.Int64("openReports", openCount))
	}
	return hide, nil
}

// ResolveReport 审核员处理举报单
// approve 为 true 时举报转为 resolved，并强制隐藏目标（即便 open 数未达阈值）；
// 为 false 时转为 rejected，对目标无副作用。两种情况都会重算 reportsCount
func (s *Service) ResolveReport(ctx context.Context, reportUuid string, approve bool) (*model.Report, error) {
	report, err := s.reportRepo.FindByUuid(reportUuid)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.NewIdent(errorx.CodeNotFound, errorx.IdentReportNotFound, "举报单不存在")
		}
		return nil, err
	}
	if report.Status != model.ReportOpen {
		return nil, errorx.NewIdent(errorx.CodeInvalidParam, errorx.IdentReportValidation, "举报单已处理")
	}

	newStatus := model.ReportRejected
	eventType := eventbus.EventReportRejected
	if approve {
		newStatus = model.ReportResolved
		eventType = eventbus.EventReportResolved
	}
	if err := s.reportRepo.UpdateStatus(reportUuid, newStatus); err != nil {
		return nil, err
	}
	report.Status = newStatus

	if approve {
		// 审核员确认即强制隐藏，不受阈值约束
		status, statusErr := s.contentStatus(report.TargetType, report.TargetUuid)
		if statusErr == nil && status.CanTransition(model.ContentHidden) {
			if err := s.updateContentStatus(report.TargetType, report.TargetUuid, model.ContentHidden); err != nil {
				zap.L().Error("强制隐藏目标失败", zap.String("targetUuid", report.TargetUuid), zap.Error(err))
			}
		}
	}

	// 举报离开 open 状态后重算计数（不会触发自动隐藏回退）
	if _, err := s.reevaluate(report.TargetType, report.TargetUuid); err != nil {
		zap.L().Error("重算举报计数失败", zap.String("targetUuid", report.TargetUuid), zap.Error(err))
	}

	s.publisher.Publish(ctx, eventbus.AbuseEvent{
		Type:       eventType,
		TargetType: string(report.TargetType),
		TargetUuid: report.TargetUuid,
		OccurredAt: time.Now(),
	})
	return report, nil
}

// ListReports 分页查询举报单，status 为空时不过滤
func (s *Service) ListReports(status model.ReportStatus, page, pageSize int) ([]model.Report, int64, error) {
	return s.reportRepo.List(status, page, pageSize)
}

// UpdateContentStatus 审核员变更内容状态
// 迁移必须符合状态机：pending -> published/deleted，hidden -> published/deleted，
// published -> hidden。其余迁移拒绝
func (s *Service) UpdateContentStatus(targetType model.ReportTargetType, targetUuid string, to model.ContentStatus) error {
	from, err := s.contentStatus(targetType, targetUuid)
	if err != nil {
		return err
	}
	if !from.CanTransition(to) {
		return errorx.Newf(errorx.CodeInvalidParam, "不允许的状态迁移: %s -> %s", from, to)
	}
	return s.updateContentStatus(targetType, targetUuid, to)
}

// ==================== 目标内容访问辅助 ====================

// findLiveContent 校验目标存在且未删除，返回其当前状态
// 目标缺失与已删除统一返回 ERR_REPORT_TARGET_NOT_FOUND
func (s *Service) findLiveContent(targetType model.ReportTargetType, targetUuid string) (model.ContentStatus, error) {
	status, err := s.contentStatus(targetType, targetUuid)
	if err != nil {
		if errorx.IsNotFound(err) {
			return "", errorx.NewIdent(errorx.CodeNotFound, errorx.IdentReportTargetLost, "举报目标不存在")
		}
		return "", err
	}
	if status == model.ContentDeleted {
		return "", errorx.NewIdent(errorx.CodeNotFound, errorx.IdentReportTargetLost, "举报目标不存在")
	}
	return status, nil
}

// contentStatus 读取目标当前状态
func (s *Service) contentStatus(targetType model.ReportTargetType, targetUuid string) (model.ContentStatus, error) {
	switch targetType {
	case model.TargetReview:
		review, err := s.reviewRepo.FindByUuid(targetUuid)
		if err != nil {
			return "", err
		}
		return review.Status, nil
	case model.TargetComment:
		comment, err := s.commentRepo.FindByUuid(targetUuid)
		if err != nil {
			return "", err
		}
		return comment.Status, nil
	default:
		return "", errorx.NewIdent(errorx.CodeInvalidParam, errorx.IdentReportValidation, "不支持的目标类型")
	}
}

// updateModeration 回写目标的举报计数，hide 为 true 时同时置为 hidden
func (s *Service) updateModeration(targetType model.ReportTargetType, targetUuid string, reportsCount int, hide bool) error {
	if targetType == model.TargetReview {
		return s.reviewRepo.UpdateModeration(targetUuid, reportsCount, hide)
	}
	return s.commentRepo.UpdateModeration(targetUuid, reportsCount, hide)
}

// updateContentStatus 更新目标状态
func (s *Service) updateContentStatus(targetType model.ReportTargetType, targetUuid string, to model.ContentStatus) error {
	if targetType == model.TargetReview {
		return s.reviewRepo.UpdateStatus(targetUuid, to)
	}
	return s.commentRepo.UpdateStatus(targetUuid, to)
}
