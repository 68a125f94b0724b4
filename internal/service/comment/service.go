// Package comment 点评下的评论服务
// 创建路径与点评一致：限流 -> 内容评估 -> 落库；评论挂在已发布点评下
package comment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tool_review_server/internal/dao/mysql"
	"tool_review_server/internal/dto/request"
	"tool_review_server/internal/dto/respond"
	"tool_review_server/internal/infrastructure/eventbus"
	"tool_review_server/internal/model"
	"tool_review_server/internal/service/author"
	"tool_review_server/internal/service/identity"
	"tool_review_server/internal/service/moderation"
	"tool_review_server/internal/service/ratelimit"
	"tool_review_server/pkg/errorx"
	"tool_review_server/pkg/util/random"
)

// 评论正文边界
const (
	contentMinLen = 10
	contentMaxLen = 500
)

// Service 评论服务
type Service struct {
	commentRepo mysql.CommentRepository
	reviewRepo  mysql.ReviewRepository
	userRepo    mysql.UserRepository
	anonRepo    mysql.AnonymousUserRepository
	likeRepo    mysql.LikeRepository
	limiter     *ratelimit.Service
	publisher   eventbus.Publisher
}

// NewService 创建评论服务
func NewService(
	commentRepo mysql.CommentRepository,
	reviewRepo mysql.ReviewRepository,
	userRepo mysql.UserRepository,
	anonRepo mysql.AnonymousUserRepository,
	likeRepo mysql.LikeRepository,
	limiter *ratelimit.Service,
	publisher eventbus.Publisher,
) *Service {
	return &Service{
		commentRepo: commentRepo,
		reviewRepo:  reviewRepo,
		userRepo:    userRepo,
		anonRepo:    anonRepo,
		likeRepo:    likeRepo,
		limiter:     limiter,
		publisher:   publisher,
	}
}

// Create 创建评论
func (s *Service) Create(ctx context.Context, req *request.CreateCommentRequest, actor *identity.Actor) (*respond.CreateCommentRespond, error) {
	contentLen := len([]rune(req.Content))
	if contentLen < contentMinLen || contentLen > contentMaxLen {
		return nil, errorx.NewIdent(errorx.CodeInvalidParam, errorx.IdentCommentValidation, "正文长度必须在 10-500 字符之间")
	}

	review, err := s.reviewRepo.FindByUuid(req.ReviewId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.NewIdent(errorx.CodeNotFound, errorx.IdentReviewNotFound, "点评不存在")
		}
		return nil, err
	}
	// 只允许对已发布点评评论，已删除/隐藏/待审核一律按不存在处理
	if review.Status != model.ContentPublished {
		return nil, errorx.NewIdent(errorx.CodeNotFound, errorx.IdentReviewNotFound, "点评不存在")
	}

	limit, err := s.limiter.CheckAndConsume(ratelimit.ActionCommentCreate, actor, 1)
	if err != nil {
		return nil, err
	}
	if !limit.Allowed {
		s.publisher.Publish(ctx, eventbus.AbuseEvent{
			Type:       eventbus.EventRateLimitDenied,
			TargetType: string(model.TargetComment),
			TargetUuid: req.ReviewId,
			ActorKey:   actor.ActorKey,
			Reason:     ratelimit.ActionCommentCreate,
			OccurredAt: time.Now(),
		})
		return nil, errorx.ErrRateLimited
	}

	assessment := moderation.Assess(req.Content)
	status := model.ContentPublished
	if assessment.Flagged {
		status = model.ContentPending
	}

	language := req.Language
	if language == "" {
		language = "zh"
	}

	comment := &model.Comment{
		Uuid:          "C" + random.GetNowAndLenRandomString(13),
		ReviewUuid:    req.ReviewId,
		UserUuid:      actor.UserUuid,
		AnonymousUuid: actor.AnonymousUuid,
		ActorKey:      actor.ActorKey,
		Content:       req.Content,
		Language:      language,
		Status:        status,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	if assessment.Flagged {
		zap.L().Info("评论被标记进入待审核",
			zap.String("commentUuid", comment.Uuid),
			zap.String("reason", assessment.Reason))
		s.publisher.Publish(ctx, eventbus.AbuseEvent{
			Type:       eventbus.EventContentFlagged,
			TargetType: string(model.TargetComment),
			TargetUuid: comment.Uuid,
			ActorKey:   actor.ActorKey,
			Reason:     assessment.Reason,
			OccurredAt: time.Now(),
		})
	}

	return &respond.CreateCommentRespond{
		Id:        comment.Uuid,
		Status:    string(comment.Status),
		CreatedAt: comment.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// List 分页查询点评下的已发布评论
func (s *Service) List(req *request.ListCommentRequest, actor *identity.Actor) (*respond.CommentListRespond, error) {
	page := req.Page
	if page <= 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	comments, total, err := s.commentRepo.ListPublishedByReview(req.ReviewId, page, pageSize)
	if err != nil {
		return nil, err
	}

	refs := make([]author.Ref, 0, len(comments))
	uuids := make([]string, 0, len(comments))
	for _, c := range comments {
		refs = append(refs, author.Ref{UserUuid: c.UserUuid, AnonymousUuid: c.AnonymousUuid})
		uuids = append(uuids, c.Uuid)
	}
	authors, err := author.Resolve(s.userRepo, s.anonRepo, refs)
	if err != nil {
		return nil, err
	}

	liked := map[string]bool{}
	if actor != nil && len(uuids) > 0 {
		liked, err = s.likeRepo.FindLikedTargets(model.TargetComment, uuids, actor.ActorKey)
		if err != nil {
			return nil, err
		}
	}

	items := make([]respond.CommentRespond, 0, len(comments))
	for _, c := range comments {
		items = append(items, respond.CommentRespond{
			Id:           c.Uuid,
			ReviewId:     c.ReviewUuid,
			Content:      c.Content,
			Language:     c.Language,
			Status:       string(c.Status),
			LikesCount:   c.LikesCount,
			ReportsCount: c.ReportsCount,
			CreatedAt:    c.CreatedAt.Format("2006-01-02 15:04:05"),
			Author:       authors[author.Key(c.UserUuid, c.AnonymousUuid)],
			IsLikedByMe:  liked[c.Uuid],
		})
	}
	return &respond.CommentListRespond{Comments: items, Total: total}, nil
}
