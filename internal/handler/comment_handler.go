// Package handler 本文件处理评论相关的 API 请求
package handler

import (
	"github.com/gin-gonic/gin"

	"tool_review_server/internal/dto/request"
	"tool_review_server/internal/service/comment"
	"tool_review_server/internal/service/identity"
)

// CommentHandler 评论请求处理器
type CommentHandler struct {
	commentSvc  *comment.Service
	identitySvc *identity.Service
}

// NewCommentHandler 创建评论处理器
func NewCommentHandler(commentSvc *comment.Service, identitySvc *identity.Service) *CommentHandler {
	return &CommentHandler{commentSvc: commentSvc, identitySvc: identitySvc}
}

// Create 创建评论
// POST /comments
func (h *CommentHandler) Create(c *gin.Context) {
	var req request.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	actor, err := resolveWriteActor(c, h.identitySvc)
	if err != nil {
		HandleError(c, err)
		return
	}

	rsp, err := h.commentSvc.Create(c.Request.Context(), &req, actor)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// List 分页查询点评下的已发布评论
// GET /comments
func (h *CommentHandler) List(c *gin.Context) {
	var req request.ListCommentRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	actor, err := resolveActor(c, h.identitySvc)
	if err != nil {
		actor = nil
	}

	rsp, err := h.commentSvc.List(&req, actor)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}
