// Package handler 提供 HTTP 请求处理器
// 本文件处理认证相关的 API 请求
package handler

import (
	"github.com/gin-gonic/gin"

	"tool_review_server/internal/dto/request"
	"tool_review_server/internal/infrastructure/middleware"
	"tool_review_server/internal/service/auth"
)

// AuthHandler 认证请求处理器
type AuthHandler struct {
	authSvc *auth.Service
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authSvc *auth.Service) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register 用户注册
// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	rsp, err := h.authSvc.Register(&req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// Login 用户登录
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	rsp, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// Refresh 刷新令牌对
// POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req request.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	rsp, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// Logout 注销当前用户的刷新令牌
// POST /auth/logout（需要登录）
func (h *AuthHandler) Logout(c *gin.Context) {
	userUuid := c.GetString(middleware.CtxUserUuid)
	if err := h.authSvc.Logout(c.Request.Context(), userUuid); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
