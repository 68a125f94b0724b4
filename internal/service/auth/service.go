// Package auth 用户注册、登录与令牌刷新服务
// 会话校验对反滥用流水线是黑盒：流水线只消费这里产出的已验证用户 id
package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tool_review_server/internal/dao/mysql"
	"tool_review_server/internal/dao/redis"
	"tool_review_server/internal/dto/request"
	"tool_review_server/internal/dto/respond"
	"tool_review_server/internal/model"
	"tool_review_server/pkg/constants"
	"tool_review_server/pkg/errorx"
	"tool_review_server/pkg/util/jwt"
	"tool_review_server/pkg/util/random"
)

// Service 认证服务
type Service struct {
	userRepo mysql.UserRepository
	cache    redis.CacheService
}

// NewService 创建认证服务
func NewService(userRepo mysql.UserRepository, cache redis.CacheService) *Service {
	return &Service{
		userRepo: userRepo,
		cache:    cache,
	}
}

// Register 用户注册
func (s *Service) Register(req *request.RegisterRequest) (*respond.RegisterRespond, error) {
	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, errorx.New(errorx.CodeUserExist, "邮箱已被注册")
	} else if !errorx.IsNotFound(err) {
		return nil, err
	}

	user := &model.UserInfo{
		Uuid:        "U" + random.GetNowAndLenRandomString(13),
		Nickname:    req.Nickname,
		Email:       req.Email,
		RawPassword: req.Password, // BeforeSave Hook 中加密
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	zap.L().Info("用户注册成功", zap.String("uuid", user.Uuid))
	return &respond.RegisterRespond{
		Uuid:     user.Uuid,
		Nickname: user.Nickname,
		Email:    user.Email,
	}, nil
}

// Login 用户登录
// 成功后签发双令牌，Refresh Token 的 tokenID 存入 Redis 实现单点互踢
func (s *Service) Login(ctx context.Context, req *request.LoginRequest) (*respond.LoginRespond, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		return nil, err
	}
	if !user.CheckPassword(req.Password) {
		return nil, errorx.New(errorx.CodeInvalidPassword, "密码错误")
	}
	if user.Status != 0 {
		return nil, errorx.New(errorx.CodeUnauthorized, "账号已被禁用")
	}

	return s.issueTokens(ctx, user)
}

// Refresh 用 Refresh Token 换取新的令牌对
// 旧 Refresh Token 作废（Redis 中的 tokenID 被新值覆盖）
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*respond.LoginRespond, error) {
	claims, err := jwt.ParseToken(refreshToken)
	if err != nil || claims.RefreshID == "" {
		return nil, errorx.New(errorx.CodeUnauthorized, "无效的刷新令牌")
	}

	// 校验 tokenID 是否为该用户当前有效的刷新令牌
	stored, err := s.cache.GetOrError(ctx, refreshTokenKey(claims.UserUuid))
	if err != nil || stored != claims.RefreshID {
		return nil, errorx.New(errorx.CodeUnauthorized, "刷新令牌已失效")
	}

	user, err := s.userRepo.FindByUuid(claims.UserUuid)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		return nil, err
	}
	if user.Status != 0 {
		return nil, errorx.New(errorx.CodeUnauthorized, "账号已被禁用")
	}

	return s.issueTokens(ctx, user)
}

// Logout 注销当前用户的刷新令牌
func (s *Service) Logout(ctx context.Context, userUuid string) error {
	return s.cache.Delete(ctx, refreshTokenKey(userUuid))
}

// issueTokens 为用户签发令牌对并登记 Refresh Token
func (s *Service) issueTokens(ctx context.Context, user *model.UserInfo) (*respond.LoginRespond, error) {
	accessToken, err := jwt.GenerateAccessToken(user.Uuid)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "签发令牌失败")
	}
	refreshToken, tokenID, err := jwt.GenerateRefreshToken(user.Uuid)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "签发令牌失败")
	}

	err = s.cache.Set(ctx, refreshTokenKey(user.Uuid), tokenID,
		time.Hour*constants.REFRESH_TOKEN_EXPIRY_HOURS)
	if err != nil {
		return nil, err
	}

	return &respond.LoginRespond{
		Uuid:         user.Uuid,
		Nickname:     user.Nickname,
		Email:        user.Email,
		Avatar:       user.Avatar,
		IsAdmin:      user.IsAdmin,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// refreshTokenKey 用户当前有效刷新令牌的缓存键
func refreshTokenKey(userUuid string) string {
	return "user_token:" + userUuid
}
