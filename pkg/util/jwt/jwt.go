// Package jwt 签发与校验本服务的双令牌
// Access Token 只携带用户 uuid；Refresh Token 额外携带随机 refresh_id，
// 登记在 Redis 中实现单点互踢
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer = "tool_review_server"

	// SubjectAccess / SubjectRefresh 区分令牌用途，校验侧据此拒绝错用
	SubjectAccess  = "access_token"
	SubjectRefresh = "refresh_token"
)

// JWTConfig JWT 配置
type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration // Access Token 有效期
	RefreshTokenExpiry time.Duration // Refresh Token 有效期
}

// 全局配置，由 Init 函数初始化
var jwtConfig *JWTConfig

// Init 初始化 JWT 配置
func Init(secret string, accessExpiryMinutes, refreshExpiryHours int) {
	jwtConfig = &JWTConfig{
		Secret:             secret,
		AccessTokenExpiry:  time.Duration(accessExpiryMinutes) * time.Minute,
		RefreshTokenExpiry: time.Duration(refreshExpiryHours) * time.Hour,
	}
}

// Claims 自定义 JWT 声明
type Claims struct {
	UserUuid  string `json:"user_uuid"`
	RefreshID string `json:"refresh_id,omitempty"` // 仅 Refresh Token 携带，用于单点互踢
	jwt.RegisteredClaims
}

// newClaims 构造一份声明，subject 标记令牌用途
func newClaims(userUuid, refreshID string, ttl time.Duration, subject string) Claims {
	now := time.Now()
	return Claims{
		UserUuid:  userUuid,
		RefreshID: refreshID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   subject,
		},
	}
}

// sign 用 HS256 签名
func sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtConfig.Secret))
}

// GenerateAccessToken 生成 Access Token（短期，用于接口认证）
func GenerateAccessToken(userUuid string) (string, error) {
	return sign(newClaims(userUuid, "", jwtConfig.AccessTokenExpiry, SubjectAccess))
}

// GenerateRefreshToken 生成 Refresh Token（长期，用于刷新 Access Token）
// 返回 token 字符串和 refreshID（存入 Redis 标记当前有效的刷新令牌）
func GenerateRefreshToken(userUuid string) (tokenString string, refreshID string, err error) {
	refreshID = uuid.NewString()
	tokenString, err = sign(newClaims(userUuid, refreshID, jwtConfig.RefreshTokenExpiry, SubjectRefresh))
	return
}

// ParseToken 解析并验证 Token
// 签名算法与签发者在解析时强制校验，防止降级到其他算法
func ParseToken(tokenString string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) {
			return []byte(jwtConfig.Secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
