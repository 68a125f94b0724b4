package handler

import (
	"github.com/gin-gonic/gin"

	"tool_review_server/internal/infrastructure/middleware"
	"tool_review_server/internal/service/identity"
	"tool_review_server/pkg/errorx"
)

// HeaderFingerprint 客户端设备指纹请求头
const HeaderFingerprint = "X-Device-Fingerprint"

// resolveActor 将请求上下文解析为行为人
// 会话（OptionalAuth/JWTAuth 写入的 user_uuid）优先，其次设备指纹，
// 最后回退为仅 IP 的裸匿名行为人
func resolveActor(c *gin.Context, identitySvc *identity.Service) (*identity.Actor, error) {
	userUuid := c.GetString(middleware.CtxUserUuid)
	fingerprint := c.GetHeader(HeaderFingerprint)
	clientIP := identity.ClientIPFromHeaders(
		c.GetHeader("X-Forwarded-For"),
		c.GetHeader("X-Real-IP"),
	)
	return identitySvc.Resolve(userUuid, fingerprint, clientIP)
}

// resolveWriteActor 解析写操作的行为人
// 写操作必须具备完整身份（登录用户或指纹匿名身份），
// 裸匿名（仅 IP）按指纹无效拒绝
func resolveWriteActor(c *gin.Context, identitySvc *identity.Service) (*identity.Actor, error) {
	actor, err := resolveActor(c, identitySvc)
	if err != nil {
		return nil, err
	}
	if !actor.CanWrite() {
		return nil, errorx.NewIdent(errorx.CodeInvalidParam, errorx.IdentFingerprintInvalid, "写操作需要登录或携带设备指纹")
	}
	return actor, nil
}
