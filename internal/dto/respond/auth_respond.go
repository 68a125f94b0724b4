package respond

// LoginRespond 用户登录响应
// 使用位置:
//   - internal/service/auth/service.go: Login, Refresh
type LoginRespond struct {
	Uuid         string `json:"uuid"`
	Nickname     string `json:"nickname"`
	Email        string `json:"email"`
	Avatar       string `json:"avatar"`
	IsAdmin      int8   `json:"is_admin"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterRespond 用户注册响应
type RegisterRespond struct {
	Uuid     string `json:"uuid"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}
