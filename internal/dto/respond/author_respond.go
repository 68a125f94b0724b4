package respond

// AuthorRespond 内容作者的统一视图
// 作者是注册用户或匿名用户的封闭二元组，读取时统一解析为该结构：
// 注册用户带昵称和头像，匿名用户只有展示名（如 "匿名#9527"）
type AuthorRespond struct {
	Type      string `json:"type"` // "user" 或 "anonymous"
	Name      string `json:"name"`
	AvatarUrl string `json:"avatar_url,omitempty"`
}
