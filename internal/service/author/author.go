// Package author 内容作者的统一解析
// 作者是注册用户或匿名用户的封闭二元组，读取时一次性批量解析为
// {type, name, avatar_url?} 的统一视图，避免逐条查库
package author

import (
	"tool_review_server/internal/dao/mysql"
	"tool_review_server/internal/dto/respond"
)

// Ref 一条内容的作者引用，恰好一个字段非空
type Ref struct {
	UserUuid      string
	AnonymousUuid string
}

// Key 作者引用的 map 键
func Key(userUuid, anonymousUuid string) string {
	if userUuid != "" {
		return "u:" + userUuid
	}
	return "a:" + anonymousUuid
}

// Resolve 批量解析作者引用
// 返回 Key(ref) -> AuthorRespond 的映射；查不到的引用解析为占位匿名作者
func Resolve(userRepo mysql.UserRepository, anonRepo mysql.AnonymousUserRepository, refs []Ref) (map[string]respond.AuthorRespond, error) {
	userUuids := make([]string, 0, len(refs))
	anonUuids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.UserUuid != "" {
			userUuids = append(userUuids, ref.UserUuid)
		} else if ref.AnonymousUuid != "" {
			anonUuids = append(anonUuids, ref.AnonymousUuid)
		}
	}

	result := make(map[string]respond.AuthorRespond, len(refs))

	if len(userUuids) > 0 {
		users, err := userRepo.FindByUuids(userUuids)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			result["u:"+u.Uuid] = respond.AuthorRespond{
				Type:      "user",
				Name:      u.Nickname,
				AvatarUrl: u.Avatar,
			}
		}
	}

	if len(anonUuids) > 0 {
		anons, err := anonRepo.FindByUuids(anonUuids)
		if err != nil {
			return nil, err
		}
		for _, a := range anons {
			result["a:"+a.Uuid] = respond.AuthorRespond{
				Type: "anonymous",
				Name: a.DisplayName,
			}
		}
	}

	// 引用悬空时回退为占位匿名作者，不让列表读取失败
	for _, ref := range refs {
		key := Key(ref.UserUuid, ref.AnonymousUuid)
		if _, ok := result[key]; !ok {
			result[key] = respond.AuthorRespond{Type: "anonymous", Name: "匿名用户"}
		}
	}
	return result, nil
}
