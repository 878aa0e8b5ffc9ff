package scheduling

import "matehost-scheduler/backend/internal/model"

// Actor 当前操作者（已认证用户的最新资料）
type Actor struct {
	UserID   string
	Username string
	Role     model.Role
}

// ActorOf 由用户资料构造操作者
func ActorOf(u *model.User) Actor {
	return Actor{UserID: u.UserID, Username: u.Username, Role: u.Role}
}

// CanManage administrator 与 assistant 拥有管理权限，二者权限完全一致
func CanManage(role model.Role) bool {
	return role == model.RoleAdministrator || role == model.RoleAssistant
}

// CanManage 当前操作者是否为管理者
func (a Actor) CanManage() bool { return CanManage(a.Role) }

// IsOwner 操作者是否为该成员本人
func IsOwner(a Actor, member string) bool {
	return a.Username != "" && a.Username == member
}

// AuthorizeManage 仅管理者可执行的操作（换班拒绝、设置修改、角色编辑等）
func AuthorizeManage(a Actor) error {
	if !a.CanManage() {
		return ErrForbidden
	}
	return nil
}

// AuthorizeFor 为 member 创建记录：管理者可代任何人提交，普通成员只能为自己提交
func AuthorizeFor(a Actor, member string) error {
	if a.CanManage() || IsOwner(a, member) {
		return nil
	}
	return ErrForbidden
}
