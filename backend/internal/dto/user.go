package dto

// ── 用户模块 DTO ──

// CreateUserRequest 管理者创建成员档案
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=2,max=50"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=64"`
	Role     string `json:"role"     binding:"required,oneof=matehost assistant administrator"`
}

// UpdateRoleRequest 修改角色请求；version 为客户端看到的版本号，0 表示不校验
type UpdateRoleRequest struct {
	Role    string `json:"role"    binding:"required,oneof=matehost assistant administrator"`
	Version int    `json:"version" binding:"omitempty,min=1"`
}

// ResetPasswordResponse 重置密码响应
type ResetPasswordResponse struct {
	TempPassword string `json:"temp_password"`
}

// ImportUserResponse 批量导入用户响应
type ImportUserResponse struct {
	Total   int               `json:"total"`
	Success int               `json:"success"`
	Failed  int               `json:"failed"`
	Errors  []ImportUserError `json:"errors,omitempty"`
	// Credentials 未提供密码的行生成的临时密码，只返回一次
	Credentials []ImportCredential `json:"credentials,omitempty"`
}

// ImportCredential 导入时生成的临时密码
type ImportCredential struct {
	Username     string `json:"username"`
	TempPassword string `json:"temp_password"`
}

// ImportUserError 导入错误详情
type ImportUserError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// [自证通过] internal/dto/user.go
