package scheduling

import "matehost-scheduler/backend/internal/model"

// CheckSwappable 只有已批准的班次可以发起换班
func CheckSwappable(s *model.Shift) error {
	if s.Status != model.StatusApproved {
		return ErrShiftNotApproved
	}
	return nil
}

// NewSwapRequest 以 first、second 两个已批准班次生成换班申请，并记录当前版本号
func NewSwapRequest(actor Actor, first, second *model.Shift) (*model.SwapRequest, error) {
	if err := CheckSwappable(first); err != nil {
		return nil, err
	}
	if err := CheckSwappable(second); err != nil {
		return nil, err
	}
	if first.ShiftID == second.ShiftID {
		return nil, ErrSameShift
	}
	return &model.SwapRequest{
		ShiftID1:      first.ShiftID,
		ShiftID2:      second.ShiftID,
		Shift1Version: first.Version,
		Shift2Version: second.Version,
		Status:        model.StatusPending,
		RequestedBy:   actor.Username,
	}, nil
}

// SwapPlan 换班批准的写入计划
// Discard 为 true 时只删除换班申请，不修改任何班次
type SwapPlan struct {
	Discard bool
	Shift1  *model.Shift
	Shift2  *model.Shift
}

// PlanSwapApproval 计算换班批准后的两个班次
//
// shift1 / shift2 为 nil 表示班次已不存在，此时丢弃该申请。
// 只交换 TeamMember，其余字段保留在原班次上。
func PlanSwapApproval(actor Actor, swap *model.SwapRequest, shift1, shift2 *model.Shift) (*SwapPlan, error) {
	if !actor.CanManage() {
		return nil, ErrForbidden
	}
	if shift1 == nil || shift2 == nil {
		return &SwapPlan{Discard: true}, nil
	}
	if shift1.Version != swap.Shift1Version || shift2.Version != swap.Shift2Version {
		return nil, ErrSwapStale
	}
	if shift1.Status != model.StatusApproved || shift2.Status != model.StatusApproved {
		return nil, ErrShiftNotApproved
	}

	a, b := *shift1, *shift2
	a.TeamMember, b.TeamMember = shift2.TeamMember, shift1.TeamMember
	return &SwapPlan{Shift1: &a, Shift2: &b}, nil
}
