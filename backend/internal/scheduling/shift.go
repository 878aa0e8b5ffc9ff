package scheduling

import (
	"strings"

	"matehost-scheduler/backend/internal/model"
)

// ShiftDraft 新班次申请
type ShiftDraft struct {
	Date       string
	TeamMember string
	Type       model.ShiftType
	StartTime  string
	EndTime    string
	Comments   string
}

// AllowsCustom 自定义时间段由被排班成员的角色决定，与提交人无关
// assignee 为 nil（未知成员）时按普通成员处理
func AllowsCustom(assignee *model.User) bool {
	return assignee != nil && CanManage(assignee.Role)
}

// NewShift 校验并生成一条待审批班次
//
// 同一成员同一天允许存在多条班次（例如拆分班），这里不做唯一性约束。
func NewShift(actor Actor, assignee *model.User, d ShiftDraft) (*model.Shift, error) {
	member := strings.TrimSpace(d.TeamMember)
	if member == "" {
		return nil, ErrEmptyTeamMember
	}
	if err := AuthorizeFor(actor, member); err != nil {
		return nil, err
	}
	if !ValidDateKey(d.Date) {
		return nil, ErrInvalidDate
	}
	if !d.Type.Valid() {
		return nil, ErrInvalidShiftType
	}

	shift := &model.Shift{
		Date:       d.Date,
		TeamMember: member,
		Type:       d.Type,
		Status:     model.StatusPending,
		Comments:   strings.TrimSpace(d.Comments),
	}

	if d.Type == model.ShiftCustom {
		if !AllowsCustom(assignee) {
			return nil, ErrCustomNotAllowed
		}
		if d.StartTime == "" || d.EndTime == "" {
			return nil, ErrCustomTimesRequired
		}
		if !ValidClock(d.StartTime) || !ValidClock(d.EndTime) {
			return nil, ErrInvalidTime
		}
		start, end := d.StartTime, d.EndTime
		shift.StartTime, shift.EndTime = &start, &end
		return shift, nil
	}

	if d.StartTime != "" || d.EndTime != "" {
		return nil, ErrFixedShiftHasTimes
	}
	return shift, nil
}

// ApproveShift pending → approved；已批准时为幂等空操作，changed 返回 false
func ApproveShift(actor Actor, s *model.Shift) (changed bool, err error) {
	if !actor.CanManage() {
		return false, ErrForbidden
	}
	if s.Status == model.StatusApproved {
		return false, nil
	}
	s.Status = model.StatusApproved
	return true, nil
}

// Request 可被移除的申请（班次、休假）
type Request interface {
	RequestOwner() string
	RequestStatus() model.RequestStatus
}

// AuthorizeRemoval 拒绝 / 取消 / 删除共用同一个移除操作，只是授权条件不同：
//   - 管理者可以移除任何状态的申请
//   - 普通成员只能取消自己名下的待审批申请
func AuthorizeRemoval(actor Actor, r Request) error {
	if actor.CanManage() {
		return nil
	}
	if IsOwner(actor, r.RequestOwner()) && r.RequestStatus() == model.StatusPending {
		return nil
	}
	return ErrForbidden
}
