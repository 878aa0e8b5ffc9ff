package scheduling

import (
	"strings"
	"time"

	"matehost-scheduler/backend/internal/model"
)

// VacationDraft 新休假申请
type VacationDraft struct {
	Username  string
	StartDate string
	EndDate   string
	Comments  string
}

// VacationPatch 休假编辑，nil 字段保持不变
type VacationPatch struct {
	StartDate *string
	EndDate   *string
	Comments  *string
}

// NewVacation 校验并生成一条待审批休假
func NewVacation(actor Actor, d VacationDraft) (*model.VacationRequest, error) {
	username := strings.TrimSpace(d.Username)
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if err := AuthorizeFor(actor, username); err != nil {
		return nil, err
	}
	if err := CheckDateRange(d.StartDate, d.EndDate); err != nil {
		return nil, err
	}
	return &model.VacationRequest{
		Username:  username,
		StartDate: d.StartDate,
		EndDate:   d.EndDate,
		Status:    model.StatusPending,
		Comments:  strings.TrimSpace(d.Comments),
	}, nil
}

// ApproveVacation pending → approved；已批准时为幂等空操作
func ApproveVacation(actor Actor, v *model.VacationRequest) (changed bool, err error) {
	if !actor.CanManage() {
		return false, ErrForbidden
	}
	if v.Status == model.StatusApproved {
		return false, nil
	}
	v.Status = model.StatusApproved
	return true, nil
}

// EditVacation 管理者修改日期或备注，每次编辑都重新校验日期范围
// 校验失败时 v 不会被修改
func EditVacation(actor Actor, v *model.VacationRequest, p VacationPatch) error {
	if !actor.CanManage() {
		return ErrForbidden
	}
	start, end, comments := v.StartDate, v.EndDate, v.Comments
	if p.StartDate != nil {
		start = *p.StartDate
	}
	if p.EndDate != nil {
		end = *p.EndDate
	}
	if p.Comments != nil {
		comments = strings.TrimSpace(*p.Comments)
	}
	if err := CheckDateRange(start, end); err != nil {
		return err
	}
	v.StartDate, v.EndDate, v.Comments = start, end, comments
	return nil
}

// Covers 休假是否覆盖 day（按天比较，首尾均包含）
func Covers(v *model.VacationRequest, day time.Time) bool {
	start, err := ParseDateKey(v.StartDate)
	if err != nil {
		return false
	}
	end, err := ParseDateKey(v.EndDate)
	if err != nil {
		return false
	}
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(start) && !d.After(end)
}
