package scheduling

import (
	"github.com/shopspring/decimal"

	"matehost-scheduler/backend/internal/model"
)

const minutesPerDay = 24 * 60

// DefaultDefinitions 尚未保存过设置时使用的班次定义
func DefaultDefinitions() model.ShiftDefinition {
	return model.ShiftDefinition{
		Singleton: true,
		Morning:   model.TimeWindow{Start: "08:00", End: "16:00"},
		Evening:   model.TimeWindow{Start: "16:00", End: "00:00"},
	}
}

// ValidateDefinitions 四个时刻都必须是合法 HH:MM
func ValidateDefinitions(d model.ShiftDefinition) error {
	for _, s := range []string{d.Morning.Start, d.Morning.End, d.Evening.Start, d.Evening.End} {
		if !ValidClock(s) {
			return ErrInvalidTime
		}
	}
	return nil
}

// ReplaceDefinitions 管理者整体替换班次定义（不做字段级合并）
func ReplaceDefinitions(actor Actor, d model.ShiftDefinition) (model.ShiftDefinition, error) {
	if err := AuthorizeManage(actor); err != nil {
		return model.ShiftDefinition{}, err
	}
	if err := ValidateDefinitions(d); err != nil {
		return model.ShiftDefinition{}, err
	}
	return model.ShiftDefinition{
		Singleton: true,
		Morning:   d.Morning,
		Evening:   d.Evening,
	}, nil
}

// ResolveWindow 班次的实际时间段：custom 取自身时间，早班 / 晚班取当前定义
func ResolveWindow(s *model.Shift, defs model.ShiftDefinition) (model.TimeWindow, bool) {
	switch s.Type {
	case model.ShiftCustom:
		if s.StartTime == nil || s.EndTime == nil {
			return model.TimeWindow{}, false
		}
		return model.TimeWindow{Start: *s.StartTime, End: *s.EndTime}, true
	case model.ShiftMorning:
		return defs.Morning, true
	case model.ShiftEvening:
		return defs.Evening, true
	}
	return model.TimeWindow{}, false
}

// WindowHours 时间段时长（小时）；结束早于开始视为跨午夜，加 24 小时
func WindowHours(w model.TimeWindow) (decimal.Decimal, error) {
	start, err := ParseClock(w.Start)
	if err != nil {
		return decimal.Zero, err
	}
	end, err := ParseClock(w.End)
	if err != nil {
		return decimal.Zero, err
	}
	if end < start {
		end += minutesPerDay
	}
	return decimal.NewFromInt(int64(end - start)).Div(decimal.NewFromInt(60)), nil
}

// ShiftHours 班次时长（小时）
func ShiftHours(s *model.Shift, defs model.ShiftDefinition) (decimal.Decimal, error) {
	w, ok := ResolveWindow(s, defs)
	if !ok {
		return decimal.Zero, ErrInvalidTime
	}
	return WindowHours(w)
}
