package scheduling

import (
	"time"
)

const (
	// DateLayout 日期键格式
	DateLayout = "2006-01-02"
	// ClockLayout 时刻格式
	ClockLayout = "15:04"
)

// ParseDateKey 解析 YYYY-MM-DD，结果为 UTC 零点，只用于按天比较
func ParseDateKey(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil || len(s) != len(DateLayout) {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// DateKey 取 t 所在时区的日历日期
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ValidDateKey 是否为合法日期键
func ValidDateKey(s string) bool {
	_, err := ParseDateKey(s)
	return err == nil
}

// ParseClock 解析 HH:MM，返回当天的分钟数
func ParseClock(s string) (int, error) {
	if len(s) != len(ClockLayout) {
		return 0, ErrInvalidTime
	}
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, ErrInvalidTime
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ValidClock 是否为合法时刻
func ValidClock(s string) bool {
	_, err := ParseClock(s)
	return err == nil
}

// CheckDateRange 校验 start <= end
func CheckDateRange(start, end string) error {
	s, err := ParseDateKey(start)
	if err != nil {
		return err
	}
	e, err := ParseDateKey(end)
	if err != nil {
		return err
	}
	if e.Before(s) {
		return ErrDateRange
	}
	return nil
}
