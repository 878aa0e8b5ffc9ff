// Package calendar 将班次与休假投影到月历的每一天
//
// 日期一律按本地日历日期字符串比较，不经过绝对时间，避免时区漂移。
package calendar

import (
	"fmt"
	"time"

	"matehost-scheduler/backend/internal/model"
	"matehost-scheduler/backend/internal/scheduling"
)

// Day 月历中的一天
type Day struct {
	Date      string                  `json:"date"`
	Day       int                     `json:"day"`
	IsToday   bool                    `json:"is_today"`
	Shifts    []model.Shift           `json:"shifts"`
	Vacations []model.VacationRequest `json:"vacations"`
}

// Month 月历投影
// LeadingBlanks 为 1 号之前的空白格数量（周日 = 0）
type Month struct {
	Year          int   `json:"year"`
	Month         int   `json:"month"`
	LeadingBlanks int   `json:"leading_blanks"`
	Days          []Day `json:"days"`
}

// BuildMonth 生成 year 年 month 月的投影
// 班次按 date 精确匹配并保持输入顺序；休假只取已批准的，按天包含首尾
func BuildMonth(year int, month time.Month, today time.Time, shifts []model.Shift, vacations []model.VacationRequest) (Month, error) {
	if month < time.January || month > time.December {
		return Month{}, fmt.Errorf("无效的月份: %d", month)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	byDate := indexShifts(shifts)
	approved := approvedVacations(vacations)
	todayKey := scheduling.DateKey(today)

	m := Month{
		Year:          year,
		Month:         int(month),
		LeadingBlanks: int(first.Weekday()),
		Days:          make([]Day, 0, last.Day()),
	}
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		m.Days = append(m.Days, bucket(d, todayKey, byDate, approved))
	}
	return m, nil
}

// BuildDay 单日投影
func BuildDay(dateKey string, today time.Time, shifts []model.Shift, vacations []model.VacationRequest) (Day, error) {
	d, err := scheduling.ParseDateKey(dateKey)
	if err != nil {
		return Day{}, err
	}
	return bucket(d, scheduling.DateKey(today), indexShifts(shifts), approvedVacations(vacations)), nil
}

func bucket(d time.Time, todayKey string, byDate map[string][]model.Shift, vacations []model.VacationRequest) Day {
	key := scheduling.DateKey(d)
	day := Day{
		Date:      key,
		Day:       d.Day(),
		IsToday:   key == todayKey,
		Shifts:    byDate[key],
		Vacations: []model.VacationRequest{},
	}
	if day.Shifts == nil {
		day.Shifts = []model.Shift{}
	}
	for i := range vacations {
		if scheduling.Covers(&vacations[i], d) {
			day.Vacations = append(day.Vacations, vacations[i])
		}
	}
	return day
}

func indexShifts(shifts []model.Shift) map[string][]model.Shift {
	byDate := make(map[string][]model.Shift, len(shifts))
	for _, s := range shifts {
		byDate[s.Date] = append(byDate[s.Date], s)
	}
	return byDate
}

func approvedVacations(vacations []model.VacationRequest) []model.VacationRequest {
	out := make([]model.VacationRequest, 0, len(vacations))
	for _, v := range vacations {
		if v.Status == model.StatusApproved {
			out = append(out, v)
		}
	}
	return out
}
