// Package report 构建班次导出报表：按成员分组、按日期排序，并计算每个班次的时长
package report

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"matehost-scheduler/backend/internal/model"
	"matehost-scheduler/backend/internal/scheduling"
)

// Title 报表标题
const Title = "Matehost Shifts Scheduler"

// ErrNoShifts 日期范围内没有已批准班次
var ErrNoShifts = errors.New("所选日期范围内没有已批准的班次")

// Row 报表中的一个班次
type Row struct {
	ShiftID  string          `json:"shift_id"`
	Date     string          `json:"date"`
	Weekday  time.Weekday    `json:"weekday"`
	Schedule string          `json:"schedule"`
	Hours    decimal.Decimal `json:"hours"`
	Comments string          `json:"comments,omitempty"`
}

// DayLabel 如 "Friday 15"
func (r Row) DayLabel() string {
	d, err := scheduling.ParseDateKey(r.Date)
	if err != nil {
		return r.Date
	}
	return fmt.Sprintf("%s %d", r.Weekday, d.Day())
}

// HoursText 两位小数；时长为 0 时留空
func (r Row) HoursText() string {
	if !r.Hours.IsPositive() {
		return ""
	}
	return r.Hours.StringFixed(2)
}

// Group 一个成员的所有班次
type Group struct {
	Member string          `json:"member"`
	Rows   []Row           `json:"rows"`
	Total  decimal.Decimal `json:"total"`
}

// Report 导出报表
type Report struct {
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Groups    []Group `json:"groups"`
}

// Build 取 [start, end] 内已批准的班次，成员按用户名排序，组内按日期排序
// defs 为当前班次定义，早班 / 晚班的时间段在这里解析
func Build(shifts []model.Shift, defs model.ShiftDefinition, start, end string) (*Report, error) {
	if err := scheduling.CheckDateRange(start, end); err != nil {
		return nil, err
	}

	byMember := make(map[string][]model.Shift)
	for _, s := range shifts {
		if s.Status != model.StatusApproved || s.Date < start || s.Date > end {
			continue
		}
		byMember[s.TeamMember] = append(byMember[s.TeamMember], s)
	}
	if len(byMember) == 0 {
		return nil, ErrNoShifts
	}

	members := make([]string, 0, len(byMember))
	for m := range byMember {
		members = append(members, m)
	}
	sort.Strings(members)

	rep := &Report{StartDate: start, EndDate: end, Groups: make([]Group, 0, len(members))}
	for _, m := range members {
		list := byMember[m]
		sort.SliceStable(list, func(i, j int) bool { return list[i].Date < list[j].Date })

		g := Group{Member: m, Rows: make([]Row, 0, len(list)), Total: decimal.Zero}
		for i := range list {
			row := buildRow(&list[i], defs)
			g.Total = g.Total.Add(row.Hours)
			g.Rows = append(g.Rows, row)
		}
		rep.Groups = append(rep.Groups, g)
	}
	return rep, nil
}

func buildRow(s *model.Shift, defs model.ShiftDefinition) Row {
	row := Row{ShiftID: s.ShiftID, Date: s.Date, Comments: s.Comments, Hours: decimal.Zero}
	if d, err := scheduling.ParseDateKey(s.Date); err == nil {
		row.Weekday = d.Weekday()
	}
	if w, ok := scheduling.ResolveWindow(s, defs); ok {
		row.Schedule = w.Start + " - " + w.End
		if h, err := scheduling.WindowHours(w); err == nil {
			row.Hours = h
		}
	}
	return row
}
