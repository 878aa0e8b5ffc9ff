package scheduling

import "errors"

var (
	ErrForbidden           = errors.New("无权执行该操作")
	ErrEmptyTeamMember     = errors.New("班次成员不能为空")
	ErrEmptyUsername       = errors.New("用户名不能为空")
	ErrInvalidDate         = errors.New("日期格式无效，应为 YYYY-MM-DD")
	ErrInvalidTime         = errors.New("时间格式无效，应为 HH:MM")
	ErrInvalidShiftType    = errors.New("无效的班次类型")
	ErrCustomNotAllowed    = errors.New("该成员只能申请早班或晚班")
	ErrCustomTimesRequired = errors.New("自定义班次必须同时填写开始与结束时间")
	ErrFixedShiftHasTimes  = errors.New("早班/晚班不能填写具体时间")
	ErrShiftNotApproved    = errors.New("只有已批准的班次可以换班")
	ErrSameShift           = errors.New("不能与同一个班次换班")
	ErrSwapStale           = errors.New("班次在发起换班后已被修改，请拒绝该申请后重新发起")
	ErrDateRange           = errors.New("结束日期不能早于开始日期")
)
