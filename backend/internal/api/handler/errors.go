package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"matehost-scheduler/backend/internal/report"
	"matehost-scheduler/backend/internal/scheduling"
	"matehost-scheduler/backend/internal/service"
	"matehost-scheduler/backend/pkg/response"
	"matehost-scheduler/backend/pkg/validation"
)

// 各模块共用的错误码
const (
	codeBadRequest   = 10001
	codeUnauthorized = 10002
	codeForbidden    = 10003
	codeConflict     = 10006
)

// 业务校验失败，原样返回错误信息
var validationErrors = []error{
	scheduling.ErrEmptyTeamMember,
	scheduling.ErrEmptyUsername,
	scheduling.ErrInvalidDate,
	scheduling.ErrInvalidTime,
	scheduling.ErrInvalidShiftType,
	scheduling.ErrCustomNotAllowed,
	scheduling.ErrCustomTimesRequired,
	scheduling.ErrFixedShiftHasTimes,
	scheduling.ErrShiftNotApproved,
	scheduling.ErrSameShift,
	scheduling.ErrDateRange,
	report.ErrNoShifts,
}

// bindError 请求参数绑定 / 校验失败
func bindError(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, codeBadRequest, "参数校验失败", validation.Describe(err))
}

// respondError 处理各模块共有的业务错误，其余一律 500
func respondError(c *gin.Context, err error) {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			response.BadRequest(c, codeBadRequest, target.Error())
			return
		}
	}
	switch {
	case errors.Is(err, scheduling.ErrForbidden):
		response.Forbidden(c, codeForbidden, "无权执行该操作")
	case errors.Is(err, service.ErrActorNotFound):
		response.Unauthorized(c, codeUnauthorized, "当前用户已不存在，请重新登录")
	case errors.Is(err, service.ErrVersionConflict):
		response.Conflict(c, codeConflict, service.ErrVersionConflict.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/errors.go
