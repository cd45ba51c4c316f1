package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/xavierjeanne/softdesk/internal/authz"
	"github.com/xavierjeanne/softdesk/pkg/logger"
	"github.com/xavierjeanne/softdesk/pkg/response"
)

// fail renders err. Taxonomy errors map onto their status family; anything
// else is logged and rendered as a bare 500.
func fail(c *gin.Context, err error) {
	var e *authz.Error
	if errors.As(err, &e) {
		response.Error(c, toAppError(e))
		return
	}
	logger.Error().Err(err).Str("method", c.Request.Method).Str("route", c.FullPath()).Msg("request failed")
	response.Error(c, err)
}

func toAppError(e *authz.Error) *response.AppError {
	switch e.Code {
	case authz.CodeValidation:
		if e.Field != "" {
			return response.NewFieldError(e.Field, e.Message)
		}
		return response.NewBadRequest(e.Message)
	case authz.CodeInvariant:
		return response.NewBadRequest(e.Message)
	case authz.CodeUnauthenticated:
		return response.NewUnauthorized(e.Message)
	case authz.CodeForbidden:
		return response.NewForbidden(e.Message)
	case authz.CodeNotFound:
		return response.NewNotFound(e.Message)
	case authz.CodeConflict:
		return response.NewConflict(e.Message)
	default:
		return response.NewServerError("internal server error")
	}
}

// bindFailed renders a request binding error as a 400, scoped to the first
// offending field when the validator names one.
func bindFailed(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		response.Error(c, response.NewFieldError(lo.SnakeCase(fe.Field()), "failed on the '"+fe.Tag()+"' rule"))
		return
	}
	response.BadRequest(c, err.Error())
}

// pathID parses the uint path parameter name. It renders a 404 and returns
// false when the value is not an id.
func pathID(c *gin.Context, name string, kind authz.Kind) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		fail(c, authz.NotFoundKind(kind))
		return 0, false
	}
	return uint(id), true
}
