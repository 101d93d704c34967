package dto

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/turtacn/stockwatch/pkg/errors"
)

// MessageResponse is a bare message body
type MessageResponse struct {
	Message string `json:"message"`
}

// SendSuccess 发送成功响应
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// SendError 发送错误响应并中止后续处理
func SendError(c *gin.Context, err error) {
	status, resp := errors.ToErrorResponse(err)
	c.AbortWithStatusJSON(status, resp)
}

// ValidationErrorDTO 验证错误 DTO
type ValidationErrorDTO struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// ValidationErrorResponse 将请求绑定错误转换为 400 响应
func ValidationErrorResponse(err error) (int, *errors.ErrorResponse) {
	resp := &errors.ErrorResponse{
		Error: "Invalid request body",
		Code:  string(errors.CodeInvalidRequest),
	}

	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		fields := make([]ValidationErrorDTO, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, NewValidationError(fe))
		}
		resp.Details = map[string]interface{}{"fields": fields}
	}
	return http.StatusBadRequest, resp
}

// NewValidationError 创建验证错误 DTO
func NewValidationError(fe validator.FieldError) ValidationErrorDTO {
	field := strings.ToLower(fe.Field())
	msg := field + " is invalid"
	if fe.Tag() == "required" {
		msg = field + " is required"
	}
	return ValidationErrorDTO{Field: field, Tag: fe.Tag(), Message: msg}
}

//Personal.AI order the ending
