package util

import (
	"net/http"

	"pairjudge_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应信封，code 与 HTTP 状态码一致
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse 分页数据
type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Code: status, Message: message, Data: data})
}

func Success(c *gin.Context, data interface{}) {
	respond(c, http.StatusOK, "success", data)
}

func Created(c *gin.Context, data interface{}) {
	respond(c, http.StatusCreated, "created", data)
}

func Error(c *gin.Context, code int, message string) {
	respond(c, code, message, nil)
}

// UnprocessableEntity 提交被资格校验拒绝时返回 422，Data 携带逐项原因
func UnprocessableEntity(c *gin.Context, message string, data interface{}) {
	respond(c, http.StatusUnprocessableEntity, message, data)
}

func BadRequest(c *gin.Context, message string) { Error(c, http.StatusBadRequest, message) }
func Unauthorized(c *gin.Context)               { Error(c, http.StatusUnauthorized, "Unauthorized") }
func Forbidden(c *gin.Context)                  { Error(c, http.StatusForbidden, "Forbidden") }
func NotFound(c *gin.Context)                   { Error(c, http.StatusNotFound, "Resource not found") }
func Conflict(c *gin.Context, message string)   { Error(c, http.StatusConflict, message) }

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

// LogInternalError 记录未预期错误后返回 500，不把内部细节透给客户端
func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.String("path", c.FullPath()),
		zap.Error(err))
	InternalServerError(c)
}
