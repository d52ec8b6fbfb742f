package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/learnpet/learnpet/service"

	"github.com/gin-gonic/gin"
)

// respondError 将 service 层错误分类映射为 HTTP 状态码
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrUpstream):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// currentUserID 读取 JWTAuth 注入的身份，必须在认证中间件之后调用
func currentUserID(c *gin.Context) uint {
	return c.GetUint("user_id")
}

func currentRole(c *gin.Context) string {
	return c.GetString("role")
}

// parseUintParam 路径参数解析，非数字返回 (0, false) 并已写入 400 响应
func parseUintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的 " + name})
		return 0, false
	}
	return uint(value), true
}
