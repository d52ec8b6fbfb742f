package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/learnpet/learnpet/service"

	"github.com/gin-gonic/gin"
)

type StorageHandler struct {
	storageService service.StorageService
}

func NewStorageHandler(storageService service.StorageService) *StorageHandler {
	return &StorageHandler{storageService: storageService}
}

// GetUploadURL 签发 15 分钟有效的预签名直传地址
func (h *StorageHandler) GetUploadURL(c *gin.Context) {
	uploadURL, objectPath, err := h.storageService.GetUploadURL(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"upload_url": uploadURL, "object_path": objectPath})
}

// ConfirmUpload 直传完成后确认对象存在并绑定 ACL，调用方成为 owner
func (h *StorageHandler) ConfirmUpload(c *gin.Context) {
	var req struct {
		ObjectPath string `json:"object_path"`
		Visibility string `json:"visibility"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ObjectPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	if req.Visibility == "" {
		req.Visibility = "private"
	}
	owner := strconv.FormatUint(uint64(currentUserID(c)), 10)
	if err := h.storageService.ConfirmUpload(c.Request.Context(), req.ObjectPath, owner, req.Visibility); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"object_path": req.ObjectPath, "message": "confirmed"})
}

// Download 鉴权后把对象内容流式返回。
// 拒绝访问时：匿名请求一律 404（不暴露对象是否存在），已认证的非 owner 返回 403。
func (h *StorageHandler) Download(c *gin.Context) {
	objectPath := "/objects" + c.Param("path")

	var actorID string
	if userID := currentUserID(c); userID != 0 {
		actorID = strconv.FormatUint(uint64(userID), 10)
	}

	allowed, err := h.storageService.CanAccess(actorID, objectPath, service.PermissionRead)
	if err != nil && !errors.Is(err, service.ErrPolicyNotFound) {
		respondError(c, err)
		return
	}
	if !allowed {
		if actorID == "" || errors.Is(err, service.ErrPolicyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "对象不存在"})
		} else {
			c.JSON(http.StatusForbidden, gin.H{"error": "无权访问该对象"})
		}
		return
	}

	reader, info, err := h.storageService.Download(c.Request.Context(), objectPath)
	if err != nil {
		respondError(c, err)
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, info.Size, info.ContentType, reader, nil)
}
