package handler

import (
	"net/http"
	"strings"

	"github.com/learnpet/learnpet/service"

	"github.com/gin-gonic/gin"
)

type MaterialHandler struct {
	materialService service.MaterialService
}

func NewMaterialHandler(materialService service.MaterialService) *MaterialHandler {
	return &MaterialHandler{materialService: materialService}
}

// Upload 登记资料元数据，文件本体走对象存储直传
func (h *MaterialHandler) Upload(c *gin.Context) {
	var req struct {
		Name          string   `json:"name"`
		FileType      string   `json:"file_type"`
		FileExtension string   `json:"file_extension"`
		FileURL       string   `json:"file_url"`
		Tags          []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	material, err := h.materialService.Upload(currentUserID(c), req.Name, req.FileType, req.FileExtension, req.FileURL, req.Tags)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"material": material})
}

// List 全部资料，?tags=a,b 时按标签筛选（命中任一标签即返回）
func (h *MaterialHandler) List(c *gin.Context) {
	var tags []string
	if raw := c.Query("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	materials, err := h.materialService.List(tags)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"materials": materials})
}

// ListMine 当前教师上传的资料
func (h *MaterialHandler) ListMine(c *gin.Context) {
	materials, err := h.materialService.ListByTeacher(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"materials": materials})
}

func (h *MaterialHandler) Get(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	material, err := h.materialService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"material": material})
}

func (h *MaterialHandler) Delete(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.materialService.Delete(currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// BatchDelete 全有或全无的批量删除
func (h *MaterialHandler) BatchDelete(c *gin.Context) {
	var req struct {
		IDs []uint `json:"ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	if err := h.materialService.BatchDelete(currentUserID(c), req.IDs); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted", "count": len(req.IDs)})
}
