package handler

import (
	"net/http"

	"github.com/learnpet/learnpet/service"

	"github.com/gin-gonic/gin"
)

type ClassHandler struct {
	classService service.ClassService
}

func NewClassHandler(classService service.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

// Create 教师创建班级
func (h *ClassHandler) Create(c *gin.Context) {
	var req struct {
		Year      string `json:"year"`
		ClassName string `json:"class_name"`
		Subject   string `json:"subject"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	class, err := h.classService.Create(currentUserID(c), req.Year, req.ClassName, req.Subject)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"class": class})
}

// ListMine 教师名下的班级
func (h *ClassHandler) ListMine(c *gin.Context) {
	classes, err := h.classService.ListByTeacher(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"classes": classes})
}

// ListAvailable 学生浏览全部可加入的班级
func (h *ClassHandler) ListAvailable(c *gin.Context) {
	classes, err := h.classService.ListAvailable()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"classes": classes})
}

// Join 学生加入班级
func (h *ClassHandler) Join(c *gin.Context) {
	var req struct {
		ClassID uint `json:"class_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ClassID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	member, err := h.classService.Join(currentUserID(c), req.ClassID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"membership": member})
}

// ListJoined 学生已加入的班级
func (h *ClassHandler) ListJoined(c *gin.Context) {
	classes, err := h.classService.ListJoined(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"classes": classes})
}

// Detail 班级详情 + 成员列表
func (h *ClassHandler) Detail(c *gin.Context) {
	classID, ok := parseUintParam(c, "classId")
	if !ok {
		return
	}
	class, members, err := h.classService.Detail(currentUserID(c), currentRole(c), classID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"class": class, "members": members})
}

// RemoveMember 任课教师移除班级成员
func (h *ClassHandler) RemoveMember(c *gin.Context) {
	classID, ok := parseUintParam(c, "classId")
	if !ok {
		return
	}
	studentID, ok := parseUintParam(c, "studentId")
	if !ok {
		return
	}
	if err := h.classService.RemoveMember(currentUserID(c), classID, studentID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "removed"})
}

// Rankings 班级排行榜，按累计积分降序
func (h *ClassHandler) Rankings(c *gin.Context) {
	classID, ok := parseUintParam(c, "classId")
	if !ok {
		return
	}
	rows, err := h.classService.Rankings(c.Request.Context(), currentUserID(c), currentRole(c), classID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rankings": rows})
}
