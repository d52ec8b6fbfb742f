package handler

import (
	"net/http"
	"time"

	"github.com/learnpet/learnpet/service"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskService service.TaskService
}

func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Publish 教师向自己的班级发布任务
func (h *TaskHandler) Publish(c *gin.Context) {
	var req struct {
		ClassID       uint      `json:"class_id"`
		Title         string    `json:"title"`
		Description   string    `json:"description"`
		Points        int       `json:"points"`
		Deadline      time.Time `json:"deadline"`
		AttachmentURL string    `json:"attachment_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ClassID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	task, err := h.taskService.Publish(currentUserID(c), req.ClassID, req.Title, req.Description, req.Points, req.Deadline, req.AttachmentURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

// ListByClass 班级任务列表
func (h *TaskHandler) ListByClass(c *gin.Context) {
	classID, ok := parseUintParam(c, "classId")
	if !ok {
		return
	}
	tasks, err := h.taskService.ListByClass(currentUserID(c), currentRole(c), classID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *TaskHandler) Get(c *gin.Context) {
	taskID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	task, err := h.taskService.Get(currentUserID(c), currentRole(c), taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// Submit 学生提交任务，成功后自动获得任务积分
func (h *TaskHandler) Submit(c *gin.Context) {
	taskID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Description   string `json:"description"`
		AttachmentURL string `json:"attachment_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	submission, err := h.taskService.Submit(c.Request.Context(), currentUserID(c), taskID, req.Description, req.AttachmentURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"submission": submission})
}

// ListSubmissions 发布教师查看该任务的全部提交
func (h *TaskHandler) ListSubmissions(c *gin.Context) {
	taskID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	submissions, err := h.taskService.ListSubmissions(currentUserID(c), taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": submissions})
}

// MySubmission 学生查看自己的提交，未提交过返回 404
func (h *TaskHandler) MySubmission(c *gin.Context) {
	taskID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	submission, err := h.taskService.MySubmission(currentUserID(c), taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": submission})
}
