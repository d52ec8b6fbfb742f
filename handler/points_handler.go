package handler

import (
	"net/http"

	"github.com/learnpet/learnpet/service"

	"github.com/gin-gonic/gin"
)

type PointsHandler struct {
	pointsService service.PointsService
}

func NewPointsHandler(pointsService service.PointsService) *PointsHandler {
	return &PointsHandler{pointsService: pointsService}
}

// Get 当前学生在某班级的积分台账（已获得 / 已消耗 / 剩余）
func (h *PointsHandler) Get(c *gin.Context) {
	classID, ok := parseUintParam(c, "classId")
	if !ok {
		return
	}
	row, err := h.pointsService.Get(currentUserID(c), classID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_points": row.TotalPoints,
		"spent_points": row.SpentPoints,
		"remaining":    row.Remaining(),
	})
}
