package handler

import (
	"net/http"

	"github.com/learnpet/learnpet/service"

	"github.com/gin-gonic/gin"
)

type PetHandler struct {
	petService    service.PetService
	pointsService service.PointsService
}

func NewPetHandler(petService service.PetService, pointsService service.PointsService) *PetHandler {
	return &PetHandler{petService: petService, pointsService: pointsService}
}

// Adopt 领养宠物：生成形象、上传、落库，任一环节失败则整体失败
func (h *PetHandler) Adopt(c *gin.Context) {
	var req struct {
		ClassID     uint   `json:"class_id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ClassID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	pet, err := h.petService.Adopt(c.Request.Context(), currentUserID(c), req.ClassID, req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"pet": pet})
}

// GetByClass 当前学生在某班级的宠物
func (h *PetHandler) GetByClass(c *gin.Context) {
	classID, ok := parseUintParam(c, "classId")
	if !ok {
		return
	}
	pet, err := h.petService.GetByClass(currentUserID(c), classID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pet": pet})
}

// ListMine 当前学生的全部宠物
func (h *PetHandler) ListMine(c *gin.Context) {
	pets, err := h.petService.ListMine(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pets": pets})
}

// Feed 消耗积分喂养，返回喂养后的宠物和剩余积分
func (h *PetHandler) Feed(c *gin.Context) {
	petID, ok := parseUintParam(c, "petId")
	if !ok {
		return
	}
	var req struct {
		Points int `json:"points"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	pet, err := h.petService.Feed(c.Request.Context(), currentUserID(c), petID, req.Points)
	if err != nil {
		respondError(c, err)
		return
	}
	balance, err := h.pointsService.Get(currentUserID(c), pet.ClassID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pet": pet, "remaining_points": balance.Remaining()})
}

// Advice 宠物给主人的鼓励语
func (h *PetHandler) Advice(c *gin.Context) {
	petID, ok := parseUintParam(c, "petId")
	if !ok {
		return
	}
	advice, err := h.petService.Advice(c.Request.Context(), currentUserID(c), petID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"advice": advice})
}
