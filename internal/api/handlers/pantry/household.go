package pantry

import (
	"errors"
	"net/http"
	"strings"

	"pantry-service/internal/api/middleware"
	"pantry-service/internal/core/reconcile"
	"pantry-service/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateHouseholdRequest 建立家庭請求
type CreateHouseholdRequest struct {
	Name string `json:"name" binding:"required"`
}

// HandleCreateHousehold 建立新家庭，建立者自動成為成員
func (h *Handler) HandleCreateHousehold(c *gin.Context) {
	userID, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated", "code": common.ErrCodeUnauthorized})
		return
	}

	var req CreateHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "code": common.ErrCodeInvalidRequest})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Household name is required", "code": common.ErrCodeInvalidRequest})
		return
	}

	// 一個使用者同時只屬於一個家庭
	if _, err := h.store.HouseholdForUser(c.Request.Context(), userID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User already belongs to a household", "code": common.ErrCodeConflict})
		return
	}

	household, err := h.store.CreateHousehold(c.Request.Context(), name, userID)
	if err != nil {
		common.LogError("家庭建立失敗",
			zap.Error(err),
			zap.String("request_id", requestid.Get(c)),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create household", "code": common.ErrCodeInternalError})
		return
	}

	common.LogInfo("家庭已建立",
		zap.String("household_id", household.ID.String()),
		zap.String("name", household.Name),
	)

	c.JSON(http.StatusCreated, household)
}

// HandleCurrentHousehold 回傳呼叫者所屬的家庭與庫存
func (h *Handler) HandleCurrentHousehold(c *gin.Context) {
	userID, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated", "code": common.ErrCodeUnauthorized})
		return
	}

	household, err := h.store.HouseholdForUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, reconcile.ErrHouseholdNotFound) {
			c.JSON(common.ErrHouseholdMissing.Status, gin.H{
				"error": "No household found for current user",
				"code":  common.ErrHouseholdMissing.Code,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load household", "code": common.ErrCodeInternalError})
		return
	}

	c.JSON(http.StatusOK, household)
}

// AddMemberRequest 加入成員請求
type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// HandleAddMember 把使用者加入呼叫者的家庭，呼叫者必須已是成員
func (h *Handler) HandleAddMember(c *gin.Context) {
	userID, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated", "code": common.ErrCodeUnauthorized})
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "code": common.ErrCodeInvalidRequest})
		return
	}
	newMember, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id must be a UUID", "code": common.ErrCodeInvalidRequest})
		return
	}

	household, err := h.store.HouseholdForUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, reconcile.ErrHouseholdNotFound) {
			c.JSON(common.ErrHouseholdMissing.Status, gin.H{
				"error": "No household found for current user",
				"code":  common.ErrHouseholdMissing.Code,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load household", "code": common.ErrCodeInternalError})
		return
	}

	if err := h.store.AddMember(c.Request.Context(), household.ID, newMember); err != nil {
		common.LogError("成員加入失敗",
			zap.Error(err),
			zap.String("household_id", household.ID.String()),
			zap.String("request_id", requestid.Get(c)),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member", "code": common.ErrCodeInternalError})
		return
	}

	common.LogInfo("成員已加入家庭",
		zap.String("household_id", household.ID.String()),
		zap.String("member_id", newMember.String()),
	)

	c.JSON(http.StatusOK, gin.H{"success": true})
}
