package pantry

import (
	"errors"
	"net/http"

	"pantry-service/internal/api/middleware"
	"pantry-service/internal/core/reconcile"
	"pantry-service/internal/infrastructure/store"
	"pantry-service/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 庫存與家庭 API 的處理程序
type Handler struct {
	engine *reconcile.Engine
	store  store.Store
}

// NewHandler 創建處理程序
func NewHandler(engine *reconcile.Engine, st store.Store) *Handler {
	return &Handler{
		engine: engine,
		store:  st,
	}
}

// ReconcileRequest 逐字稿調和請求
type ReconcileRequest struct {
	Transcript string `json:"transcript"`
}

// HandleReconcileTranscript 逐字稿 → 結構化更新候選
// 只做萃取，不動庫存；呼叫端確認後再打 HandleApplyUpdates
func (h *Handler) HandleReconcileTranscript(c *gin.Context) {
	userID, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated", "code": common.ErrCodeUnauthorized})
		return
	}

	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestid.Get(c)),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "code": common.ErrCodeInvalidRequest})
		return
	}

	common.LogInfo("開始處理逐字稿調和請求",
		zap.String("request_id", requestid.Get(c)),
		zap.Int("transcript_length", len(req.Transcript)),
	)

	result, err := h.engine.ReconcileFromTranscript(c.Request.Context(), userID, req.Transcript)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ApplyUpdatesRequest 更新批次請求
type ApplyUpdatesRequest struct {
	Updates []reconcile.UpdateCandidate `json:"updates" binding:"required"`
}

// HandleApplyUpdates 驗證並套用一批更新到呼叫者的家庭庫存
func (h *Handler) HandleApplyUpdates(c *gin.Context) {
	userID, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated", "code": common.ErrCodeUnauthorized})
		return
	}

	var req ApplyUpdatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestid.Get(c)),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "code": common.ErrCodeInvalidRequest})
		return
	}

	common.LogInfo("開始處理庫存更新請求",
		zap.String("request_id", requestid.Get(c)),
		zap.Int("updates", len(req.Updates)),
	)

	result, err := h.engine.ApplyUpdates(c.Request.Context(), userID, req.Updates)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// writeEngineError 引擎的致命錯誤分類對應到 HTTP 狀態
func (h *Handler) writeEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, reconcile.ErrHouseholdNotFound):
		c.JSON(common.ErrHouseholdMissing.Status, gin.H{
			"error": "No household found for current user",
			"code":  common.ErrHouseholdMissing.Code,
		})
	case errors.Is(err, reconcile.ErrEmptyCatalog):
		c.JSON(common.ErrCatalogEmpty.Status, gin.H{
			"error": "Catalog is empty, nothing to match against",
			"code":  common.ErrCatalogEmpty.Code,
		})
	case errors.Is(err, reconcile.ErrExtractionFailed):
		common.LogError("逐字稿萃取失敗",
			zap.Error(err),
			zap.String("request_id", requestid.Get(c)),
		)
		c.JSON(common.ErrExtractionFailed.Status, gin.H{
			"error": err.Error(),
			"code":  common.ErrExtractionFailed.Code,
		})
	default:
		common.LogError("庫存調和失敗",
			zap.Error(err),
			zap.String("request_id", requestid.Get(c)),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
			"code":  common.ErrCodeInternalError,
		})
	}
}
