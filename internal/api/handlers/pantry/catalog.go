package pantry

import (
	"net/http"

	"pantry-service/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandleListCatalog 回傳完整型錄
func (h *Handler) HandleListCatalog(c *gin.Context) {
	items, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		common.LogError("型錄讀取失敗",
			zap.Error(err),
			zap.String("request_id", requestid.Get(c)),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list catalog",
			"code":  common.ErrCodeInternalError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}
