package middleware

import (
	"net/http"
	"strings"

	"pantry-service/internal/infrastructure/config"
	"pantry-service/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserIDKey gin context 裡放已認證使用者 ID 的鍵
const UserIDKey = "user_id"

// Auth 認證中間件：Bearer token 對照設定檔換出使用者 ID
// 真正的使用者系統在服務邊界之外，這裡只做膠水
func Auth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" || header == token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing bearer token",
				"code":  common.ErrCodeUnauthorized,
			})
			return
		}

		raw, ok := cfg.Auth.Tokens[token]
		if !ok {
			common.LogWarn("未知的存取權杖",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid bearer token",
				"code":  common.ErrCodeUnauthorized,
			})
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			common.LogError("權杖對應的使用者 ID 不是合法 UUID",
				zap.String("user_id", raw),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Misconfigured token mapping",
				"code":  common.ErrCodeInternalError,
			})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// CurrentUser 取出已認證的使用者 ID
func CurrentUser(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
