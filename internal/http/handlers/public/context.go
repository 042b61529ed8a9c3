package public

import (
	"github.com/plpainel/tokenapi/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// requestLog returns a request-scoped logger carrying the request id
func requestLog(c *gin.Context) *zap.SugaredLogger {
	requestID := ""
	if c != nil {
		if value, ok := c.Get("request_id"); ok {
			if id, ok := value.(string); ok {
				requestID = id
			}
		}
	}
	if requestID == "" {
		return logger.S()
	}
	return logger.SW("request_id", requestID)
}
