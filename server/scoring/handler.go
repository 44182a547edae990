package scoring

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"calicore/server/logs"
	"calicore/server/session"
)

// SubmitFlagRequest 提交flag请求
type SubmitFlagRequest struct {
	Flag string `json:"flag" binding:"required"`
}

// SubmitFlagResponse 提交flag响应
type SubmitFlagResponse struct {
	Correct bool   `json:"correct"`
	Message string `json:"message"`
	Class   string `json:"class"`
	Points  int    `json:"points,omitempty"`
	FlagID  int64  `json:"flagId,omitempty"`
}

// HandleSubmitFlag 提交flag。任何结果都会设置一次性提示消息，
// 由下一次dashboard请求消费（对应提交后跳转dashboard的展示流程）。
func HandleSubmitFlag(c *gin.Context, db *sql.DB, engine *Engine, flashes *session.FlashStore) {
	userID := c.GetInt64("userID")

	var req SubmitFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_REQUEST", "message": "flag is required"})
		return
	}

	result := engine.SubmitFlag(c.Request.Context(), userID, req.Flag)

	flashes.Set(userID, session.Flash{
		Message: result.SideEffects.Flash.Message,
		Class:   result.SideEffects.Flash.Class,
	})

	clientIP := c.ClientIP()
	switch result.Outcome {
	case OutcomeCredited:
		logs.WriteLog(db, logs.TypeFlagSubmit, logs.LevelSuccess, &userID, &result.FlagID, clientIP,
			"flag accepted", map[string]interface{}{"points": result.PointsAwarded})
	case OutcomeStorageError:
		logs.WriteLog(db, logs.TypeFlagSubmit, logs.LevelError, &userID, nil, clientIP,
			"flag submission failed on storage", nil)
		// 对外只给通用可重试文案，不透出存储细节
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "STORAGE_ERROR",
			"message": result.SideEffects.Flash.Message,
		})
		return
	default:
		logs.WriteLog(db, logs.TypeFlagSubmit, logs.LevelInfo, &userID, nil, clientIP,
			"flag rejected", nil)
	}

	c.JSON(http.StatusOK, SubmitFlagResponse{
		Correct: result.Outcome == OutcomeCredited,
		Message: result.SideEffects.Flash.Message,
		Class:   result.SideEffects.Flash.Class,
		Points:  result.PointsAwarded,
		FlagID:  result.FlagID,
	})
}

// HandleDashboard dashboard渲染数据：取走一次性提示和待展示的解锁信息
func HandleDashboard(c *gin.Context, engine *Engine, flashes *session.FlashStore) {
	userID := c.GetInt64("userID")
	username := c.GetString("username")

	resp := gin.H{"username": username}
	if flash, ok := flashes.Take(userID); ok {
		resp["flash"] = flash
	}
	if reveals := engine.Tracker().DrainPending(userID); len(reveals) > 0 {
		resp["reveals"] = reveals
	}

	c.JSON(http.StatusOK, resp)
}

// HandleLeaderboard 排行榜JSON接口（公开，前端5秒轮询）
func HandleLeaderboard(c *gin.Context, ranker Ranker) {
	ranks, err := ranker.Rank(c.Request.Context())
	if err != nil {
		log.Printf("leaderboard query error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB_ERROR"})
		return
	}
	c.JSON(http.StatusOK, ranks)
}
