package admin

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

// OverviewStats 概览统计
type OverviewStats struct {
	Teams       int `json:"teams"`
	Flags       int `json:"flags"`
	Submissions int `json:"submissions"`
	Hints       int `json:"hints"`
}

// HandleAdminOverview 后台概览统计
func HandleAdminOverview(c *gin.Context, db *sql.DB) {
	var stats OverviewStats

	// 队伍数（不含管理员账户）
	db.QueryRow(`SELECT COUNT(*) FROM users WHERE role = 'user'`).Scan(&stats.Teams)

	// Flag数
	db.QueryRow(`SELECT COUNT(*) FROM flags`).Scan(&stats.Flags)

	// 记分数
	db.QueryRow(`SELECT COUNT(*) FROM submissions`).Scan(&stats.Submissions)

	// 提示数
	db.QueryRow(`SELECT COUNT(*) FROM flag_hints`).Scan(&stats.Hints)

	c.JSON(http.StatusOK, stats)
}
