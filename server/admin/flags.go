package admin

import (
	"database/sql"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"calicore/server/logs"
)

// FlagDetail 管理端Flag信息（含明文和提示，仅管理员可见）
type FlagDetail struct {
	ID       int64   `json:"id"`
	FlagText string  `json:"flagText"`
	Points   int     `json:"points"`
	Hint     *string `json:"hint,omitempty"`
	Solves   int     `json:"solves"`
}

type createFlagRequest struct {
	FlagText string `json:"flagText" binding:"required"`
	Points   int    `json:"points" binding:"required"`
	Hint     string `json:"hint"`
}

type updateFlagRequest struct {
	FlagText string  `json:"flagText"`
	Points   int     `json:"points"`
	Hint     *string `json:"hint"`
}

// HandleListFlags 获取Flag列表（含解出次数）
func HandleListFlags(c *gin.Context, db *sql.DB) {
	rows, err := db.Query(`
		SELECT f.id, f.flag_text, f.points, h.payload,
		       (SELECT COUNT(*) FROM submissions s WHERE s.flag_id = f.id)
		FROM flags f
		LEFT JOIN flag_hints h ON h.flag_id = f.id
		ORDER BY f.id ASC`)
	if err != nil {
		log.Printf("list flags error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB_ERROR"})
		return
	}
	defer rows.Close()

	flags := []FlagDetail{}
	for rows.Next() {
		var f FlagDetail
		var hint sql.NullString
		if err := rows.Scan(&f.ID, &f.FlagText, &f.Points, &hint, &f.Solves); err != nil {
			continue
		}
		if hint.Valid {
			f.Hint = &hint.String
		}
		flags = append(flags, f)
	}

	c.JSON(http.StatusOK, gin.H{"flags": flags})
}

// HandleCreateFlag 新建Flag，可同时附带提示内容
func HandleCreateFlag(c *gin.Context, db *sql.DB) {
	var req createFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_REQUEST"})
		return
	}

	flagText := strings.TrimSpace(req.FlagText)
	if flagText == "" || req.Points <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_REQUEST", "message": "flag text and positive points required"})
		return
	}

	var id int64
	err := db.QueryRow(`INSERT INTO flags (flag_text, points) VALUES ($1, $2)
		ON CONFLICT (flag_text) DO NOTHING RETURNING id`, flagText, req.Points).Scan(&id)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusConflict, gin.H{"error": "FLAG_EXISTS"})
		return
	}
	if err != nil {
		log.Printf("create flag error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB_ERROR"})
		return
	}

	if req.Hint != "" {
		if _, err := db.Exec(`INSERT INTO flag_hints (flag_id, payload) VALUES ($1, $2)`, id, req.Hint); err != nil {
			log.Printf("create flag hint error: %v", err)
		}
	}

	adminID := c.GetInt64("userID")
	logs.WriteLog(db, logs.TypeAdminOp, logs.LevelInfo, &adminID, &id, c.ClientIP(),
		"flag created", map[string]interface{}{"points": req.Points})

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// HandleUpdateFlag 更新Flag分值、文本或提示。
// 已产生的记分不回溯重算，积分单调不减。
func HandleUpdateFlag(c *gin.Context, db *sql.DB) {
	flagID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_ID"})
		return
	}

	var req updateFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_REQUEST"})
		return
	}

	if req.FlagText != "" {
		if _, err := db.Exec(`UPDATE flags SET flag_text = $1 WHERE id = $2`,
			strings.TrimSpace(req.FlagText), flagID); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "FLAG_EXISTS"})
			return
		}
	}
	if req.Points > 0 {
		db.Exec(`UPDATE flags SET points = $1 WHERE id = $2`, req.Points, flagID)
	}
	if req.Hint != nil {
		if *req.Hint == "" {
			db.Exec(`DELETE FROM flag_hints WHERE flag_id = $1`, flagID)
		} else {
			db.Exec(`INSERT INTO flag_hints (flag_id, payload) VALUES ($1, $2)
				ON CONFLICT (flag_id) DO UPDATE SET payload = EXCLUDED.payload`, flagID, *req.Hint)
		}
	}

	adminID := c.GetInt64("userID")
	logs.WriteLog(db, logs.TypeAdminOp, logs.LevelInfo, &adminID, &flagID, c.ClientIP(), "flag updated", nil)

	c.JSON(http.StatusOK, gin.H{"message": "OK"})
}

// HandleDeleteFlag 删除Flag（级联清掉提示，台账行随外键级联）
func HandleDeleteFlag(c *gin.Context, db *sql.DB) {
	flagID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_ID"})
		return
	}

	res, err := db.Exec(`DELETE FROM flags WHERE id = $1`, flagID)
	if err != nil {
		log.Printf("delete flag error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB_ERROR"})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "FLAG_NOT_FOUND"})
		return
	}

	adminID := c.GetInt64("userID")
	logs.WriteLog(db, logs.TypeAdminOp, logs.LevelWarning, &adminID, &flagID, c.ClientIP(), "flag deleted", nil)

	c.JSON(http.StatusOK, gin.H{"message": "OK"})
}
