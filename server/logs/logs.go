package logs

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// 日志类型常量
const (
	TypeLogin          = "login"
	TypeSignup         = "signup"
	TypeFlagSubmit     = "flag_submit"
	TypeAdminOp        = "admin_op"
	TypePasswordChange = "password_change"
)

// 日志级别常量
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
	LevelSuccess = "success"
)

// LogEntry 日志条目
type LogEntry struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Level     string          `json:"level"`
	UserID    *int64          `json:"userId,omitempty"`
	UserName  string          `json:"userName,omitempty"`
	FlagID    *int64          `json:"flagId,omitempty"`
	IPAddress string          `json:"ipAddress,omitempty"`
	Message   string          `json:"message"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt string          `json:"createdAt"`
}

// WriteLog 写入审计日志（供其他模块调用）
func WriteLog(db *sql.DB, logType, level string, userID, flagID *int64, ipAddress, message string, details interface{}) error {
	var detailsJSON []byte
	var err error
	if details != nil {
		detailsJSON, err = json.Marshal(details)
		if err != nil {
			detailsJSON = nil
		}
	}

	_, err = db.Exec(`
		INSERT INTO system_logs (type, level, user_id, flag_id, ip_address, message, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		logType, level, userID, flagID, ipAddress, message, detailsJSON)
	return err
}

// WriteLogSimple 简化版写入日志
func WriteLogSimple(db *sql.DB, logType, level string, userID int64, ipAddress, message string) error {
	return WriteLog(db, logType, level, &userID, nil, ipAddress, message, nil)
}

// HandleGetLogs 获取日志列表（管理后台API）
func HandleGetLogs(c *gin.Context, db *sql.DB) {
	// 分页参数
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "50"))
	if page < 1 {
		page = 1
	}
	if pageSize < 10 || pageSize > 100 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	// 过滤参数
	logType := c.Query("type")
	level := c.Query("level")
	search := c.Query("search")

	// 构建查询
	query := `
		SELECT l.id, l.type, l.level, l.user_id, u.username, l.flag_id,
		       l.ip_address, l.message, l.details, l.created_at
		FROM system_logs l
		LEFT JOIN users u ON l.user_id = u.id
		WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM system_logs l WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if logType != "" {
		query += " AND l.type = $" + strconv.Itoa(argIdx)
		countQuery += " AND l.type = $" + strconv.Itoa(argIdx)
		args = append(args, logType)
		argIdx++
	}
	if level != "" {
		query += " AND l.level = $" + strconv.Itoa(argIdx)
		countQuery += " AND l.level = $" + strconv.Itoa(argIdx)
		args = append(args, level)
		argIdx++
	}
	if search != "" {
		query += " AND l.message ILIKE $" + strconv.Itoa(argIdx)
		countQuery += " AND l.message ILIKE $" + strconv.Itoa(argIdx)
		args = append(args, "%"+search+"%")
		argIdx++
	}

	// 总数
	var total int
	countArgs := make([]interface{}, len(args))
	copy(countArgs, args)
	db.QueryRow(countQuery, countArgs...).Scan(&total)

	// 分页查询
	query += " ORDER BY l.created_at DESC LIMIT $" + strconv.Itoa(argIdx) + " OFFSET $" + strconv.Itoa(argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := db.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DATABASE_ERROR"})
		return
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var entry LogEntry
		var userID, flagID sql.NullInt64
		var userName, ipAddress sql.NullString
		var details []byte
		var createdAt time.Time

		if err := rows.Scan(&entry.ID, &entry.Type, &entry.Level, &userID, &userName, &flagID,
			&ipAddress, &entry.Message, &details, &createdAt); err != nil {
			continue
		}

		if userID.Valid {
			entry.UserID = &userID.Int64
		}
		if userName.Valid {
			entry.UserName = userName.String
		}
		if flagID.Valid {
			entry.FlagID = &flagID.Int64
		}
		if ipAddress.Valid {
			entry.IPAddress = ipAddress.String
		}
		if len(details) > 0 {
			entry.Details = json.RawMessage(details)
		}
		entry.CreatedAt = createdAt.Format("2006-01-02 15:04:05")
		entries = append(entries, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":     entries,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}
