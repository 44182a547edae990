package user

import (
	"database/sql"
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"calicore/server/logs"
)

// ProfileInfo 队伍个人信息
type ProfileInfo struct {
	ID         int64       `json:"id"`
	Username   string      `json:"username"`
	Points     int         `json:"points"`
	FlagsFound int         `json:"flagsFound"`
	TotalFlags int         `json:"totalFlags"`
	Solves     []SolveInfo `json:"solves"`
}

// SolveInfo 已解出的Flag
type SolveInfo struct {
	FlagID   int64  `json:"flagId"`
	Points   int    `json:"points"`
	SolvedAt string `json:"solvedAt"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ValidatePasswordStrength 验证密码强度：必须包含大小写字母和数字
func ValidatePasswordStrength(password string) (bool, string) {
	if len(password) < 8 {
		return false, "password must be at least 8 characters"
	}
	if !regexp.MustCompile(`[A-Z]`).MatchString(password) {
		return false, "password must contain an uppercase letter"
	}
	if !regexp.MustCompile(`[a-z]`).MatchString(password) {
		return false, "password must contain a lowercase letter"
	}
	if !regexp.MustCompile(`[0-9]`).MatchString(password) {
		return false, "password must contain a digit"
	}
	return true, ""
}

// HandleGetProfile 获取当前队伍的积分与解题情况
func HandleGetProfile(c *gin.Context, db *sql.DB) {
	userID := c.GetInt64("userID")

	var p ProfileInfo
	err := db.QueryRow(`SELECT id, username, points FROM users WHERE id = $1`, userID).
		Scan(&p.ID, &p.Username, &p.Points)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "USER_NOT_FOUND"})
		return
	}
	if err != nil {
		log.Printf("get profile error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL_ERROR"})
		return
	}

	rows, err := db.Query(`
		SELECT f.id, f.points, s.created_at
		FROM submissions s
		JOIN flags f ON s.flag_id = f.id
		WHERE s.team_id = $1
		ORDER BY f.id ASC`, userID)
	if err != nil {
		log.Printf("get solves error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL_ERROR"})
		return
	}
	defer rows.Close()

	p.Solves = []SolveInfo{}
	for rows.Next() {
		var s SolveInfo
		var solvedAt time.Time
		if err := rows.Scan(&s.FlagID, &s.Points, &solvedAt); err != nil {
			continue
		}
		s.SolvedAt = solvedAt.Format("2006-01-02 15:04:05")
		p.Solves = append(p.Solves, s)
	}
	p.FlagsFound = len(p.Solves)

	db.QueryRow(`SELECT COUNT(*) FROM flags`).Scan(&p.TotalFlags)

	c.JSON(http.StatusOK, p)
}

// HandleChangePassword 修改当前队伍密码
func HandleChangePassword(c *gin.Context, db *sql.DB) {
	userID := c.GetInt64("userID")

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_REQUEST"})
		return
	}

	// 验证密码强度
	if valid, msg := ValidatePasswordStrength(req.NewPassword); !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "WEAK_PASSWORD", "message": msg})
		return
	}

	var currentHash string
	err := db.QueryRow(`SELECT password_hash FROM users WHERE id = $1`, userID).Scan(&currentHash)
	if err != nil {
		log.Printf("get password hash error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL_ERROR"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(currentHash), []byte(req.OldPassword)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "WRONG_PASSWORD"})
		return
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("generate password hash error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL_ERROR"})
		return
	}

	_, err = db.Exec(`UPDATE users SET password_hash = $1 WHERE id = $2`, string(newHash), userID)
	if err != nil {
		log.Printf("update password error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL_ERROR"})
		return
	}

	logs.WriteLogSimple(db, logs.TypePasswordChange, logs.LevelInfo, userID, c.ClientIP(), "password changed")

	c.JSON(http.StatusOK, gin.H{"message": "PASSWORD_CHANGED"})
}
