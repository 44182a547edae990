package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"calicore/server/logs"
)

// ensureAdmin 确保管理员账户存在（由环境变量控制）
func ensureAdmin(db *sql.DB) error {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")

	if username == "" || password == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var existingID int64
	err = db.QueryRow(`SELECT id FROM users WHERE username = $1`, username).Scan(&existingID)
	if err == sql.ErrNoRows {
		var newID int64
		err = db.QueryRow(`INSERT INTO users (username, password_hash, role) VALUES ($1, $2, 'super') RETURNING id`,
			username, string(hash)).Scan(&newID)
		if err != nil {
			return err
		}
		log.Printf("[ensureAdmin] Created admin: %s (ID: %d)", username, newID)
		return nil
	}
	if err != nil {
		return err
	}

	// 用户已存在，提升为管理员并更新密码
	_, err = db.Exec(`UPDATE users SET role = 'super', password_hash = $1 WHERE id = $2`,
		string(hash), existingID)
	if err != nil {
		return err
	}
	log.Printf("[ensureAdmin] Updated admin: %s (ID: %d)", username, existingID)
	return nil
}

// handleSignup 处理注册请求（队伍名唯一，密码存bcrypt哈希）
func handleSignup(c *gin.Context, db *sql.DB) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_REQUEST"})
		return
	}

	username := strings.TrimSpace(req.Username)
	password := strings.TrimSpace(req.Password)
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_REQUEST"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("hash password error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL_ERROR"})
		return
	}

	// 队伍名撞车走唯一约束，而不是先查后插
	var newID int64
	err = db.QueryRow(`INSERT INTO users (username, password_hash) VALUES ($1, $2)
		ON CONFLICT (username) DO NOTHING RETURNING id`, username, string(hash)).Scan(&newID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusConflict, gin.H{"error": "USERNAME_TAKEN", "message": "Team Name already exists."})
		return
	}
	if err != nil {
		log.Printf("create user error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL_ERROR"})
		return
	}

	logs.WriteLogSimple(db, logs.TypeSignup, logs.LevelSuccess, newID, c.ClientIP(),
		"team ["+username+"] signed up")

	c.JSON(http.StatusOK, gin.H{"message": "Account created! You can now log in."})
}

// handleLogin 处理登录请求
func handleLogin(c *gin.Context, db *sql.DB, secret []byte) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_REQUEST"})
		return
	}

	var (
		id           int64
		username     string
		role         string
		passwordHash string
	)

	err := db.QueryRow(
		`SELECT id, username, role, password_hash FROM users WHERE username = $1`,
		strings.TrimSpace(req.Username),
	).Scan(&id, &username, &role, &passwordHash)

	clientIP := c.ClientIP()

	if err == sql.ErrNoRows {
		logs.WriteLog(db, logs.TypeLogin, logs.LevelError, nil, nil, clientIP,
			"login failed: unknown team ["+req.Username+"]", nil)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "INVALID_CREDENTIALS", "message": "Incorrect username or password."})
		return
	}
	if err != nil {
		log.Printf("query user error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL_ERROR"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		logs.WriteLogSimple(db, logs.TypeLogin, logs.LevelError, id, clientIP,
			"login failed: wrong password for ["+username+"]")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "INVALID_CREDENTIALS", "message": "Incorrect username or password."})
		return
	}

	token, err := generateJWT(User{ID: id, Username: username, Role: role}, secret)
	if err != nil {
		log.Printf("generate token error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL_ERROR"})
		return
	}

	logs.WriteLogSimple(db, logs.TypeLogin, logs.LevelSuccess, id, clientIP,
		"team ["+username+"] logged in")

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  User{ID: id, Username: username, Role: role},
	})
}

// generateJWT 生成JWT令牌
func generateJWT(u User, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"sub":      u.ID,
		"username": u.Username,
		"role":     u.Role,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
