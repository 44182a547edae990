package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"calicore/server/admin"
	"calicore/server/logs"
	"calicore/server/migrations"
	"calicore/server/scoring"
	"calicore/server/session"
	"calicore/server/user"
)

func main() {
	// 本地开发时从.env读取，生产环境直接用环境变量
	if err := godotenv.Load(); err == nil {
		log.Println("loaded configuration from .env")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	if err := runMigrations(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	if err := ensureAdmin(db); err != nil {
		log.Fatalf("failed to ensure admin user: %v", err)
	}

	// 记分引擎与会话状态（flash、待展示提示）
	engine := scoring.NewEngine(
		scoring.NewPostgresRegistry(db),
		scoring.NewPostgresLedger(db),
		scoring.NewPostgresHintCatalog(db),
		scoring.NewRevealTracker(),
	)
	ranker := scoring.NewPostgresRanker(db)
	flashes := session.NewFlashStore()

	r := gin.Default()

	api := r.Group("/api")
	{
		api.POST("/signup", func(c *gin.Context) {
			handleSignup(c, db)
		})
		api.POST("/login", func(c *gin.Context) {
			handleLogin(c, db, []byte(jwtSecret))
		})

		// 公开的排行榜API（无需认证，前端5秒轮询）
		api.GET("/leaderboard", func(c *gin.Context) {
			scoring.HandleLeaderboard(c, ranker)
		})

		// 需要登录的队伍API
		userAPI := api.Group("")
		userAPI.Use(userAuthMiddleware([]byte(jwtSecret)))
		{
			userAPI.POST("/flags/submit", func(c *gin.Context) {
				scoring.HandleSubmitFlag(c, db, engine, flashes)
			})
			userAPI.GET("/dashboard", func(c *gin.Context) {
				scoring.HandleDashboard(c, engine, flashes)
			})
			userAPI.GET("/profile", func(c *gin.Context) {
				user.HandleGetProfile(c, db)
			})
			userAPI.POST("/profile/password", func(c *gin.Context) {
				user.HandleChangePassword(c, db)
			})
		}

		// 管理员API
		adminAPI := api.Group("/admin")
		adminAPI.Use(adminAuthMiddleware([]byte(jwtSecret)))
		{
			adminAPI.GET("/flags", func(c *gin.Context) {
				admin.HandleListFlags(c, db)
			})
			adminAPI.POST("/flags", func(c *gin.Context) {
				admin.HandleCreateFlag(c, db)
			})
			adminAPI.PUT("/flags/:id", func(c *gin.Context) {
				admin.HandleUpdateFlag(c, db)
			})
			adminAPI.DELETE("/flags/:id", func(c *gin.Context) {
				admin.HandleDeleteFlag(c, db)
			})
			adminAPI.GET("/overview", func(c *gin.Context) {
				admin.HandleAdminOverview(c, db)
			})
			adminAPI.GET("/logs", func(c *gin.Context) {
				logs.HandleGetLogs(c, db)
			})
			adminAPI.GET("/export", func(c *gin.Context) {
				admin.HandleExportLeaderboard(c, db)
			})
		}
	}

	log.Printf("listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// runMigrations 执行内嵌的goose迁移
func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(context.Background(), db, ".")
}
