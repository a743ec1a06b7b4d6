package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"edusync/backend/config"
	"edusync/backend/internal/api/handler"
	"edusync/backend/internal/api/middleware"
	"edusync/backend/pkg/jwt"
	"edusync/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil：黑名单与限流降级放行
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if cfg.Server.MetricsPath != "" {
		r.GET(cfg.Server.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	writeLimit := middleware.RateLimit(rdb, cfg.Server.RateLimit.Limit, cfg.Server.RateLimit.Window)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		api := v1.Group("")
		api.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
		{
			// 认证模块（无需认证）
			api.POST("/auth/login", writeLimit, h.Auth.Login)

			// 基础数据（只读，公开）
			catalog := api.Group("/catalog")
			{
				catalog.GET("/departments", h.Catalog.ListDepartments)
				catalog.GET("/classes", h.Catalog.ListClasses)
				catalog.GET("/sections", h.Catalog.ListSections)
				catalog.GET("/faculty", h.Catalog.ListFaculty)
				catalog.GET("/courses", h.Catalog.ListCourses)
			}

			// 级联筛选（公开）
			filters := api.Group("/filters")
			{
				filters.GET("/:view", h.Filter.Describe)
				filters.POST("/:view/change", h.Filter.Change)
				filters.POST("/:view/reset", h.Filter.Reset)
			}

			// 课表查询与导出（公开）
			timetable := api.Group("/timetable")
			{
				timetable.GET("", h.Schedule.List)
				timetable.GET("/:id", h.Schedule.Get)
				timetable.GET("/export/xlsx", h.Transfer.ExportXLSX)
				timetable.GET("/export/ics", h.Transfer.ExportICS)
			}

			// 需要认证的路由
			authorized := api.Group("")
			authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
			{
				authorized.POST("/auth/logout", h.Auth.Logout)
				authorized.GET("/auth/me", h.Auth.Me)

				// 排课维护（仅管理员）
				admin := authorized.Group("/timetable")
				admin.Use(middleware.RoleAuth("admin"), writeLimit)
				{
					admin.POST("", h.Schedule.Create)
					admin.PUT("/:id", h.Schedule.Update)
					admin.DELETE("/:id", h.Schedule.Delete)
					admin.POST("/check", h.Schedule.Check)
				}

				// 基础数据维护（仅管理员）
				manage := authorized.Group("/admin")
				manage.Use(middleware.RoleAuth("admin"))
				{
					manage.POST("/departments", writeLimit, h.Department.Create)
					manage.GET("/departments/:id", h.Department.Get)
					manage.PUT("/departments/:id", writeLimit, h.Department.Update)
					manage.DELETE("/departments/:id", writeLimit, h.Department.Delete)

					manage.GET("/courses", h.Course.List)
					manage.POST("/courses", writeLimit, h.Course.Create)
					manage.GET("/courses/:id", h.Course.Get)
					manage.PUT("/courses/:id", writeLimit, h.Course.Update)
					manage.DELETE("/courses/:id", writeLimit, h.Course.Delete)

					manage.GET("/people", h.People.List)
					manage.POST("/people", writeLimit, h.People.Create)
					manage.GET("/people/:role/:id", h.People.Get)
					manage.PUT("/people/:role/:id", writeLimit, h.People.Update)
					manage.DELETE("/people/:role/:id", writeLimit, h.People.Delete)

					manage.GET("/attendance", h.Attendance.List)
					manage.POST("/attendance", writeLimit, h.Attendance.Record)
					manage.PUT("/attendance/:id", writeLimit, h.Attendance.UpdateStatus)

					manage.GET("/invoices", h.Invoice.List)
					manage.POST("/invoices", writeLimit, h.Invoice.Create)
					manage.GET("/invoices/:id", h.Invoice.Get)
					manage.PUT("/invoices/:id", writeLimit, h.Invoice.Update)
					manage.POST("/invoices/:id/pay", writeLimit, h.Invoice.Pay)
					manage.DELETE("/invoices/:id", writeLimit, h.Invoice.Delete)

					manage.GET("/events", h.Event.List)
					manage.POST("/events", writeLimit, h.Event.Create)
					manage.GET("/events/:id", h.Event.Get)
					manage.PUT("/events/:id", writeLimit, h.Event.Update)
					manage.DELETE("/events/:id", writeLimit, h.Event.Delete)

					manage.GET("/messages", h.Message.List)
					manage.POST("/messages", writeLimit, h.Message.Send)
					manage.DELETE("/messages/:id", writeLimit, h.Message.Delete)
				}

				// 统计分析：管理员与教务人员只读
				authorized.GET("/analytics", middleware.RoleAuth("admin", "staff"), h.Analytics.Get)

				// 请假申请：管理员与教务人员可查询、提交；审批仅管理员
				leaves := authorized.Group("/leaves")
				leaves.Use(middleware.RoleAuth("admin", "staff"))
				{
					leaves.GET("", h.Leave.List)
					leaves.POST("", writeLimit, h.Leave.Create)

					decide := leaves.Group("/:id")
					decide.Use(middleware.RoleAuth("admin"), writeLimit)
					{
						decide.PUT("/status", h.Leave.Decide)
						decide.POST("/approve", h.Leave.Approve)
						decide.POST("/reject", h.Leave.Reject)
					}
				}
			}
		}

		// 文件导入使用独立的上传上限（Handler 内限制），不经过全局 BodyLimit
		upload := v1.Group("/timetable")
		upload.Use(middleware.JWTAuth(jwtMgr, rdb), middleware.RoleAuth("admin"), writeLimit)
		{
			upload.POST("/import", h.Transfer.Import)
		}

		catalogUpload := v1.Group("/admin/import")
		catalogUpload.Use(middleware.JWTAuth(jwtMgr, rdb), middleware.RoleAuth("admin"), writeLimit)
		{
			catalogUpload.POST("/:type", h.Transfer.ImportCatalog)
		}
	}

	return r
}
