// Package router 注册HTTP路由
package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/xiebiao/library/docs"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// Handlers 各模块处理器
type Handlers struct {
	User        *handler.UserHandler
	Shelf       *handler.ShelfHandler
	Book        *handler.BookHandler
	Lending     *handler.LendingHandler
	Reservation *handler.ReservationHandler
	Settings    *handler.SettingsHandler
}

var (
	librarian = middleware.RequireRole(string(user.RoleLibrarian), string(user.RoleAdmin))
	admin     = middleware.RequireRole(string(user.RoleAdmin))
)

// New 创建Gin引擎并注册全部路由
// 中间件顺序：Recovery → 请求日志 → 指标 → 认证（按路由组）
func New(mode string, h Handlers, auth *middleware.AuthMiddleware, log *slog.Logger) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(log), middleware.Metrics())

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	requireAuth := auth.RequireAuth()

	// 用户
	users := v1.Group("/users")
	{
		users.POST("/register", h.User.Register)
		users.POST("/login", h.User.Login)
		users.POST("/logout", requireAuth, h.User.Logout)
		users.POST("", requireAuth, admin, h.User.CreateUser)
		users.GET("", requireAuth, librarian, h.User.ListUsers)
		users.GET("/:id", requireAuth, librarian, h.User.GetUser)
		users.DELETE("/:id", requireAuth, librarian, h.User.DeleteUser)
	}
	v1.GET("/profile", requireAuth, h.User.Profile)

	// 书架（查询公开）
	shelves := v1.Group("/shelves")
	{
		shelves.GET("", h.Shelf.List)
		shelves.GET("/:id", h.Shelf.Get)
		shelves.GET("/:id/books", h.Shelf.Books)
		shelves.POST("", requireAuth, librarian, h.Shelf.Create)
		shelves.PUT("/:id", requireAuth, librarian, h.Shelf.Update)
		shelves.DELETE("/:id", requireAuth, librarian, h.Shelf.Delete)
	}

	// 图书（查询公开）
	books := v1.Group("/books")
	{
		books.GET("", h.Book.List)
		books.GET("/:id", h.Book.Get)
		books.POST("", requireAuth, librarian, h.Book.Create)
		books.PUT("/:id", requireAuth, librarian, h.Book.Update)
		books.PUT("/:id/move", requireAuth, librarian, h.Book.Move)
		books.DELETE("/:id", requireAuth, librarian, h.Book.Delete)
	}

	// 借阅
	lend := v1.Group("/lend/transactions", requireAuth)
	{
		lend.POST("", librarian, h.Lending.Lend)
		lend.GET("", librarian, h.Lending.List)
		lend.GET("/me", h.Lending.Mine)
		lend.GET("/users/:id", librarian, h.Lending.ByUser)
		lend.PUT("/:id/return", librarian, h.Lending.Return)
		lend.GET("/:id/late-fee", h.Lending.GetLateFee)
		lend.PUT("/:id/late-fee", h.Lending.PayLateFee)
	}

	// 预约
	reservations := v1.Group("/reservations", requireAuth)
	{
		reservations.POST("/books/:bookId", h.Reservation.Reserve)
		reservations.GET("", h.Reservation.List)
		reservations.PUT("/:id", h.Reservation.Update)
		reservations.DELETE("/:id", h.Reservation.Cancel)
	}

	// 设置
	settings := v1.Group("/settings", requireAuth)
	{
		settings.GET("/late-fee", h.Settings.GetLateFee)
		settings.GET("/lend-day", h.Settings.GetLendDay)
		settings.PUT("/late-fee", admin, h.Settings.UpdateLateFee)
		settings.PUT("/lend-day", admin, h.Settings.UpdateLendDay)
	}

	return r
}
