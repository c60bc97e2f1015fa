package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"tooltrack/app"
	"tooltrack/controllers"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	authCtl := controllers.NewAuthController(s)
	toolCtl := controllers.NewToolController(s)
	dashCtl := controllers.NewDashboardController(s)
	lostCtl := controllers.NewLostTimeController(s)
	persCtl := controllers.NewPersonnelController(s)

	// 复用的中间件
	authMW := app.AuthRequired(s.AppSess, s.Repo)
	adminMW := app.AdminOnly()
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)

	// ------------------------------
	// 认证（公开+受保护）
	// ------------------------------
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", authCtl.Login)
	}
	authProtected := auth.Group("", authMW)
	{
		authProtected.POST("/logout", authCtl.Logout)
		authProtected.GET("/whoami", authCtl.Whoami)
	}

	// ------------------------------
	// 借还（扫码终端）
	// ------------------------------
	tools := r.Group("/api/tools", authMW, seenMW)
	{
		tools.GET("", toolCtl.ListTools)
		tools.GET("/checked-out", toolCtl.ListCheckedOut)
		tools.GET("/verify-ownership/:barcode", toolCtl.VerifyOwnership)
		tools.POST("/checkout", toolCtl.Checkout)
		tools.POST("/checkin", toolCtl.Checkin)
	}

	// 终端下拉字典
	meta := r.Group("/api", authMW)
	{
		meta.GET("/areas", toolCtl.ListAreas)
		meta.GET("/tool-types", toolCtl.ListToolTypes)
	}

	// 管理：登记工具 / 标记遗失
	toolsAdmin := r.Group("/api/tools", authMW, adminMW)
	{
		toolsAdmin.POST("", toolCtl.CreateTool)
		toolsAdmin.POST("/:barcode/missing", toolCtl.MarkMissing)
		toolsAdmin.POST("/:barcode/resolve-missing", toolCtl.ResolveMissing)
	}

	// ------------------------------
	// 仪表盘与损失工时
	// ------------------------------
	dash := r.Group("/api/dashboard", authMW, seenMW)
	{
		dash.GET("/summary", dashCtl.Summary)
	}

	// 扫码终端解析工牌
	resolve := r.Group("/api/personnel", authMW, seenMW)
	{
		resolve.GET("/resolve/:barcode", persCtl.Resolve)
	}

	lost := r.Group("/api/lost-time", authMW, seenMW)
	{
		lost.POST("", lostCtl.Create)
		lost.GET("", lostCtl.List)
	}

	// ------------------------------
	// 人员管理（仅管理员）
	// ------------------------------
	personnel := r.Group("/api/personnel", authMW, adminMW)
	{
		personnel.GET("", persCtl.List)
		personnel.POST("", persCtl.Create)
		personnel.POST("/:id/deactivate", persCtl.Deactivate)
		personnel.POST("/:id/reactivate", persCtl.Reactivate)
	}
}
