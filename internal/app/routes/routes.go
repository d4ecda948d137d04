package routes

import (
	"github.com/curriculum/planner/internal/app/controllers"
	"github.com/curriculum/planner/internal/app/models"
	"github.com/curriculum/planner/internal/middleware"
	"github.com/gin-gonic/gin"

	appAuth "github.com/curriculum/planner/internal/app/auth"
)

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl *controllers.Controllers, authMiddleware *middleware.AuthMiddleware) {
	requireAuth := authMiddleware.JWTAuth()
	adminOnly := authMiddleware.RoleRequired(models.RoleAdmin)
	staffOnly := authMiddleware.RoleRequired(appAuth.StaffRoles...)

	router.GET("/health", ctrl.Health.Health)

	// --- Auth routes ---
	auth := router.Group("/auth")
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
		auth.POST("/refresh", ctrl.Auth.RefreshToken)
		auth.GET("/me", requireAuth, ctrl.Auth.Me)
		auth.POST("/logout", requireAuth, ctrl.Auth.Logout)
	}

	router.GET("/admin/only", requireAuth, adminOnly, ctrl.Auth.AdminOnly)
	router.POST("/admin/import", requireAuth, adminOnly, ctrl.Import.ImportCatalog)
	router.GET("/graph/:program_id", ctrl.Graph.GetProgramGraph)

	// --- Catalog: reads are public, writes need an admin ---
	programs := router.Group("/programs")
	{
		programs.GET("", ctrl.Program.GetAllPrograms)
		programs.GET("/:id", ctrl.Program.GetProgramByID)
		programs.GET("/:id/courses", ctrl.Course.ListCourses)
		programs.GET("/:id/eligible", requireAuth, ctrl.Progress.EligibleCourses)

		programs.POST("", requireAuth, adminOnly, ctrl.Program.CreateProgram)
		programs.DELETE("/:id", requireAuth, adminOnly, ctrl.Program.DeleteProgram)
		programs.POST("/:id/courses", requireAuth, adminOnly, ctrl.Course.CreateCourse)
	}

	courses := router.Group("/courses")
	{
		courses.GET("/:id", ctrl.Course.GetCourseByID)
		courses.GET("/:id/prerequisites", ctrl.Prerequisite.GetRequirements)

		courses.PUT("/:id", requireAuth, adminOnly, ctrl.Course.UpdateCourse)
		courses.DELETE("/:id", requireAuth, adminOnly, ctrl.Course.DeleteCourse)
		courses.POST("/:id/prerequisites", requireAuth, adminOnly, ctrl.Prerequisite.AddPrerequisite)
		courses.DELETE("/:id/prerequisites/:prereqId", requireAuth, adminOnly, ctrl.Prerequisite.RemovePrerequisite)
		courses.POST("/:id/prerequisite-groups", requireAuth, adminOnly, ctrl.Prerequisite.CreateGroup)
	}

	router.DELETE("/prerequisite-groups/:groupId", requireAuth, adminOnly, ctrl.Prerequisite.DeleteGroup)

	// --- Student progress ---
	progress := router.Group("/progress", requireAuth)
	{
		progress.GET("", ctrl.Progress.ListMyProgress)
		progress.PUT("/:courseId", ctrl.Progress.SetProgress)
		progress.DELETE("/:courseId", ctrl.Progress.DeleteProgress)
	}

	router.GET("/users/:id/progress", requireAuth, staffOnly, ctrl.Progress.GetUserProgress)
}
