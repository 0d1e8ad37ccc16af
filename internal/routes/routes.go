package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"

	"taskverse/internal/handlers"
	"taskverse/internal/middleware"
)

// SetupRoutes registers every endpoint. Authentication is optional on the
// task routes: requests without a token run as guests.
func SetupRoutes(
	r *gin.Engine,
	tokens middleware.TokenParser,
	db handlers.Pinger,
	taskHandler *handlers.TaskHandler,
	authHandler *handlers.AuthHandler,
) *gin.Engine {
	// ---- docs and health
	r.GET("/healthz", handlers.Health(db))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group("", middleware.Authenticate(tokens))

	// TASKS
	tasks := api.Group("/tasks")
	{
		tasks.GET("", taskHandler.List)
		tasks.GET("/report.pdf", taskHandler.Report)
		tasks.POST("/createTask", taskHandler.Create)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.DELETE("/:id", taskHandler.Delete)
	}

	// AUTH
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/password/forgot", authHandler.ForgotPassword)
		auth.POST("/password/reset", authHandler.ResetPassword)
		auth.GET("/google/login", authHandler.GoogleLogin)
		auth.GET("/google/callback", authHandler.GoogleCallback)

		me := auth.Group("/me", middleware.RequireUser())
		me.GET("", authHandler.Me)
		me.POST("/telegram", authHandler.LinkTelegram)
	}

	return r
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}
