package server

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	// Init swagger doc
	_ "HandyHire-backend/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"HandyHire-backend/internal/auth"
	"HandyHire-backend/internal/controller/admin"
	"HandyHire-backend/internal/controller/application"
	"HandyHire-backend/internal/controller/conversation"
	"HandyHire-backend/internal/controller/employee"
	"HandyHire-backend/internal/controller/employer"
	"HandyHire-backend/internal/controller/jobposting"
	"HandyHire-backend/internal/metrics"
	"HandyHire-backend/internal/middleware"
	"HandyHire-backend/internal/model"
)

// RegisterRoutes will register each http endpoint route to the bound MyServer instance
func (s *MyServer) RegisterRoutes() http.Handler {
	r := gin.Default()

	allowOriginsStr := os.Getenv("ALLOW_ORIGIN")
	allowOrigins := strings.Split(allowOriginsStr, ",")

	googleOauth := &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_AUTH_CLIENT"),
		ClientSecret: os.Getenv("GOOGLE_AUTH_SECRET"),
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint:    google.Endpoint,
		RedirectURL: os.Getenv("OAUTH_REDIRECT_URL"),
	}

	gAuth := auth.NewOauthLoginHandler(s.DB, googleOauth, "https://www.googleapis.com/oauth2/v2/userinfo")
	lAuth := auth.NewLocalAuthHandler(s.DB)
	applicationCtrl := application.NewApplicationController(s.DB, s.Notifier)
	conversationCtrl := conversation.NewConversationController(s.DB, s.Notifier)
	jobPostingCtrl := jobposting.NewJobPostingController(s.DB)
	employeeCtrl := employee.NewEmployeeController(s.DB)
	employerCtrl := employer.NewEmployerController(s.DB)
	adminCtrl := admin.NewAdminController(s.DB)

	httpMetrics := metrics.NewHTTPMetrics("handyhire-backend")

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(httpMetrics.Middleware())

	r.GET("/", s.HelloWorldHandler)
	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(metrics.GetPrometheusHandler()))

	v1 := r.Group("/api/v1")
	{
		authRoute := v1.Group("/auth")
		{
			authRoute.Use(middleware.EnvRateLimitMiddleware())
			authRoute.POST("google/employee", gAuth.EmployeeGoogleLoginHandler)
			authRoute.GET("google/callback", gAuth.Callback)

			authRoute.POST("login", lAuth.LocalLoginHandler)
			authRoute.POST("register", lAuth.LocalRegisterHandler)
		}

		needAuth := v1.Group("")
		{
			needAuth.Use(middleware.RequireAuth(s.DB))

			employerRoute := needAuth.Group("/employer")
			{
				employerRoute.GET(":id", employerCtrl.GetEmployerByID)
				employerRoute.Use(middleware.CheckRole(model.RoleEmployer))
				employerRoute.PATCH("profile", employerCtrl.EditProfile)
				employerRoute.GET("myprofile", employerCtrl.GetMyProfile)
			}

			jobPostingRoute := needAuth.Group("/jobposting")
			{
				jobPostingRoute.GET("/:id", jobPostingCtrl.GetPostingByID)
				jobPostingRoute.GET("", jobPostingCtrl.GetPostings)
				jobPostingRoute.Use(middleware.CheckRole(model.RoleEmployer))
				jobPostingRoute.POST("", jobPostingCtrl.CreateHandler)
				jobPostingRoute.PATCH(":id", jobPostingCtrl.EditHandler)
				jobPostingRoute.PATCH(":id/status", jobPostingCtrl.StatusHandler)
			}

			conversationRoute := needAuth.Group("/conversation")
			{
				conversationRoute.GET("me", conversationCtrl.InboxHandler)
				conversationRoute.GET(":id/message", conversationCtrl.MessagesHandler)
				conversationRoute.POST(":id/message", conversationCtrl.PostMessageHandler)
				conversationRoute.POST("direct", middleware.CheckRole(model.RoleEmployer), conversationCtrl.DirectHandler)
			}

			applicationRoute := needAuth.Group("/application")
			{
				applicationRoute.POST("", middleware.CheckRole(model.RoleEmployee), applicationCtrl.SubmitHandler)
				applicationRoute.GET("me", middleware.CheckRole(model.RoleEmployee), applicationCtrl.MyApplicationsHandler)
				applicationRoute.GET("posting/:id", middleware.CheckRole(model.RoleEmployer), applicationCtrl.PostingApplicationsHandler)
				applicationRoute.PATCH(":id/accept", middleware.CheckRole(model.RoleEmployer), applicationCtrl.AcceptHandler)
				applicationRoute.PATCH(":id/status", middleware.CheckRole(model.RoleEmployer), applicationCtrl.StatusHandler)
			}

			employeeRoute := needAuth.Group("/employee")
			{
				employeeRoute.Use(middleware.CheckRole(model.RoleEmployee, model.RoleEmployer))
				employeeRoute.PATCH("profile", employeeCtrl.EditProfile)
				employeeRoute.GET("myprofile", employeeCtrl.GetMyProfile)
			}

			needAdmin := needAuth.Group("/admin")
			{
				needAdmin.Use(middleware.CheckRole(model.RoleAdmin))
				needAdmin.GET("employers", adminCtrl.GetEmployers)
				needAdmin.PATCH("verify-employer/:id", adminCtrl.VerifyEmployer)
			}
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// HelloWorldHandler handles requests by returning the message "Hello World"
func (s *MyServer) HelloWorldHandler(c *gin.Context) {
	resp := make(map[string]string)
	resp["message"] = "Hello World"

	c.JSON(http.StatusOK, resp)
}

func (s *MyServer) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.DB.Health())
}
