package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"onebooking-backend/controllers"
	"onebooking-backend/middleware"
	"onebooking-backend/models"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SetupRouter wires controller instances into the route tree. The sync
// endpoint authenticates with the source API key inside its handler;
// everything else under /api requires a staff session.
func SetupRouter(
	syncC *controllers.SyncController,
	bookingC *controllers.BookingController,
	websiteC *controllers.WebsiteController,
	syncLogC *controllers.SyncLogController,
	authC *controllers.AuthController,
	adminC *controllers.AdminController,
) *gin.Engine {
	r := gin.Default()

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(middleware.Logger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-API-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// Source-facing: API-key auth in the handler, no staff session.
		api.POST("/bookings/sync", syncC.HandleSync)

		auth := api.Group("/auth")
		{
			auth.POST("/login", authC.Login)
		}

		staff := api.Group("")
		staff.Use(middleware.RequireAuth())
		{
			bookings := staff.Group("/bookings")
			{
				bookings.GET("", bookingC.GetBookings)
				bookings.GET("/:id", bookingC.GetBooking)
				bookings.PUT("/:id", bookingC.UpdateBooking)
				bookings.PATCH("/:id/pickup-time", bookingC.SetPickupTime)
				bookings.POST("/:id/sync-to-source", bookingC.SyncToSource)
			}

			staff.GET("/dashboard/stats", bookingC.GetStats)
			staff.GET("/sync-logs", syncLogC.GetSyncLogs)

			websites := staff.Group("/websites")
			{
				websites.GET("", websiteC.GetWebsites)
				websites.GET("/:id", websiteC.GetWebsite)
				websites.POST("", middleware.RequireRole(models.RoleSuperadmin, models.RoleAdmin), websiteC.CreateWebsite)
				websites.PUT("/:id", middleware.RequireRole(models.RoleSuperadmin, models.RoleAdmin), websiteC.UpdateWebsite)
				websites.POST("/:id/regenerate-key", middleware.RequireRole(models.RoleSuperadmin, models.RoleAdmin), websiteC.RegenerateKey)
			}

			admin := staff.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleSuperadmin))
			{
				admin.POST("/test-webhook", adminC.TestWebhook)
			}
		}
	}

	return r
}
