package api

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/workplace-booking/internal/auth"
	"github.com/nekogravitycat/workplace-booking/internal/booking"
	bookingHttp "github.com/nekogravitycat/workplace-booking/internal/booking/http"
	"github.com/nekogravitycat/workplace-booking/internal/user"
	userHttp "github.com/nekogravitycat/workplace-booking/internal/user/http"
	"github.com/nekogravitycat/workplace-booking/internal/workplace"
	workplaceHttp "github.com/nekogravitycat/workplace-booking/internal/workplace/http"
)

// Config holds the services the router wires into handlers.
type Config struct {
	IsProduction     bool
	ProdOrigins      string
	UserService      user.Service
	WorkplaceService workplace.Service
	BookingService   booking.Service
	JWTManager       *auth.JWTManager
}

// NewRouter assembles middleware and registers every module's routes under /api.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins(cfg)
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	authMiddleware := auth.AuthRequired(cfg.JWTManager)

	userHandler := userHttp.NewUserHandler(cfg.UserService, cfg.JWTManager)
	workplaceHandler := workplaceHttp.NewHandler(cfg.WorkplaceService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		userHttp.RegisterRoutes(apiGroup, userHandler, authMiddleware)
		workplaceHttp.RegisterRoutes(apiGroup, workplaceHandler)
		bookingHttp.RegisterRoutes(apiGroup, bookingHandler, authMiddleware)
	}

	return r
}

func allowedOrigins(cfg Config) []string {
	if cfg.IsProduction {
		var origins []string
		for _, o := range strings.Split(cfg.ProdOrigins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			return origins
		}
	}
	return []string{
		"http://localhost:3000",
		"http://localhost:8081",
	}
}
