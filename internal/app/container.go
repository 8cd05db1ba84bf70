package app

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nekogravitycat/workplace-booking/internal/api"
	"github.com/nekogravitycat/workplace-booking/internal/auth"
	"github.com/nekogravitycat/workplace-booking/internal/booking"
	"github.com/nekogravitycat/workplace-booking/internal/cache"
	"github.com/nekogravitycat/workplace-booking/internal/events"
	"github.com/nekogravitycat/workplace-booking/internal/user"
	"github.com/nekogravitycat/workplace-booking/internal/workplace"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	DBPool            *pgxpool.Pool
	JWTSecret         string
	JWTTTL            time.Duration
	BcryptCost        int
	Cache             cache.Cache
	WorkplaceCacheTTL time.Duration
	Publisher         events.Publisher
	Logger            *slog.Logger
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router           *gin.Engine
	JWTManager       *auth.JWTManager
	UserService      user.Service
	WorkplaceService workplace.Service
	BookingService   booking.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	if cfg.Cache == nil {
		cfg.Cache = cache.Noop{}
	}
	if cfg.Publisher == nil {
		cfg.Publisher = events.Noop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher, cfg.Logger)

	// Workplace Module
	wpRepo := workplace.NewPgxRepository(cfg.DBPool)
	wpService := workplace.NewService(wpRepo, cfg.Cache, cfg.WorkplaceCacheTTL, cfg.Logger)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, wpService, cfg.Publisher, cfg.Logger)

	router := api.NewRouter(api.Config{
		IsProduction:     cfg.IsProduction,
		ProdOrigins:      cfg.ProdOrigins,
		UserService:      userService,
		WorkplaceService: wpService,
		BookingService:   bookingService,
		JWTManager:       jwtManager,
	})

	return &Container{
		Router:           router,
		JWTManager:       jwtManager,
		UserService:      userService,
		WorkplaceService: wpService,
		BookingService:   bookingService,
	}
}
