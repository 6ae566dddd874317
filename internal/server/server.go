package server

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"anoa.com/storybloom/internal/agent"
	"anoa.com/storybloom/internal/agent/agents"
	"anoa.com/storybloom/internal/agent/providers"
	"anoa.com/storybloom/internal/config"
	"anoa.com/storybloom/internal/middleware"
	"anoa.com/storybloom/pkg/logger"
	"anoa.com/storybloom/pkg/ratelimiter"

	achievementHttp "anoa.com/storybloom/internal/modules/achievement/delivery/http"

	leaderboardHttp "anoa.com/storybloom/internal/modules/leaderboard/delivery/http"
	leaderboardService "anoa.com/storybloom/internal/modules/leaderboard/service"

	learningPathHttp "anoa.com/storybloom/internal/modules/learningpath/delivery/http"
	learningPathRepo "anoa.com/storybloom/internal/modules/learningpath/repository"
	learningPathService "anoa.com/storybloom/internal/modules/learningpath/service"

	notiHttp "anoa.com/storybloom/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/storybloom/internal/modules/notification/repository"
	notifService "anoa.com/storybloom/internal/modules/notification/service"

	profileHttp "anoa.com/storybloom/internal/modules/profile/delivery/http"
	profileRepo "anoa.com/storybloom/internal/modules/profile/repository"
	profileService "anoa.com/storybloom/internal/modules/profile/service"

	progressionHttp "anoa.com/storybloom/internal/modules/progression/delivery/http"
	progressionRepo "anoa.com/storybloom/internal/modules/progression/repository"
	progressionService "anoa.com/storybloom/internal/modules/progression/service"

	streakHttp "anoa.com/storybloom/internal/modules/streak/delivery/http"
	streakService "anoa.com/storybloom/internal/modules/streak/service"

	userHttp "anoa.com/storybloom/internal/modules/user/delivery/http"
	userRepo "anoa.com/storybloom/internal/modules/user/repository"
	userService "anoa.com/storybloom/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine    *gin.Engine
	db        *gorm.DB
	scheduler *agent.Scheduler
	log       *logger.Logger
}

// NewServer wires every module. redisClient and llm may be nil: rate limiting,
// caching and live notifications are then disabled and learning paths come
// from the built-in template.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, llm providers.LLMProvider, log *logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Nop()
	}

	// Keep the interface nil when redis is absent so services can test for it.
	var rdb redis.Cmdable
	if redisClient != nil {
		rdb = redisClient
	}

	userRepository := userRepo.NewUserRepository(db)
	authSvc := userService.NewAuthService(userRepository, cfg.JWTSecret, cfg.JWTTTL, log)
	authHandler := userHttp.NewAuthHandler(authSvc)

	// Notification Module
	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, rdb, log)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient, originAllowed(cfg.AllowedOrigins), log)

	progressionRepository := progressionRepo.NewRepository(db)
	progressionSvc := progressionService.NewService(progressionRepository, notificationSvc, log, progressionService.Options{})

	leaderboardSvc := leaderboardService.NewLeaderboardService(progressionRepository, rdb, progressionSvc.Thresholds(), log)
	leaderboardHandler := leaderboardHttp.NewLeaderboardHandler(leaderboardSvc)

	profileRepository := profileRepo.NewRepository(db)
	profileSvc := profileService.NewProfileService(profileRepository, userRepository, leaderboardSvc, log)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)

	progressionHandler := progressionHttp.NewProgressionHandler(progressionSvc, profileSvc)
	achievementHandler := achievementHttp.NewAchievementHandler(progressionSvc, profileSvc, profileRepository)

	streakSvc := streakService.NewService(profileRepository, progressionSvc, notificationSvc, log)
	streakHandler := streakHttp.NewStreakHandler(streakSvc, profileSvc)

	var generator learningPathService.Generator = learningPathService.TemplateGenerator{}
	if llm != nil {
		generator = learningPathService.NewLLMGenerator(llm, nil, log)
	}
	learningPathSvc := learningPathService.NewService(
		learningPathRepo.NewRepository(db),
		profileRepository,
		generator,
		progressionSvc,
		notificationSvc,
		log,
	)
	learningPathHandler := learningPathHttp.NewLearningPathHandler(learningPathSvc, profileSvc)

	// Background agents
	scheduler := agent.NewScheduler(log)
	streakAgent := agents.NewStreakResetAgent(streakSvc, rdb, agents.StreakResetConfig{Schedule: cfg.StreakCron}, log)
	if err := scheduler.RegisterAgent(streakAgent); err != nil {
		return nil, err
	}

	limiter := ratelimiter.New(rdb, cfg.RateLimitMax, cfg.RateLimitWindow)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/api/notifications/ws"},
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(userRepository, cfg.JWTSecret)

	api := router.Group("/api")
	api.Use(middleware.RateLimit(limiter, ratelimiter.ScopeGlobal, log))

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.GET("/agents", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"data": scheduler.GetRegisteredAgents()})
			})
			adminGroup.POST("/agents/:name/run", runAgent(scheduler))
		}

		// Child profiles
		protected.POST("/profiles", profileHandler.CreateProfile)
		protected.GET("/profiles", profileHandler.ListProfiles)
		protected.GET("/profiles/:profile_id", profileHandler.GetProfile)

		// Progression routes
		protected.POST("/gamification/award",
			middleware.RateLimit(limiter, ratelimiter.ScopeAward, log),
			progressionHandler.AwardPoints)
		protected.GET("/gamification/history/:profile_id", progressionHandler.GetHistory)
		protected.GET("/gamification/points-table", progressionHandler.GetPointsTable)

		// Achievement routes
		protected.POST("/achievements/check", achievementHandler.CheckAchievements)
		protected.GET("/achievements/:profile_id", achievementHandler.ListAchievements)

		// Learning path routes
		protected.POST("/learning-paths",
			middleware.RateLimit(limiter, ratelimiter.ScopePathCreate, log),
			learningPathHandler.CreatePath)
		protected.GET("/learning-paths", learningPathHandler.ListPaths)
		protected.GET("/learning-paths/:path_id", learningPathHandler.GetPath)
		protected.POST("/learning-paths/advance", learningPathHandler.Advance)

		// Streak routes
		protected.POST("/streaks/check-in",
			middleware.RateLimit(limiter, ratelimiter.ScopeCheckIn, log),
			streakHandler.CheckIn)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		protected.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
	}

	return &Server{
		engine:    router,
		db:        db,
		scheduler: scheduler,
		log:       log,
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the scheduler and serves on addr until ctx is cancelled, then
// drains in-flight requests and running agent jobs.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.scheduler.Stop(context.Background())
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	s.scheduler.Stop(shutdownCtx)
	return srv.Shutdown(shutdownCtx)
}

func runAgent(scheduler *agent.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		if !slices.Contains(scheduler.GetRegisteredAgents(), name) {
			c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
			return
		}
		if err := scheduler.RunAgentByName(c.Request.Context(), name); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "agent executed", "agent": name})
	}
}

func parseOrigins(allowedOrigins string) []string {
	var origins []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return origins
}

func originAllowed(allowedOrigins string) func(string) bool {
	origins := parseOrigins(allowedOrigins)
	return func(origin string) bool {
		return slices.Contains(origins, origin)
	}
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     parseOrigins(allowedOrigins),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
