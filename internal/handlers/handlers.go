package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"buzztub/internal/config"
	"buzztub/internal/metrics"
	"buzztub/internal/middleware"
	"buzztub/internal/notice"
	"buzztub/internal/service"
)

type dbPinger interface {
	Ping(ctx context.Context) error
}

type bucketChecker interface {
	BucketExists(ctx context.Context) (bool, error)
}

type Deps struct {
	Log        zerolog.Logger
	Config     *config.AppConfig
	Auth       *service.AuthService
	Content    *service.ContentService
	Chat       *service.ChatService
	Community  *service.CommunityService
	Moderation *service.ModerationService
	Notices    *notice.Notices
	Guard      *middleware.Guard
	Metrics    *metrics.Metrics
	DB         dbPinger
	Cache      *redis.Client
	Store      bucketChecker
}

type HandlerSet struct {
	log        zerolog.Logger
	cfg        *config.AppConfig
	auth       *service.AuthService
	content    *service.ContentService
	chat       *service.ChatService
	community  *service.CommunityService
	moderation *service.ModerationService
	notices    *notice.Notices
	guard      *middleware.Guard
	metrics    *metrics.Metrics
	db         dbPinger
	cache      *redis.Client
	store      bucketChecker
}

func NewHandlerSet(deps Deps) HandlerSet {
	return HandlerSet{
		log:        deps.Log,
		cfg:        deps.Config,
		auth:       deps.Auth,
		content:    deps.Content,
		chat:       deps.Chat,
		community:  deps.Community,
		moderation: deps.Moderation,
		notices:    deps.Notices,
		guard:      deps.Guard,
		metrics:    deps.Metrics,
		db:         deps.DB,
		cache:      deps.Cache,
		store:      deps.Store,
	}
}

func (h HandlerSet) Register(router gin.IRouter) {
	router.GET("/healthz", h.Health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	credentials := router.Group("/")
	credentials.Use(middleware.RateLimit(h.cfg.RateLimit, h.metrics))
	credentials.GET("/signup", h.SignupPage)
	credentials.POST("/signup", h.Signup)
	credentials.GET("/login", h.LoginPage)
	credentials.POST("/login", h.Login)
	router.GET("/logout", h.Logout)

	router.GET("/", h.guard.RequireSession(), h.Home)

	member := router.Group("/")
	member.Use(h.guard.RequireSession(), h.guard.RequireActive())
	{
		member.GET("/video/:id", h.VideoPage)
		member.POST("/upload", h.Upload)
		member.POST("/like/:id", h.Like)
		member.POST("/comment/:id", h.Comment)
		member.POST("/follow/:username", h.Follow)
		member.GET("/leaderboard", h.Leaderboard)
		member.GET("/publichat", h.ChatPage)
		member.POST("/publichat", h.PostChat)
		member.GET("/profile", h.OwnProfile)
		member.GET("/user/:username", h.UserProfile)
		member.GET("/settings", h.SettingsPage)
		member.POST("/settings", h.UpdateSettings)
		member.POST("/report/:username", h.ReportUser)
		member.GET("/premium", h.PremiumPage)
		member.POST("/premium/request", h.RequestPremium)
	}

	admin := router.Group("/admin")
	admin.Use(h.guard.RequireSession(), h.guard.RequireActive(), h.guard.RequireAdmin())
	{
		admin.GET("", h.AdminDashboard)
		admin.POST("/delete_video/:id", h.AdminDeleteVideo)
		admin.POST("/delete_comment/:id", h.AdminDeleteComment)
		admin.POST("/delete_message/:id", h.AdminDeleteMessage)
		admin.POST("/grant_premium/:id", h.AdminGrantPremium)
		admin.POST("/reject_premium/:id", h.AdminRejectPremium)
		admin.POST("/kick_user/:id", h.AdminKickUser)
		admin.POST("/mark_report_reviewed/:id", h.AdminMarkReportReviewed)
	}
}
