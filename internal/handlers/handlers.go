package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"eduhub/api/internal/config"
	"eduhub/api/internal/gallery"
	"eduhub/api/internal/middleware"
	"eduhub/api/internal/models"
	"eduhub/api/internal/repository"
	"eduhub/api/internal/service"
	"eduhub/api/internal/storage"
)

type HandlerSet struct {
	log           zerolog.Logger
	cfg           *config.AppConfig
	db            *pgxpool.Pool
	cache         *redis.Client
	authService   *service.AuthService
	leadService   *service.LeadService
	dashboard     *service.DashboardService
	publicGallery *service.PublicGalleryService
	galleries     *gallery.Manager
	users         *repository.UserRepository
	sessions      *repository.SessionRepository
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	contactRepo := repository.NewContactRepository(db)
	visitRepo := repository.NewVisitRepository(db)

	galleries := gallery.NewManager(store, log, gallery.Config{
		PageSize:        cfg.Gallery.PageSize,
		ImageLimit:      cfg.Gallery.ImageLimit,
		EagerResolve:    cfg.Gallery.EagerResolve,
		ResolveAttempts: cfg.Gallery.ResolveAttempts,
		RetryDelay:      cfg.Gallery.RetryDelay,
	})

	return HandlerSet{
		log:           log,
		cfg:           cfg,
		db:            db,
		cache:         cache,
		authService:   service.NewAuthService(userRepo, sessionRepo, cfg, log),
		leadService:   service.NewLeadService(applicationRepo, contactRepo, visitRepo, log),
		dashboard:     service.NewDashboardService(applicationRepo, contactRepo, cache, log),
		publicGallery: service.NewPublicGalleryService(store, cache, log, cfg.Gallery.PageSize, cfg.Storage.PresignTTL),
		galleries:     galleries,
		users:         userRepo,
		sessions:      sessionRepo,
	}
}

func (h HandlerSet) AuthService() *service.AuthService {
	return h.authService
}

func (h HandlerSet) DashboardService() *service.DashboardService {
	return h.dashboard
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		leads := v1.Group("/leads")
		leads.POST("/applications", h.SubmitApplication)
		leads.POST("/contacts", h.SubmitContact)
		leads.POST("/campus-visits", h.SubmitCampusVisit)

		v1.GET("/gallery/:category", h.PublicGallery)

		auth := v1.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)

		protected := v1.Group("/auth")
		protected.Use(middleware.Auth(h.cfg, h.users, h.sessions))
		protected.GET("/me", h.Me)
		protected.GET("/sessions", h.ListSessions)
		protected.DELETE("/sessions/:deviceId", h.RevokeSession)

		admin := v1.Group("/admin")
		admin.Use(
			middleware.Auth(h.cfg, h.users, h.sessions),
			middleware.RequireRoles(models.UserRoleAdmin),
		)
		admin.GET("/dashboard/summary", h.DashboardSummary)

		admin.GET("/leads/applications", h.ListApplications)
		admin.PATCH("/leads/applications/:id/status", h.UpdateApplicationStatus)
		admin.GET("/leads/contacts", h.ListContacts)
		admin.PATCH("/leads/contacts/:id/status", h.UpdateContactStatus)
		admin.GET("/leads/campus-visits", h.ListCampusVisits)
		admin.PATCH("/leads/campus-visits/:id/status", h.UpdateCampusVisitStatus)

		admin.GET("/gallery/:category", h.GalleryState)
		admin.POST("/gallery/:category/reload", h.GalleryReload)
		admin.POST("/gallery/:category/load-more", h.GalleryLoadMore)
		admin.POST("/gallery/:category/images", h.GalleryUpload)
		admin.POST("/gallery/:category/resolve", h.GalleryResolve)
		admin.DELETE("/gallery/:category/images", h.GalleryDelete)
	}
}
