package provider

import (
	"github.com/fundlink-next/internal/authz"
	"github.com/fundlink-next/internal/cache"
	"github.com/fundlink-next/internal/config"
	"github.com/fundlink-next/internal/logger"
	"github.com/fundlink-next/internal/models"
	"github.com/fundlink-next/internal/queue"
	"github.com/fundlink-next/internal/repository"
	"github.com/fundlink-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	PrincipalRepo  repository.PrincipalRepository
	LeadRepo       repository.LeadRepository
	PayoutRepo     repository.PayoutRepository
	CommissionRepo repository.CommissionRepository
	ContactRepo    repository.ContactMessageRepository
	DashboardRepo  repository.DashboardRepository

	// Services
	AuthzService      *authz.Service
	AuthService       *service.AuthService
	PrincipalService  *service.PrincipalService
	LeadService       *service.LeadService
	PayoutService     *service.PayoutService
	DashboardService  *service.DashboardService
	ContactService    *service.ContactService
	EmailService      *service.EmailService
	CaptchaService    *service.CaptchaService
	MarketDataService *service.MarketDataService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.PrincipalRepo = repository.NewPrincipalRepository(db)
	c.LeadRepo = repository.NewLeadRepository(db)
	c.PayoutRepo = repository.NewPayoutRepository(db)
	c.CommissionRepo = repository.NewCommissionRepository(db)
	c.ContactRepo = repository.NewContactMessageRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.PrincipalRepo)
	c.PrincipalService = service.NewPrincipalService(c.Config, c.PrincipalRepo, c.QueueClient)
	c.PayoutService = service.NewPayoutService(c.Config, c.PayoutRepo, c.CommissionRepo, c.PrincipalRepo)
	c.LeadService = service.NewLeadService(c.Config, c.LeadRepo, c.PrincipalRepo, c.PayoutService, c.QueueClient)
	c.DashboardService = service.NewDashboardService(c.Config, c.DashboardRepo, c.LeadRepo, c.CommissionRepo)
	c.ContactService = service.NewContactService(c.ContactRepo)
	c.MarketDataService = service.NewMarketDataService(c.Config.MarketData)
}
