package main

import (
	"context"
	"fmt"
	"log"

	"go-merchant/internal/api"
	common_api "go-merchant/internal/common/api"
	"go-merchant/internal/config"
	"go-merchant/internal/controllers"
	"go-merchant/internal/database"
	"go-merchant/internal/logger"
	"go-merchant/internal/middleware"
	"go-merchant/internal/repository"
	"go-merchant/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),    // Cast to Interface
		fx.ResultTags(`group:"routes"`), // Add to Group
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d route modules\n", len(routes))
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

func NewStatusStore(cfg *config.Config) *service.SyncStatusStore {
	return service.NewSyncStatusStore(cfg.SyncHistoryLimit)
}

// @title           Merchant Cross-App Sync API
// @version         1.0
// @description     Merchant-side backend that keeps the customer app's data store in sync and relays business events to it.

// @host            localhost:8080
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Databases
			database.NewDatabase,
			database.NewCustomerAppDatabase,

			// Initialize Repositories
			repository.NewProductRepository,
			repository.NewOrderRepository,
			repository.NewCashbackRepository,
			repository.NewMerchantRepository,
			repository.NewWebhookRepository,
			repository.NewSyncRunRepository,
			repository.NewDestinationStore,

			// Initialize Services
			NewStatusStore,
			service.NewUpdateQueue,
			service.NewTransformEngine,
			service.NewProductSyncer,
			service.NewOrderSyncer,
			service.NewCashbackSyncer,
			service.NewMerchantSyncer,
			service.NewSyncService,
			service.NewCrossAppSyncService,

			// Interface Adapters to satisfy Fx
			func(c *controllers.WebSocketController) service.Notifier { return c },

			// Initialize Controllers
			controllers.NewSyncController,
			controllers.NewCrossAppController,
			controllers.NewWebSocketController,

			// Initialize API Routes
			AsRoute(api.NewSyncApi),
			AsRoute(api.NewCrossAppApi),
			AsRoute(api.NewWebSocketApi),
			AsRoute(api.NewHealthApi),
			AsRoute(api.NewSwaggerApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(lc fx.Lifecycle, syncService service.SyncService) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return syncService.StartScheduler(ctx)
					},
					OnStop: func(ctx context.Context) error {
						return syncService.StopScheduler()
					},
				})
			},
			func(lc fx.Lifecycle, crossApp service.CrossAppSyncService) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return crossApp.Start(ctx)
					},
					OnStop: func(ctx context.Context) error {
						return crossApp.Stop()
					},
				})
			},
		),
	)

	app.Run()
}
