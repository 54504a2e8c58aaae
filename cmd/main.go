package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	bleveControllers "solar-proposal-backend/bleve/controllers"
	bleveRepositories "solar-proposal-backend/bleve/repositories"
	bleveRoutes "solar-proposal-backend/bleve/routes"
	bleveServices "solar-proposal-backend/bleve/services"
	"solar-proposal-backend/config"
	"solar-proposal-backend/internal/bootstrap"
	"solar-proposal-backend/internal/layout"
	"solar-proposal-backend/internal/metrics"
	"solar-proposal-backend/middleware"
	proposal_controllers "solar-proposal-backend/proposals/controllers"
	proposal_repositories "solar-proposal-backend/proposals/repositories"
	proposal_routes "solar-proposal-backend/proposals/routes"
	proposal_services "solar-proposal-backend/proposals/services"
	"solar-proposal-backend/token"
	user_controllers "solar-proposal-backend/users/controllers"
	users_repositories "solar-proposal-backend/users/repositories"
	user_routes "solar-proposal-backend/users/routes"
	"solar-proposal-backend/utils"
	"solar-proposal-backend/utils/dates"
	"solar-proposal-backend/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func loadVariants() map[string]layout.Variant {
	path := config.GetEnv("PROPOSAL_VARIANTS_FILE")
	if path == "" {
		return layout.BuiltinVariants()
	}
	variants, err := layout.LoadVariantsFile(path)
	if err != nil {
		config.Logger.Fatal("Failed to load proposal variants", zap.String("path", path), zap.Error(err))
	}
	config.Logger.Info("Proposal variants loaded", zap.String("path", path), zap.Strings("variants", layout.VariantNames(variants)))
	return variants
}

func main() {
	// Load environment variables
	config.LoadEnv(".env")

	// Initialize Zap logger
	config.InitLogger()
	defer config.Logger.Sync()

	if err := dates.InitializeDateLocation(); err != nil {
		config.Logger.Fatal("Failed to initialize date location", zap.Error(err))
	}

	metrics.Init(nil)

	app := fiber.New(fiber.Config{
		AppName:      "solar-proposal-backend",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
	})

	// Apply CORS middleware from middleware package
	middleware.InitCors(app)

	db, err := config.ConfigureDatabase()
	if err != nil {
		config.Logger.Fatal("Failed to configure database", zap.Error(err))
	}
	if err := config.SeedInitialUser(db); err != nil {
		config.Logger.Error("Initial user seeding failed", zap.Error(err))
	}

	port := config.GetEnvDefault("PORT", "8080")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := config.InitRedisServer(ctx)
	if err != nil {
		config.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	asynqClient := asynq.NewClient(config.AsynqRedisOpt())
	defer asynqClient.Close()

	tokenMaker, err := token.NewPasetoMaker(config.GetEnv("TOKEN_SYMMETRIC_KEY"))
	if err != nil {
		config.Logger.Fatal("Cannot create token maker", zap.Error(err))
	}

	indexPath := config.GetEnv("BLEVE_INDEX_PATH")
	if indexPath == "" {
		indexPath = "./bleve_data"
		config.Logger.Warn("BLEVE_INDEX_PATH not set, using default: ./bleve_data")
	}

	// ------ WebSocket Hub for proposal events ------
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Repositories
	bleveIndexingService := bleveServices.NewIndexingService(config.Logger, indexPath)
	defer bleveIndexingService.Close()
	bleveServiceRepo, bleveInterfaceRepo := bleveRepositories.NewBleveRepository(bleveIndexingService)
	userRepo := users_repositories.NewUserRepository(db)
	proposalRepo := proposal_repositories.NewProposalRepository(db)

	// Services
	documentService, err := proposal_services.NewDocumentService(proposal_services.DocumentOptions{
		Variants:       loadVariants(),
		DefaultVariant: config.GetEnvDefault("PROPOSAL_VARIANT", layout.DefaultVariant),
		LogoPath:       config.GetEnv("PROPOSAL_LOGO_PATH"),
		Cache:          redisClient,
	})
	if err != nil {
		config.Logger.Fatal("Failed to create document service", zap.Error(err))
	}
	// Variants or the logo may have changed since the last deploy.
	documentService.InvalidateAll()

	archive := utils.NewLocalFileStorage(config.GetEnvDefault("ARCHIVE_DIR", "./archive"))
	mailer := utils.InitializeMailer()

	if err := bootstrap.IndexBleveData(ctx, proposalRepo, bleveInterfaceRepo); err != nil {
		config.Logger.Error("Search index rebuild failed", zap.Error(err))
	}

	// Routes
	appCtx := &middleware.AppContext{
		PasetoMaker: tokenMaker,
		Sessions:    token.NewRedisSessionStore(redisClient),
		Ctx:         ctx,
	}
	protected := middleware.ProtectedRoute(appCtx)
	loginLimiter := middleware.NewIPRateLimiter(config.GetEnvInt("LOGIN_RATE_PER_MINUTE", 10))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")
	user_routes.InitRoutes(api, user_controllers.NewAuthController(userRepo, appCtx), protected, loginLimiter.Handler())
	proposal_routes.ProposalRouterInit(api, &proposal_controllers.ProposalController{
		Repo:   proposalRepo,
		Docs:   documentService,
		Search: bleveInterfaceRepo,
		Events: wsHub,
		Queue:  asynqClient,
	}, protected)
	bleveRoutes.InitBleveRoutes(api, bleveControllers.NewSearchController(bleveServiceRepo), protected)

	wsHandler := websocket.NewWsHandler(wsHub, tokenMaker)
	api.Get("/ws/proposals", wsHandler.HandleWebSocket)
	config.Logger.Info("WebSocket endpoint registered at /api/v1/ws/proposals")

	// ------ Background worker ------
	worker := proposal_services.NewEmailWorker(proposalRepo, documentService, archive, mailer, dates.Location)
	mux := asynq.NewServeMux()
	worker.Register(mux)
	asynqServer := asynq.NewServer(config.AsynqRedisOpt(), asynq.Config{
		Concurrency: config.GetEnvInt("WORKER_CONCURRENCY", 4),
		Queues:      map[string]int{"default": 1},
	})
	if err := asynqServer.Start(mux); err != nil {
		config.Logger.Fatal("Failed to start task worker", zap.Error(err))
	}

	// Background cleanup tasks
	retention := time.Duration(config.GetEnvInt("ARCHIVE_RETENTION_DAYS", 30)) * 24 * time.Hour
	scheduler, err := utils.RunScheduledCleanup(archive, retention, dates.Location)
	if err != nil {
		config.Logger.Fatal("Failed to schedule archive cleanup", zap.Error(err))
	}

	go func() {
		<-ctx.Done()
		config.Logger.Info("Shutting down")
		<-scheduler.Stop().Done()
		asynqServer.Shutdown()
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			config.Logger.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	config.Logger.Info("Server starting", zap.String("port", port))
	if err := app.Listen(":" + port); err != nil {
		config.Logger.Fatal("Server failed", zap.String("port", port), zap.Error(err))
	}
}
