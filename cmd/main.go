package main

import (
	"apiflow"
	"apiflow/internal/api/handler/endpoints"
	"apiflow/internal/api/models"
	"apiflow/internal/api/service"
	"apiflow/internal/engine"
	"apiflow/internal/plan"
	"apiflow/internal/progress"
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
)

func main() {
	apiflow.InitConfig(".env")
	gin.SetMode(gin.ReleaseMode)
	cfg := apiflow.GetConfig()

	if cfg.Mode == "dev" {
		if err := apiflow.DB.AutoMigrate(
			&models.TestCase{},
			&models.Environment{},
		); err != nil {
			apiflow.Logger.Fatal().Err(err).Msg("Failed to migrate database")
		}
		apiflow.Logger.Info().Msg("Database migrated successfully")
		gin.SetMode(gin.DebugMode)
	}

	format, err := plan.ParseFormat(cfg.Engine.PlanFormat)
	if err != nil {
		apiflow.Logger.Fatal().Err(err).Msg("Invalid plan format")
	}
	runner, err := engine.NewRunner(engine.Config{
		Binary:  cfg.Engine.Binary,
		WorkDir: cfg.Engine.WorkDir,
		Timeout: cfg.Engine.Timeout,
		Format:  format,
	}, apiflow.Logger)
	if err != nil {
		apiflow.Logger.Fatal().Err(err).Msg("Failed to initialize engine runner")
	}

	reporter := progress.NewReporter(cfg.Progress.NatsURL, cfg.Progress.TenantID, apiflow.Logger)
	defer reporter.Close()

	janitor := service.NewCleanupService(runner)
	janitor.Start()
	defer janitor.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	router, err := graceful.Default(graceful.WithAddr(cfg.ApiPort))
	if err != nil {
		panic(err)
	}
	defer stop()
	defer router.Close()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	endpoints.ExecutionHandler(router, service.NewExecutionService(runner, reporter))

	apiflow.Logger.Debug().Msgf("Starting execution API on port %s", cfg.ApiPort)
	if err = router.RunWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		apiflow.Logger.Fatal().Msg(err.Error())
		panic(err)
	}
}
