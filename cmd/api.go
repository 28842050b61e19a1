package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"example.com/foodbridge/services/donation/config"
	"example.com/foodbridge/services/donation/internal/api"
	"example.com/foodbridge/services/donation/internal/cache"
	"example.com/foodbridge/services/donation/internal/database"
	"example.com/foodbridge/services/donation/internal/messaging"
	"example.com/foodbridge/services/donation/internal/metrics"
	"example.com/foodbridge/services/donation/internal/repository"
	"example.com/foodbridge/services/donation/internal/search"
	"example.com/foodbridge/services/donation/internal/service"
	"example.com/foodbridge/services/donation/internal/tracing"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long:  `Start the HTTP API server for the donation lifecycle`,
	RunE:  runAPI,
}

func runAPI(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}

	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	db, err := database.Connect(cfg.DB)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
		redisCache = nil
	}

	tracer, err := tracing.NewTracer(cfg.Tracing)
	if err != nil {
		return err
	}

	elasticClient, err := search.NewElasticClient(cfg.Elastic)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, continuing without search")
		elasticClient = nil
	}

	var bus messaging.ServiceBusClient
	bus, err = messaging.NewServiceBusClient(cfg.Azure)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Service Bus client, notifications disabled")
		bus = nil
	} else {
		defer func() {
			if err := bus.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing Service Bus client")
			}
		}()
	}

	metricsCollector := metrics.NewMetrics()

	donationService := service.NewDonationService(
		repository.NewDonationRepository(db),
		repository.NewOrderRepository(db),
		redisCache,
		elasticClient,
		bus,
		metricsCollector,
		tracer,
	)
	userService := service.NewUserService(repository.NewUserRepository(db), redisCache)

	server := api.NewServer(cfg, donationService, userService, metricsCollector, tracer)

	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("Server error")
		}
	}()

	<-ctx.Done()

	if err := server.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Shutting down API server")
	return nil
}
