package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"example.com/foodbridge/services/donation/config"
	"example.com/foodbridge/services/donation/internal/cache"
	"example.com/foodbridge/services/donation/internal/database"
	"example.com/foodbridge/services/donation/internal/mailer"
	"example.com/foodbridge/services/donation/internal/messaging"
	"example.com/foodbridge/services/donation/internal/repository"
	"example.com/foodbridge/services/donation/internal/service"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the background worker",
	Long:  `Start the background worker that delivers notification emails and keeps the listing cache warm`,
	RunE:  runWorker,
}

func runWorker(cmd *cobra.Command, args []string) error {
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

	g, ctx := errgroup.WithContext(ctx)

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

	smtpMailer, err := mailer.NewSMTPMailer(cfg.SMTP)
	if err != nil {
		return err
	}

	bus, err := messaging.NewServiceBusClient(cfg.Azure)
	if err != nil {
		return err
	}
	defer func() {
		if err := bus.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing Service Bus client")
		}
	}()

	donationService := service.NewDonationService(
		repository.NewDonationRepository(db),
		repository.NewOrderRepository(db),
		redisCache,
		nil,
		nil,
		nil,
		nil,
	)

	// Deliver queued notification emails
	processor := messaging.NewProcessor(smtpMailer)
	g.Go(func() error {
		log.Info().Str("queue", cfg.Azure.QueueName).Msg("Starting notification processor")
		return bus.ProcessMessages(ctx, processor.ProcessMessage)
	})

	// Keep the available-donations cache warm so dashboard loads rarely
	// hit the database cold
	g.Go(func() error {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return err
		}

		_, err = scheduler.NewJob(
			gocron.DurationJob(30*time.Second),
			gocron.NewTask(func() {
				if err := donationService.WarmAvailableCache(ctx); err != nil {
					log.Error().Err(err).Msg("Failed to refresh available-donations cache")
				}
			}),
		)
		if err != nil {
			return err
		}

		scheduler.Start()

		<-ctx.Done()

		return scheduler.Shutdown()
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}

	log.Info().Msg("Shutting down worker")
	return nil
}
