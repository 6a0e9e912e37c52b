package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"visitly/internal/availability"
	bookinghandler "visitly/internal/bookings/handler"
	bookingrepo "visitly/internal/bookings/repository"
	bookingservice "visitly/internal/bookings/service"
	bookingvalidator "visitly/internal/bookings/validator"
	"visitly/internal/bookings/events"
	calendarhandler "visitly/internal/calendar/handler"
	calendarrepo "visitly/internal/calendar/repository"
	calendarservice "visitly/internal/calendar/service"
	calendarvalidator "visitly/internal/calendar/validator"
	cataloghandler "visitly/internal/catalog/handler"
	catalogrepo "visitly/internal/catalog/repository"
	catalogservice "visitly/internal/catalog/service"
	catalogvalidator "visitly/internal/catalog/validator"
	mongoMigration "visitly/internal/migrations/mongo"
	staffhandler "visitly/internal/staff/handler"
	staffrepo "visitly/internal/staff/repository"
	staffservice "visitly/internal/staff/service"
	staffvalidator "visitly/internal/staff/validator"
	tenanthandler "visitly/internal/tenants/handler"
	tenantrepo "visitly/internal/tenants/repository"
	tenantservice "visitly/internal/tenants/service"
	"visitly/pkg/app"
	"visitly/pkg/config"
	"visitly/pkg/kafka"
	kafka_config "visitly/pkg/kafka/config"
	kafka_middleware "visitly/pkg/kafka/middleware"

	"github.com/spf13/cobra"
)

const (
	ServiceName      = "scheduler"
	MigrationJobName = "mongo-migration"
	migrationTimeout = 120 * time.Second
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Multi-tenant appointment booking and staff scheduling service",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tenantCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create collections, validators and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), migrationTimeout)
			defer cancel()

			cfg := config.Load(MigrationJobName)
			cfg.SetMongo()
			defer cfg.GracefulShutdown()

			if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Println("Migration completed successfully.")
			return nil
		},
	}
}

func tenantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			subdomain, _ := cmd.Flags().GetString("subdomain")
			name, _ := cmd.Flags().GetString("name")
			if subdomain == "" || name == "" {
				return fmt.Errorf("--subdomain and --name are required")
			}

			cfg := config.Load(ServiceName)
			cfg.SetMongo()
			defer cfg.GracefulShutdown()

			tenant, err := tenantservice.Register(cmd.Context(), tenantrepo.NewMongoTenantRepository(cfg), cfg.Log, subdomain, name)
			if err != nil {
				return err
			}
			fmt.Printf("Tenant created: id=%s subdomain=%s\n", tenant.ID, tenant.Subdomain)
			return nil
		},
	}
	createCmd.Flags().String("subdomain", "", "Tenant subdomain used in request paths")
	createCmd.Flags().String("name", "", "Display name of the business")

	cmd.AddCommand(createCmd)
	return cmd
}

func runServer() error {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.Log.Info("Starting scheduler service")

	serverApp := app.NewApplication(cfg)

	publisher, err := initPublisher(cfg, serverApp)
	if err != nil {
		cfg.GracefulShutdown()
		return err
	}

	resolver := tenantservice.NewResolver(tenantrepo.NewMongoTenantRepository(cfg), cfg.Log)
	scope := tenanthandler.NewScope(resolver, cfg.Log)

	catalog := catalogservice.NewCatalogService(
		catalogrepo.NewMongoServiceRepository(cfg),
		catalogrepo.NewMongoCustomerRepository(cfg),
		catalogvalidator.NewCatalogValidator(cfg.Log),
		cfg,
	)

	calendar := calendarservice.NewCalendarService(
		calendarrepo.NewMongoBusinessHoursRepository(cfg),
		calendarrepo.NewMongoBlockedDateRepository(cfg),
		calendarvalidator.NewCalendarValidator(cfg.Log),
		cfg,
	)

	staffRepo := staffrepo.NewMongoStaffRepository(cfg)
	scheduleRepo := staffrepo.NewMongoScheduleRepository(cfg)
	capabilityRepo := staffrepo.NewMongoCapabilityRepository(cfg)
	staff := staffservice.NewStaffService(
		staffRepo,
		scheduleRepo,
		capabilityRepo,
		catalog,
		staffvalidator.NewStaffValidator(cfg.Log),
		cfg,
	)

	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	resolverEngine := availability.NewResolver(
		catalog,
		staffRepo,
		scheduleRepo,
		capabilityRepo,
		calendar,
		bookingRepo,
		cfg,
	)

	scheduler := bookingservice.NewBookingScheduler(
		bookingRepo,
		bookingrepo.NewMongoStaffLockRepository(cfg),
		bookingrepo.NewMongoCalendarVersionRepository(cfg),
		catalog,
		calendar,
		resolverEngine,
		publisher,
		bookingvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)
	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	serverApp.SetApp(
		cataloghandler.NewCatalogHandler(catalog, scope, cfg.Log),
		calendarhandler.NewCalendarHandler(calendar, scope, cfg.Log),
		staffhandler.NewStaffHandler(staff, scope, cfg.Log),
		bookinghandler.NewBookingHandler(scheduler, scope, cfg.Log),
		bookinghandler.NewAvailabilityHandler(scheduler, scope, cfg.Log),
	)
	serverApp.Run()
	return nil
}

// initPublisher returns the booking event publisher. Without Kafka, events
// are dropped.
func initPublisher(cfg *config.Config, serverApp *app.Application) (events.Publisher, error) {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return events.NopPublisher{}, nil
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid kafka configuration: %w", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	metrics := kafka_middleware.NewProducerMetrics()
	producer.Use(metrics.Middleware())
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}
	serverApp.OnShutdown(producer)
	serverApp.OnShutdown(app.CloserFunc(func() error {
		metrics.Report(cfg.Log, producer.Topic())
		return nil
	}))

	return events.NewKafkaPublisher(producer, cfg.Log), nil
}
