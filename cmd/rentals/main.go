package main

import (
	"context"

	"lockrent/internal/rentals/events"
	"lockrent/internal/rentals/handler"
	"lockrent/internal/rentals/repository"
	"lockrent/internal/rentals/repository/sqlstore"
	"lockrent/internal/rentals/service"
	"lockrent/internal/rentals/validator"
	"lockrent/pkg/app"
	"lockrent/pkg/config"
	"lockrent/pkg/kafka"
	kafka_config "lockrent/pkg/kafka/config"
	kafka_middleware "lockrent/pkg/kafka/middleware"
	"lockrent/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const ServiceName = "rentals"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetStore()

	cfg.Log.Info("Starting Rentals service", "store", cfg.StoreBackend)

	serverApp := app.NewApplication(cfg)
	registry := initMetrics(cfg, serverApp)

	locks, rentals := initRepositories(cfg)

	opts := []service.Option{}
	if registry != nil {
		rentalMetrics, err := metrics.NewRentalMetrics(registry)
		if err != nil {
			cfg.Log.Fatal("Failed to register rental metrics", "error", err)
		}
		opts = append(opts, service.WithMetrics(rentalMetrics))
	}

	var kafkaMetrics *metrics.KafkaMetrics
	if registry != nil && cfg.KafkaEnabled {
		var err error
		if kafkaMetrics, err = metrics.NewKafkaMetrics(registry); err != nil {
			cfg.Log.Fatal("Failed to register kafka metrics", "error", err)
		}
	}

	kafkaCfg := initKafkaConfig(cfg)
	opts = append(opts, service.WithPublisher(initPublisher(cfg, kafkaCfg, kafkaMetrics, serverApp)))

	rentalService := service.NewRentalService(
		locks,
		rentals,
		validator.NewRentalValidator(cfg.Log),
		cfg,
		opts...,
	)

	if kafkaCfg != nil && cfg.LockRetirementsTopic != "" {
		initRetirementConsumer(cfg, kafkaCfg, kafkaMetrics, rentalService, serverApp)
	}

	serverApp.SetApp(handler.NewRentalHandler(rentalService, cfg.UserIDHeader, cfg.Log))
	serverApp.Run()
}

func initMetrics(cfg *config.Config, serverApp *app.Application) *prometheus.Registry {
	if !cfg.MetricsEnabled {
		return nil
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	serverApp.SetMetrics(registry)
	return registry
}

func initRepositories(cfg *config.Config) (repository.LockRepository, repository.RentalRepository) {
	if cfg.IsMongo() {
		cfg.Log.Info("Using Mongo repositories", "database", cfg.MongoDatabaseName)
		return repository.NewMongoLockRepository(cfg), repository.NewMongoRentalRepository(cfg)
	}

	if err := sqlstore.AutoMigrate(context.Background(), cfg.Client.SQL); err != nil {
		cfg.Log.Fatal("Failed to migrate SQL schema", "error", err)
	}
	cfg.Log.Info("Using SQL repositories", "dialect", cfg.StoreBackend)
	return sqlstore.NewLockRepository(cfg.Client.SQL, cfg.LockWaitTimeout), sqlstore.NewRentalRepository(cfg.Client.SQL)
}

func initKafkaConfig(cfg *config.Config) *kafka_config.Config {
	if !cfg.KafkaEnabled {
		return nil
	}
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)
	return kafkaCfg
}

func initPublisher(cfg *config.Config, kafkaCfg *kafka_config.Config, m *metrics.KafkaMetrics, serverApp *app.Application) service.EventPublisher {
	if kafkaCfg == nil {
		cfg.Log.Info("Kafka disabled, rental events are not published")
		return events.NoopPublisher{}
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.RentalEventsTopic, cfg.KafkaDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware(m))
	}
	serverApp.AddCloser(producer)

	return events.NewKafkaPublisher(producer, ServiceName, cfg.Log)
}

func initRetirementConsumer(cfg *config.Config, kafkaCfg *kafka_config.Config, m *metrics.KafkaMetrics, svc service.RentalService, serverApp *app.Application) {
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.LockRetirementsTopic,
		cfg.KafkaConsumerGroup,
		cfg.KafkaDLQTopic,
		events.NewRetirementHandler(svc, cfg.Log),
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware(m))
	}
	serverApp.AddWorker(consumer)
}
