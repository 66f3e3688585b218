package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aircon_bridge/internal/device"
	"aircon_bridge/internal/handlers"
	"aircon_bridge/internal/logger"
	"aircon_bridge/internal/metrics"
	"aircon_bridge/internal/mqttpub"
	"aircon_bridge/internal/server"
	"aircon_bridge/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
)

func main() {
	// load config.yml before the logger so the level is configurable
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(viper.GetString("log_level"))

	// device client for the single configured unit
	client, err := device.NewClient(
		viper.GetString("device.host"),
		viper.GetDuration("device.timeout"),
	)
	if err != nil {
		log.Fatalw("failed to init device client", "err", err)
	}

	// wire dependencies
	coord := service.NewCoordinator(client, viper.GetDuration("device.timeout"), log)
	services := service.NewService(client, coord, log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.NewCollector(coord))

	apiHandler := handlers.NewHandler(services, registry, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start the polling loop, the sole periodic trigger of device fetches
	go coord.Run(ctx, refreshInterval())

	// optional MQTT telemetry publisher
	if broker := viper.GetString("mqtt.broker"); broker != "" {
		pub, perr := mqttpub.NewPublisher(mqttpub.Config{
			BrokerURL: broker,
			ClientID:  viper.GetString("mqtt.client_id"),
			Username:  viper.GetString("mqtt.username"),
			Password:  viper.GetString("mqtt.password"),
			Topic:     viper.GetString("mqtt.topic"),
		}, log)
		if perr != nil {
			log.Fatalw("failed to init mqtt publisher", "err", perr)
		}
		go pub.Run(ctx, coord)
	}

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// refreshInterval reads the poll interval, falling back to the default.
func refreshInterval() time.Duration {
	if d := viper.GetDuration("poll.interval"); d > 0 {
		return d
	}
	return service.DefaultRefreshInterval
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
