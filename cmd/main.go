package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/zlog"

	"elysion/cmd/buildCFG"
	"elysion/internal/api/api"
	rabbitReader "elysion/internal/consumerWorker"
	"elysion/internal/mailer"
	"elysion/internal/pass"
	"elysion/internal/rabbit"
	"elysion/internal/service"
	"elysion/internal/site"
)

func main() {
	zlog.Init()
	log := zlog.Logger

	cfg := config.New()
	if err := cfg.Load("config.yaml", "", "ELYSION"); err != nil {
		log.Fatal().Msgf("failed to load configuration: %v", err)
	}
	serverCfg := buildCFG.BuildServerConfig(cfg, &log)
	deskCfg := buildCFG.BuildDeskConfig(cfg)

	content, err := site.Default()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load site content")
	}

	store := pass.NewStore(deskCfg.PassPrefix, deskCfg.TTL, deskCfg.CleanupInterval)

	rabbitCfg, err := buildCFG.BuildRabbitConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load RabbitMQ config")
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	var publisher rabbit.Publisher
	var reader *rabbitReader.Reader
	if rabbitCfg.Enabled {
		rmq, err := rabbit.NewRabbit(rabbitCfg.Url, rabbitCfg.Exchange, rabbitCfg.Kind, rabbitCfg.Queue)
		if err != nil {
			log.Fatal().Msgf("Failed to connect to RabbitMQ: %v", err)
		}
		defer rmq.Close()
		publisher = rmq

		mailCfg, err := buildCFG.BuildMailerConfig(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load mailer config")
		}
		reader = rabbitReader.NewReader(rmq, mailer.New(mailCfg, &log), content.Event.Edition, deskCfg.QRSize, &log)
		go reader.Start(workerCtx)
	}

	serviceInstance := service.NewService(store, content, &log, publisher, deskCfg.QRSize)
	app, err := api.NewRouters(&api.Routers{
		Service:        serviceInstance,
		Content:        content,
		Mode:           serverCfg.Mode,
		AllowedOrigins: serverCfg.AllowedOrigins,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build routes")
	}

	srv := &http.Server{
		Addr:    ":" + serverCfg.Port,
		Handler: app,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info().Msgf("Starting server on %s", serverCfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("failed to start server: %w", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-signalChan:
		log.Info().Msgf("Received signal %s. Initiating shutdown...", sig)
	case err := <-serverErrChan:
		log.Error().Msgf("Server error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Msgf("Error shutting down server: %v", err)
	}

	cancelWorkers()
	if reader != nil {
		reader.Stop()
	}

	log.Info().Msg("Shutdown complete")
}
