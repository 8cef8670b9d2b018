package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/musso17/facturascr/internal/advisor"
	"github.com/musso17/facturascr/internal/amqp"
	"github.com/musso17/facturascr/internal/cli"
	apphttp "github.com/musso17/facturascr/internal/http"
	applog "github.com/musso17/facturascr/internal/log"
	"github.com/musso17/facturascr/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)

	logger.Info("Starting facturascr server")

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// AMQP is optional; without it records stay pending until a worker
	// with a broker connection picks them up via the pending scan.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	facturas := services.NewFacturaService(repo, amqpClient)
	gastos := services.NewGastoService(repo, amqpClient)
	dashboard := services.NewDashboardService(repo, cfg.ProjectionWindow)

	// The advisor is optional; the analysis endpoint reports 503 without it.
	var analyzer apphttp.Analyzer
	if cfg.OpenAIAPIKey != "" {
		adv, err := advisor.New(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			logger.Error("Failed to initialize advisor", "error", err)
			os.Exit(1)
		}
		analyzer = adv
		logger.Info("Advisor initialized", "model", cfg.OpenAIModel)
	} else {
		logger.Info("Advisor disabled - no OPENAI_API_KEY provided")
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:             ":" + cfg.Port,
		ProjectionMonths: cfg.ProjectionMonths,
		GrowthFactor:     cfg.GrowthFactor,
	}, facturas, gastos, dashboard, analyzer)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting HTTP server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
