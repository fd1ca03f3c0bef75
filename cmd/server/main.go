package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"vertexadapters/internal/config"
	"vertexadapters/internal/gcpauth"
	"vertexadapters/internal/handler"
	"vertexadapters/internal/invoker"
	"vertexadapters/internal/logging"
	"vertexadapters/internal/platform"
	"vertexadapters/internal/router"
	"vertexadapters/internal/service"

	_ "vertexadapters/internal/invoker/bison"
	_ "vertexadapters/internal/invoker/claude"
	_ "vertexadapters/internal/invoker/gemini"
	_ "vertexadapters/internal/invoker/mistralocr"
)

func main() {
	if err := run(); err != nil {
		logrus.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.Setup(&cfg.Log)

	// Credentials are resolved once at startup; a bad credential halts the
	// whole adapter.
	sa, err := gcpauth.FromEnv(cfg.GCP.Integration)
	if err != nil {
		return err
	}

	platformClient := platform.NewClient(&cfg.Platform)

	ctx := context.Background()
	services := make(map[string]*service.PredictService)
	for _, name := range invoker.Names() {
		modelCfg := cfg.Models.ByProvider(name)
		if modelCfg == nil {
			continue
		}
		inv, err := invoker.New(ctx, name, modelCfg, sa)
		if err != nil {
			return fmt.Errorf("initializing %s invoker: %w", name, err)
		}
		services[name] = service.NewPredictService(inv, platformClient, platformClient, platformClient)
		logrus.WithFields(logrus.Fields{
			"provider": name,
			"model_id": modelCfg.ModelID,
		}).Info("model adapter ready")
	}

	predictH := handler.NewPredictHandler(services)
	var pinger handler.PlatformPinger
	if cfg.Platform.BaseURL != "" {
		pinger = platformClient
	}
	healthH := handler.NewHealthHandler(len(services), pinger)

	r := router.Setup(predictH, healthH)

	logrus.Infof("server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
