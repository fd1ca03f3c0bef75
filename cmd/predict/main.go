// Command predict runs local prompt-item files through one model adapter and
// prints the resulting annotation collections as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"vertexadapters/internal/config"
	"vertexadapters/internal/domain"
	"vertexadapters/internal/gcpauth"
	"vertexadapters/internal/invoker"
	"vertexadapters/internal/logging"
	"vertexadapters/internal/platform"
	"vertexadapters/internal/prompt"
	"vertexadapters/internal/service"

	_ "vertexadapters/internal/invoker/bison"
	_ "vertexadapters/internal/invoker/claude"
	_ "vertexadapters/internal/invoker/gemini"
	_ "vertexadapters/internal/invoker/mistralocr"
)

var provider string

func main() {
	rootCmd := &cobra.Command{
		Use:           "predict [prompt-item files...]",
		Short:         "Run prompt-item JSON files through a model adapter",
		Args:          cobra.MinimumNArgs(1),
		RunE:          runPredict,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.Flags().StringVarP(&provider, "provider", "p", "gemini", "model provider to invoke")

	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.Setup(&cfg.Log)

	modelCfg := cfg.Models.ByProvider(provider)
	if modelCfg == nil {
		return fmt.Errorf("%w: %s", domain.ErrUnknownProvider, provider)
	}

	sa, err := gcpauth.FromEnv(cfg.GCP.Integration)
	if err != nil {
		return err
	}

	inv, err := invoker.New(cmd.Context(), provider, modelCfg, sa)
	if err != nil {
		return fmt.Errorf("initializing %s invoker: %w", provider, err)
	}

	// Referenced items inside prompts still resolve through the platform when
	// a base URL is configured; otherwise those parts are skipped.
	platformClient := platform.NewClient(&cfg.Platform)
	svc := service.NewPredictService(inv, platformClient, nil, nil)

	batch := make([]domain.BatchItem, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		env, err := prompt.DecodeEnvelope(data)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", path, err)
		}
		batch = append(batch, domain.BatchItem{
			Item:     &domain.Item{ID: filepath.Base(path)},
			Envelope: env,
		})
	}

	collections := svc.Predict(cmd.Context(), batch)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(collections)
}
