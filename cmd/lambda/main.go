// Command lambda is the function bootstrap shared by every pipeline unit.
// The unit it serves is chosen by DOCFLOW_UNIT or the runtime's handler setting.
package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/JaimeStill/docflow/internal/config"
	"github.com/JaimeStill/docflow/internal/infrastructure"
	"github.com/JaimeStill/docflow/internal/units"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	infra, err := infrastructure.New(context.Background(), cfg)
	if err != nil {
		log.Fatal("infrastructure init failed: ", err)
	}

	logger := infra.Logger.With("system", "lambda")

	name, err := units.Selected()
	if err != nil {
		logger.Error("unit selection failed", "error", err, "known", units.Names())
		os.Exit(1)
	}

	handler, err := units.New(units.NewRuntime(cfg, infra)).Handler(name)
	if err != nil {
		logger.Error("unit init failed", "unit", name, "error", err)
		os.Exit(1)
	}

	logger.Info("unit starting", "unit", name, "version", cfg.Version)
	lambda.Start(handler)
}
