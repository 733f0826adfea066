package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/stemsi/exstem-practice/internal/config"
	"github.com/stemsi/exstem-practice/internal/logger"
	"github.com/stemsi/exstem-practice/internal/repository"
	"github.com/stemsi/exstem-practice/internal/service"
)

// export-bank loads the bank from the configured source and writes its
// canonical JSON form.
func main() {
	var out string
	flag.StringVar(&out, "out", "-", "Output file, - for stdout")
	flag.Parse()

	cfg := config.Load()
	log := logger.Component(logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat), "export_bank")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	backend, err := repository.OpenBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open bank source")
	}
	defer backend.Close()

	bank := service.NewBankService(backend.Source, log)
	if err := bank.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load question bank")
	}

	data, err := bank.Export()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to export bank")
	}

	if out == "-" {
		_, err = os.Stdout.Write(data)
	} else {
		err = os.WriteFile(out, data, 0o644)
	}
	if err != nil {
		log.Fatal().Err(err).Str("out", out).Msg("Failed to write export")
	}

	log.Info().Int("questions", bank.Len()).Str("out", out).Msg("Bank exported")
}
