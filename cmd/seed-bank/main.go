package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/stemsi/exstem-practice/internal/config"
	"github.com/stemsi/exstem-practice/internal/logger"
	"github.com/stemsi/exstem-practice/internal/qbank"
	"github.com/stemsi/exstem-practice/internal/repository"
)

// seed-bank validates a JSON or YAML bank file and replaces the bank held
// in Postgres, Redis or SQLite with it.
func main() {
	var (
		file   string
		target string
		yes    bool
	)
	flag.StringVar(&file, "file", "", "Bank file to import (.json, .yaml or .yml)")
	flag.StringVar(&target, "target", "", "Store to write: postgres, redis or sqlite (default BANK_SOURCE)")
	flag.BoolVar(&yes, "yes", false, "Replace without asking")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()
	log := logger.Component(logger.Setup(cfg.LogLevel, cfg.LogFormat), "seed_bank")

	if file == "" {
		flag.Usage()
		os.Exit(2)
	}
	if target != "" {
		cfg.BankSource = strings.ToLower(target)
	}
	if cfg.BankSource == config.BankSourceFile {
		log.Fatal().Msg("The file source is read-only; pass -target postgres, redis or sqlite")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// ─── Validate ──────────────────────────────────────────────────────
	raw, err := repository.NewFileBankSource(file).Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to read bank file")
	}
	questions, err := qbank.Normalize(raw)
	if err != nil {
		for _, ve := range qbank.ValidationErrors(err) {
			fmt.Fprintln(os.Stderr, ve.Error())
		}
		log.Fatal().Int("invalid", len(qbank.ValidationErrors(err))).Msg("Bank file rejected")
	}
	if len(questions) == 0 {
		log.Fatal().Str("file", file).Msg("Bank file has no questions")
	}

	// ─── Confirm ───────────────────────────────────────────────────────
	if !yes && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Printf("Replace the %s bank with %d questions from %s? [y/N]: ", cfg.BankSource, len(questions), file)
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Println("Aborted")
			return
		}
	}

	// ─── Write ─────────────────────────────────────────────────────────
	backend, err := repository.OpenBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open bank store")
	}
	defer backend.Close()

	if err := backend.Store.ReplaceAll(ctx, questions); err != nil {
		log.Fatal().Err(err).Msg("Failed to replace bank")
	}

	log.Info().
		Str("target", cfg.BankSource).
		Int("questions", len(questions)).
		Msg("Bank replaced")
}
