package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/imrishuroy/kashmkari-orderflow/internal/config"
	"github.com/imrishuroy/kashmkari-orderflow/internal/docstore"
	"github.com/imrishuroy/kashmkari-orderflow/internal/logger"
)

const migrateTimeout = time.Minute

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	dsn := cfg.Store.PostgresDSN
	if dsn == "" {
		log.Fatal("PG_DSN environment variable is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()

	if err := run(ctx, dsn, os.Args[1:], log); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
}

func run(ctx context.Context, dsn string, args []string, log *zap.Logger) error {
	switch strings.ToLower(args[0]) {
	case "up":
		return docstore.MigrateUp(ctx, dsn)
	case "down":
		steps, err := parseSteps(argOrEmpty(args, 1))
		if err != nil {
			return err
		}
		return docstore.MigrateDown(ctx, dsn, steps)
	case "status":
		return docstore.MigrateStatus(ctx, dsn)
	case "version":
		v, err := docstore.MigrationVersion(ctx, dsn)
		if err != nil {
			return err
		}
		log.Info("current migration version", zap.Int64("version", v))
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func parseSteps(s string) (int, error) {
	if s == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("steps must be a positive integer, got %q", s)
	}
	return n, nil
}

func printUsage() {
	fmt.Println("usage: migrator <up|down|status|version> [steps]")
}

func argOrEmpty(args []string, idx int) string {
	if len(args) > idx {
		return args[idx]
	}
	return ""
}
