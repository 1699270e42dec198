package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"idle_garage/internal/backup"
	"idle_garage/internal/config"
	"idle_garage/internal/db"
	"idle_garage/internal/logger"
)

func main() {
	file := flag.String("file", "", "backup file (.jsonl.zst)")
	overwrite := flag.Bool("overwrite", false, "replace existing players on import")
	flag.Parse()

	if flag.NArg() != 1 || *file == "" {
		log.Fatal("Usage: backup -file players.jsonl.zst <export|import>")
	}

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	stores := db.Open(cfg)
	defer stores.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch flag.Arg(0) {
	case "export":
		f, err := os.Create(*file)
		if err != nil {
			log.Fatalf("create %s: %v", *file, err)
		}
		n, err := backup.Export(ctx, stores.Players, f, time.Now())
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			log.Fatalf("export failed after %d players: %v", n, err)
		}
		logger.Info("backup exported", "file", *file, "players", n)

	case "import":
		f, err := os.Open(*file)
		if err != nil {
			log.Fatalf("open %s: %v", *file, err)
		}
		defer f.Close()
		st, err := backup.Import(ctx, f, stores.Players, *overwrite)
		if err != nil {
			log.Fatalf("import failed: %v (created=%d overwritten=%d)", err, st.Created, st.Overwritten)
		}
		logger.Info("backup imported", "file", *file, "created", st.Created, "overwritten", st.Overwritten, "skipped", st.Skipped)

	default:
		log.Fatalf("Unknown command: %s", flag.Arg(0))
	}
}
