package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mbolis/assistance-intake/app"
	"github.com/mbolis/assistance-intake/catalog"
	"github.com/mbolis/assistance-intake/config"
	"github.com/mbolis/assistance-intake/database"
	"github.com/mbolis/assistance-intake/httpx"
	"github.com/mbolis/assistance-intake/log"
	"github.com/mbolis/assistance-intake/metrics"
	"github.com/mbolis/assistance-intake/routes"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg.DBUrl)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	cat, err := catalog.Default()
	if err != nil {
		log.Fatal("main.catalog:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := app.New(db, httpx.NewBearerServer(db, cfg), cfg, cat)
	go app.Drafts.RunSweeper(ctx, cfg.DraftTTL, func(dropped int) {
		metrics.DraftsExpired.Add(float64(dropped))
		metrics.DraftsActive.Set(float64(app.Drafts.Len()))
	})

	handler := routes.Wire(app)

	err = runServer(ctx, cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
	log.Info("Server stopped")
}

func runServer(ctx context.Context, cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("main.server.shutdown:", err)
		}
	}()

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
