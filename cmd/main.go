package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"
	glog "github.com/labstack/gommon/log"

	"clifton/pkg/compare"
	"clifton/pkg/config"
	"clifton/pkg/secrets"
	"clifton/pkg/server"
	"clifton/pkg/store"
)

func main() {
	ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	conf, err := config.New[config.Config]("")
	if err != nil {
		log.Fatal("invalid configuration", "error", err)
	}

	level, err := log.ParseLevel(conf.LogLevel)
	if err != nil {
		log.Warn("unknown log level, using info", "level", conf.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	resolver := secrets.NewResolver(conf.SecretService)
	client := compare.New(resolver, compare.Options{
		Provider:   conf.Provider,
		Model:      conf.Model,
		BaseURL:    conf.BaseURL,
		Concurrent: conf.Concurrent,
		Structured: conf.Structured,
	})
	log.Info("comparison client ready", "provider", conf.Provider, "model", client.Model(), "concurrent", conf.Concurrent, "structured", conf.Structured)

	st := store.New(conf.DataFile)
	switch res := st.Load(); res.Status {
	case store.Loaded:
		log.Info("loaded saved people", "count", len(res.People), "path", st.Path())
	case store.Missing:
		log.Info("no saved people yet", "path", st.Path())
	case store.Unreadable:
		log.Warn("saved people file is unreadable; saving is disabled until it is fixed", "path", st.Path(), "error", res.Err)
	}

	password, _ := resolver.Lookup("APP_PASSWORD")

	srv := server.NewServer(st, compare.NewCached(ctx, client), password)
	if level <= log.DebugLevel {
		srv.Echo.Logger.SetLevel(glog.DEBUG)
	}

	addr := ":" + conf.Port

	finishedShutDown := make(chan struct{})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", "error", err)
		}
		done()
		close(finishedShutDown)
	}()

	if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", "error", err)
		done()
	}
	<-finishedShutDown
}
