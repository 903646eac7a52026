package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	echoapi "github.com/trezcool/studyroom/apps/api/echo"
	"github.com/trezcool/studyroom/core"
	"github.com/trezcool/studyroom/core/note"
	logsvc "github.com/trezcool/studyroom/services/logger"
	"github.com/trezcool/studyroom/storage"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	if err := run(conf, logger); err != nil {
		logger.Fatal(fmt.Sprintf("api: %v", err), err)
	}
}

func run(conf *core.Config, logger *logsvc.RollbarLogger) error {
	ctx := context.Background()

	kv, closeKV, err := storage.Open(ctx, conf.Storage)
	if err != nil {
		return errors.Wrap(err, "setting up storage")
	}
	defer func() {
		if err := closeKV(); err != nil {
			logger.Error("closing storage", err)
		}
	}()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q, storage %q", conf.Build, conf.Storage.Medium))
	defer logger.Info("Application stopped")

	validate, translator := core.NewValidator()
	note.InitValidators(validate, translator)

	lib := note.NewLibrary(note.LibraryDeps{
		KV:         kv,
		Conf:       conf.Notes,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
	})

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("storage").Set(conf.Storage.Medium)

	debugSrv := &http.Server{Addr: conf.Server.DebugHost, Handler: http.DefaultServeMux}

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(conf.Server.Address, shutdown, &echoapi.Deps{
		Conf:       conf,
		Logger:     logger,
		Library:    lib,
		Validate:   validate,
		Translator: translator,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := debugSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
		return nil
	})
	g.Go(func() error {
		server.Start()
		return nil
	})

	// =========================================================================
	// Shutdown

	g.Go(func() error {
		defer func() { _ = debugSrv.Close() }()

		select {
		case err := <-server.Errors():
			return errors.Wrap(err, "server error")

		case sig := <-server.ShutdownSignal():
			logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

			// give outstanding requests a deadline for completion
			sctx, cancel := context.WithTimeout(gctx, conf.Server.ShutdownTimeout)
			defer cancel()

			// asking listener to shutdown and shed load
			if err := server.Shutdown(sctx); err != nil {
				logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

				if err = server.Close(); err != nil {
					return errors.Wrap(err, "could not force stop server")
				}
			}
			return nil
		}
	})

	return g.Wait()
}
