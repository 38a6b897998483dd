// Command keeperd is the coordination server daemon. It loads
// configuration, initializes logging, constructs the dispatcher state and
// starts the four-letter administrative command listener. On termination
// signals it stops accepting connections and waits for in-flight commands.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/flwd/keeperd/internal/config"
	"github.com/flwd/keeperd/internal/flw"
	"github.com/flwd/keeperd/internal/keeper"
	"github.com/flwd/keeperd/internal/logging"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		logging.Log.Errorf("[keeperd] Failed to load config: %v", err)
		os.Exit(1)
	}

	if err := logging.Init(cfg.Logger); err != nil {
		logging.Log.Errorf("[keeperd] Failed to init logger: %v", err)
		os.Exit(1)
	}
	log := logging.Log

	dispatcher := keeper.New(keeper.Options{
		Version:     config.Version,
		SnapshotDir: cfg.Storage.SnapshotDir,
		LogDir:      cfg.Storage.LogDir,
		Config:      cfg.Entries(),
	})
	dispatcher.SetRole(cfg.Role())
	dispatcher.SetReadOnly(cfg.Server.ReadOnly)

	// Registration and whitelist loading complete before the listener
	// accepts its first connection; the registry needs no locking after
	// this point.
	registry, err := flw.BuildRegistry(dispatcher, cfg.WhiteList())
	if err != nil {
		log.Errorf("[keeperd] Invalid four-letter command white list: %v", err)
		os.Exit(1)
	}

	server := flw.NewServer(registry, dispatcher, log)

	log.Infow("[keeperd] starting",
		"version", config.Version,
		"run_id", dispatcher.RunID(),
		"role", string(dispatcher.Role()),
		"admin_listen", cfg.Admin.Listen,
	)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe(cfg.Admin.Listen)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			log.Errorf("[keeperd] Admin listener failed: %v", err)
			os.Exit(1)
		}
	case s := <-sigChan:
		log.Infow("[keeperd] termination signal received", "signal", s.String())
		if err := server.Close(); err != nil {
			log.Errorf("[keeperd] Shutdown error: %v", err)
		}
	}

	log.Info("[keeperd] Shutdown complete. Exiting.")
}
