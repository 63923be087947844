package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/gops/agent"
	"github.com/nicolagi/annodiff/internal/annotate"
	"github.com/nicolagi/annodiff/internal/config"
	"github.com/nicolagi/annodiff/internal/diff"
	"github.com/nicolagi/annodiff/internal/server"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func setupLogging(cfg *config.C, override string) error {
	level := cfg.LogLevel
	if override != "" {
		level = override
	}
	ll, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(ll)
	log.SetOutput(os.Stderr)
	if cfg.LogFormat == "text" {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&log.JSONFormatter{})
	}
	return nil
}

// run serves until ctx is done or a termination signal arrives.
func run(ctx context.Context, cfg *config.C) error {
	an := annotate.New(diff.NewComparer(diff.WithTimeout(cfg.DiffTimeout)))
	srv := server.New(cfg, an)

	g, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	g.Go(func() error {
		defer cancel()
		return srv.ListenAndServe(ctx)
	})
	g.Go(func() error {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigc)
		select {
		case sig := <-sigc:
			log.Printf("Got signal %q, shutting down.", sig)
			cancel()
		case <-ctx.Done():
		}
		return nil
	})
	return g.Wait()
}

func main() {
	base := flag.String("base", config.DefaultBaseDirectoryPath, "Base directory for configuration")
	verbosity := flag.String("verbosity", "", "Log `level`, overrides the configured one")
	flag.Parse()
	if flag.NArg() != 0 {
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [-base dir] [-verbosity level]\n", os.Args[0])
		os.Exit(2)
	}

	cfg, err := config.Load(*base)
	if err != nil {
		log.Fatalf("Could not load config from %q: %v", *base, err)
	}
	if err := setupLogging(cfg, *verbosity); err != nil {
		log.Fatalf("Could not set up logging: %v", err)
	}

	if err := agent.Listen(agent.Options{}); err != nil {
		log.Warningf("Could not start gops agent: %v", err)
	}
	defer agent.Close()

	if err := run(context.Background(), cfg); err != nil {
		log.Errorf("Server failed: %+v", err)
		agent.Close()
		os.Exit(1)
	}
	log.Print("Shut down cleanly.")
}
