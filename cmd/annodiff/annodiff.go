package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nicolagi/annodiff/internal/annotate"
	"github.com/nicolagi/annodiff/internal/client"
	"github.com/nicolagi/annodiff/internal/config"
	"github.com/nicolagi/annodiff/internal/diff"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	// To set this at build time, use go build -ldflags '-X main.version=something'.
	version = "unknown"

	// The global context is for flags that are part of all flag sets,
	// that is, all sub-commands.
	globalContext struct {
		base     string
		logLevel string
	}

	diffContext struct {
		mode    string
		timeout time.Duration
	}

	queryContext struct {
		mode    string
		addr    string
		timeout time.Duration
	}
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.StringVar(&globalContext.base, "base", config.DefaultBaseDirectoryPath, "`directory` holding the configuration")
	var levels []string
	for _, l := range log.AllLevels {
		levels = append(levels, l.String())
	}
	fs.StringVar(&globalContext.logLevel, "verbosity", "warning", "sets the log `level`, among "+strings.Join(levels, ", "))
	return fs
}

func exitUsage(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	_, _ = fmt.Fprintf(os.Stderr, `Usage: %s COMMAND [ARGS]

Commands:

	diff: annotate the differences between two files

		Exit status is 0 if the files are the same, 1 if they differ, 2 if there was trouble.

	init: initializes configuration given the base directory
	query: like diff, but have a running annodiffd do the work
	version: show version information
`, os.Args[0])
	os.Exit(2)
}

func main() {
	diffFlags := newFlagSet("diff")
	diffFlags.StringVar(&diffContext.mode, "mode", "line", "compare by `unit`, one of line, word, char")
	diffFlags.DurationVar(&diffContext.timeout, "t", 0, "stop looking for a minimal diff after `duration`, 0 means never")

	queryFlags := newFlagSet("query")
	queryFlags.StringVar(&queryContext.mode, "mode", "line", "compare by `unit`, one of line, word, char")
	queryFlags.StringVar(&queryContext.addr, "addr", "", "server `URL`, defaults to the configured listen address")
	queryFlags.DurationVar(&queryContext.timeout, "t", 30*time.Second, "give up on the server after `duration`")

	// For all commands that don't take flags.
	emptyFlags := newFlagSet("empty")

	if len(os.Args) < 2 {
		exitUsage("Command name required")
	}

	switch cmd := os.Args[1]; cmd {
	case "diff":
		// Ignoring error - here and in all other cases below - because we configure flag sets to exit on error.
		_ = diffFlags.Parse(os.Args[2:])
		if narg := diffFlags.NArg(); narg != 2 {
			exitUsage(fmt.Sprintf("diff: 2 args expected, got %d", narg))
		}
	case "query":
		_ = queryFlags.Parse(os.Args[2:])
		if narg := queryFlags.NArg(); narg != 2 {
			exitUsage(fmt.Sprintf("query: 2 args expected, got %d", narg))
		}
	case "init", "version":
		_ = emptyFlags.Parse(os.Args[2:])
		if narg := emptyFlags.NArg(); narg != 0 {
			exitUsage(fmt.Sprintf("%s: no args expected, got %d", cmd, narg))
		}
	default:
		exitUsage(fmt.Sprintf("%q: command not recognized", cmd))
	}

	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{})
	ll, err := log.ParseLevel(globalContext.logLevel)
	if err != nil {
		log.Fatalf("Could not parse log level %q: %v", globalContext.logLevel, err)
	}
	log.SetLevel(ll)

	switch os.Args[1] {
	case "init":
		if err := config.Initialize(globalContext.base); err != nil {
			log.Fatalf("Could not initialize config in %q: %v", globalContext.base, err)
		}
	case "version":
		fmt.Printf("annodiff version %s\n", version)
	case "diff":
		os.Exit(exitStatus(runDiff(os.Stdout, diffFlags.Arg(0), diffFlags.Arg(1))))
	case "query":
		os.Exit(exitStatus(runQuery(os.Stdout, queryFlags.Arg(0), queryFlags.Arg(1))))
	}
}

func exitStatus(differs bool, err error) int {
	if err != nil {
		log.Error(err)
		return 2
	}
	if differs {
		return 1
	}
	return 0
}

func readPair(left, right string) (a, b string, err error) {
	ab, err := os.ReadFile(left)
	if err != nil {
		return "", "", err
	}
	bb, err := os.ReadFile(right)
	if err != nil {
		return "", "", err
	}
	return string(ab), string(bb), nil
}

func runDiff(w io.Writer, left, right string) (bool, error) {
	mode, err := annotate.ParseGranularity(diffContext.mode)
	if err != nil {
		return false, err
	}
	a, b, err := readPair(left, right)
	if err != nil {
		return false, err
	}
	an := annotate.New(diff.NewComparer(diff.WithTimeout(diffContext.timeout)))
	differs, report := an.Generate(a, b, mode)
	if differs {
		_, err = io.WriteString(w, report)
	}
	return differs, err
}

func runQuery(w io.Writer, left, right string) (bool, error) {
	mode, err := annotate.ParseGranularity(queryContext.mode)
	if err != nil {
		return false, err
	}
	a, b, err := readPair(left, right)
	if err != nil {
		return false, err
	}
	c, err := queryClient()
	if err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), queryContext.timeout)
	defer cancel()
	differs, report, err := c.Diff(ctx, a, b, mode)
	if err != nil {
		return false, err
	}
	if differs {
		_, err = io.WriteString(w, report)
	}
	return differs, err
}

// queryClient returns a client for the -addr flag if given, for the
// configured listen address otherwise.
func queryClient() (*client.Client, error) {
	if queryContext.addr != "" {
		return client.New(queryContext.addr, nil), nil
	}
	cfg, err := config.Load(globalContext.base)
	if err != nil {
		return nil, errors.Wrapf(err, "no -addr and could not load config from %q", globalContext.base)
	}
	if cfg.ListenNet != "unix" {
		return client.New("http://"+cfg.ListenAddr, nil), nil
	}
	hc := &http.Client{Transport: &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", cfg.ListenAddr)
		},
	}}
	return client.New("http://annodiffd", hc), nil
}
