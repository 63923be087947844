package config

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	mathrand "math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DefaultBaseDirectoryPath is where annodiff commands look for their
// configuration. It defaults to $ANNODIFF_BASE if it is set, otherwise it
// defaults to $HOME/lib/annodiff. Commands override this via the -base flag.
var DefaultBaseDirectoryPath string

func init() {
	if base := os.Getenv("ANNODIFF_BASE"); base != "" {
		DefaultBaseDirectoryPath = base
	} else {
		DefaultBaseDirectoryPath = os.ExpandEnv("$HOME/lib/annodiff")
	}
}

const (
	defaultListenAddr    = "127.0.0.1:3000"
	defaultMaxInputBytes = 1 << 20
)

type C struct {
	// Listen on localhost or a local-only network. There is no
	// authentication nor TLS so the server should not be exposed on a
	// public address without a proxy in front of it.
	ListenNet  string
	ListenAddr string

	// Any level logrus understands, e.g., "debug", "info", "warning".
	LogLevel string

	// Either "json" or "text".
	LogFormat string

	// Upper bound on the size of each document, after decoding.
	MaxInputBytes int

	// Bound on the time spent finding a minimal diff, zero means none.
	DiffTimeout time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// How long to wait for in-flight requests on shutdown, zero means
	// until they are done.
	ShutdownTimeout time.Duration

	// Requests per second across all clients, zero means unlimited.
	RateLimit float64
	RateBurst int

	// Directory holding the config file.
	base string
}

// Default returns the configuration used for keys missing from the config
// file.
func Default() *C {
	return &C{
		ListenNet:       "tcp",
		LogLevel:        "info",
		LogFormat:       "json",
		MaxInputBytes:   defaultMaxInputBytes,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		RateBurst:       1,
	}
}

// Load loads the configuration from the file called "config" in the provided base
// directory.
func Load(base string) (*C, error) {
	filename := filepath.Join(base, "config")
	if fi, err := os.Stat(filename); err != nil {
		return nil, errors.Wrap(err, "config.Load")
	} else if fi.Mode()&0077 != 0 {
		return nil, errorf("Load", "%q: mode is %#o, want at most %#o",
			filename, fi.Mode()&0777, fi.Mode()&0700)
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		// Ignore error closing file opened only for reading.
		_ = f.Close()
	}()
	c, err := load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "%q", filename)
	}
	c.base = base
	if c.ListenAddr == "" {
		if c.ListenNet == "unix" {
			c.ListenAddr = fmt.Sprintf("%s/annodiff", clientNamespace())
		} else {
			c.ListenAddr = defaultListenAddr
		}
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "%q", filename)
	}
	return c, nil
}

func load(f io.Reader) (*C, error) {
	c := Default()
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		i := strings.IndexAny(line, " 	")
		if i == -1 {
			return nil, errorf("load", "no separator in %q", line)
		}
		var err error
		switch key, val := line[:i], strings.TrimSpace(line[i:]); key {
		case "listen-net":
			c.ListenNet = val
		case "listen-addr":
			c.ListenAddr = val
		case "log-level":
			c.LogLevel = val
		case "log-format":
			c.LogFormat = val
		case "max-input-bytes":
			c.MaxInputBytes, err = strconv.Atoi(val)
		case "diff-timeout":
			c.DiffTimeout, err = time.ParseDuration(val)
		case "read-timeout":
			c.ReadTimeout, err = time.ParseDuration(val)
		case "write-timeout":
			c.WriteTimeout, err = time.ParseDuration(val)
		case "shutdown-timeout":
			c.ShutdownTimeout, err = time.ParseDuration(val)
		case "rate-limit":
			c.RateLimit, err = strconv.ParseFloat(val, 64)
		case "rate-burst":
			c.RateBurst, err = strconv.Atoi(val)
		default:
			return nil, errorf("load", "unknown key %q", key)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "key %q", line[:i])
		}
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, "load")
	}
	return c, nil
}

// Validate reports the first setting that cannot be used to run the server.
func (c *C) Validate() error {
	const method = "C.Validate"
	switch c.ListenNet {
	case "tcp", "tcp4", "tcp6", "unix":
	default:
		return errorf(method, "unsupported network: %q", c.ListenNet)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errorf(method, "%v", err)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return errorf(method, "unsupported log format: %q", c.LogFormat)
	}
	if c.MaxInputBytes <= 0 {
		return errorf(method, "max-input-bytes must be positive, got %d", c.MaxInputBytes)
	}
	if c.RateLimit < 0 {
		return errorf(method, "rate-limit must not be negative, got %v", c.RateLimit)
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		return errorf(method, "rate-burst must be at least 1, got %d", c.RateBurst)
	}
	for name, d := range map[string]time.Duration{
		"diff-timeout":     c.DiffTimeout,
		"read-timeout":     c.ReadTimeout,
		"write-timeout":    c.WriteTimeout,
		"shutdown-timeout": c.ShutdownTimeout,
	} {
		if d < 0 {
			return errorf(method, "%s must not be negative, got %v", name, d)
		}
	}
	return nil
}

// Base returns the directory the configuration was loaded from, if any.
func (c *C) Base() string {
	return c.base
}

// Initialize generates an initial configuration at the given directory.
func Initialize(baseDir string) error {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return errors.Wrapf(err, "%q: could not mkdir", baseDir)
	}
	path := filepath.Join(baseDir, "config")
	_, err := os.Stat(path)
	if err == nil {
		return errorf("Initialize", "%q: already exists", path)
	}
	if !os.IsNotExist(err) {
		return errors.Wrapf(err, "%q: could not determine if it exists", path)
	}

	d := Default()
	var buf bytes.Buffer
	port := 49152 + mathrand.Intn(65535-49152)
	buf.WriteString("# See https://github.com/nicolagi/annodiff for all keys.\n")
	fmt.Fprintf(&buf, "listen-net %s\n", d.ListenNet)
	fmt.Fprintf(&buf, "listen-addr 127.0.0.1:%d\n", port)
	fmt.Fprintf(&buf, "log-level %s\n", d.LogLevel)
	fmt.Fprintf(&buf, "log-format %s\n", d.LogFormat)
	fmt.Fprintf(&buf, "max-input-bytes %d\n", d.MaxInputBytes)
	fmt.Fprintf(&buf, "read-timeout %v\n", d.ReadTimeout)
	fmt.Fprintf(&buf, "write-timeout %v\n", d.WriteTimeout)
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return errors.Wrapf(err, "config.Initialize %q", path)
	}
	return nil
}

var dotZero = regexp.MustCompile(`\A(.*:\d+)\.0\z`)

// clientNamespace returns the path to the name space directory.
func clientNamespace() string {
	ns := os.Getenv("NAMESPACE")
	if ns != "" {
		return ns
	}

	disp := os.Getenv("DISPLAY")
	if disp == "" {
		disp = ":0.0"
	}

	// Canonicalize: xxx:0.0 => xxx:0.
	if m := dotZero.FindStringSubmatch(disp); m != nil {
		disp = m[1]
	}

	disp = strings.Replace(disp, "/", "_", -1)

	return fmt.Sprintf("/tmp/ns.%s.%s", os.Getenv("USER"), disp)
}
