package server

import (
	"context"
	stdlog "log"
	"net"
	"net/http"

	"github.com/nicolagi/annodiff/internal/annotate"
	"github.com/nicolagi/annodiff/internal/config"
	"github.com/nicolagi/annodiff/internal/netutil"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// NoDifference is the response body for documents that compare equal.
const NoDifference = "input is the same"

// Generator is what the server needs from the annotator.
type Generator interface {
	Generate(a, b string, mode annotate.Granularity) (differs bool, report string)
}

type Server struct {
	cfg       *config.C
	generator Generator
	limiter   *rate.Limiter
	handler   http.Handler
}

func New(cfg *config.C, generator Generator) *Server {
	s := &Server{
		cfg:       cfg,
		generator: generator,
	}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	mux := http.NewServeMux()
	mux.Handle("GET /{$}", withRateLimit(s.limiter, http.HandlerFunc(s.serveDiff)))
	mux.HandleFunc("GET /health", serveHealth)
	s.handler = withRequestID(withLogging(withRecovery(mux)))
	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe listens on the configured network address and serves until
// ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := netutil.Listen(s.cfg.ListenNet, s.cfg.ListenAddr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s %s", s.cfg.ListenNet, s.cfg.ListenAddr)
	}
	return s.Serve(ctx, l)
}

// Serve accepts connections on l until ctx is done, then shuts down
// gracefully, waiting at most the configured shutdown timeout (forever, if
// zero) for in-flight requests. It closes l.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	errorLog := log.StandardLogger().WriterLevel(log.WarnLevel)
	defer func() { _ = errorLog.Close() }()
	hs := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		ErrorLog:     stdlog.New(errorLog, "", 0),
	}
	log.WithField("address", l.Addr().String()).Info("Serving")
	errc := make(chan error, 1)
	go func() {
		errc <- hs.Serve(l)
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx := context.Background()
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(shutdownCtx, s.cfg.ShutdownTimeout)
		defer cancel()
	}
	err := hs.Shutdown(shutdownCtx)
	if err != nil {
		log.Warningf("Graceful shutdown failed, closing connections: %v", err)
		_ = hs.Close()
	}
	if serveErr := <-errc; serveErr != http.ErrServerClosed && err == nil {
		err = serveErr
	}
	return err
}

func (s *Server) serveDiff(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("a") || !q.Has("b") {
		respondError(w, r, errMissingParams)
		return
	}
	mode := annotate.Line
	if q.Has("mode") {
		var err error
		// An empty selector is not the same as an absent one.
		if mode, err = annotate.ParseGranularity(q.Get("mode")); err != nil || q.Get("mode") == "" {
			respondError(w, r, errors.Wrapf(errInvalidMode, "%q", q.Get("mode")))
			return
		}
	}
	a, err := decodeParam(q.Get("a"), s.cfg.MaxInputBytes)
	if err != nil {
		respondError(w, r, errors.Wrap(err, "a"))
		return
	}
	b, err := decodeParam(q.Get("b"), s.cfg.MaxInputBytes)
	if err != nil {
		respondError(w, r, errors.Wrap(err, "b"))
		return
	}
	differs, report := s.generator.Generate(a, b, mode)
	entryFrom(r.Context()).WithFields(log.Fields{
		"mode":    mode.String(),
		"a_bytes": len(a),
		"b_bytes": len(b),
		"differs": differs,
	}).Debug("Compared documents")
	if !differs {
		report = NoDifference
	}
	respond(w, http.StatusOK, report)
}

func serveHealth(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, "ok")
}

func respond(w http.ResponseWriter, status int, body string) {
	h := w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// respondError replies with the message of the sentinel error at the root of
// err. The full error is only logged.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	entryFrom(r.Context()).WithField("status", status).Infof("Rejected request: %v", err)
	respond(w, status, errors.Cause(err).Error())
}
