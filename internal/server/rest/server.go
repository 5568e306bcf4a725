// Package rest is the HTTP boundary of the session service: it maps the
// sign-up, sign-in, verify-token and logout routes onto SessionManager calls
// and their outcomes onto status codes.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/sessiongate/internal/logging"
	"github.com/dmitrijs2005/sessiongate/internal/server/metrics"
	"github.com/dmitrijs2005/sessiongate/internal/server/services"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// SessionManager is the session lifecycle the routes drive.
type SessionManager interface {
	Register(ctx context.Context, username, password, adminSecret string) (string, error)
	Authenticate(ctx context.Context, username, password string) (*services.Session, error)
	Verify(ctx context.Context, token string) (*services.Session, error)
	Terminate(ctx context.Context, token string) error
}

type HTTPServer struct {
	address  string
	sessions SessionManager
	metrics  *metrics.Registry
	logger   logging.Logger
	engine   *gin.Engine
}

// NewHTTPServer builds the router. m may be nil, in which case /metrics is
// not served and requests are not observed.
func NewHTTPServer(address string, l logging.Logger, sessions SessionManager, m *metrics.Registry) *HTTPServer {
	s := &HTTPServer{
		address:  address,
		sessions: sessions,
		metrics:  m,
		logger:   l.With("module", "http_server"),
	}
	s.engine = s.routes()
	return s
}

// Handler exposes the router, mostly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

func (s *HTTPServer) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.POST("/sign-up", s.signUp)
	r.POST("/sign-in", s.signIn)
	r.GET("/verify-token", requireBearer(), s.verifyToken)
	r.POST("/logout", requireBearer(), s.logout)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
