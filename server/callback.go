package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	er "github.com/customeros/fresh/internal/errors"
	"github.com/customeros/fresh/internal/logger"
	"github.com/customeros/fresh/internal/tracing"
)

const callbackPath = "/callback"

type callbackResult struct {
	code string
	err  error
}

// CallbackServer completes the OAuth authorization code flow on a loopback
// address: it prints the consent URL, then waits for the browser to be
// redirected back with the code.
type CallbackServer struct {
	log    logger.Logger
	port   string
	out    io.Writer
	router *gin.Engine

	mu     sync.Mutex
	state  string
	result chan callbackResult
}

func NewCallbackServer(port string, out io.Writer, log logger.Logger) *CallbackServer {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))
	router.Use(tracingMiddleware())

	s := &CallbackServer{
		log:    log,
		port:   port,
		out:    out,
		router: router,
	}
	router.GET(callbackPath, s.handleCallback)
	return s
}

func (s *CallbackServer) RedirectURL() string {
	return "http://127.0.0.1:" + s.port + callbackPath
}

// Authenticate blocks until the callback arrives or ctx is done.
func (s *CallbackServer) Authenticate(ctx context.Context, authURL, state string) (string, error) {
	results := s.expect(state)

	listener, err := net.Listen("tcp", "127.0.0.1:"+s.port)
	if err != nil {
		return "", errors.Wrap(err, "starting oauth callback listener")
	}
	httpServer := &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}

	go s.wrapGoroutine("oauth_callback", func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Errorf("oauth callback server error: %v", err)
		}
	})
	defer s.shutdown(httpServer)

	fmt.Fprintf(s.out, "Open this URL in a browser to authorize access to your mailbox:\n\n%s\n\n", authURL)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case result := <-results:
		return result.code, result.err
	}
}

func (s *CallbackServer) expect(state string) chan callbackResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.result = make(chan callbackResult, 1)
	return s.result
}

func (s *CallbackServer) deliver(result callbackResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return
	}
	select {
	case s.result <- result:
	default:
	}
}

func (s *CallbackServer) handleCallback(c *gin.Context) {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	if reason := c.Query("error"); reason != "" {
		s.deliver(callbackResult{err: errors.Wrap(er.ErrAuthDenied, reason)})
		c.String(http.StatusForbidden, "Authorization was denied: %s", reason)
		return
	}
	if state == "" || c.Query("state") != state {
		s.deliver(callbackResult{err: er.ErrStateMismatch})
		c.String(http.StatusBadRequest, "Authorization state does not match, please retry.")
		return
	}
	code := c.Query("code")
	if code == "" {
		c.String(http.StatusBadRequest, "Missing authorization code.")
		return
	}

	s.deliver(callbackResult{code: code})
	c.String(http.StatusOK, "Authorization complete, you can close this tab.")
}

func (s *CallbackServer) shutdown(httpServer *http.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Warnf("oauth callback server shutdown error: %v", err)
	}
}

func (s *CallbackServer) wrapGoroutine(name string, fn func()) {
	defer tracing.RecoverAndLogToJaeger(s.log)
	s.log.Debugf("starting %s", name)
	fn()
}

func tracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := tracing.StartTracerSpan(c.Request.Context(), c.Request.Method+" "+c.FullPath())
		defer span.Finish()
		tracing.TagComponentRest(span)

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		ext.HTTPStatusCode.Set(span, uint16(c.Writer.Status()))
		if c.Writer.Status() >= 400 {
			ext.Error.Set(span, true)
			span.LogFields(log.String("event", "error"))
		}
	}
}
