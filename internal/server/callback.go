package server

import (
	"bufio"
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sptty/internal/shared"
)

type serverState int

const (
	listening serverState = iota
	closed
)

// CallbackServer is a one-shot loopback listener for the authorization redirect.
type CallbackServer struct {
	listener      net.Listener
	expectedState string
	handoff       *handoff
	logger        *log.Logger

	mu    sync.Mutex
	state serverState
	conn  net.Conn
}

// Listen binds the host and port of redirectURI, defaulting to port 80.
//
// expectedState is the CSRF token sent with the authorization request.
func Listen(redirectURI, expectedState string, logger *log.Logger) (*CallbackServer, error) {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: invalid redirect_uri %q", shared.ErrConfig, redirectURI)
	}

	port := u.Port()
	if port == "" {
		port = "80"
	}

	addr := net.JoinHostPort(u.Hostname(), port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to listen on %s: %v", shared.ErrNetwork, addr, err)
	}

	if logger == nil {
		logger = log.Default()
	}

	return &CallbackServer{
		listener:      ln,
		expectedState: expectedState,
		handoff:       newHandoff(),
		logger:        logger,
	}, nil
}

// Addr returns the bound address.
func (s *CallbackServer) Addr() net.Addr {
	return s.listener.Addr()
}

// Receive blocks until the redirect delivers a code, the connection ends, or ctx is done.
//
// The server is closed when Receive returns; the connection is abandoned rather than drained.
func (s *CallbackServer) Receive(ctx context.Context) (string, error) {
	defer s.Close()

	served := make(chan error, 1)
	go func() { served <- s.serve() }()

	select {
	case code := <-s.handoff.received():
		return code, nil
	case err := <-served:
		select {
		case code := <-s.handoff.received():
			return code, nil
		default:
		}
		if errors.Is(err, shared.ErrStateMismatch) {
			return "", err
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", shared.ErrServerClosed, err)
		}
		return "", shared.ErrServerClosed
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", shared.ErrRedirectTimeout, ctx.Err())
	}
}

// Close stops listening and drops the accepted connection, if any.
func (s *CallbackServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == closed {
		return nil
	}
	s.state = closed

	err := s.listener.Close()
	if s.conn != nil {
		_ = s.conn.Close()
	}
	return err
}

// serve accepts a single connection and answers requests on it until it closes.
func (s *CallbackServer) serve() error {
	conn, err := s.listener.Accept()
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.state == closed {
		s.mu.Unlock()
		_ = conn.Close()
		return net.ErrClosed
	}
	s.conn = conn
	s.mu.Unlock()
	defer conn.Close()

	s.logger.Debug("accepted redirect connection", "remote", conn.RemoteAddr())

	br := bufio.NewReader(conn)
	for {
		req, err := http.ReadRequest(br)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		_, _ = io.Copy(io.Discard, req.Body)
		_ = req.Body.Close()

		if err := s.handle(conn, req); err != nil {
			return err
		}
		if req.Close {
			return nil
		}
	}
}

func (s *CallbackServer) handle(w io.Writer, req *http.Request) error {
	query := req.URL.Query()

	if query.Has("code") && query.Has("state") {
		if tx := s.handoff.take(); tx != nil {
			if subtle.ConstantTimeCompare([]byte(query.Get("state")), []byte(s.expectedState)) != 1 {
				s.logger.Warn("redirect carried an unexpected state")
				_ = writeResponse(w, req, http.StatusBadRequest, "state mismatch")
				return shared.ErrStateMismatch
			}

			if err := writeResponse(w, req, http.StatusOK, "ok"); err != nil {
				s.logger.Debug("failed to answer redirect", "error", err)
			}
			tx <- query.Get("code")
			return nil
		}
	}

	return writeResponse(w, req, http.StatusNoContent, "")
}

func writeResponse(w io.Writer, req *http.Request, status int, body string) error {
	resp := &http.Response{
		StatusCode: status,
		ProtoMajor: 1,
		ProtoMinor: 1,
		Request:    req,
		Header:     make(http.Header),
		Close:      req.Close,
	}

	if body != "" {
		resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
		resp.Body = io.NopCloser(strings.NewReader(body))
		resp.ContentLength = int64(len(body))
	}

	return resp.Write(w)
}
