// Package mockserver implements a small scripted NNTP server. It
// exists for development and tests: it speaks just enough of RFC 3977
// and RFC 4643 to exercise a client end to end, with its newsgroups
// held in a GroupStore.
package mockserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"

	reuseport "github.com/kavu/go_reuseport"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/usenet/protocol"
)

type Options struct {
	// Host and Port to listen on. Port 0 picks a free port; use Addr()
	// to discover it.
	Host string
	Port int

	// Username and Password, when set, require an AUTHINFO USER/PASS
	// exchange before GROUP or LIST are allowed.
	Username string
	Password string

	// Capabilities advertised on CAPABILITIES. Defaults to a plain
	// reader profile.
	Capabilities []string

	Store *GroupStore

	Log *zap.Logger
}

var defaultCapabilities = []string{"VERSION 2", "READER", "LIST ACTIVE"}

type Server struct {
	cancel     context.CancelFunc
	stopWaiter sync.WaitGroup

	opts     Options
	listener net.Listener
	store    *GroupStore

	mu          sync.Mutex
	activeConns map[net.Conn]struct{}

	log *zap.Logger
}

func New(opts Options) *Server {
	if opts.Store == nil {
		opts.Store = NewGroupStore()
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if len(opts.Capabilities) == 0 {
		opts.Capabilities = defaultCapabilities
	}

	return &Server{
		opts:        opts,
		store:       opts.Store,
		activeConns: make(map[net.Conn]struct{}),
		log:         opts.Log,
	}
}

func (s *Server) Store() *GroupStore {
	return s.store
}

// Addr returns the address the server is listening on. Only valid
// after Start.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Start begins accepting connections. It returns once the listener is
// up; the accept loop runs until the context is cancelled or Close is
// called.
func (s *Server) Start(parentCtx context.Context) error {
	ctx, cancel := context.WithCancel(parentCtx)
	s.cancel = cancel

	addr := net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))

	listener, err := reuseport.Listen("tcp", addr)
	if err != nil {
		cancel()
		return err
	}
	s.listener = listener

	s.log.Info("Mock NNTP server listening", zap.String("addr", s.Addr()))

	s.stopWaiter.Add(1)
	go func() {
		defer s.stopWaiter.Done()

		if err := s.acceptLoop(ctx); err != nil {
			s.log.Error("Accept loop failed", zap.Error(err))
		}
	}()

	return nil
}

// Close stops the listener and closes every active connection,
// returning the combined close errors.
func (s *Server) Close() error {
	s.cancel()

	err := s.listener.Close()

	s.mu.Lock()
	for conn := range s.activeConns {
		err = multierr.Append(err, conn.Close())
		delete(s.activeConns, conn)
	}
	s.mu.Unlock()

	s.stopWaiter.Wait()

	return err
}

func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Stopped accepting new connections")
			return nil

		default:
			conn, err := s.listener.Accept()
			if err != nil {
				netOpError := new(net.OpError)

				if errors.As(err, &netOpError) && netOpError.Unwrap().Error() == "use of closed network connection" {
					// The listener was closed while we were waiting
					// for new connections, that's fine.
					return nil
				}

				return err
			}

			s.addConn(conn)

			s.stopWaiter.Add(1)
			go func() {
				defer s.stopWaiter.Done()
				defer s.removeConn(conn)

				s.handle(conn)
			}()
		}
	}
}

func (s *Server) addConn(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeConns[conn] = struct{}{}
}

func (s *Server) removeConn(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.activeConns[conn]; ok {
		conn.Close()
		delete(s.activeConns, conn)
	}
}

// session is the per-connection protocol state.
type session struct {
	conn net.Conn
	r    *bufio.Reader

	pendingUser   string
	authenticated bool

	log *zap.Logger
}

func (s *Server) handle(conn net.Conn) {
	log := s.log.Named("conn").With(zap.String("remote", conn.RemoteAddr().String()))

	sess := &session{
		conn: conn,
		r:    bufio.NewReader(conn),
		log:  log,
	}

	if err := protocol.WriteStatus(conn, 200, "usenet mock server ready"); err != nil {
		log.Warn("Failed to write greeting", zap.Error(err))
		return
	}

	for {
		raw, err := sess.r.ReadBytes('\n')
		if err != nil {
			log.Debug("Client went away", zap.Error(err))
			return
		}

		cmd, err := protocol.ParseCommand(protocol.TrimCRLF(raw))
		if err != nil {
			log.Debug("Unparseable command", zap.Error(err))
			if err := protocol.WriteStatus(conn, 500, "Unknown command"); err != nil {
				return
			}
			continue
		}

		quit, err := s.dispatch(sess, cmd)
		if err != nil {
			log.Warn("Failed to respond", zap.String("command", cmd.Name()), zap.Error(err))
			return
		}

		if quit {
			return
		}
	}
}

// dispatch answers a single command. It returns true when the
// connection should be closed afterwards.
func (s *Server) dispatch(sess *session, cmd protocol.Command) (bool, error) {
	switch c := cmd.(type) {
	case protocol.Quit:
		return true, protocol.WriteStatus(sess.conn, 205, "Connection closing")

	case protocol.Capabilities:
		if err := protocol.WriteStatus(sess.conn, 101, "Capability list follows"); err != nil {
			return false, err
		}

		lines := make([][]byte, 0, len(s.opts.Capabilities))
		for _, capability := range s.opts.Capabilities {
			lines = append(lines, []byte(capability))
		}
		return false, protocol.WriteDataBlock(sess.conn, lines...)

	case protocol.AuthInfoUser:
		sess.pendingUser = c.Username
		return false, protocol.WriteStatus(sess.conn, 381, "Enter password")

	case protocol.AuthInfoPass:
		if sess.pendingUser == "" {
			return false, protocol.WriteStatus(sess.conn, 482, "AUTHINFO PASS without USER")
		}

		if sess.pendingUser == s.opts.Username && c.Password == s.opts.Password {
			sess.authenticated = true
			sess.log.Info("Client authenticated", zap.String("username", sess.pendingUser))
			return false, protocol.WriteStatus(sess.conn, 281, "Authentication accepted")
		}

		sess.pendingUser = ""
		return false, protocol.WriteStatus(sess.conn, 481, "Authentication failed")

	case protocol.Group:
		if denied, err := s.requireAuth(sess); denied || err != nil {
			return false, err
		}

		count, low, high, ok := s.store.Group(c.Group)
		if !ok {
			return false, protocol.WriteStatus(sess.conn, 411, "No such newsgroup")
		}

		text := fmt.Sprintf("%d %d %d %s", count, low, high, c.Group)
		return false, protocol.WriteStatus(sess.conn, 211, text)

	case protocol.List:
		if denied, err := s.requireAuth(sess); denied || err != nil {
			return false, err
		}

		if err := protocol.WriteStatus(sess.conn, 215, "Newsgroups follow"); err != nil {
			return false, err
		}

		var lines [][]byte
		for _, name := range s.store.Names() {
			_, low, high, _ := s.store.Group(name)
			lines = append(lines, []byte(fmt.Sprintf("%s %d %d y", name, high, low)))
		}
		return false, protocol.WriteDataBlock(sess.conn, lines...)

	case protocol.Article, protocol.Head, protocol.Body:
		return false, protocol.WriteStatus(sess.conn, 430, "No such article")

	default:
		return false, protocol.WriteStatus(sess.conn, 500, "Unknown command")
	}
}

// requireAuth answers 480 when credentials are configured but the
// session has not authenticated yet. It reports whether the command
// was denied.
func (s *Server) requireAuth(sess *session) (bool, error) {
	if s.opts.Username == "" || sess.authenticated {
		return false, nil
	}

	return true, protocol.WriteStatus(sess.conn, 480, "Authentication required")
}
