package dbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dooshek/factreader/internal/logger"
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

const (
	dbusServiceName = "com.dooshek.factreader"
	dbusObjectPath  = "/com/dooshek/factreader/Reader"
	dbusInterface   = "com.dooshek.factreader.Reader"
)

// ErrBusy is returned when a reading is requested while another one runs
var ErrBusy = errors.New("a reading is already in progress")

// Runner runs a single reading session
type Runner interface {
	Run(ctx context.Context) ([]string, error)
}

// SessionFactory builds a session that reads count facts
type SessionFactory func(count int) (Runner, error)

// Server implements D-Bus service for factreader
type Server struct {
	conn       *dbus.Conn
	newSession SessionFactory
	statsJSON  func() (string, error)
	ctx        context.Context
	cancel     context.CancelFunc
	mu         sync.Mutex
	reading    bool
	wg         sync.WaitGroup
}

// NewServer creates a new D-Bus server instance
func NewServer(ctx context.Context, newSession SessionFactory, statsJSON func() (string, error)) *Server {
	ctx, cancel := context.WithCancel(ctx)

	return &Server{
		newSession: newSession,
		statsJSON:  statsJSON,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start starts the D-Bus server
func (s *Server) Start() error {
	var err error
	s.conn, err = dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	reply, err := s.conn.RequestName(dbusServiceName, dbus.NameFlagDoNotQueue)
	if err != nil {
		s.conn.Close()
		return fmt.Errorf("failed to request name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		s.conn.Close()
		return fmt.Errorf("name already taken")
	}

	err = s.conn.Export(s, dbusObjectPath, dbusInterface)
	if err != nil {
		s.conn.Close()
		return fmt.Errorf("failed to export object: %w", err)
	}

	err = s.conn.Export(introspect.NewIntrospectable(introspectNode()), dbusObjectPath, "org.freedesktop.DBus.Introspectable")
	if err != nil {
		s.conn.Close()
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	logger.Infof("🔌 D-Bus service started: %s", dbusServiceName)
	logger.Infof("💡 Read facts with: dbus-send --session --dest=%s %s %s.ReadFacts int32:3",
		dbusServiceName, dbusObjectPath, dbusInterface)

	return nil
}

func introspectNode() *introspect.Node {
	return &introspect.Node{
		Name: dbusObjectPath,
		Interfaces: []introspect.Interface{{
			Name: dbusInterface,
			Methods: []introspect.Method{
				{
					Name: "ReadFacts",
					Args: []introspect.Arg{
						{Name: "count", Type: "i", Direction: "in"},
					},
				},
				{
					Name: "GetStatus",
					Args: []introspect.Arg{
						{Name: "is_reading", Type: "b", Direction: "out"},
					},
				},
				{
					Name: "GetStats",
					Args: []introspect.Arg{
						{Name: "stats", Type: "s", Direction: "out"},
					},
				},
			},
			Signals: []introspect.Signal{
				{
					Name: "FactsRead",
					Args: []introspect.Arg{
						{Name: "count", Type: "i"},
					},
				},
				{
					Name: "ReadingError",
					Args: []introspect.Arg{
						{Name: "error", Type: "s"},
					},
				},
			},
		}},
	}
}

// Stop cancels a running session, waits for it and closes the connection
func (s *Server) Stop() {
	s.cancel()
	s.wg.Wait()
	if s.conn != nil {
		s.conn.Close()
	}
	logger.Infof("🔌 D-Bus service stopped")
}

// Wait waits for the server context to be cancelled
func (s *Server) Wait() {
	<-s.ctx.Done()
}

// ReadFacts starts reading count facts in the background (D-Bus method)
func (s *Server) ReadFacts(count int32) *dbus.Error {
	logger.Debugf("D-Bus: ReadFacts(%d) called", count)

	if count < 1 {
		return dbus.MakeFailedError(fmt.Errorf("count must be positive, got %d", count))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reading {
		return dbus.MakeFailedError(ErrBusy)
	}

	session, err := s.newSession(int(count))
	if err != nil {
		return dbus.MakeFailedError(err)
	}

	s.reading = true
	s.wg.Add(1)
	go s.runSession(session)

	return nil
}

func (s *Server) runSession(session Runner) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		s.reading = false
		s.mu.Unlock()
	}()

	spoken, err := session.Run(s.ctx)
	if err != nil {
		logger.Error("D-Bus: Reading failed", err)
		s.emitSignal("ReadingError", err.Error())
		return
	}
	s.emitSignal("FactsRead", int32(len(spoken)))
}

// GetStatus reports whether a reading is in progress (D-Bus method)
func (s *Server) GetStatus() (bool, *dbus.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reading, nil
}

// GetStats returns the usage statistics as JSON (D-Bus method)
func (s *Server) GetStats() (string, *dbus.Error) {
	data, err := s.statsJSON()
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return data, nil
}

// emitSignal emits a D-Bus signal
func (s *Server) emitSignal(name string, args ...interface{}) {
	if s.conn == nil {
		logger.Debugf("D-Bus: Cannot emit signal %s - no connection", name)
		return
	}

	err := s.conn.Emit(dbus.ObjectPath(dbusObjectPath), dbusInterface+"."+name, args...)
	if err != nil {
		logger.Errorf("D-Bus: Failed to emit signal %s", err, name)
	} else {
		logger.Debugf("D-Bus: Emitted signal: %s", name)
	}
}
