// Package server speaks the desktop client's command protocol: one JSON
// object per line over TCP, one response line per request. Compute requests
// run through the compute service; extract and info read GeoPackage layers
// directly.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"

	"aemcore/internal/compute"
	"aemcore/internal/geopackage"
	"aemcore/pkg/tables"
)

// Request is one decoded command line.
type Request struct {
	Operation string          `json:"operation"`
	Path      string          `json:"path,omitempty"`
	Mode      string          `json:"mode,omitempty"` // steady|transient (default steady)
	Active    map[string]bool `json:"active,omitempty"`
	Cellsize  float64         `json:"cellsize,omitempty"`
	Layer     string          `json:"layer,omitempty"`
	RunID     string          `json:"run_id,omitempty"`
	// Async enqueues the compute run and returns immediately with its ID.
	Async bool `json:"async,omitempty"`
}

// Response is one encoded reply line.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Server accepts connections and dispatches command lines.
type Server struct {
	service *compute.Service
	runner  *compute.Runner
	logger  *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New constructs a server. The runner may be nil, which disables async
// compute requests.
func New(service *compute.Service, runner *compute.Runner, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{service: service, runner: runner, logger: logger, ctx: ctx, cancel: cancel}
}

// Listen binds the TCP address and returns the bound address, so callers
// may pass ":0" and discover the port.
func (s *Server) Listen(addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return ln.Addr(), nil
}

// Serve accepts connections until Shutdown. Listen must have been called.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return fmt.Errorf("server not listening")
	}
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Shutdown stops accepting, waits for in-flight connections, and honors the
// context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	s.mu.Lock()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	enc := json.NewEncoder(conn)

	for scanner.Scan() {
		select {
		case <-s.ctx.Done():
			return
		default:
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req Request
		var resp Response
		if err := json.Unmarshal(line, &req); err != nil {
			resp = Response{Success: false, Message: fmt.Sprintf("malformed request: %v", err)}
		} else {
			resp = s.dispatch(req)
		}
		if err := enc.Encode(resp); err != nil {
			s.logger.Warn("write response failed", zap.Error(err))
			return
		}
	}
}

func (s *Server) dispatch(req Request) Response {
	s.logger.Debug("request", zap.String("operation", req.Operation), zap.String("path", req.Path))
	switch req.Operation {
	case "compute":
		return s.handleCompute(req)
	case "validate":
		return s.handleValidate(req)
	case "status":
		return s.handleStatus(req)
	case "extract":
		return s.handleExtract(req)
	case "info":
		return s.handleInfo(req)
	default:
		return Response{Success: false, Message: fmt.Sprintf("unknown operation %q", req.Operation)}
	}
}

func transientMode(mode string) (bool, error) {
	switch mode {
	case "", "steady":
		return false, nil
	case "transient":
		return true, nil
	default:
		return false, fmt.Errorf("unknown mode %q", mode)
	}
}

func (s *Server) handleCompute(req Request) Response {
	transient, err := transientMode(req.Mode)
	if err != nil {
		return Response{Success: false, Message: err.Error()}
	}
	creq := compute.Request{
		RunID:     req.RunID,
		Path:      req.Path,
		Transient: transient,
		Active:    req.Active,
		Cellsize:  req.Cellsize,
	}

	if req.Async {
		if s.runner == nil {
			return Response{Success: false, Message: "async compute not enabled"}
		}
		job, err := s.runner.Enqueue(s.ctx, creq)
		if err != nil {
			return Response{Success: false, Message: err.Error()}
		}
		return Response{Success: true, Message: "queued", Data: map[string]any{"run_id": job.ID}}
	}

	result, err := s.service.Compute(s.ctx, creq)
	if err != nil {
		return Response{Success: false, Message: err.Error()}
	}
	if !result.Report.Empty() {
		return Response{Success: false, Message: "validation found defects", Data: result}
	}
	return Response{Success: true, Data: result}
}

func (s *Server) handleValidate(req Request) Response {
	transient, err := transientMode(req.Mode)
	if err != nil {
		return Response{Success: false, Message: err.Error()}
	}
	result, err := s.service.Validate(s.ctx, compute.Request{
		RunID:     req.RunID,
		Path:      req.Path,
		Transient: transient,
		Active:    req.Active,
	})
	if err != nil {
		return Response{Success: false, Message: err.Error()}
	}
	if !result.Report.Empty() {
		return Response{Success: false, Message: "validation found defects", Data: result}
	}
	return Response{Success: true, Data: result}
}

func (s *Server) handleStatus(req Request) Response {
	if s.runner == nil {
		return Response{Success: false, Message: "async compute not enabled"}
	}
	job, ok := s.runner.GetJob(req.RunID)
	if !ok {
		return Response{Success: false, Message: fmt.Sprintf("unknown run %q", req.RunID)}
	}
	return Response{Success: true, Data: job}
}

func (s *Server) handleExtract(req Request) Response {
	if req.Layer == "" {
		return Response{Success: false, Message: "layer required"}
	}
	table, err := geopackage.NewStore(req.Path).ReadTable(req.Layer)
	if err != nil {
		return Response{Success: false, Message: err.Error()}
	}
	rows := make([]map[string]any, len(table.Rows))
	for i, row := range table.Rows {
		out := make(map[string]any, len(row.Cells)+1)
		for name, cell := range row.Cells {
			out[name] = cellJSON(cell)
		}
		if len(row.Geometry) > 0 {
			coords := make([][2]float64, len(row.Geometry))
			for j, c := range row.Geometry {
				coords[j] = [2]float64{c.X, c.Y}
			}
			out["geometry"] = coords
		}
		rows[i] = out
	}
	return Response{Success: true, Data: map[string]any{"layer": req.Layer, "rows": rows}}
}

func (s *Server) handleInfo(req Request) Response {
	names, err := geopackage.NewStore(req.Path).ListTableNames()
	if err != nil {
		return Response{Success: false, Message: err.Error()}
	}
	return Response{Success: true, Data: map[string]any{"path": req.Path, "layers": names}}
}

func cellJSON(v tables.Value) any {
	switch {
	case v.IsText():
		return v.AsText()
	case v.IsBool():
		return v.AsBool()
	default:
		return v.Num()
	}
}
