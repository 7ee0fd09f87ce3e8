// Package compute orchestrates model runs: build the specification from a
// GeoPackage, validate it, assemble the solver calls, solve, and persist the
// rendered artifacts. Every run is journaled and measured.
package compute

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aemcore/internal/artifact"
	"aemcore/internal/geopackage"
	"aemcore/internal/journal"
	"aemcore/pkg/elements"
	"aemcore/pkg/schema"
	"aemcore/pkg/solver"
	"aemcore/pkg/solver/script"
)

// Operation names used for journaling and metrics.
const (
	OperationValidate  = "validate"
	OperationSteady    = "steady"
	OperationTransient = "transient"
)

// Request describes one compute run.
type Request struct {
	// RunID is assigned when empty.
	RunID string `json:"run_id,omitempty"`
	// Path locates the GeoPackage holding the model input.
	Path string `json:"path"`
	// Transient selects the transient pipeline over the steady one.
	Transient bool `json:"transient"`
	// Active filters elements by their steady table name; missing entries
	// default to active.
	Active map[string]bool `json:"active,omitempty"`
	// Cellsize, when positive, appends a head-grid evaluation to the
	// rendered script using the domain extent.
	Cellsize float64 `json:"cellsize,omitempty"`
}

// Result is the outcome of a validate or compute call.
type Result struct {
	RunID        string        `json:"run_id"`
	Operation    string        `json:"operation"`
	Report       schema.Report `json:"report,omitempty"`
	ElementNames []string      `json:"element_names,omitempty"`
	Times        []float64     `json:"times,omitempty"`
	Script       string        `json:"script,omitempty"`
	Artifacts    []string      `json:"artifacts,omitempty"`
}

// Config wires the service's collaborators. Zero fields get working
// in-process defaults.
type Config struct {
	Journal   journal.Journal
	Artifacts artifact.Store
	Metrics   MetricsRecorder
	Logger    *zap.Logger
	// OpenStore maps a request path to a table reader. Defaults to the
	// GeoPackage store.
	OpenStore func(path string) elements.TableReader
	// NewEngine constructs the solver backend for one run. Defaults to the
	// recording engine, which captures the calls for script rendering.
	NewEngine func() solver.Engine
	NewID     func() string
	Clock     func() time.Time
}

// Service runs the validate/compute pipeline.
type Service struct {
	catalogue *elements.Catalogue
	journal   journal.Journal
	artifacts artifact.Store
	metrics   MetricsRecorder
	logger    *zap.Logger
	openStore func(path string) elements.TableReader
	newEngine func() solver.Engine
	newID     func() string
	now       func() time.Time
}

// NewService constructs a Service from cfg.
func NewService(cfg Config) *Service {
	s := &Service{
		catalogue: elements.NewCatalogue(),
		journal:   cfg.Journal,
		artifacts: cfg.Artifacts,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		openStore: cfg.OpenStore,
		newEngine: cfg.NewEngine,
		newID:     cfg.NewID,
		now:       cfg.Clock,
	}
	if s.journal == nil {
		s.journal = journal.NewMemory()
	}
	if s.artifacts == nil {
		s.artifacts = artifact.NewMemory()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.openStore == nil {
		s.openStore = func(path string) elements.TableReader {
			return geopackage.NewStore(path)
		}
	}
	if s.newEngine == nil {
		s.newEngine = func() solver.Engine { return &solver.RecordingEngine{} }
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// Validate builds the specification and returns its validation report
// without assembling or solving.
func (s *Service) Validate(ctx context.Context, req Request) (Result, error) {
	started := s.now()
	result := Result{RunID: s.ensureRunID(req.RunID), Operation: OperationValidate}
	run := s.openRun(ctx, result.RunID, req.Path, OperationValidate)

	_, report, err := elements.BuildAndValidate(s.openStore(req.Path), req.Active, req.Transient)
	if err != nil {
		s.finishRun(ctx, run, started, fmt.Errorf("build specification: %w", err))
		return Result{}, fmt.Errorf("build specification: %w", err)
	}
	result.Report = report
	run.Report, _ = json.Marshal(report)
	s.finishRun(ctx, run, started, nil)
	s.logger.Info("validated model",
		zap.String("run", result.RunID),
		zap.String("path", req.Path),
		zap.Bool("transient", req.Transient),
		zap.Int("defective_tables", len(report)))
	return result, nil
}

// Compute runs the full pipeline. A validation defect is not an error: the
// report comes back in the Result and the run is journaled as failed.
func (s *Service) Compute(ctx context.Context, req Request) (Result, error) {
	started := s.now()
	operation := OperationSteady
	if req.Transient {
		operation = OperationTransient
	}
	result := Result{RunID: s.ensureRunID(req.RunID), Operation: operation}
	run := s.openRun(ctx, result.RunID, req.Path, operation)

	spec, report, err := elements.BuildAndValidate(s.openStore(req.Path), req.Active, req.Transient)
	if err != nil {
		s.finishRun(ctx, run, started, fmt.Errorf("build specification: %w", err))
		return Result{}, fmt.Errorf("build specification: %w", err)
	}
	if !report.Empty() {
		result.Report = report
		run.Report, _ = json.Marshal(report)
		s.finishRun(ctx, run, started, fmt.Errorf("validation found defects in %d tables", len(report)))
		s.logger.Warn("model rejected by validation",
			zap.String("run", result.RunID),
			zap.Strings("tables", report.Names()))
		return result, nil
	}

	engine := s.newEngine()
	asm, err := elements.Assemble(spec, s.catalogue, engine, req.Transient)
	if err != nil {
		s.finishRun(ctx, run, started, fmt.Errorf("assemble model: %w", err))
		return Result{}, fmt.Errorf("assemble model: %w", err)
	}
	if err := asm.Model.Solve(); err != nil {
		s.finishRun(ctx, run, started, fmt.Errorf("solve: %w", err))
		return Result{}, fmt.Errorf("solve: %w", err)
	}
	result.ElementNames = asm.ElementNames
	result.Times = asm.Times

	if recorded, ok := asm.Model.(*solver.RecordingModel); ok {
		opts := script.Options{Transient: req.Transient}
		if req.Cellsize > 0 {
			extent, err := elements.DomainExtent(spec.Domain.Table)
			if err != nil {
				s.finishRun(ctx, run, started, fmt.Errorf("domain extent: %w", err))
				return Result{}, fmt.Errorf("domain extent: %w", err)
			}
			grid, err := GridFor(extent, req.Cellsize)
			if err != nil {
				s.finishRun(ctx, run, started, err)
				return Result{}, err
			}
			opts.Grid = grid
		}
		result.Script = script.Render(recorded, opts)
	}

	keys, err := s.storeArtifacts(ctx, &result)
	if err != nil {
		s.finishRun(ctx, run, started, err)
		return Result{}, err
	}
	result.Artifacts = keys
	run.Artifacts = keys
	run.Report, _ = json.Marshal(report)
	s.finishRun(ctx, run, started, nil)
	s.logger.Info("computed model",
		zap.String("run", result.RunID),
		zap.String("path", req.Path),
		zap.String("operation", operation),
		zap.Int("elements", len(result.ElementNames)))
	return result, nil
}

// ComputeSteady runs the steady pipeline.
func (s *Service) ComputeSteady(ctx context.Context, req Request) (Result, error) {
	req.Transient = false
	return s.Compute(ctx, req)
}

// ComputeTransient runs the transient pipeline.
func (s *Service) ComputeTransient(ctx context.Context, req Request) (Result, error) {
	req.Transient = true
	return s.Compute(ctx, req)
}

func (s *Service) ensureRunID(id string) string {
	if strings.TrimSpace(id) == "" {
		return s.newID()
	}
	return id
}

func (s *Service) openRun(ctx context.Context, id, path, operation string) *journal.Run {
	now := s.now()
	run := &journal.Run{
		ID:        id,
		ModelPath: path,
		Operation: operation,
		Status:    journal.StatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.journal.Record(ctx, *run); err != nil {
		s.logger.Warn("journal write failed", zap.String("run", id), zap.Error(err))
	}
	return run
}

func (s *Service) finishRun(ctx context.Context, run *journal.Run, started time.Time, opErr error) {
	now := s.now()
	run.UpdatedAt = now
	run.CompletedAt = &now
	if opErr != nil {
		run.Status = journal.StatusFailed
		run.Error = opErr.Error()
	} else {
		run.Status = journal.StatusSucceeded
	}
	if err := s.journal.Record(ctx, *run); err != nil {
		s.logger.Warn("journal write failed", zap.String("run", run.ID), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.Observe(ctx, run.Operation, opErr == nil, now.Sub(started))
	}
}

func (s *Service) storeArtifacts(ctx context.Context, result *Result) ([]string, error) {
	var keys []string
	if result.Script != "" {
		key := fmt.Sprintf("runs/%s/model.py", result.RunID)
		if _, err := s.artifacts.Put(ctx, key, strings.NewReader(result.Script), artifact.PutOptions{
			ContentType: "text/x-python",
			Metadata:    map[string]string{"operation": result.Operation},
		}); err != nil {
			return nil, fmt.Errorf("store script: %w", err)
		}
		keys = append(keys, key)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	key := fmt.Sprintf("runs/%s/report.json", result.RunID)
	if _, err := s.artifacts.Put(ctx, key, strings.NewReader(string(payload)), artifact.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"operation": result.Operation},
	}); err != nil {
		return nil, fmt.Errorf("store report: %w", err)
	}
	return append(keys, key), nil
}
