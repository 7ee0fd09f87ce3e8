package compute

import (
	"context"
	"fmt"
	"sync"
	"time"

	"aemcore/internal/journal"
)

// Job tracks one queued compute request and its outcome.
type Job struct {
	ID          string         `json:"id"`
	Request     Request        `json:"request"`
	Status      journal.Status `json:"status"`
	Error       string         `json:"error,omitempty"`
	Result      *Result        `json:"result,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// Runner executes compute requests asynchronously on a bounded queue.
type Runner struct {
	service *Service

	queue chan string
	mu    sync.RWMutex
	jobs  map[string]*Job

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner constructs a runner with the given queue depth.
func NewRunner(service *Service, queueDepth int) *Runner {
	if queueDepth <= 0 {
		queueDepth = 32
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		service: service,
		queue:   make(chan string, queueDepth),
		jobs:    make(map[string]*Job),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins processing queued requests.
func (r *Runner) Start() {
	r.wg.Add(1)
	go r.loop()
}

// Stop signals the runner to halt and waits for completion.
func (r *Runner) Stop(ctx context.Context) error {
	r.cancel()
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) loop() {
	defer r.wg.Done()
	for {
		select {
		case <-r.ctx.Done():
			return
		case id := <-r.queue:
			r.process(id)
		}
	}
}

// Enqueue schedules a compute request and returns the queued job snapshot.
func (r *Runner) Enqueue(ctx context.Context, req Request) (Job, error) {
	if req.Path == "" {
		return Job{}, fmt.Errorf("model path required")
	}
	id := req.RunID
	if id == "" {
		id = r.service.newID()
		req.RunID = id
	}

	now := r.service.now()
	job := &Job{
		ID:        id,
		Request:   req,
		Status:    journal.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	if _, exists := r.jobs[id]; exists {
		r.mu.Unlock()
		return Job{}, fmt.Errorf("job %s already queued", id)
	}
	r.jobs[id] = job
	snapshot := job.copy()
	r.mu.Unlock()

	select {
	case r.queue <- id:
	default:
		r.mu.Lock()
		delete(r.jobs, id)
		r.mu.Unlock()
		return Job{}, fmt.Errorf("compute queue full")
	}
	return snapshot, nil
}

// GetJob returns a snapshot of the job record.
func (r *Runner) GetJob(id string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	return job.copy(), true
}

func (r *Runner) process(id string) {
	r.mu.RLock()
	job, ok := r.jobs[id]
	var req Request
	if ok {
		req = job.Request
	}
	r.mu.RUnlock()
	if !ok {
		return
	}

	r.update(id, func(j *Job) { j.Status = journal.StatusRunning })

	result, err := r.service.Compute(r.ctx, req)
	now := r.service.now()
	r.update(id, func(j *Job) {
		j.CompletedAt = &now
		if err != nil {
			j.Status = journal.StatusFailed
			j.Error = err.Error()
			return
		}
		j.Result = &result
		if result.Report.Empty() {
			j.Status = journal.StatusSucceeded
		} else {
			j.Status = journal.StatusFailed
			j.Error = "validation found defects"
		}
	})
}

func (r *Runner) update(id string, fn func(*Job)) {
	r.mu.Lock()
	if job, ok := r.jobs[id]; ok {
		fn(job)
		job.UpdatedAt = r.service.now()
	}
	r.mu.Unlock()
}

func (j *Job) copy() Job {
	dup := *j
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		dup.CompletedAt = &t
	}
	return dup
}
