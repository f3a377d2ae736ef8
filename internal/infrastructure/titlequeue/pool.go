package titlequeue

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"persona-chat/internal/domain/title"
	"persona-chat/internal/infrastructure/metrics"
	"persona-chat/internal/infrastructure/observability"
	"persona-chat/internal/utils/platformerrors"
)

// Runner executes one title job.
type Runner interface {
	Generate(ctx context.Context, job title.Job) error
}

// Config contains worker pool configuration.
type Config struct {
	WorkerCount int
	QueueSize   int
	TaskTimeout time.Duration
}

// Pool is a bounded in-memory queue of title jobs drained by a fixed set of workers. Jobs are lost on
// restart; a conversation without a generated title keeps its placeholder.
type Pool struct {
	jobs         chan title.Job
	runner       Runner
	instrumenter *observability.JobInstrumenter
	workerCount  int
	taskTimeout  time.Duration
	log          zerolog.Logger

	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopped  bool
	stopChan chan struct{}
	stopOnce sync.Once
}

var _ title.Dispatcher = (*Pool)(nil)

// NewPool creates a pool; instrumenter may be nil.
func NewPool(runner Runner, instrumenter *observability.JobInstrumenter, cfg Config, log zerolog.Logger) *Pool {
	return &Pool{
		jobs:         make(chan title.Job, max(cfg.QueueSize, 1)),
		runner:       runner,
		instrumenter: instrumenter,
		workerCount:  max(cfg.WorkerCount, 1),
		taskTimeout:  cfg.TaskTimeout,
		log:          log.With().Str("component", "title-worker-pool").Logger(),
		stopChan:     make(chan struct{}),
	}
}

// Enqueue hands job to the workers without blocking. It reports false when the queue is full or the
// pool has stopped.
func (p *Pool) Enqueue(job title.Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return false
	}
	select {
	case p.jobs <- job:
		metrics.TitleQueueDepth.Set(float64(len(p.jobs)))
		return true
	default:
		return false
	}
}

// Start launches the workers. They exit when ctx ends or Stop is called.
func (p *Pool) Start(ctx context.Context) {
	p.log.Info().Int("worker_count", p.workerCount).Int("queue_size", cap(p.jobs)).Msg("starting title workers")
	for i := 1; i <= p.workerCount; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.work(ctx, id)
		}(i)
	}
}

func (p *Pool) work(ctx context.Context, id int) {
	log := p.log.With().Int("worker_id", id).Logger()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopChan:
			return
		case job := <-p.jobs:
			metrics.TitleQueueDepth.Set(float64(len(p.jobs)))
			p.process(ctx, log, job)
		}
	}
}

func (p *Pool) process(ctx context.Context, log zerolog.Logger, job title.Job) {
	// a shutdown in progress still lets the running job finish within its timeout
	jobCtx := platformerrors.WithRequestID(context.WithoutCancel(ctx), job.RequestID)
	if p.taskTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(jobCtx, p.taskTimeout)
		defer cancel()
	}

	run := func(ctx context.Context) error { return p.runner.Generate(ctx, job) }
	var err error
	if p.instrumenter != nil {
		err = p.instrumenter.Run(jobCtx, observability.Job{Kind: "generate", ConversationID: job.ConversationID, RequestID: job.RequestID}, run)
	} else {
		err = run(jobCtx)
	}

	if err != nil {
		metrics.RecordTitleJob("failed")
		log.Warn().Err(err).Str("conversation_id", job.ConversationID).Str("request_id", job.RequestID).Msg("title generation failed")
		return
	}
	metrics.RecordTitleJob("applied")
}

// Stop refuses new jobs and waits for running ones. Jobs still queued are dropped.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		p.mu.Unlock()
		close(p.stopChan)
	})

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.log.Info().Int("dropped", len(p.jobs)).Msg("title workers stopped")
	case <-time.After(30 * time.Second):
		p.log.Warn().Msg("title worker shutdown timed out")
	}
}

// Depth returns the number of queued jobs.
func (p *Pool) Depth() int {
	return len(p.jobs)
}
