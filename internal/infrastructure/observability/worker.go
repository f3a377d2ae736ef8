package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Job identifies one background job for tracing.
type Job struct {
	Kind           string
	ConversationID string
	RequestID      string
}

// JobInstrumenter traces background jobs of one worker pool and records their latency and outcome
// through the OpenTelemetry meter installed by Setup.
type JobInstrumenter struct {
	pool     attribute.KeyValue
	inFlight metric.Int64UpDownCounter
	latency  metric.Float64Histogram
	outcomes metric.Int64Counter
}

func NewJobInstrumenter(pool string) (*JobInstrumenter, error) {
	meter := otel.Meter(tracerName)

	inFlight, err := meter.Int64UpDownCounter("persona_background_jobs_in_flight",
		metric.WithDescription("Background jobs currently running"))
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram("persona_background_job_seconds",
		metric.WithDescription("Background job latency"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	outcomes, err := meter.Int64Counter("persona_background_jobs",
		metric.WithDescription("Finished background jobs by outcome"))
	if err != nil {
		return nil, err
	}

	return &JobInstrumenter{
		pool:     attribute.String("worker.pool", pool),
		inFlight: inFlight,
		latency:  latency,
		outcomes: outcomes,
	}, nil
}

// Run executes fn in a "<pool>.<kind>" span. The span is a root linked to nothing: the request that
// queued the job has usually finished by the time it runs, so only its request id is kept.
func (j *JobInstrumenter) Run(ctx context.Context, job Job, fn func(context.Context) error) error {
	poolAttr := metric.WithAttributes(j.pool)
	j.inFlight.Add(ctx, 1, poolAttr)
	defer j.inFlight.Add(ctx, -1, poolAttr)

	ctx, span := Tracer().Start(ctx, j.pool.Value.AsString()+"."+job.Kind,
		trace.WithNewRoot(),
		trace.WithAttributes(
			j.pool,
			AttrConversationID.String(job.ConversationID),
			AttrRequestID.String(job.RequestID),
		),
	)
	defer span.End()

	started := time.Now()
	err := fn(ctx)

	outcome := "ok"
	if err != nil {
		outcome = "failed"
		RecordError(ctx, err)
	}
	attrs := metric.WithAttributes(j.pool, attribute.String("job.kind", job.Kind), attribute.String("outcome", outcome))
	j.latency.Record(ctx, time.Since(started).Seconds(), attrs)
	j.outcomes.Add(ctx, 1, attrs)
	return err
}
