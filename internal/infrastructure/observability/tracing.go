package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "persona-chat"

// Attribute keys set on chat spans.
const (
	AttrUserID          = attribute.Key("chat.user_id")
	AttrConversationID  = attribute.Key("chat.conversation_id")
	AttrStreamCommitted = attribute.Key("chat.stream_committed")
	AttrRequestID       = attribute.Key("request.id")
)

// Tracer is the service tracer; it resolves against whatever provider Setup installed.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartTurnSpan opens the span covering one chat turn from body parsing to the assistant write.
func StartTurnSpan(ctx context.Context, userID string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "chat.turn", trace.WithAttributes(AttrUserID.String(userID)))
}

// EndTurnSpan closes a turn span. committed tells whether any answer bytes reached the client before err.
func EndTurnSpan(span trace.Span, conversationID string, committed bool, err error) {
	if conversationID != "" {
		span.SetAttributes(AttrConversationID.String(conversationID))
	}
	span.SetAttributes(AttrStreamCommitted.Bool(committed))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// RecordError marks the span in ctx as failed.
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if err == nil || !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// TraceIDs returns the trace and span id in ctx, both empty when ctx carries no valid span.
func TraceIDs(ctx context.Context) (traceID, spanID string) {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return "", ""
	}
	return sc.TraceID().String(), sc.SpanID().String()
}
