package tracing

import (
	"context"
	"runtime"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/opentracing/opentracing-go/log"

	"github.com/customeros/fresh/internal/logger"
)

const (
	SpanTagSite      = "site"
	SpanTagAttemptId = "attempt-id"
	SpanTagPhase     = "phase"
	SpanTagComponent = "component"
)

const (
	SpanTagComponentCronJob    = "cronJob"
	SpanTagComponentService    = "service"
	SpanTagComponentHttpClient = "httpClient"
	SpanTagComponentMailbox    = "mailbox"
	SpanTagComponentRest       = "rest"
)

func StartTracerSpan(ctx context.Context, operationName string) (opentracing.Span, context.Context) {
	return opentracing.StartSpanFromContext(ctx, operationName)
}

func TraceErr(span opentracing.Span, err error, fields ...log.Field) {
	if span == nil || err == nil {
		return
	}
	ext.LogError(span, err, fields...)
}

func TagSite(span opentracing.Span, site string) {
	if site != "" {
		span.SetTag(SpanTagSite, site)
	}
}

func TagAttempt(span opentracing.Span, attemptId string) {
	if attemptId != "" {
		span.SetTag(SpanTagAttemptId, attemptId)
	}
}

func TagPhase(span opentracing.Span, phase string) {
	span.SetTag(SpanTagPhase, phase)
}

func TagComponentCronJob(span opentracing.Span) {
	span.SetTag(SpanTagComponent, SpanTagComponentCronJob)
}

func TagComponentService(span opentracing.Span) {
	span.SetTag(SpanTagComponent, SpanTagComponentService)
}

func TagComponentHttpClient(span opentracing.Span) {
	span.SetTag(SpanTagComponent, SpanTagComponentHttpClient)
}

func TagComponentMailbox(span opentracing.Span) {
	span.SetTag(SpanTagComponent, SpanTagComponentMailbox)
}

func TagComponentRest(span opentracing.Span) {
	span.SetTag(SpanTagComponent, SpanTagComponentRest)
}

func RecoveryWithJaeger(tracer opentracing.Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				span := tracer.StartSpan("panic-recovery")
				defer span.Finish()

				buf := make([]byte, 4096)
				stackSize := runtime.Stack(buf, false)
				span.LogKV(
					"event", "error",
					"error.object", r,
					"stack", string(buf[:stackSize]),
				)
				span.SetTag("error", true)
				panic(r)
			}
		}()
		c.Next()
	}
}

func RecoverAndLogToJaeger(appLogger logger.Logger) {
	if r := recover(); r != nil {
		tracer := opentracing.GlobalTracer()
		span := tracer.StartSpan("panic-recovery")
		defer span.Finish()

		stackTrace := string(debug.Stack())
		span.LogKV(
			"event", "error",
			"error.object", r,
			"stack", stackTrace,
		)
		span.SetTag("error", true)

		appLogger.Errorf("Recovered from panic: %v\nStack trace:\n%s", r, stackTrace)
	}
}
