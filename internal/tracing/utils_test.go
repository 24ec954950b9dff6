package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/fresh/internal/logger"
)

func withMockTracer(t *testing.T) *mocktracer.MockTracer {
	tracer := mocktracer.New()
	previous := opentracing.GlobalTracer()
	opentracing.SetGlobalTracer(tracer)
	t.Cleanup(func() { opentracing.SetGlobalTracer(previous) })
	return tracer
}

func TestTraceErr_MarksSpan(t *testing.T) {
	tracer := withMockTracer(t)

	span, _ := StartTracerSpan(context.Background(), "reset.initiate")
	TagSite(span, "hackernews")
	TagPhase(span, "initiate")
	TraceErr(span, errors.New("boom"))
	span.Finish()

	finished := tracer.FinishedSpans()
	require.Len(t, finished, 1)
	assert.Equal(t, true, finished[0].Tag("error"))
	assert.Equal(t, "hackernews", finished[0].Tag(SpanTagSite))
	assert.Equal(t, "initiate", finished[0].Tag(SpanTagPhase))
}

func TestTraceErr_NilIsNoop(t *testing.T) {
	tracer := withMockTracer(t)

	span, _ := StartTracerSpan(context.Background(), "noop")
	TraceErr(span, nil)
	TraceErr(nil, errors.New("ignored"))
	span.Finish()

	assert.Nil(t, tracer.FinishedSpans()[0].Tag("error"))
}

func TestRecoverAndLogToJaeger(t *testing.T) {
	tracer := withMockTracer(t)

	assert.NotPanics(t, func() {
		defer RecoverAndLogToJaeger(logger.NewNopLogger())
		panic("kaboom")
	})
	require.Len(t, tracer.FinishedSpans(), 1)
	assert.Equal(t, "panic-recovery", tracer.FinishedSpans()[0].OperationName)
}

func TestInitJaeger_EndpointOverridesAgent(t *testing.T) {
	cfg := initJaeger(&JaegerConfig{ServiceName: "fresh", Endpoint: "http://collector:14268/api/traces"})
	assert.Equal(t, "http://collector:14268/api/traces", cfg.Reporter.CollectorEndpoint)
	assert.Empty(t, cfg.Reporter.LocalAgentHostPort)
	assert.True(t, cfg.Disabled)

	cfg = initJaeger(&JaegerConfig{ServiceName: "fresh", AgentHost: "jaeger", AgentPort: "6831", Enabled: true})
	assert.Equal(t, "jaeger:6831", cfg.Reporter.LocalAgentHostPort)
	assert.False(t, cfg.Disabled)
}
