package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigActive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{name: "no endpoint", cfg: Config{Enabled: true}, want: false},
		{name: "disabled", cfg: Config{Endpoint: "http://localhost:4318", Enabled: false}, want: false},
		{name: "enabled", cfg: Config{Endpoint: "http://localhost:4318", Enabled: true}, want: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.cfg.active())
		})
	}
}

func TestSamplerFollowsRatio(t *testing.T) {
	t.Parallel()

	assert.Contains(t, Config{SampleRatio: 1}.sampler().Description(), "AlwaysOnSampler")
	assert.Contains(t, Config{SampleRatio: 0}.sampler().Description(), "AlwaysOffSampler")
	assert.Contains(t, Config{SampleRatio: 0.25}.sampler().Description(), "TraceIDRatioBased{0.25}")
}

func TestSetupInactiveIsNoop(t *testing.T) {
	t.Parallel()

	shutdown, err := Setup(context.Background(), "test-service", Config{Enabled: true})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetupFromEnvReadsEndpoint(t *testing.T) {
	// Non-routable address: nothing is exported.
	t.Setenv("WEDDING_OTEL_ENDPOINT", "http://192.0.2.1:4318")
	t.Setenv("WEDDING_OTEL_SAMPLE_RATIO", "0")

	shutdown, err := SetupFromEnv(context.Background(), "test-service")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetupFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("WEDDING_OTEL_ENABLED", "maybe")

	_, err := SetupFromEnv(context.Background(), "test-service")
	require.Error(t, err)
}

func TestTracerStartsSpan(t *testing.T) {
	t.Parallel()

	_, span := Tracer("/wedding/rsvp").Start(context.Background(), "test")
	defer span.End()
	assert.NotNil(t, span)
}
