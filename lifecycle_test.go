package girder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type lifecycleRecorder struct {
	events *[]string
	name   string

	startErr    error
	stopErr     error
	validateErr error
}

func (r *lifecycleRecorder) Start(ctx context.Context) error {
	*r.events = append(*r.events, "start:"+r.name)
	return r.startErr
}

func (r *lifecycleRecorder) Stop(ctx context.Context) error {
	*r.events = append(*r.events, "stop:"+r.name)
	return r.stopErr
}

func (r *lifecycleRecorder) Validate(ctx context.Context) error {
	*r.events = append(*r.events, "validate:"+r.name)
	return r.validateErr
}

type startOnly struct {
	started bool
}

func (s *startOnly) Start(ctx context.Context) error {
	s.started = true
	return nil
}

func TestLifecycleMethodsResolver(t *testing.T) {
	t.Parallel()

	r := NewLifecycleMethodsResolver()

	full := r.Resolve(&lifecycleRecorder{})
	assert.True(t, full.Start)
	assert.True(t, full.Stop)
	assert.True(t, full.Validate)

	partial := r.Resolve(&startOnly{})
	assert.True(t, partial.Start)
	assert.False(t, partial.Stop)
	assert.False(t, partial.Validate)

	none := r.Resolve("plain string")
	assert.Equal(t, LifecycleMethods{}, none)

	assert.Equal(t, LifecycleMethods{}, r.Resolve(nil))
}

func TestLifecycleManager_StartStopOrder(t *testing.T) {
	t.Parallel()

	m := NewLifecycleManager(discardLogger(), nil)

	var events []string
	m.Notify("a", &lifecycleRecorder{events: &events, name: "a"})
	m.Notify("b", &lifecycleRecorder{events: &events, name: "b"})
	m.Notify("c", &lifecycleRecorder{events: &events, name: "c"})

	ctx := context.Background()
	require.NoError(t, m.Start(ctx))
	require.NoError(t, m.Stop(ctx))

	// Start in notification order, stop reversed.
	assert.Equal(t, []string{
		"start:a", "start:b", "start:c",
		"stop:c", "stop:b", "stop:a",
	}, events)
}

func TestLifecycleManager_StartFailsFast(t *testing.T) {
	t.Parallel()

	m := NewLifecycleManager(discardLogger(), nil)

	var events []string
	boom := errors.New("listen failed")
	m.Notify("a", &lifecycleRecorder{events: &events, name: "a"})
	m.Notify("b", &lifecycleRecorder{events: &events, name: "b", startErr: boom})
	m.Notify("c", &lifecycleRecorder{events: &events, name: "c"})

	ctx := context.Background()
	err := m.Start(ctx)
	require.ErrorIs(t, err, boom)
	assert.True(t, IsLifecycleFailed(err))
	assert.Equal(t, []string{"start:a", "start:b"}, events)

	// Stop only tears down what was started, in reverse.
	events = nil
	require.NoError(t, m.Stop(ctx))
	assert.Equal(t, []string{"stop:b", "stop:a"}, events)
}

func TestLifecycleManager_StopCollectsAllFailures(t *testing.T) {
	t.Parallel()

	m := NewLifecycleManager(discardLogger(), nil)

	var events []string
	errA := errors.New("a failed")
	errC := errors.New("c failed")
	m.Notify("a", &lifecycleRecorder{events: &events, name: "a", stopErr: errA})
	m.Notify("b", &lifecycleRecorder{events: &events, name: "b"})
	m.Notify("c", &lifecycleRecorder{events: &events, name: "c", stopErr: errC})

	ctx := context.Background()
	require.NoError(t, m.Start(ctx))

	err := m.Stop(ctx)
	require.ErrorIs(t, err, errA)
	require.ErrorIs(t, err, errC)

	// All three hooks ran despite the failures.
	assert.Contains(t, events, "stop:a")
	assert.Contains(t, events, "stop:b")
	assert.Contains(t, events, "stop:c")
}

func TestLifecycleManager_ValidateCollectsAllFailures(t *testing.T) {
	t.Parallel()

	m := NewLifecycleManager(discardLogger(), nil)

	var events []string
	errA := errors.New("a invalid")
	m.Notify("a", &lifecycleRecorder{events: &events, name: "a", validateErr: errA})
	m.Notify("b", &lifecycleRecorder{events: &events, name: "b"})

	err := m.Validate(context.Background())
	require.ErrorIs(t, err, errA)
	assert.Equal(t, []string{"validate:a", "validate:b"}, events)
}

func TestLifecycleManager_DeduplicatesInstances(t *testing.T) {
	t.Parallel()

	m := NewLifecycleManager(discardLogger(), nil)

	var events []string
	instance := &lifecycleRecorder{events: &events, name: "shared"}

	// The same instance reached through two keys is managed once.
	m.Notify("app.Service", instance)
	m.Notify("app.ServiceIface", instance)

	assert.Equal(t, []string{"app.Service"}, m.Managed())

	require.NoError(t, m.Start(context.Background()))
	assert.Equal(t, []string{"start:shared"}, events)
}

func TestLifecycleManager_IgnoresNil(t *testing.T) {
	t.Parallel()

	m := NewLifecycleManager(discardLogger(), nil)
	m.Notify("nothing", nil)

	assert.Empty(t, m.Managed())
}

func TestLifecycleManager_StartResumesAfterNewNotifications(t *testing.T) {
	t.Parallel()

	m := NewLifecycleManager(discardLogger(), nil)

	var events []string
	m.Notify("a", &lifecycleRecorder{events: &events, name: "a"})

	ctx := context.Background()
	require.NoError(t, m.Start(ctx))

	// A lazily constructed instance notified after the first Start is
	// picked up by the next one without restarting "a".
	m.Notify("b", &lifecycleRecorder{events: &events, name: "b"})
	require.NoError(t, m.Start(ctx))

	assert.Equal(t, []string{"start:a", "start:b"}, events)
}
