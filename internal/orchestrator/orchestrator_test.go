package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lighter/internal/environment"
	"lighter/internal/reporting"
)

var chain = map[string][]string{"b": {"a"}, "c": {"b"}}

func TestStart_DependenciesFirst(t *testing.T) {
	w := newWorld(t, chain, "a", "b", "c")
	rec := &reporting.Recorder{}
	orch := New(w.registry, rec)

	started, err := orch.Start(context.Background(), w.envs["c"])
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names(started))
	assert.Equal(t, []string{"a", "b", "c"}, rec.Completed(reporting.ActionStart))

	started, err = orch.Start(context.Background(), w.envs["c"])
	require.NoError(t, err)
	assert.Empty(t, started)
}

func TestStart_DiamondStartsSharedDependencyOnce(t *testing.T) {
	deps := map[string][]string{"b": {"a"}, "c": {"a"}, "d": {"b", "c"}}
	w := newWorld(t, deps, "a", "b", "c", "d")
	orch := New(w.registry, nil)

	started, err := orch.Start(context.Background(), w.envs["d"])
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, names(started))
	assert.Equal(t, []string{"start a", "start b", "start c", "start d"}, w.journal)
}

func TestStart_RetriesOnceAfterFailure(t *testing.T) {
	w := newWorld(t, nil, "a")
	w.envs["a"].failingStarts = 1
	rec := &reporting.Recorder{}
	orch := New(w.registry, rec)

	started, err := orch.Start(context.Background(), w.envs["a"])
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names(started))
	assert.Equal(t, []string{"start a", "stop a", "start a"}, w.journal)

	var retried bool
	for _, u := range rec.Updates() {
		retried = retried || u.Action == reporting.ActionRetry
	}
	assert.True(t, retried)
}

func TestStart_RetryIsReportedOnTheStartLine(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	w := newWorld(t, chain, "a", "b")
	w.envs["b"].failingStarts = 1
	var buf bytes.Buffer
	orch := New(w.registry, reporting.NewConsoleReporter(&buf))

	_, err := orch.Start(context.Background(), w.envs["b"])
	require.NoError(t, err)
	assert.Equal(t, "Starting Env a... Done\nStarting Env b... retrying... Done\n", buf.String())
}

func TestStart_FailsAfterSecondFailure(t *testing.T) {
	w := newWorld(t, chain, "a", "b", "c")
	w.envs["b"].failingStarts = 2
	orch := New(w.registry, nil)

	started, err := orch.Start(context.Background(), w.envs["c"])
	require.ErrorIs(t, err, environment.ErrStartFailure)
	assert.Contains(t, err.Error(), `"b"`)
	assert.Equal(t, []string{"a"}, names(started))
	assert.NotContains(t, w.journal, "start c")
}

func TestStart_CommandErrorIsNotRetried(t *testing.T) {
	w := newWorld(t, nil, "a")
	boom := errors.New("boom")
	w.envs["a"].startErr = boom
	orch := New(w.registry, nil)

	_, err := orch.Start(context.Background(), w.envs["a"])
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"start a"}, w.journal)
}

func TestStart_UnknownDependency(t *testing.T) {
	w := newWorld(t, map[string][]string{"a": {"ghost"}}, "a")
	orch := New(w.registry, nil)

	_, err := orch.Start(context.Background(), w.envs["a"])
	require.ErrorIs(t, err, environment.ErrNotFound)
	assert.Contains(t, err.Error(), `"a"`)
}

func TestStart_DetectsCycle(t *testing.T) {
	w := newWorld(t, map[string][]string{"a": {"b"}, "b": {"c"}, "c": {"a"}}, "a", "b", "c")
	orch := New(w.registry, nil)

	_, err := orch.Start(context.Background(), w.envs["a"])
	require.ErrorIs(t, err, ErrDependencyCycle)
	assert.Contains(t, err.Error(), "a -> b -> c -> a")
	assert.Empty(t, w.journal)
}

func TestStop_DependentsFirst(t *testing.T) {
	w := newWorld(t, chain, "a", "b", "c")
	orch := New(w.registry, nil)
	_, err := orch.Start(context.Background(), w.envs["c"])
	require.NoError(t, err)

	stopped, err := orch.Stop(context.Background(), w.envs["a"])
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, names(stopped))

	stopped, err = orch.Stop(context.Background(), w.envs["a"])
	require.NoError(t, err)
	assert.Empty(t, stopped)
}

func TestStop_DetectsCycle(t *testing.T) {
	w := newWorld(t, map[string][]string{"a": {"b"}, "b": {"a"}}, "a", "b")
	w.envs["a"].started = true
	w.envs["b"].started = true
	orch := New(w.registry, nil)

	_, err := orch.Stop(context.Background(), w.envs["a"])
	require.ErrorIs(t, err, ErrDependencyCycle)
	assert.Contains(t, err.Error(), "a -> b -> a")
}

func TestRestart_RestoresDependencyOrder(t *testing.T) {
	w := newWorld(t, chain, "a", "b", "c")
	orch := New(w.registry, nil)
	_, err := orch.Start(context.Background(), w.envs["c"])
	require.NoError(t, err)
	w.journal = nil

	started, err := orch.Restart(context.Background(), w.envs["a"])
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names(started))
	assert.Equal(t, []string{"stop c", "stop b", "stop a", "start a", "start b", "start c"}, w.journal)
}

func TestRestart_NotRunning(t *testing.T) {
	w := newWorld(t, nil, "a")
	rec := &reporting.Recorder{}
	orch := New(w.registry, rec)

	started, err := orch.Restart(context.Background(), w.envs["a"])
	require.NoError(t, err)
	assert.Empty(t, started)
	assert.Equal(t, []string{"Env a is not running."}, rec.Notices())
	assert.Empty(t, w.journal)
}

func TestBatch_EmptyNamesMeansAll(t *testing.T) {
	w := newWorld(t, chain, "a", "b", "c")
	orch := New(w.registry, nil)

	started, err := orch.StartAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names(started))

	stopped, err := orch.StopAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, names(stopped))

	_, err = orch.StartAll(context.Background(), []string{"ghost"})
	assert.ErrorIs(t, err, environment.ErrNotFound)
}

func TestRestartAll_AbortsOnFirstFailure(t *testing.T) {
	w := newWorld(t, nil, "a", "b")
	w.envs["a"].started = true
	w.envs["b"].started = true
	boom := errors.New("boom")
	w.envs["a"].startErr = boom
	orch := New(w.registry, nil)

	err := orch.RestartAll(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
	assert.NotContains(t, w.journal, "stop b")
}

func newBuildWorld(t *testing.T) (*world, buildableEnv) {
	t.Helper()
	w := &world{registry: &environment.Registry{}, envs: map[string]*fakeEnv{}}
	for _, name := range []string{"a", "b", "c"} {
		w.envs[name] = &fakeEnv{name: name, deps: chain[name], journal: &w.journal}
	}
	b := buildableEnv{w.envs["b"]}
	b.hasInit = true
	require.NoError(t, w.registry.Add(w.envs["a"]))
	require.NoError(t, w.registry.Add(b))
	require.NoError(t, w.registry.Add(w.envs["c"]))
	return w, b
}

func TestBuild_RestartLeavesStoppedEnvironmentStopped(t *testing.T) {
	w, b := newBuildWorld(t)
	orch := New(w.registry, nil)

	require.NoError(t, orch.Build(context.Background(), b, BuildOptions{Restart: true}))
	assert.Equal(t, []string{"build b"}, w.journal, "a stopped env is not started by a build")
}

func TestBuild_RestartKeepsDependentsRunning(t *testing.T) {
	w, b := newBuildWorld(t)
	orch := New(w.registry, nil)
	_, err := orch.Start(context.Background(), w.envs["c"])
	require.NoError(t, err)
	w.journal = nil

	require.NoError(t, orch.Build(context.Background(), b, BuildOptions{Restart: true}))
	assert.Equal(t, []string{"build b", "stop b", "start b", "init b"}, w.journal)
	assert.True(t, w.envs["c"].started)
}

func TestBuild_SkipInit(t *testing.T) {
	w, b := newBuildWorld(t)
	b.started = true
	orch := New(w.registry, nil)

	require.NoError(t, orch.Build(context.Background(), b, BuildOptions{Restart: true, SkipInit: true}))
	assert.NotContains(t, w.journal, "init b")
}

func TestBuild_Failure(t *testing.T) {
	w, b := newBuildWorld(t)
	b.buildErr = environment.ErrBuildFailure
	rec := &reporting.Recorder{}
	orch := New(w.registry, rec)

	err := orch.BuildAll(context.Background(), nil, BuildOptions{})
	require.ErrorIs(t, err, environment.ErrBuildFailure)
	last := rec.Updates()[len(rec.Updates())-1]
	assert.Equal(t, reporting.PhaseFailed, last.Phase)
	assert.Equal(t, "b", last.Environment)
}

func TestBuildAll_SkipsNonBuildable(t *testing.T) {
	w, _ := newBuildWorld(t)
	orch := New(w.registry, nil)

	require.NoError(t, orch.BuildAll(context.Background(), nil, BuildOptions{}))
	assert.Equal(t, []string{"build b"}, w.journal)

	err := orch.Build(context.Background(), w.envs["a"], BuildOptions{})
	assert.ErrorIs(t, err, environment.ErrBuildFailure)
}

func TestStartOne_WithMockEnvironment(t *testing.T) {
	env := &mockEnvironment{}
	ctx := context.Background()
	env.On("Name").Return("svc")
	env.On("Description").Return("Service")
	env.On("Dependencies").Return(nil)
	env.On("IsStarted", ctx, true).Return(false, nil).Once()
	env.On("Start", ctx).Return(nil).Twice()
	env.On("HasError", ctx).Return(true, nil).Once()
	env.On("Stop", ctx).Return(nil).Once()
	env.On("HasError", ctx).Return(false, nil).Once()

	reg := &environment.Registry{}
	require.NoError(t, reg.Add(env))

	started, err := New(reg, nil).Start(ctx, env)
	require.NoError(t, err)
	assert.Equal(t, []string{"svc"}, names(started))
	env.AssertExpectations(t)
	env.AssertNotCalled(t, "IsStarted", mock.Anything, false)
}
