package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lighter/internal/environment"
)

// fakeEnv is a stateful environment that logs lifecycle calls to a shared journal.
type fakeEnv struct {
	name    string
	deps    []string
	journal *[]string

	started bool
	failed  bool
	// failingStarts is the number of upcoming starts that leave failed containers.
	failingStarts int
	startErr      error

	buildErr error
	builds   int
	inits    int
	hasInit  bool
}

func (f *fakeEnv) Name() string           { return f.name }
func (f *fakeEnv) Description() string    { return "Env " + f.name }
func (f *fakeEnv) Dependencies() []string { return f.deps }

func (f *fakeEnv) Start(context.Context) error {
	*f.journal = append(*f.journal, "start "+f.name)
	if f.startErr != nil {
		return f.startErr
	}
	if f.failingStarts > 0 {
		f.failingStarts--
		f.failed = true
		return nil
	}
	f.started, f.failed = true, false
	return nil
}

func (f *fakeEnv) Stop(context.Context) error {
	*f.journal = append(*f.journal, "stop "+f.name)
	f.started, f.failed = false, false
	return nil
}

func (f *fakeEnv) IsStarted(context.Context, bool) (bool, error) { return f.started, nil }
func (f *fakeEnv) HasError(context.Context) (bool, error)        { return f.failed, nil }

func (f *fakeEnv) Status(context.Context) (map[string]environment.Status, error) {
	if f.started {
		return map[string]environment.Status{f.name: environment.StatusStarted}, nil
	}
	return map[string]environment.Status{f.name: environment.StatusStopped}, nil
}

// buildableEnv adds the build and init capabilities.
type buildableEnv struct {
	*fakeEnv
}

func (b buildableEnv) Build(context.Context) error {
	*b.journal = append(*b.journal, "build "+b.name)
	b.builds++
	return b.buildErr
}

func (b buildableEnv) HasInitContainers() bool { return b.hasInit }

func (b buildableEnv) RunInitContainers(context.Context) error {
	*b.journal = append(*b.journal, "init "+b.name)
	b.inits++
	return nil
}

// world builds a registry of fake environments sharing one journal.
type world struct {
	registry *environment.Registry
	envs     map[string]*fakeEnv
	journal  []string
}

func newWorld(t *testing.T, deps map[string][]string, order ...string) *world {
	t.Helper()
	w := &world{registry: &environment.Registry{}, envs: map[string]*fakeEnv{}}
	for _, name := range order {
		env := &fakeEnv{name: name, deps: deps[name], journal: &w.journal}
		w.envs[name] = env
		require.NoError(t, w.registry.Add(env))
	}
	return w
}

func names(envs []environment.Environment) []string {
	out := []string{}
	for _, env := range envs {
		out = append(out, env.Name())
	}
	return out
}

// mockEnvironment is a testify mock of environment.Environment.
type mockEnvironment struct {
	mock.Mock
}

func (m *mockEnvironment) Name() string        { return m.Called().String(0) }
func (m *mockEnvironment) Description() string { return m.Called().String(0) }
func (m *mockEnvironment) Dependencies() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

func (m *mockEnvironment) Start(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *mockEnvironment) Stop(ctx context.Context) error  { return m.Called(ctx).Error(0) }

func (m *mockEnvironment) IsStarted(ctx context.Context, fully bool) (bool, error) {
	args := m.Called(ctx, fully)
	return args.Bool(0), args.Error(1)
}

func (m *mockEnvironment) HasError(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *mockEnvironment) Status(ctx context.Context) (map[string]environment.Status, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]environment.Status), args.Error(1)
}
