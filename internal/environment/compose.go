package environment

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"lighter/internal/compose"
	"lighter/internal/config"
	"lighter/internal/shell"
	"lighter/pkg/logging"
)

// psColumns widens the ps listing to limit cell wrapping.
const psColumns = "COLUMNS=200"

// sisterGroup is the set of compose environments sharing a path.
type sisterGroup struct {
	members []*Compose
}

func (g *sisterGroup) invalidate() {
	for _, m := range g.members {
		m.state = nil
	}
}

// Compose manages a selection of services of a docker compose project.
type Compose struct {
	Base

	shell          shell.Executor
	path           string
	containers     []string
	initContainers []config.InitContainer
	shellContainer string

	file  *compose.File
	state map[string]Status
	group *sisterGroup
}

// NewCompose creates a compose environment. The compose file is read lazily.
func NewCompose(def config.EnvironmentDefinition, executor shell.Executor) *Compose {
	c := &Compose{
		Base:           NewBase(def),
		shell:          executor,
		path:           filepath.Clean(def.Path),
		containers:     append([]string(nil), def.Containers...),
		initContainers: append([]config.InitContainer(nil), def.InitContainers...),
		shellContainer: def.Shell,
	}
	c.group = &sisterGroup{members: []*Compose{c}}
	return c
}

// Path returns the directory holding the compose file.
func (c *Compose) Path() string { return c.path }

// HasSisters reports whether other environments share this path.
func (c *Compose) HasSisters() bool { return len(c.group.members) > 1 }

// Sisters returns the other environments sharing this path.
func (c *Compose) Sisters() []*Compose {
	var sisters []*Compose
	for _, m := range c.group.members {
		if m != c {
			sisters = append(sisters, m)
		}
	}
	return sisters
}

// joinGroup moves c into g. Only the registry calls this, before any state is cached.
func (c *Compose) joinGroup(g *sisterGroup) {
	if c.group == g {
		return
	}
	g.members = append(g.members, c)
	c.group = g
}

// ResetState drops the cached status of this environment and all its sisters.
func (c *Compose) ResetState() {
	c.group.invalidate()
}

func (c *Compose) composeFile() (*compose.File, error) {
	if c.file == nil {
		f, err := compose.LoadFile(c.path)
		if err != nil {
			return nil, fmt.Errorf("%w: environment %q: %w", ErrConfiguration, c.Name(), err)
		}
		c.file = f
	}
	return c.file, nil
}

// Containers returns the managed service names. An empty selection in the
// configuration means every service of the compose file.
func (c *Compose) Containers() ([]string, error) {
	if len(c.containers) > 0 {
		return c.containers, nil
	}
	f, err := c.composeFile()
	if err != nil {
		return nil, err
	}
	c.containers = f.ServiceNames()
	return c.containers, nil
}

func (c *Compose) command(line string, env ...string) shell.Command {
	return shell.Command{Line: line, Dir: c.path, Env: env}
}

func (c *Compose) exec(ctx context.Context, line string, env ...string) (shell.Result, error) {
	res, err := c.shell.Exec(ctx, c.command(line, env...))
	if err != nil {
		return res, fmt.Errorf("environment %q: %w", c.Name(), err)
	}
	return res, nil
}

// Start runs `docker-compose up -d` for the managed containers.
func (c *Compose) Start(ctx context.Context) error {
	containers, err := c.Containers()
	if err != nil {
		return err
	}
	res, err := c.exec(ctx, strings.TrimSpace("docker-compose up -d "+strings.Join(containers, " ")))
	c.ResetState()
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("%w: %q: %s", ErrStartFailure, c.Name(), failureOutput(res))
	}
	logging.Debug("Compose", "environment %s started", c.Name())
	return nil
}

// Stop tears the environment down. When a sister still has containers
// running at the same path only the managed containers are stopped, otherwise
// the whole project is brought down. Running containers are observed just
// before stopping, so a container started concurrently may be missed.
func (c *Compose) Stop(ctx context.Context) error {
	started, err := c.IsStarted(ctx, false)
	if err != nil || !started {
		return err
	}

	line := "docker-compose down"
	if c.HasSisters() {
		others, err := c.hasOtherRunningContainers(ctx)
		if err != nil {
			return err
		}
		if others {
			line = "docker-compose stop " + strings.Join(c.containers, " ")
		}
	}

	res, err := c.exec(ctx, line)
	c.ResetState()
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("%w: %q: %s", ErrStopFailure, c.Name(), failureOutput(res))
	}
	logging.Debug("Compose", "environment %s stopped with %q", c.Name(), line)
	return nil
}

func (c *Compose) hasOtherRunningContainers(ctx context.Context) (bool, error) {
	status, err := c.FullStatus(ctx)
	if err != nil {
		return false, err
	}
	for _, container := range c.containers {
		delete(status, container)
	}
	for _, s := range status {
		if s == StatusStarted {
			return true, nil
		}
	}
	return false, nil
}

// IsStarted implements Environment.
func (c *Compose) IsStarted(ctx context.Context, fully bool) (bool, error) {
	if fully {
		return c.onlyContainersWithStatus(ctx, StatusStarted)
	}
	return c.anyContainerWithStatus(ctx, StatusStarted)
}

// HasError implements Environment.
func (c *Compose) HasError(ctx context.Context) (bool, error) {
	return c.anyContainerWithStatus(ctx, StatusFailed)
}

func (c *Compose) anyContainerWithStatus(ctx context.Context, want Status) (bool, error) {
	status, err := c.Status(ctx)
	if err != nil {
		return false, err
	}
	for _, container := range c.containers {
		if status[container] == want {
			return true, nil
		}
	}
	return false, nil
}

func (c *Compose) onlyContainersWithStatus(ctx context.Context, want Status) (bool, error) {
	status, err := c.Status(ctx)
	if err != nil {
		return false, err
	}
	for _, container := range c.containers {
		if status[container] != want {
			return false, nil
		}
	}
	return true, nil
}

// Status returns the managed containers only.
func (c *Compose) Status(ctx context.Context) (map[string]Status, error) {
	return c.status(ctx, false)
}

// FullStatus also includes containers at this path that match no managed
// container. Their keys are the full container name prefixed with "_".
func (c *Compose) FullStatus(ctx context.Context) (map[string]Status, error) {
	return c.status(ctx, true)
}

func (c *Compose) status(ctx context.Context, full bool) (map[string]Status, error) {
	if c.state == nil {
		state, err := c.currentState(ctx)
		if err != nil {
			return nil, err
		}
		c.state = state
	}

	result := make(map[string]Status, len(c.state))
	for name, s := range c.state {
		if !full && strings.HasPrefix(name, "_") {
			continue
		}
		result[name] = s
	}
	return result, nil
}

func (c *Compose) currentState(ctx context.Context) (map[string]Status, error) {
	containers, err := c.Containers()
	if err != nil {
		return nil, err
	}
	file, err := c.composeFile()
	if err != nil {
		return nil, err
	}

	state := make(map[string]Status, len(containers))
	for _, container := range containers {
		state[container] = StatusStopped
	}

	res, err := c.exec(ctx, "docker-compose ps", psColumns)
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		logging.Warn("Compose", "docker-compose ps failed in %s: %s", c.path, failureOutput(res))
	}

	for _, service := range compose.ParsePS(res.Lines()) {
		status := StatusFromState(service.State)
		if selected := c.matchContainer(file, containers, service.Name); selected != "" {
			state[selected] = status
		} else {
			state["_"+service.Name] = status
		}
	}
	return state, nil
}

// matchContainer resolves a full container name to a managed container. The
// longest matching service name wins, so "database" beats "db".
func (c *Compose) matchContainer(file *compose.File, containers []string, fullName string) string {
	selected := ""
	for _, container := range containers {
		if len(container) <= len(selected) {
			continue
		}
		for _, expected := range c.expectedNames(file, container) {
			if strings.Contains(fullName, expected) {
				selected = container
				break
			}
		}
	}
	return selected
}

// expectedNames returns the container name, or the name prefixes compose
// generates for a service, for the v1 and v2 naming schemes.
func (c *Compose) expectedNames(file *compose.File, container string) []string {
	if cfg, ok := file.Services[container]; ok && cfg.ContainerName != "" {
		return []string{cfg.ContainerName}
	}
	project := filepath.Base(c.path)
	return []string{project + "_" + container, project + "-" + container}
}

// CanShell reports whether a managed shell container is configured.
func (c *Compose) CanShell() bool {
	if c.shellContainer == "" {
		return false
	}
	containers, err := c.Containers()
	if err != nil {
		return false
	}
	for _, container := range containers {
		if container == c.shellContainer {
			return true
		}
	}
	return false
}

// Run executes command in the shell container, attached to the terminal.
func (c *Compose) Run(ctx context.Context, command string) (int, error) {
	if !c.CanShell() {
		return -1, fmt.Errorf("%w on environment %q", ErrShellUnsupported, c.Name())
	}
	status, err := c.Status(ctx)
	if err != nil {
		return -1, err
	}
	if status[c.shellContainer] != StatusStarted {
		return -1, fmt.Errorf("%w: the container %s of %q is not running", ErrShellUnsupported, c.shellContainer, c.Name())
	}
	code, err := c.shell.Passthru(ctx, c.command(fmt.Sprintf("docker-compose exec %s %s", c.shellContainer, command)))
	if err != nil {
		return code, fmt.Errorf("environment %q: %w", c.Name(), err)
	}
	return code, nil
}

// Build runs `docker-compose build --parallel`.
func (c *Compose) Build(ctx context.Context) error {
	res, err := c.exec(ctx, "docker-compose build --parallel")
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("%w: %q: %s", ErrBuildFailure, c.Name(), failureOutput(res))
	}
	return nil
}

// HasInitContainers implements Initializer.
func (c *Compose) HasInitContainers() bool {
	return len(c.initContainers) > 0
}

// RunInitContainers runs every init container once, in order, and stops at
// the first failure.
func (c *Compose) RunInitContainers(ctx context.Context) error {
	defer c.ResetState()
	for _, ic := range c.initContainers {
		line := strings.TrimSpace(fmt.Sprintf("docker-compose run --rm %s %s", ic.Container, strings.Join(ic.Arguments, " ")))
		res, err := c.exec(ctx, line)
		if err != nil {
			return err
		}
		if !res.Success() {
			return fmt.Errorf("%w: %s of %q exited with %d: %s", ErrInitFailure, ic.Container, c.Name(), res.Status, failureOutput(res))
		}
		logging.Debug("Compose", "init container %s of %s done", ic.Container, c.Name())
	}
	return nil
}

func failureOutput(res shell.Result) string {
	if out := strings.TrimSpace(res.Stderr); out != "" {
		return out
	}
	return res.Output()
}

var (
	_ Environment = (*Compose)(nil)
	_ Builder     = (*Compose)(nil)
	_ Initializer = (*Compose)(nil)
	_ Sheller     = (*Compose)(nil)
)
