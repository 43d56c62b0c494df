package environment

import "errors"

var (
	// ErrNotFound is returned when no environment has the requested name.
	ErrNotFound = errors.New("environment not found")
	// ErrUnknownType is returned for an unrecognized environment type.
	ErrUnknownType = errors.New("unknown environment type")
	// ErrStartFailure is returned when the bring-up command fails.
	ErrStartFailure = errors.New("environment failed to start")
	// ErrStopFailure is returned when the teardown command fails.
	ErrStopFailure = errors.New("environment failed to stop")
	// ErrBuildFailure is returned when the build command fails.
	ErrBuildFailure = errors.New("environment failed to build")
	// ErrInitFailure is returned when an init container exits non-zero.
	ErrInitFailure = errors.New("init container failed")
	// ErrConfiguration is returned when the compose file is missing or unparseable.
	ErrConfiguration = errors.New("environment configuration error")
	// ErrShellUnsupported is returned when a command cannot be run inside the environment.
	ErrShellUnsupported = errors.New("shell is not supported")
)
