package pipeline

import "fmt"

// ConnectionError reports a failure to open or create the database file.
type ConnectionError struct {
	Path string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("open database %q: %v", e.Path, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ExecutionError reports a script or query the engine rejected. Err carries
// the engine's diagnostic unchanged.
type ExecutionError struct {
	File string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execute %q: %v", e.File, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
