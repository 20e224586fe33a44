package task

import "fmt"

// ExecutionError reports that an external engine rejected or failed an
// operation issued by a task.
type ExecutionError struct {
	// Engine names the collaborator, e.g. "warehouse" or "spark".
	Engine string
	// Op is a short description of what was attempted.
	Op  string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Engine, e.Op, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Execution wraps err as an ExecutionError. It returns nil for a nil err.
func Execution(engine, op string, err error) error {
	if err == nil {
		return nil
	}
	return &ExecutionError{Engine: engine, Op: op, Err: err}
}
