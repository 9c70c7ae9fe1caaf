// Package task hands work from any goroutine to the single goroutine that
// owns the live session table, and lets the submitter block for the result.
package task

// Session is one live client connection as seen by a task.
type Session interface {
	UserID() int
	Kick()
}

// SessionTable is the consumer's view of its live sessions. Tasks only see
// it while they run on the consumer goroutine.
type SessionTable interface {
	Sessions() []Session
}

// Task is a unit of work run on the consumer goroutine.
type Task interface {
	Execute(table SessionTable) (any, error)
}

// Func adapts a function to Task.
type Func func(table SessionTable) (any, error)

func (f Func) Execute(table SessionTable) (any, error) {
	return f(table)
}
