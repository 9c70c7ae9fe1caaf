// Package session keeps the table of live sessions and is the consumer of
// the task channel. Only the goroutine running Registry.Run touches the
// table.
package session

import (
	"context"

	"github.com/pkg/errors"
	"github.com/tkjenll/ebftpd/pkg/clog"
	"github.com/tkjenll/ebftpd/pkg/task"
)

var (
	ErrUnknownSession = errors.New("unknown session")
	ErrStopped        = errors.New("session registry stopped")
)

type Registry struct {
	sessions   table
	register   chan *Session
	unregister chan *Session
	tasks      *task.Channel
	done       chan struct{}
}

// table is the task.SessionTable handed to tasks. Kicked sessions that have
// not unregistered yet are already left out.
type table map[string]*Session

func (t table) Sessions() []task.Session {
	sessions := make([]task.Session, 0, len(t))
	for _, s := range t {
		if !s.Kicked() {
			sessions = append(sessions, s)
		}
	}

	return sessions
}

func NewRegistry(tasks *task.Channel) *Registry {
	return &Registry{
		sessions:   make(table),
		register:   make(chan *Session),
		unregister: make(chan *Session),
		tasks:      tasks,
		done:       make(chan struct{}),
	}
}

func (r *Registry) Tasks() *task.Channel {
	return r.tasks
}

// Register blocks until Run has added s. It fails with ErrStopped once Run
// has returned.
func (r *Registry) Register(s *Session) error {
	select {
	case r.register <- s:
		return nil
	case <-r.done:
		return ErrStopped
	}
}

// Unregister is a no-op once Run has returned.
func (r *Registry) Unregister(s *Session) {
	select {
	case r.unregister <- s:
	case <-r.done:
	}
}

// Run owns the session table. It returns when ctx is done or the task
// channel is closed. Tasks still queued when ctx is done, or submitted
// after, fail with task.ErrClosed. Run must only be called once.
func (r *Registry) Run(ctx context.Context) {
	defer close(r.done)

	requests := r.tasks.Requests()
	for {
		if ctx.Err() != nil {
			r.tasks.Shutdown()
			return
		}

		select {
		case <-ctx.Done():
			r.tasks.Shutdown()
			return

		case s := <-r.register:
			r.sessions[s.ID] = s
			clog.ForUser(s.ID, s.User.Name).Info("session registered")

		case s := <-r.unregister:
			if _, ok := r.sessions[s.ID]; ok {
				delete(r.sessions, s.ID)
				clog.ForUser(s.ID, s.User.Name).Info("session unregistered")
			}

		case req, ok := <-requests:
			if !ok {
				return
			}
			req.Execute(r.sessions)
		}
	}
}

// KickSession returns a task that kicks the session with the given id.
func KickSession(id string) task.Task {
	return task.Func(func(t task.SessionTable) (any, error) {
		sessions, ok := t.(table)
		if !ok {
			return nil, errors.Errorf("kick session %s: unsupported session table %T", id, t)
		}

		s, ok := sessions[id]
		if !ok || s.Kicked() {
			return nil, errors.Wrap(ErrUnknownSession, id)
		}

		s.Kick()
		clog.ForUser(s.ID, s.User.Name).Info("session kicked")
		return true, nil
	})
}
