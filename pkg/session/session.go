package session

import (
	"context"
	"time"

	"github.com/hashicorp/go-uuid"
	"github.com/tkjenll/ebftpd/pkg/ftpdb/ftpmodel"
)

// Session is one logged in client. Kick cancels its context; the worker
// serving the connection watches Done and unregisters itself.
type Session struct {
	ID      string
	User    *ftpmodel.User
	Started time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, user *ftpmodel.User) (*Session, error) {
	id, err := uuid.GenerateUUID()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(parent)
	return &Session{
		ID:      id,
		User:    user,
		Started: time.Now(),
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

func (s *Session) UserID() int {
	return s.User.UID()
}

func (s *Session) Kick() {
	s.cancel()
}

func (s *Session) Kicked() bool {
	return s.ctx.Err() != nil
}

func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

func (s *Session) Context() context.Context {
	return s.ctx
}
