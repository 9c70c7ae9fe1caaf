package clog

import (
	"fmt"
	"io"
	"sync"

	"github.com/apex/log"
)

// Loggers holds the process logger plus one logger per named context. A
// context is usually a session id or a user name; sessions that were given
// their own writer log there, everything else falls through to the process
// logger tagged with ctx=<name>.
type Loggers struct {
	process  *log.Logger
	contexts sync.Map
}

const ProcessCtx = "ebftpd"

func NewLoggers(w io.WriteCloser) *Loggers {
	return &Loggers{process: newLogger(w)}
}

func newLogger(w io.WriteCloser) *log.Logger {
	return &log.Logger{
		Handler: NewHandler(w),
		Level:   log.InfoLevel,
	}
}

// Attach gives ctx its own output. An existing context of the same name is
// closed and replaced.
func (l *Loggers) Attach(ctx string, w io.WriteCloser) {
	if prev, loaded := l.contexts.Swap(ctx, newLogger(w)); loaded {
		closeLogger(prev)
	}
}

func (l *Loggers) Detach(ctx string) {
	if logger, ok := l.contexts.LoadAndDelete(ctx); ok {
		closeLogger(logger)
	}
}

func (l *Loggers) SetLevel(ctx string, level log.Level) error {
	logger := l.lookup(ctx)
	if logger == nil {
		return fmt.Errorf("no such logging context %s", ctx)
	}

	logger.Level = level
	return nil
}

func (l *Loggers) SetLevelFromString(ctx, s string) error {
	level, err := log.ParseLevel(s)
	if err != nil {
		return err
	}

	return l.SetLevel(ctx, level)
}

func (l *Loggers) SetOutput(ctx string, w io.WriteCloser) error {
	logger := l.lookup(ctx)
	if logger == nil {
		return fmt.Errorf("no such logging context %s", ctx)
	}

	logger.Handler.(*Handler).SetOutput(w)
	return nil
}

// Ctx returns an entry that logs to ctx's own output when it has one.
func (l *Loggers) Ctx(ctx string) *log.Entry {
	if logger := l.lookup(ctx); logger != nil {
		return logger.WithField("ctx", ctx)
	}

	return l.process.WithField("ctx", ctx)
}

// ForUser tags entries with the virtual user performing the work.
func (l *Loggers) ForUser(ctx, user string) *log.Entry {
	return l.Ctx(ctx).WithField("user", user)
}

func (l *Loggers) Process() *log.Entry {
	return l.process.WithField("ctx", ProcessCtx)
}

func (l *Loggers) lookup(ctx string) *log.Logger {
	if ctx == ProcessCtx {
		return l.process
	}

	v, ok := l.contexts.Load(ctx)
	if !ok {
		return nil
	}

	logger, _ := v.(*log.Logger)
	return logger
}

func closeLogger(v interface{}) {
	logger, ok := v.(*log.Logger)
	if !ok {
		return
	}

	if h, ok := logger.Handler.(*Handler); ok {
		h.Close()
	}
}
