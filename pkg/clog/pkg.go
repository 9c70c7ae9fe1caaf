package clog

import (
	"io"
	"os"

	"github.com/apex/log"
)

var loggers = NewLoggers(os.Stdout)

func Attach(ctx string, w io.WriteCloser) {
	loggers.Attach(ctx, w)
}

func Detach(ctx string) {
	loggers.Detach(ctx)
}

func SetLevel(ctx string, level log.Level) error {
	return loggers.SetLevel(ctx, level)
}

func SetLevelFromString(ctx, s string) error {
	return loggers.SetLevelFromString(ctx, s)
}

// SetProcessLevelFromString also sets the apex/log package level, which
// covers code that logs through log.Infof and friends.
func SetProcessLevelFromString(s string) error {
	level, err := log.ParseLevel(s)
	if err != nil {
		return err
	}

	log.SetLevel(level)
	return loggers.SetLevel(ProcessCtx, level)
}

func SetOutput(ctx string, w io.WriteCloser) error {
	return loggers.SetOutput(ctx, w)
}

func Ctx(ctx string) *log.Entry {
	return loggers.Ctx(ctx)
}

func ForUser(ctx, user string) *log.Entry {
	return loggers.ForUser(ctx, user)
}

func Process() *log.Entry {
	return loggers.Process()
}
