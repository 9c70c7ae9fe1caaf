package clog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/apex/log"
)

// Handler writes one line per entry:
//
//	LEVEL timestamp [ctx] message k=v ...
//
// Fields other than ctx are sorted by key.
type Handler struct {
	mu  sync.Mutex
	w   io.WriteCloser
	now func() time.Time
}

var levelNames = [...]string{
	log.DebugLevel: "DEBUG",
	log.InfoLevel:  "INFO",
	log.WarnLevel:  "WARN",
	log.ErrorLevel: "ERROR",
	log.FatalLevel: "FATAL",
}

func NewHandler(w io.WriteCloser) *Handler {
	return &Handler{w: w, now: time.Now}
}

func (h *Handler) SetOutput(w io.WriteCloser) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closeWriter()
	h.w = w
}

func (h *Handler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closeWriter()
}

// closeWriter leaves stdout and stderr open. Callers hold h.mu.
func (h *Handler) closeWriter() {
	if h.w == nil || h.w == os.Stdout || h.w == os.Stderr {
		return
	}

	_ = h.w.Close()
}

func (h *Handler) HandleLog(e *log.Entry) error {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		if k != "ctx" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b bytes.Buffer
	_, _ = fmt.Fprintf(&b, "%5s %s", levelNames[e.Level], h.now().Format(time.DateTime))
	if ctx, ok := e.Fields["ctx"]; ok {
		_, _ = fmt.Fprintf(&b, " [%v]", ctx)
	}
	_, _ = fmt.Fprintf(&b, " %-25s", e.Message)

	for _, k := range keys {
		_, _ = fmt.Fprintf(&b, " %s=%v", k, e.Fields[k])
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.w == nil {
		return nil
	}
	_, err := fmt.Fprintln(h.w, b.String())
	return err
}
