package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// formatterHandler adapts a LogFormatter to the slog.Handler interface, so
// the pipeline-stage logging in evmasm and cppgen (Module(name).Debug(...))
// can be rendered as human-readable text or ANSI color for interactive CLI
// use, without changing a single call site. The default handler stays
// slog.NewJSONHandler (see New); formatterHandler only backs the CLI's
// -log-format flag.
type formatterHandler struct {
	w     io.Writer
	level slog.Leveler
	fmt   LogFormatter
	attrs []slog.Attr
}

func newFormatterHandler(w io.Writer, level slog.Leveler, f LogFormatter) *formatterHandler {
	return &formatterHandler{w: w, level: level, fmt: f}
}

func (h *formatterHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.level != nil {
		min = h.level.Level()
	}
	return level >= min
}

func (h *formatterHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]interface{}, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[a.Key] = a.Value.Any()
		return true
	})

	entry := LogEntry{
		Timestamp: r.Time,
		Level:     levelFromSlog(r.Level),
		Message:   r.Message,
		Fields:    fields,
	}
	_, err := io.WriteString(h.w, h.fmt.Format(entry)+"\n")
	return err
}

func (h *formatterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &next
}

func (h *formatterHandler) WithGroup(name string) slog.Handler {
	// Groups are never used by this package's call sites (Module/With only
	// add flat key-value attrs), so group scoping is not implemented.
	return h
}

func levelFromSlog(l slog.Level) LogLevel {
	switch {
	case l < slog.LevelInfo:
		return DEBUG
	case l < slog.LevelWarn:
		return INFO
	case l < slog.LevelError:
		return WARN
	default:
		return ERROR
	}
}

// NewText creates a Logger that renders entries as plain text via
// TextFormatter, for interactive terminal use where JSON is noisy.
func NewText(level slog.Level) *Logger {
	return NewWithHandler(newFormatterHandler(os.Stderr, level, &TextFormatter{}))
}

// NewColor creates a Logger that renders entries as ANSI-colored text via
// ColorFormatter, for interactive terminal use on a color-capable stderr.
func NewColor(level slog.Level) *Logger {
	return NewWithHandler(newFormatterHandler(os.Stderr, level, &ColorFormatter{}))
}
