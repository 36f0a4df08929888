package sqlmap

import (
	"context"
	"io"
	"log/slog"

	"github.com/rs/zerolog"
)

// zerologHandler bridges slog records to a zerolog.Logger.
// It respects slog levels and forwards attributes as zerolog fields.
type zerologHandler struct {
	zl    zerolog.Logger
	level slog.Level
	group string
	attrs []slog.Attr
}

// NewLogger returns a slog.Logger that writes JSON lines through zerolog.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	zl := zerolog.New(w).With().Timestamp().Logger()
	return slog.New(&zerologHandler{zl: zl, level: level})
}

func (h *zerologHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= h.level }

func (h *zerologHandler) Handle(_ context.Context, r slog.Record) error {
	var ev *zerolog.Event
	switch {
	case r.Level >= slog.LevelError:
		ev = h.zl.Error()
	case r.Level >= slog.LevelWarn:
		ev = h.zl.Warn()
	case r.Level >= slog.LevelInfo:
		ev = h.zl.Info()
	default:
		ev = h.zl.Debug()
	}
	for _, a := range h.attrs {
		ev = appendAttr(ev, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		ev = appendAttr(ev, h.group, a)
		return true
	})
	ev.Msg(r.Message)
	return nil
}

func qualify(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func appendAttr(ev *zerolog.Event, prefix string, a slog.Attr) *zerolog.Event {
	key := qualify(prefix, a.Key)
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return ev.Str(key, v.String())
	case slog.KindInt64:
		return ev.Int64(key, v.Int64())
	case slog.KindUint64:
		return ev.Uint64(key, v.Uint64())
	case slog.KindFloat64:
		return ev.Float64(key, v.Float64())
	case slog.KindBool:
		return ev.Bool(key, v.Bool())
	case slog.KindDuration:
		return ev.Dur(key, v.Duration())
	case slog.KindTime:
		return ev.Time(key, v.Time())
	case slog.KindGroup:
		for _, ga := range v.Group() {
			ev = appendAttr(ev, key, ga)
		}
		return ev
	default:
		return ev.Interface(key, v.Any())
	}
}

// WithAttrs qualifies attrs with the current group now, so a later WithGroup does not move them.
func (h *zerologHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		nh.attrs = append(nh.attrs, slog.Attr{Key: qualify(h.group, a.Key), Value: a.Value})
	}
	return &nh
}

func (h *zerologHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	nh.group = qualify(h.group, name)
	return &nh
}
