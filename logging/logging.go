// Package logging configures the process-wide slog logger. Records at error
// level and above are also sent to Rollbar when a token is configured.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/rollbar/rollbar-go"
)

type Options struct {
	Env          string
	RollbarToken string
	CodeVersion  string
	Level        slog.Level
}

// Setup installs the logger as slog's default and returns it.
func Setup(opts Options) *slog.Logger {
	return setup(os.Stdout, opts)
}

func setup(w io.Writer, opts Options) *slog.Logger {
	var handler slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: opts.Level})
	if opts.RollbarToken != "" {
		rollbar.SetToken(opts.RollbarToken)
		rollbar.SetEnvironment(opts.Env)
		rollbar.SetCodeVersion(opts.CodeVersion)
		handler = &rollbarHandler{next: handler, report: reportToRollbar}
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// Close flushes pending Rollbar items.
func Close() {
	rollbar.Close()
}

type reporter func(level slog.Level, err error, msg string, fields map[string]any)

func reportToRollbar(level slog.Level, err error, msg string, fields map[string]any) {
	rlevel := rollbar.ERR
	if level > slog.LevelError {
		rlevel = rollbar.CRIT
	}
	if err == nil {
		err = errors.New(msg)
	}
	fields["message"] = msg
	rollbar.ErrorWithExtras(rlevel, err, fields)
}

type rollbarHandler struct {
	next   slog.Handler
	attrs  []slog.Attr
	report reporter
}

func (h *rollbarHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *rollbarHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		fields := map[string]any{}
		var err error
		collect := func(a slog.Attr) bool {
			if e, ok := a.Value.Any().(error); ok && err == nil {
				err = e
				return true
			}
			fields[a.Key] = a.Value.String()
			return true
		}
		for _, a := range h.attrs {
			collect(a)
		}
		r.Attrs(collect)
		h.report(r.Level, err, r.Message, fields)
	}
	return h.next.Handle(ctx, r)
}

func (h *rollbarHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &rollbarHandler{
		next:   h.next.WithAttrs(attrs),
		attrs:  append(append([]slog.Attr{}, h.attrs...), attrs...),
		report: h.report,
	}
}

func (h *rollbarHandler) WithGroup(name string) slog.Handler {
	return &rollbarHandler{next: h.next.WithGroup(name), attrs: h.attrs, report: h.report}
}
