// Package crashnotify wraps functions so that any failure they produce —
// a matching returned error, or any panic — is captured, formatted into a
// crash report, and delivered to notification sinks before the failure is
// handed back to the caller unchanged.
package crashnotify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

//go:generate mockgen -destination=internal/mocks/sink.go -package=mocks github.com/Nivl/crashnotify Sink

// SendOptions carries the per-delivery flags understood by sinks. Sinks
// ignore flags their transport has no equivalent for.
type SendOptions struct {
	// DisableNotification asks the sink to deliver silently.
	DisableNotification bool

	// DisableWebPagePreview suppresses link previews. Only meaningful
	// for inline text messages.
	DisableWebPagePreview bool
}

// Sink delivers a crash report to one destination.
type Sink interface {
	SendText(ctx context.Context, body string, opts SendOptions) error
	SendAttachment(ctx context.Context, caption string, payload []byte, filename string, opts SendOptions) error
}

// Reporter builds crash reports and fans them out to its sinks. A
// Reporter holds no mutable state: concurrent calls to wrapped functions
// are independent.
type Reporter struct {
	sinks           []Sink
	header          string
	asAttached      bool
	filename        string
	dtFormat        string
	matchErrors     []error
	sendOpts        SendOptions
	onDispatchError func(error)
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithHeader overrides the first line of every report. Default is
// DefaultHeader.
func WithHeader(header string) Option {
	return func(r *Reporter) { r.header = header }
}

// AsAttachment makes reports carry the trace as a file attachment with a
// short caption, instead of inline text.
func AsAttachment() Option {
	return func(r *Reporter) { r.asAttached = true }
}

// WithFilename sets an explicit attachment filename. Without it a
// timestamp-based name is generated per report.
func WithFilename(name string) Option {
	return func(r *Reporter) { r.filename = name }
}

// WithTimeFormat sets the time layout used for generated attachment
// filenames. Default is DefaultTimeFormat, overridable through the
// EnvTimeFormat environment variable.
func WithTimeFormat(layout string) Option {
	return func(r *Reporter) { r.dtFormat = layout }
}

// MatchErrors restricts reporting to errors matching one of targets,
// compared with errors.Is. Without this option every error is reported.
// Panics are always reported regardless of the filter.
func MatchErrors(targets ...error) Option {
	return func(r *Reporter) { r.matchErrors = targets }
}

// DisableNotification makes sinks deliver silently, when supported.
func DisableNotification() Option {
	return func(r *Reporter) { r.sendOpts.DisableNotification = true }
}

// DisableWebPagePreview suppresses link previews on inline reports, when
// supported.
func DisableWebPagePreview() Option {
	return func(r *Reporter) { r.sendOpts.DisableWebPagePreview = true }
}

// WithDispatchErrorHandler registers fn to receive delivery failures.
// Delivery failures never replace the wrapped function's own failure;
// without a handler they are only logged.
func WithDispatchErrorHandler(fn func(error)) Option {
	return func(r *Reporter) { r.onDispatchError = fn }
}

// New returns a Reporter delivering to the given sinks.
func New(sinks []Sink, opts ...Option) *Reporter {
	r := &Reporter{sinks: sinks}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WrapFunc returns a function behaving exactly like fn, except that a
// matching error or a panic is reported before being handed back to the
// caller. The error is returned as-is and a panic value is re-panicked
// as-is; delivery completes before either happens. name identifies fn in
// the report.
func (r *Reporter) WrapFunc(name string, fn func() error) func() error {
	wrapped := r.WrapContext(name, func(context.Context) error {
		return fn()
	})
	return func() error {
		return wrapped(context.Background())
	}
}

// WrapContext is WrapFunc for context-aware functions. The context is
// threaded through report delivery, so cancelling it cancels the
// in-flight transport calls.
func (r *Reporter) WrapContext(name string, fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		defer func() {
			if rec := recover(); rec != nil {
				r.report(ctx, fmt.Sprintf("panic: %v\n\n%s", rec, debug.Stack()), name)
				panic(rec)
			}
		}()

		err := fn(ctx)
		if err != nil && r.matches(err) {
			r.report(ctx, fmt.Sprintf("%v\n\n%s", err, debug.Stack()), name)
		}
		return err
	}
}

// Wrap1 is Reporter.WrapFunc for functions that also return a value. The
// value is passed through untouched.
func Wrap1[T any](r *Reporter, name string, fn func() (T, error)) func() (T, error) {
	return func() (out T, err error) {
		err = r.WrapFunc(name, func() error {
			var fnErr error
			out, fnErr = fn()
			return fnErr
		})()
		return out, err
	}
}

// WrapContext1 is Reporter.WrapContext for functions that also return a
// value.
func WrapContext1[T any](r *Reporter, name string, fn func(context.Context) (T, error)) func(context.Context) (T, error) {
	return func(ctx context.Context) (out T, err error) {
		err = r.WrapContext(name, func(ctx context.Context) error {
			var fnErr error
			out, fnErr = fn(ctx)
			return fnErr
		})(ctx)
		return out, err
	}
}

func (r *Reporter) matches(err error) bool {
	if len(r.matchErrors) == 0 {
		return true
	}
	for _, target := range r.matchErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// report builds the report and dispatches it. Delivery failures are
// logged and handed to the dispatch-error handler; they are never allowed
// to escape and mask the failure being reported.
func (r *Reporter) report(ctx context.Context, trace, funcName string) {
	rep := makeReport(trace, funcName, r.header, r.asAttached, timeNow())
	if err := r.dispatch(ctx, rep); err != nil {
		slog.ErrorContext(ctx, "failed to deliver crash report", "function", funcName, "error", err.Error())
		if r.onDispatchError != nil {
			r.onDispatchError(err)
		}
	}
}

// dispatch delivers rep to every sink. A failing sink does not prevent
// the attempt on the remaining ones; the failures are aggregated.
func (r *Reporter) dispatch(ctx context.Context, rep Report) error {
	if len(r.sinks) == 0 {
		return &ConfigError{Missing: "at least one sink"}
	}

	var errs []error
	for _, s := range r.sinks {
		var err error
		if rep.Attachment != nil {
			err = s.SendAttachment(ctx, rep.Body, rep.Attachment, reportFilename(r.filename, r.dtFormat), r.sendOpts)
		} else {
			err = s.SendText(ctx, rep.Body, r.sendOpts)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
