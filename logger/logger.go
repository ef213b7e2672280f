package logger

import (
	"io"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
)

const sentryFlushTimeout = 2 * time.Second

// Fields represents structured log fields
type Fields map[string]interface{}

var std = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
	Prefix:          "markovmidi",
})

func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// SetLevel accepts debug, info, warn, error or fatal.
func SetLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "unknown log level %q", level)
	}
	std.SetLevel(lvl)
	return nil
}

// InitSentry enables error reporting. The returned func flushes buffered events.
func InitSentry(dsn, environment, release string) (func(), error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	})
	if err != nil {
		return func() {}, errors.Wrap(err, "failed to initialize sentry")
	}
	return func() { sentry.Flush(sentryFlushTimeout) }, nil
}

func Info(msg string, fields Fields) {
	std.Info(msg, keyvals(fields)...)
	breadcrumb("info", sentry.LevelInfo, msg, fields)
}

func Warn(msg string, fields Fields) {
	std.Warn(msg, keyvals(fields)...)
	breadcrumb("warning", sentry.LevelWarning, msg, fields)
}

func Debug(msg string, fields Fields) {
	std.Debug(msg, keyvals(fields)...)
	breadcrumb("debug", sentry.LevelDebug, msg, fields)
}

// Error logs an error message with structured fields and sends it to Sentry
func Error(msg string, err error, fields Fields) {
	std.Error(msg, append([]interface{}{"err", err}, keyvals(fields)...)...)

	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			for key, value := range fields {
				scope.SetContext(key, map[string]interface{}{
					"value": value,
				})
			}
			if runID, ok := fields["run_id"].(string); ok {
				scope.SetTag("run_id", runID)
			}
			scope.SetExtra("message", msg)
			hub.CaptureException(err)
		})
	}
}

func breadcrumb(kind string, level sentry.Level, msg string, fields Fields) {
	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.AddBreadcrumb(&sentry.Breadcrumb{
			Type:     kind,
			Category: "log",
			Message:  msg,
			Data:     map[string]interface{}(fields),
			Level:    level,
		}, nil)
	}
}

// keyvals flattens fields in key order so log lines are stable.
func keyvals(fields Fields) []interface{} {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	res := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		res = append(res, k, fields[k])
	}
	return res
}
