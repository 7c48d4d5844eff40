package errorreporting

import (
	"fmt"
	"regexp"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kroma-network/zkvm-common/internal/config"
)

// Patterns scrubbed from outgoing events. Witness payloads and auth
// material must never leave the process in an error report.
var scrubPatterns = []*regexp.Regexp{
	// Bearer tokens, including the admin API token
	regexp.MustCompile(`(?i)bearer\s+[\w.~+/-]{16,}`),
	// key=value style secrets
	regexp.MustCompile(`(?i)(api[_-]?key|token|secret)["\s:=]+[a-zA-Z0-9_-]{16,}`),
	// Long hex runs are witness material, not useful in an event
	regexp.MustCompile(`(?:0x)?[0-9a-fA-F]{128,}`),
	// Client IP addresses
	regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
}

var enabled bool

// Init configures Sentry from the loaded config. A missing DSN disables
// reporting without error.
func Init(cfg *config.Config) error {
	if cfg.SentryDSN == "" {
		enabled = false
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.SentryEnvironment,
		Release:          release(cfg),
		SampleRate:       cfg.SentrySampleRate,
		BeforeSend:       beforeSend,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Sentry: %w", err)
	}

	enabled = true
	return nil
}

func release(cfg *config.Config) string {
	if cfg.SentryRelease != "" {
		return cfg.SentryRelease
	}
	return cfg.ServiceVersion
}

// beforeSend scrubs sensitive material from every outgoing event.
func beforeSend(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	for i := range event.Exception {
		event.Exception[i].Value = scrub(event.Exception[i].Value)
	}
	if event.Message != "" {
		event.Message = scrub(event.Message)
	}
	for key, value := range event.Extra {
		if str, ok := value.(string); ok {
			event.Extra[key] = scrub(str)
		}
	}
	if event.Request != nil {
		if event.Request.Headers != nil {
			delete(event.Request.Headers, "Authorization")
			delete(event.Request.Headers, "Cookie")
		}
		event.Request.QueryString = ""
		event.Request.Data = ""
	}
	return event
}

func scrub(text string) string {
	result := text
	for _, pattern := range scrubPatterns {
		result = pattern.ReplaceAllString(result, "[REDACTED]")
	}
	return result
}

// ScrubPII applies the event scrubbing rules to an arbitrary string.
func ScrubPII(text string) string {
	return scrub(text)
}

// IsSentryEnabled reports whether Init configured a DSN.
func IsSentryEnabled() bool {
	return enabled
}

// CaptureError reports err to Sentry. No-op when disabled or err is nil.
func CaptureError(err error) {
	if err == nil || !enabled {
		return
	}
	sentry.CaptureException(err)
}

// CaptureErrorWithContext reports err with tags and extra data attached.
func CaptureErrorWithContext(err error, tags map[string]string, extras map[string]interface{}) {
	if err == nil || !enabled {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		for k, v := range extras {
			scope.SetExtra(k, v)
		}
		sentry.CaptureException(err)
	})
}

// Flush blocks until buffered events are sent or the timeout passes.
func Flush(timeout time.Duration) bool {
	if !enabled {
		return true
	}
	return sentry.Flush(timeout)
}
