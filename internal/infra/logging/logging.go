package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"ubot-platform/internal/config"

	"github.com/rs/zerolog"
)

// New builds the process logger on stdout.
func New(cfg config.LogConfig, dev bool) *zerolog.Logger {
	return NewTo(os.Stdout, cfg, dev)
}

// NewTo builds a logger writing to w. Levels: trace|debug|info|warn|error;
// formats: json|console (dev forces console). Sampling applies outside dev.
func NewTo(w io.Writer, cfg config.LogConfig, dev bool) *zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if strings.EqualFold(cfg.Format, "console") || dev {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	base := zerolog.New(w).Level(level).With().Timestamp().Logger()

	if cfg.Sampling && !dev {
		// keep the first 100, then 1 in 100
		sampled := base.Sample(&zerolog.BasicSampler{N: 100})
		return &sampled
	}
	return &base
}

type ctxKey string

const (
	ctxTraceID ctxKey = "trace_id"
	ctxUserID  ctxKey = "user_id"
	ctxRoute   ctxKey = "route"
	ctxSessID  ctxKey = "session_id"
)

// contextFields lists the keys With copies into the logger, in output order.
var contextFields = []ctxKey{ctxTraceID, ctxUserID, ctxRoute, ctxSessID}

// With returns base enriched with the request ids stored in ctx.
func With(ctx context.Context, base *zerolog.Logger) *zerolog.Logger {
	l := base.With()
	for _, k := range contextFields {
		if v, ok := ctx.Value(k).(string); ok && v != "" {
			l = l.Str(string(k), v)
		}
	}
	logger := l.Logger()
	return &logger
}

// TraceDuration logs start and end with elapsed duration at TRACE level.
// Usage: defer logging.TraceDuration(logger, "VoucherEngine.Redeem")()
func TraceDuration(logger *zerolog.Logger, name string) func() {
	start := time.Now()
	logger.Trace().Str("method", name).Msg("start")
	return func() {
		logger.Trace().Str("method", name).Dur("duration", time.Since(start)).Msg("finish")
	}
}

// Redact hides voucher codes and similar secrets outside dev, keeping a
// short preview.
func Redact(s string, dev bool) string {
	if dev {
		return s
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-2:]
}

// RedactPhone keeps only the last two digits of a phone number.
func RedactPhone(phone string, dev bool) string {
	if dev || len(phone) <= 2 {
		return phone
	}
	return strings.Repeat("*", len(phone)-2) + phone[len(phone)-2:]
}

func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxTraceID, id)
}

func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxUserID, id)
}

func WithRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, ctxRoute, route)
}

func WithSessID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxSessID, id)
}

// TraceIDFrom returns the request trace id stored by WithTraceID, if any.
func TraceIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(ctxTraceID).(string)
	return v
}
