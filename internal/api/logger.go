package api

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

type logCtxKey int

const usuarioIDLogKey logCtxKey = iota

// WithUsuarioID marks ctx so records logged with it carry usuario_id.
func WithUsuarioID(ctx context.Context, usuarioID int64) context.Context {
	return context.WithValue(ctx, usuarioIDLogKey, usuarioID)
}

// requestContextHandler tags records with the active span and the authenticated usuario.
type requestContextHandler struct {
	slog.Handler
}

func (h requestContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	if id, ok := ctx.Value(usuarioIDLogKey).(int64); ok {
		r.AddAttrs(slog.Int64("usuario_id", id))
	}

	return h.Handler.Handle(ctx, r)
}

func (h requestContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return requestContextHandler{h.Handler.WithAttrs(attrs)}
}

func (h requestContextHandler) WithGroup(name string) slog.Handler {
	return requestContextHandler{h.Handler.WithGroup(name)}
}

// NewLogger writes JSON records tagged with service, trace ids and usuario_id when known.
func NewLogger(w io.Writer, serviceName string, level slog.Level) *slog.Logger {
	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(requestContextHandler{jsonHandler}).With(slog.String("service", serviceName))
}

func SetupGlobalHandler(w io.Writer, serviceName string, level slog.Level) {
	slog.SetDefault(NewLogger(w, serviceName, level))

	slog.Info("Logger initialized", "service", serviceName, "level", level.String())
}
