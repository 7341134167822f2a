package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// ContextExtractor derives an attribute from a context. The bool reports
// whether the attribute is present.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// Option configures New.
type Option func(*options)

type options struct {
	level       slog.Leveler
	json        bool
	output      io.Writer
	attrs       []slog.Attr
	handlerOpts *slog.HandlerOptions
	extractors  []ContextExtractor
}

// New builds a logger. Without options it writes text records at info level
// to stdout.
func New(opts ...Option) *slog.Logger {
	o := &options{
		level:  slog.LevelInfo,
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}

	ho := &slog.HandlerOptions{Level: o.level}
	if o.handlerOpts != nil {
		copied := *o.handlerOpts
		if copied.Level == nil {
			copied.Level = o.level
		}
		ho = &copied
	}

	var h slog.Handler
	if o.json {
		h = slog.NewJSONHandler(o.output, ho)
	} else {
		h = slog.NewTextHandler(o.output, ho)
	}
	if len(o.attrs) > 0 {
		h = h.WithAttrs(o.attrs)
	}
	if len(o.extractors) > 0 {
		h = &contextHandler{Handler: h, extractors: o.extractors}
	}
	return slog.New(h)
}

// SetAsDefault installs log as the slog default logger.
func SetAsDefault(log *slog.Logger) {
	if log != nil {
		slog.SetDefault(log)
	}
}

// WithLevel sets the minimum record level.
func WithLevel(level slog.Leveler) Option {
	return func(o *options) {
		if level != nil {
			o.level = level
		}
	}
}

// WithJSONFormatter switches output to JSON.
func WithJSONFormatter() Option {
	return func(o *options) { o.json = true }
}

// WithTextFormatter switches output to logfmt-style text.
func WithTextFormatter() Option {
	return func(o *options) { o.json = false }
}

// WithOutput sets the destination writer.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// WithAttr adds attributes to every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(o *options) { o.attrs = append(o.attrs, attrs...) }
}

// WithHandlerOptions overrides the handler options. A nil Level falls back
// to the configured level.
func WithHandlerOptions(ho *slog.HandlerOptions) Option {
	return func(o *options) { o.handlerOpts = ho }
}

// WithContextExtractors adds extractors consulted for every record logged
// with a context.
func WithContextExtractors(extractors ...ContextExtractor) Option {
	return func(o *options) { o.extractors = append(o.extractors, extractors...) }
}

// WithContextValue logs the context value stored under ctxKey as attrKey.
func WithContextValue(attrKey string, ctxKey any) Option {
	return WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
		v := ctx.Value(ctxKey)
		if v == nil {
			return slog.Attr{}, false
		}
		return slog.Any(attrKey, v), true
	})
}

// WithDevelopment configures text output at debug level.
func WithDevelopment(service string) Option {
	return func(o *options) {
		o.json = false
		o.level = slog.LevelDebug
		o.attrs = append(o.attrs, slog.String("service", service), slog.String("env", "development"))
	}
}

// WithStaging configures JSON output at debug level.
func WithStaging(service string) Option {
	return func(o *options) {
		o.json = true
		o.level = slog.LevelDebug
		o.attrs = append(o.attrs, slog.String("service", service), slog.String("env", "staging"))
	}
}

// WithProduction configures JSON output at info level.
func WithProduction(service string) Option {
	return func(o *options) {
		o.json = true
		o.level = slog.LevelInfo
		o.attrs = append(o.attrs, slog.String("service", service), slog.String("env", "production"))
	}
}

// contextHandler adds extracted context attributes to each record.
type contextHandler struct {
	slog.Handler
	extractors []ContextExtractor
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		for _, extract := range h.extractors {
			if attr, ok := extract(ctx); ok {
				r.AddAttrs(attr)
			}
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs), extractors: h.extractors}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name), extractors: h.extractors}
}
