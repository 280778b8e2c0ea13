package velocity

import (
	"errors"
	"fmt"
	"os"
)

// Engine compiles and renders templates. An Engine is safe for concurrent
// use as long as each render gets its own Context.
type Engine struct {
	config    *Config
	cache     *CompiledTemplateCache
	evaluator ConditionEvaluator
	logger    *Logger
	onRecover func(error)
}

// Option configures an Engine
type Option func(*Engine)

// WithConfig sets the engine configuration. Unset fields take their defaults.
func WithConfig(config *Config) Option {
	return func(e *Engine) {
		e.config = NewConfigWithDefaults(config)
	}
}

// WithCache makes the engine use cache, which may be shared between engines.
func WithCache(cache *CompiledTemplateCache) Option {
	return func(e *Engine) {
		e.cache = cache
	}
}

// WithEvaluator replaces the default condition evaluator.
func WithEvaluator(evaluator ConditionEvaluator) Option {
	return func(e *Engine) {
		e.evaluator = evaluator
	}
}

// WithLogger sets the logger used while compiling and rendering.
func WithLogger(logger *Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRecoveryHook registers fn to receive every condition evaluation
// error the renderer recovers from.
func WithRecoveryHook(fn func(error)) Option {
	return func(e *Engine) {
		e.onRecover = fn
	}
}

// New creates an engine. Without options it uses the global configuration,
// the default evaluator and a private cache.
func New(opts ...Option) *Engine {
	e := &Engine{
		config:    GetGlobalConfig(),
		evaluator: DefaultEvaluator(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.config.MaxRenderDepth <= 0 {
		e.config.MaxRenderDepth = DefaultConfig().MaxRenderDepth
	}
	if e.cache == nil && !e.config.DisableCache {
		e.cache = NewCompiledTemplateCache()
	}
	if e.evaluator == nil {
		e.evaluator = DefaultEvaluator()
	}
	return e
}

// Config returns a copy of the engine configuration
func (e *Engine) Config() Config {
	return *e.config
}

// Cache returns the engine's template cache, or nil when caching is disabled.
func (e *Engine) Cache() *CompiledTemplateCache {
	return e.cache
}

func (e *Engine) log() *Logger {
	if e.logger != nil {
		return e.logger
	}
	return GetLogger()
}

// Compile compiles src, consulting the engine's cache when it has one.
func (e *Engine) Compile(src string) (*Template, error) {
	if e.cache != nil {
		return e.cache.compile(src, e.log())
	}
	return compile(src, e.log())
}

// Render compiles src and renders it against ctx. ctx is modified by #set
// and #foreach; pass a fresh or cloned Context to keep the original intact.
func (e *Engine) Render(src string, ctx Context) (string, error) {
	tmpl, err := e.Compile(src)
	if err != nil {
		return "", err
	}
	return e.RenderCompiled(tmpl, ctx)
}

// RenderCompiled renders a compiled template against ctx.
func (e *Engine) RenderCompiled(t *Template, ctx Context) (result string, err error) {
	if t == nil {
		return "", errors.New("template is nil")
	}
	if ctx == nil {
		ctx = NewContext()
	}

	defer func() {
		if r := recover(); r != nil {
			err = RecoverError(r)
		}
	}()

	logger := e.log()
	logger.DebugTemplate(t.Source, ctx)

	r := &renderer{
		evaluator: e.evaluator,
		logger:    logger,
		maxDepth:  e.config.MaxRenderDepth,
		onRecover: e.onRecover,
	}
	return r.render(t, ctx)
}

// RenderFile reads the template at path and renders it against ctx.
func (e *Engine) RenderFile(path string, ctx Context) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", path, err)
	}
	return e.Render(string(src), ctx)
}

// Render compiles src without caching and renders it with a default engine.
func Render(src string, ctx Context) (string, error) {
	tmpl, err := Compile(src)
	if err != nil {
		return "", err
	}
	return RenderCompiled(tmpl, ctx)
}

// RenderCompiled renders t with a default engine.
func RenderCompiled(t *Template, ctx Context) (string, error) {
	return New().RenderCompiled(t, ctx)
}
