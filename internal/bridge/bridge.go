package bridge

import (
	"context"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/mcpview/internal/policy"
)

// Options configures a Bridge.
type Options struct {
	// Resolver overrides the base-template resolver for ui:// URIs.
	Resolver Resolver
	// Base is the absolute resolver base used when Resolver is nil.
	Base string
	// Allow decides remote access. Nil rejects every remote URL.
	Allow policy.Allower
	// Fetcher performs remote and base-template fetches.
	Fetcher *Fetcher
	Logger  *zap.Logger
}

// Bridge routes resource requests to the resolver or the remote fetcher.
type Bridge struct {
	opts   Options
	logger *zap.Logger
}

// New creates a Bridge.
func New(opts Options) *Bridge {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Allow == nil {
		opts.Allow = policy.DenyAll
	}
	return &Bridge{opts: opts, logger: logger.Named("bridge")}
}

// ActiveResolver returns the resolver used for ui:// URIs, or nil if there is
// none.
func (b *Bridge) ActiveResolver() Resolver {
	if b.opts.Resolver != nil {
		return b.opts.Resolver
	}
	if b.opts.Fetcher == nil {
		return nil
	}
	base := b.opts.Base
	if base == "" {
		base = DefaultBase
	}
	return NewTemplateResolver(base, b.opts.Fetcher)
}

// Resolve fetches uri for the given kind. It always returns a Resource; every
// failure is reported through Resource.Error.
func (b *Bridge) Resolve(ctx context.Context, uri string, kind Kind) (res Resource) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("resolver panicked", zap.String("uri", uri), zap.Any("panic", r))
			res = Failure("Resolver error")
		}
	}()

	ref := policy.Reference{URL: uri, Scheme: policy.SchemeOf(uri)}
	switch policy.Decide(ref, b.opts.Allow) {
	case policy.ActionLogical:
		resolver := b.ActiveResolver()
		if resolver == nil {
			return Failure(ReasonNoResolver)
		}
		result, err := resolver.Resolve(ctx, uri)
		if err != nil {
			return Failure(err.Error())
		}
		return Normalize(result, kind, uri)

	case policy.ActionRemote:
		if b.opts.Fetcher == nil {
			return Failure("Remote fetch failed")
		}
		resp, err := b.opts.Fetcher.Get(ctx, uri)
		if err != nil {
			return Failure(err.Error())
		}
		return Normalize(resp, kind, uri)

	case policy.ActionBlocked:
		return Failure(ReasonRemoteBlocked)

	default:
		return Resource{OK: false, MIME: InferMime(kind, uri), Error: ReasonUnsupportedURI}
	}
}
