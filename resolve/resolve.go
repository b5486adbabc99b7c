// Package resolve turns signatures into addresses inside a loaded image.
// Every distinct signature text is scanned at most once per Resolver.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/mhr3/sigscan/image"
	"github.com/mhr3/sigscan/pattern"
)

var (
	ErrNotFound = errors.New("signature not found")
	// ErrOutOfRange reports a Signature.Offset that moves the match outside
	// the image text.
	ErrOutOfRange = errors.New("adjusted offset outside image text")
)

// Resolver memoizes first-match offsets of signatures in one image. It is
// safe for concurrent use.
type Resolver struct {
	img         *image.Image
	log         *slog.Logger
	concurrency int

	cache sync.Map // pattern text -> int offset, -1 when not found
	group singleflight.Group
	scans atomic.Int64
}

type Option func(*Resolver)

// WithLogger sets the logger used for scan events.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// WithConcurrency bounds the number of signatures ResolveAll scans at once.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

func New(img *image.Image, opts ...Option) *Resolver {
	r := &Resolver{
		img:         img,
		log:         slog.New(slog.DiscardHandler),
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Image returns the image the Resolver scans.
func (r *Resolver) Image() *image.Image { return r.img }

// Offset returns the text offset of the first match of text. A missing
// signature yields an error wrapping ErrNotFound; parse errors are returned
// as *pattern.ParseError and are not memoized.
func (r *Resolver) Offset(ctx context.Context, text string) (int, error) {
	if v, ok := r.cache.Load(text); ok {
		return offsetResult(text, v.(int))
	}

	ch := r.group.DoChan(text, func() (any, error) {
		if v, ok := r.cache.Load(text); ok {
			return v, nil
		}
		p, err := pattern.Compile(text)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		off := p.Index(r.img.Text)
		r.scans.Add(1)
		r.log.Debug("scanned signature",
			"pattern", text,
			"offset", off,
			"backend", pattern.Backend(),
			"elapsed", time.Since(start))

		r.cache.Store(text, off)
		return off, nil
	})

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		return offsetResult(text, res.Val.(int))
	}
}

// Address returns the virtual address of the first match of text.
func (r *Resolver) Address(ctx context.Context, text string) (uint64, error) {
	off, err := r.Offset(ctx, text)
	if err != nil {
		return 0, err
	}
	return r.img.Address(off), nil
}

func offsetResult(text string, off int) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, text)
	}
	return off, nil
}

// Signature is a named pattern. Offset is added to the match, for
// signatures that anchor a few bytes away from the location of interest.
type Signature struct {
	Name     string `yaml:"name"`
	Pattern  string `yaml:"pattern"`
	Offset   int    `yaml:"offset,omitempty"`
	Required bool   `yaml:"required,omitempty"`
}

// Result is the outcome of resolving one Signature.
type Result struct {
	Signature Signature
	Offset    int
	Address   uint64
	Err       error
}

// ResolveAll resolves sigs concurrently. Results are in input order. A
// failure of a Required signature cancels the remaining work and is
// returned; other failures are only reported in their Result.
func (r *Resolver) ResolveAll(ctx context.Context, sigs []Signature) ([]Result, error) {
	results := make([]Result, len(sigs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, sig := range sigs {
		g.Go(func() error {
			res := Result{Signature: sig}
			off, err := r.Offset(ctx, sig.Pattern)
			if err == nil {
				adj := off + sig.Offset
				if adj < 0 || adj >= r.img.Len() {
					err = fmt.Errorf("%w: %d%+d", ErrOutOfRange, off, sig.Offset)
				} else {
					res.Offset = adj
					res.Address = r.img.Address(adj)
				}
			}
			res.Err = err
			results[i] = res

			if err != nil {
				if sig.Required {
					return fmt.Errorf("signature %s: %w", sig.Name, err)
				}
				r.log.Warn("signature unresolved", "name", sig.Name, "err", err)
			}
			return nil
		})
	}

	err := g.Wait()
	return results, err
}
