package report

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/tempusbreve/gce-metadata/internal/gce"
)

type Runner struct {
	resolver    resolver
	printer     Printer
	concurrency int
}

func WithHostname(fn func() (string, error)) func(*Runner) {
	return func(r *Runner) { r.resolver.hostname = fn }
}

// WithConcurrency bounds how many selectors are resolved at once. Output
// order never changes.
func WithConcurrency(n int) func(*Runner) {
	return func(r *Runner) { r.concurrency = n }
}

func NewRunner(f gce.Fetcher, p Printer, options ...func(*Runner)) *Runner {
	r := &Runner{
		resolver:    resolver{fetcher: f, hostname: os.Hostname},
		printer:     p,
		concurrency: 1,
	}

	for _, fn := range options {
		fn(r)
	}

	return r
}

// Run resolves and prints selectors in the order given. An empty list means
// every selector.
func (r *Runner) Run(ctx context.Context, selectors []gce.Selector) error {
	if len(selectors) == 0 {
		selectors = gce.All()
	}

	specs := make([]gce.Spec, 0, len(selectors))
	for _, sel := range selectors {
		spec, ok := gce.Lookup(sel)
		if !ok {
			return fmt.Errorf("unknown selector %q", sel)
		}
		specs = append(specs, spec)
	}

	if r.concurrency > 1 {
		for _, entry := range r.resolveAll(ctx, specs) {
			if err := r.printer.Print(entry); err != nil {
				return err
			}
		}
		return r.printer.Flush()
	}

	for _, spec := range specs {
		if err := r.printer.Print(r.resolver.resolve(ctx, spec)); err != nil {
			return err
		}
	}

	return r.printer.Flush()
}

func (r *Runner) resolveAll(ctx context.Context, specs []gce.Spec) []Entry {
	entries := make([]Entry, len(specs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for ix, spec := range specs {
		ix, spec := ix, spec
		g.Go(func() error {
			entries[ix] = r.resolver.resolve(gCtx, spec)
			return nil
		})
	}

	// resolve never fails; unavailable fields are carried in the entries
	_ = g.Wait()

	return entries
}
