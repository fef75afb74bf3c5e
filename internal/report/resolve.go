package report

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/tempusbreve/gce-metadata/internal/gce"
)

// Entry is one resolved selector, ready to print.
type Entry struct {
	Label string
	Value string
	Disks []gce.Disk
	Err   error
}

func (e Entry) Available() bool { return e.Err == nil }

type resolver struct {
	fetcher  gce.Fetcher
	hostname func() (string, error)
}

func (r resolver) resolve(ctx context.Context, spec gce.Spec) Entry {
	entry := Entry{Label: spec.Label}

	switch spec.Source {
	case gce.SourceDisks:
		entry.Disks, entry.Err = gce.ListDisks(ctx, r.fetcher, spec.Path)
	case gce.SourceHostname:
		entry.Value, entry.Err = apply(r.hostname, spec.Rule)
	default:
		entry.Value, entry.Err = apply(func() (string, error) {
			return r.fetcher.Fetch(ctx, spec.Path)
		}, spec.Rule)
	}

	if entry.Err != nil {
		log.WithError(entry.Err).WithField("selector", spec.Selector).Debug("field unavailable")
	}

	return entry
}

func apply(get func() (string, error), rule gce.Rule) (string, error) {
	raw, err := get()
	if err != nil {
		return "", err
	}
	if rule == nil {
		rule = gce.Raw
	}
	return rule(raw)
}
