package gce

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Disk describes one attached disk. A field is empty when its fetch failed.
type Disk struct {
	Index      string
	DeviceName string
	Type       string
}

// ListDisks enumerates the disks under listing (e.g. "instance/disks/") in
// the order the service returns them. Only a failed listing is an error;
// sub-field failures leave that field empty.
func ListDisks(ctx context.Context, f Fetcher, listing string) ([]Disk, error) {
	raw, err := f.Fetch(ctx, listing)
	if err != nil {
		return nil, fmt.Errorf("listing disks: %w", err)
	}

	base := strings.TrimSuffix(listing, "/")

	var disks []Disk
	for _, ix := range listEntries(raw) {
		prefix := fmt.Sprintf("%s/%s/", base, ix)
		disks = append(disks, Disk{
			Index:      diskField(ctx, f, prefix+"index"),
			DeviceName: diskField(ctx, f, prefix+"device-name"),
			Type:       diskField(ctx, f, prefix+"type"),
		})
	}

	if len(disks) == 0 {
		return nil, ErrNotAvailable
	}

	return disks, nil
}

func diskField(ctx context.Context, f Fetcher, path string) string {
	raw, err := f.Fetch(ctx, path)
	if err == nil {
		raw, err = Raw(raw)
	}
	if err != nil {
		log.WithError(err).WithField("path", path).Debug("disk field unavailable")
		return ""
	}
	return raw
}
