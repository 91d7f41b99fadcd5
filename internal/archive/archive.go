// Package archive persists immutable catalog snapshots to blob storage and
// restores them into a live store.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"unitcore/internal/blob"
	"unitcore/pkg/measure"
)

const (
	keyPrefix   = "catalog/"
	keySuffix   = ".json"
	contentType = "application/json"
)

// Manifest is the serialized form of one catalog snapshot.
type Manifest struct {
	CreatedAt time.Time             `json:"created_at"`
	UnitCount int                   `json:"unit_count"`
	Units     []measure.DerivedUnit `json:"units"`
}

// Archiver writes catalog snapshots to a blob store. Snapshots are
// create-only: each archive gets a timestamped key and is never rewritten.
type Archiver struct {
	store measure.PersistentStore
	blobs blob.Store
	nowFn func() time.Time
}

// Option customises an Archiver.
type Option func(*Archiver)

// WithClock overrides the archive timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Archiver) {
		if now != nil {
			a.nowFn = now
		}
	}
}

// New builds an Archiver over a catalog store and a blob backend.
func New(store measure.PersistentStore, blobs blob.Store, opts ...Option) *Archiver {
	a := &Archiver{store: store, blobs: blobs, nowFn: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Archive snapshots the current catalog into the blob store and returns the
// stored object info.
func (a *Archiver) Archive(ctx context.Context) (blob.Info, error) {
	units := a.store.ListUnits()
	sort.Slice(units, func(i, j int) bool { return units[i].Symbol < units[j].Symbol })

	now := a.nowFn().UTC()
	manifest := Manifest{CreatedAt: now, UnitCount: len(units), Units: units}
	payload, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return blob.Info{}, fmt.Errorf("encode manifest: %w", err)
	}

	key := keyPrefix + now.Format("20060102T150405.000000000Z") + keySuffix
	info, err := a.blobs.Put(ctx, key, strings.NewReader(string(payload)), blob.PutOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"unit_count": fmt.Sprintf("%d", len(units))},
	})
	if err != nil {
		return blob.Info{}, fmt.Errorf("store archive: %w", err)
	}
	return info, nil
}

// List returns all stored catalog archives ordered by key, which for the
// timestamped naming scheme is chronological order.
func (a *Archiver) List(ctx context.Context) ([]blob.Info, error) {
	return a.blobs.List(ctx, keyPrefix)
}

// Latest returns the most recent archive info.
func (a *Archiver) Latest(ctx context.Context) (blob.Info, error) {
	infos, err := a.List(ctx)
	if err != nil {
		return blob.Info{}, err
	}
	if len(infos) == 0 {
		return blob.Info{}, fmt.Errorf("no archives stored")
	}
	return infos[len(infos)-1], nil
}

// Restore loads the archive at key into the catalog store, skipping units
// whose symbol already resolves. It returns the number of restored units.
func (a *Archiver) Restore(ctx context.Context, key string) (int, error) {
	manifest, err := a.Read(ctx, key)
	if err != nil {
		return 0, err
	}
	restored := 0
	_, err = a.store.RunInTransaction(ctx, func(tx measure.Transaction) error {
		for _, unit := range manifest.Units {
			if _, ok := tx.ResolveUnit(unit.Symbol); ok {
				continue
			}
			if _, err := tx.CreateUnit(unit); err != nil {
				return err
			}
			restored++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return restored, nil
}

// Read fetches and decodes the manifest stored at key.
func (a *Archiver) Read(ctx context.Context, key string) (Manifest, error) {
	_, body, err := a.blobs.Get(ctx, key)
	if err != nil {
		return Manifest{}, fmt.Errorf("fetch archive %s: %w", key, err)
	}
	defer body.Close()
	payload, err := io.ReadAll(body)
	if err != nil {
		return Manifest{}, fmt.Errorf("read archive %s: %w", key, err)
	}
	var manifest Manifest
	if err := json.Unmarshal(payload, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("decode archive %s: %w", key, err)
	}
	return manifest, nil
}
