// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package grid

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wneessen/dist2coast/internal/geo"
)

// Reloadable is a file backed Lookup that can replace its Store while serving lookups.
type Reloadable struct {
	path    string
	opts    LoadOptions
	spacing float64
	verify  bool

	store atomic.Pointer[Store]

	mu      sync.Mutex
	modTime time.Time
}

// NewReloadable loads the grid file at path. If verify is true, the loaded store must form a
// complete lattice with the given spacing.
func NewReloadable(path string, opts LoadOptions, spacing float64, verify bool) (*Reloadable, error) {
	r := &Reloadable{
		path:    path,
		opts:    opts,
		spacing: spacing,
		verify:  verify,
	}
	if _, err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reloadable) Name() string {
	return r.Store().Name()
}

// DistanceToCoast looks up c in the currently loaded store.
func (r *Reloadable) DistanceToCoast(ctx context.Context, c geo.Coordinate) (float64, error) {
	return r.Store().DistanceToCoast(ctx, c)
}

// Store returns the currently loaded store.
func (r *Reloadable) Store() *Store {
	return r.store.Load()
}

// Reload reads the grid file again if its modification time changed since the last load.
// It reports whether a new store was swapped in. On error the previous store stays active.
func (r *Reloadable) Reload() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, err := os.Stat(r.path)
	if err != nil {
		return false, fmt.Errorf("failed to stat grid file %q: %w", r.path, err)
	}
	if r.store.Load() != nil && info.ModTime().Equal(r.modTime) {
		return false, nil
	}

	store, err := LoadFile(r.path, r.opts)
	if err != nil {
		return false, err
	}
	if r.verify {
		if err = store.Validate(r.spacing); err != nil {
			return false, fmt.Errorf("grid file %q failed validation: %w", r.path, err)
		}
	}
	r.store.Store(store)
	r.modTime = info.ModTime()
	return true, nil
}
