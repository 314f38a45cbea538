// Package modelinfo fetches and displays per-variant model statistics.
package modelinfo

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/conorls/dublinrent/internal/models"
)

// Fetcher is the slice of the backend API the aggregator needs.
type Fetcher interface {
	ModelInfo(ctx context.Context, variant models.Variant) (models.ModelInfo, error)
}

// Snapshot is the display state for the currently selected variant.
// While a new variant's fetch is in flight, Loading is true and no data
// from a previously selected variant is carried over.
type Snapshot struct {
	Variant models.Variant
	Loading bool
	Info    *models.ModelInfo
	// Err is the failure of the fetch for Variant, if any. It is cleared
	// as soon as the next Select begins.
	Err error
}

// Aggregator fetches model statistics keyed by the selected variant.
// Each fetch fully replaces the previous snapshot; a response for a
// variant that is no longer selected is discarded.
type Aggregator struct {
	client Fetcher
	log    *zap.Logger

	mu   sync.Mutex
	gen  uint64
	snap Snapshot
}

// NewAggregator returns an aggregator with no variant selected.
func NewAggregator(client Fetcher, log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{client: client, log: log}
}

// Select fetches the statistics for variant. Any previous snapshot,
// including a previous error, is replaced by a loading state immediately
// so a stale snapshot for a different variant is never displayed. If a
// later Select supersedes this one while the fetch is in flight, the
// late response is dropped.
func (a *Aggregator) Select(ctx context.Context, variant models.Variant) error {
	a.mu.Lock()
	a.gen++
	gen := a.gen
	a.snap = Snapshot{Variant: variant, Loading: true}
	a.mu.Unlock()

	info, err := a.client.ModelInfo(ctx, variant)

	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen {
		a.log.Debug("discarding superseded model info response",
			zap.String("variant", string(variant)))
		return nil
	}
	if err != nil {
		a.log.Warn("model info fetch failed",
			zap.String("variant", string(variant)), zap.Error(err))
		a.snap = Snapshot{Variant: variant, Err: err}
		return err
	}
	a.snap = Snapshot{Variant: variant, Info: &info}
	return nil
}

// Snapshot returns the current display state.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snap
}

// FeatureBar is one entry of the feature-importance ranking. BarWidth is
// the weight scaled to a 0–100 range; weights are fractions of 1 over
// the full feature set, so widths across the top entries do not sum to
// 100.
type FeatureBar struct {
	Name     string
	Weight   float64
	BarWidth float64
}

// TopFeatures ranks importances descending by weight and returns at most
// n entries. Ties are broken by name so the ranking is stable.
func TopFeatures(importances map[string]float64, n int) []FeatureBar {
	bars := make([]FeatureBar, 0, len(importances))
	for name, weight := range importances {
		bars = append(bars, FeatureBar{Name: name, Weight: weight, BarWidth: weight * 100})
	}
	sort.Slice(bars, func(i, j int) bool {
		if bars[i].Weight != bars[j].Weight {
			return bars[i].Weight > bars[j].Weight
		}
		return bars[i].Name < bars[j].Name
	})
	if len(bars) > n {
		bars = bars[:n]
	}
	return bars
}
