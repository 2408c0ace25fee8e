package pollcoordinator

import (
	"context"
	"strconv"
	"time"

	"github.com/gwcore/zigbeedriver/store"
)

// Default refresh thresholds, per spec.md §4.4.
const (
	DefaultTempRefreshMinSecs           = 3000
	DefaultBatteryVoltageRefreshMinSecs = 86_400
	DefaultFeRSSIRefreshMinSecs         = 1_500
	DefaultFeLQIRefreshMinSecs          = 1_500
)

// Per-device metadata keys that override the refresh thresholds above.
const (
	MetaTempRefreshMinSecs           = "TempRefreshMinSecs"
	MetaBatteryVoltageRefreshMinSecs = "BatteryVoltageRefreshMinSecs"
	MetaFeRSSIRefreshMinSecs         = "FeRssiRefreshMinSecs"
	MetaFeLQIRefreshMinSecs          = "FeLqiRefreshMinSecs"
)

// Thresholds holds the four staleness thresholds tested on a vanilla
// check-in.
type Thresholds struct {
	TempRefreshMinSecs           int64
	BatteryVoltageRefreshMinSecs int64
	FeRSSIRefreshMinSecs         int64
	FeLQIRefreshMinSecs          int64
}

// DefaultThresholds returns the spec.md §4.4 defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TempRefreshMinSecs:           DefaultTempRefreshMinSecs,
		BatteryVoltageRefreshMinSecs: DefaultBatteryVoltageRefreshMinSecs,
		FeRSSIRefreshMinSecs:         DefaultFeRSSIRefreshMinSecs,
		FeLQIRefreshMinSecs:          DefaultFeLQIRefreshMinSecs,
	}
}

// resolved applies per-device metadata overrides on top of base.
func (base Thresholds) resolved(ctx context.Context, st store.Store, deviceID string) Thresholds {
	out := base
	if v, ok := overrideSecs(ctx, st, deviceID, MetaTempRefreshMinSecs); ok {
		out.TempRefreshMinSecs = v
	}
	if v, ok := overrideSecs(ctx, st, deviceID, MetaBatteryVoltageRefreshMinSecs); ok {
		out.BatteryVoltageRefreshMinSecs = v
	}
	if v, ok := overrideSecs(ctx, st, deviceID, MetaFeRSSIRefreshMinSecs); ok {
		out.FeRSSIRefreshMinSecs = v
	}
	if v, ok := overrideSecs(ctx, st, deviceID, MetaFeLQIRefreshMinSecs); ok {
		out.FeLQIRefreshMinSecs = v
	}
	return out
}

func overrideSecs(ctx context.Context, st store.Store, deviceID, key string) (int64, bool) {
	raw, ok, err := st.GetMetadata(ctx, deviceID, key)
	if err != nil || !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// stale reports whether the named resource on id has not been refreshed
// within threshold. A resource with no recorded age (never set) counts as
// stale.
func stale(ctx context.Context, st store.Store, id, name string, threshold int64) bool {
	age, err := st.ResourceAge(ctx, id, name)
	if err != nil {
		return true
	}
	return age >= time.Duration(threshold)*time.Second
}
