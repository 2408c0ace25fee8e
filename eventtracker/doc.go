// Package eventtracker implements a process-wide, bounded recorder of
// per-device rejoin, check-in, and attribute-report activity, plus a
// periodic per-channel RF energy scanner (spec.md §4.7).
package eventtracker
