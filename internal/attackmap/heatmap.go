// Package attackmap builds the MITRE ATT&CK heatmap view from backend
// heatmap entries: grouping by the fixed Enterprise tactic columns,
// banding intensity into display tiers, and aggregate coverage stats.
package attackmap

import (
	"sort"
)

// TacticsOrder is the fixed display order of the 14 ATT&CK Enterprise
// tactics. Entries whose tactic is not in this list are dropped.
var TacticsOrder = []string{
	"Reconnaissance",
	"Resource Development",
	"Initial Access",
	"Execution",
	"Persistence",
	"Privilege Escalation",
	"Defense Evasion",
	"Credential Access",
	"Discovery",
	"Lateral Movement",
	"Collection",
	"Command and Control",
	"Exfiltration",
	"Impact",
}

// Entry is one technique cell (mirrors the backend heatmap payload).
type Entry struct {
	TechniqueID   string  `json:"technique_id"`
	TechniqueName string  `json:"technique_name"`
	Tactic        string  `json:"tactic"`
	IOCCount      int     `json:"ioc_count"`
	Intensity     float64 `json:"intensity"`
}

// Tier is an intensity display band. Seven visually distinct bands above
// "none", collapsed to four semantic levels in the legend.
type Tier string

const (
	TierNone       Tier = "none"
	TierLowLow     Tier = "low-low"
	TierLowHigh    Tier = "low-high"
	TierMediumLow  Tier = "medium-low"
	TierMediumHigh Tier = "medium-high"
	TierHighLow    Tier = "high-low"
	TierHighHigh   Tier = "high-high"
)

// IntensityTier bands a normalized intensity into its display tier. The
// thresholds partition [0,1] exactly; the upper band is closed at 1.
func IntensityTier(intensity float64) Tier {
	switch {
	case intensity <= 0:
		return TierNone
	case intensity < 0.15:
		return TierLowLow
	case intensity < 0.3:
		return TierLowHigh
	case intensity < 0.5:
		return TierMediumLow
	case intensity < 0.7:
		return TierMediumHigh
	case intensity < 0.85:
		return TierHighLow
	default:
		return TierHighHigh
	}
}

// Legend collapses a tier to its semantic level (none/low/medium/high).
func (t Tier) Legend() string {
	switch t {
	case TierNone:
		return "none"
	case TierLowLow, TierLowHigh:
		return "low"
	case TierMediumLow, TierMediumHigh:
		return "medium"
	default:
		return "high"
	}
}

// Cell is a presentation-ready technique cell.
type Cell struct {
	Entry
	Tier Tier `json:"tier"`
}

// Column is one tactic's bucket, sorted descending by IOC count.
type Column struct {
	Tactic     string `json:"tactic"`
	Techniques []Cell `json:"techniques"`
}

// Stats summarizes heatmap coverage.
type Stats struct {
	Techniques       int    `json:"techniques"`
	ActiveTechniques int    `json:"active_techniques"`
	TotalIOCs        int    `json:"total_iocs"`
	HottestTechnique string `json:"hottest_technique"`
}

// Matrix is the grouped heatmap ready for rendering.
type Matrix struct {
	Columns []Column `json:"columns"`
	Stats   Stats    `json:"stats"`
}

// Group buckets entries by tactic in the fixed column order. Entries whose
// tactic string does not exactly match one of the 14 tactics are silently
// discarded. Within a column, techniques sort descending by IOC count;
// ties keep backend order.
func Group(entries []Entry) Matrix {
	buckets := make(map[string][]Cell, len(TacticsOrder))
	for _, tactic := range TacticsOrder {
		buckets[tactic] = nil
	}

	var stats Stats
	maxCount := -1
	for _, e := range entries {
		if _, known := buckets[e.Tactic]; !known {
			continue
		}
		buckets[e.Tactic] = append(buckets[e.Tactic], Cell{Entry: e, Tier: IntensityTier(e.Intensity)})

		stats.Techniques++
		stats.TotalIOCs += e.IOCCount
		if e.IOCCount > 0 {
			stats.ActiveTechniques++
		}
		if e.IOCCount > maxCount && e.IOCCount > 0 {
			maxCount = e.IOCCount
			stats.HottestTechnique = e.TechniqueID
		}
	}

	columns := make([]Column, 0, len(TacticsOrder))
	for _, tactic := range TacticsOrder {
		techniques := buckets[tactic]
		sort.SliceStable(techniques, func(i, j int) bool {
			return techniques[i].IOCCount > techniques[j].IOCCount
		})
		columns = append(columns, Column{Tactic: tactic, Techniques: techniques})
	}

	return Matrix{Columns: columns, Stats: stats}
}
