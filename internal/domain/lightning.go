package domain

import (
	"cmp"
	"slices"
)

// DefaultStrikeLimit is how many strikes are kept after ranking.
const DefaultStrikeLimit = 5

// RankStrikes keeps the limit strikes closest to home and orders them most
// recent first. The input slice is not modified.
func RankStrikes(obs []StrikeObservation, limit int) []StrikeObservation {
	ranked := slices.Clone(obs)
	slices.SortStableFunc(ranked, func(a, b StrikeObservation) int {
		return cmp.Compare(a.DistanceKM, b.DistanceKM)
	})
	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	slices.SortStableFunc(ranked, func(a, b StrikeObservation) int {
		return b.ObservedAt.Compare(a.ObservedAt)
	})
	return ranked
}

// StrikeTimeLayout is the display layout for strike times.
const StrikeTimeLayout = "2006-01-02 15:04:05"
