package core

import "github.com/google/uuid"

// Overlaps reports whether the inclusive date ranges [aStart, aEnd] and
// [bStart, bEnd] share at least one day.
func Overlaps(aStart, aEnd, bStart, bEnd Date) bool {
	return !aStart.After(bEnd.Time) && !aEnd.Before(bStart.Time)
}

// OverlapsBudget reports whether candidate conflicts with existing: same
// category value (umbrella matches umbrella) and overlapping date ranges.
func OverlapsBudget(candidate, existing Budget) bool {
	if !sameCategory(candidate.CategoryID, existing.CategoryID) {
		return false
	}
	return Overlaps(candidate.StartDate, candidate.EndDate, existing.StartDate, existing.EndDate)
}

func sameCategory(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
