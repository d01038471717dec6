// Package schedule computes the remaining weight and duration budget for the
// sections of an exam while one of them is being edited.
package schedule

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Allocation is one section's share of the exam budget. Weight is a fraction
// of the exam (0..1), DurationHours is fractional hours.
type Allocation struct {
	Weight        float64
	DurationHours float64
}

// Budget is the room left for the allocation currently being edited. Negative
// values mean over-allocation and are reported as-is.
type Budget struct {
	RemainingWeight   float64
	RemainingDuration float64
}

// Fixed2 rounds to two decimal places, half away from zero.
func Fixed2(value float64) float64 {
	return math.Round(value*100) / 100
}

// ParseClock converts an "HH:MM" string into fractional hours rounded to two
// decimal places. Minutes must be below 60.
func ParseClock(clock string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock %q: expected HH:MM", clock)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("invalid clock %q: bad hour part", clock)
	}

	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid clock %q: bad minute part", clock)
	}

	return Fixed2(float64(hours) + float64(minutes)/60), nil
}

// Remaining computes the unallocated weight and duration once the candidate
// values are provisionally applied. editedIndex names the sibling being
// edited, which is excluded from the base sum so the remainder reflects the
// room left for it; pass a negative index when a new section is being created.
func Remaining(siblings []Allocation, editedIndex int, candidateWeightPercent float64, candidateClock string, examTotalHours float64) (Budget, error) {
	candidateDuration, err := ParseClock(candidateClock)
	if err != nil {
		return Budget{}, err
	}

	var weightSum, durationSum float64
	for i, sibling := range siblings {
		if i == editedIndex {
			continue
		}
		weightSum += sibling.Weight
		durationSum += sibling.DurationHours
	}

	return Budget{
		RemainingWeight:   Fixed2(1 - (weightSum + candidateWeightPercent/100)),
		RemainingDuration: Fixed2(examTotalHours - (durationSum + candidateDuration)),
	}, nil
}
