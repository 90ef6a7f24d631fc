// Package timerange holds the pure interval arithmetic behind slot scheduling.
// Ranges are half-open: [Start, End).
package timerange

import "time"

type Range struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether a and b share any instant. Ranges that only touch at an
// endpoint do not overlap.
func Overlaps(a, b Range) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// FirstOverlap returns the first range in existing that overlaps candidate.
func FirstOverlap(candidate Range, existing []Range) (Range, bool) {
	for _, r := range existing {
		if Overlaps(r, candidate) {
			return r, true
		}
	}
	return Range{}, false
}

// Partition splits [start, stop] into consecutive buckets of length step beginning at
// start. A trailing bucket that would end after stop is dropped.
func Partition(start, stop time.Time, step time.Duration) []Range {
	if step <= 0 || !stop.After(start) {
		return nil
	}

	buckets := make([]Range, 0, int(stop.Sub(start)/step))
	for s := start; ; s = s.Add(step) {
		e := s.Add(step)
		if e.After(stop) {
			break
		}
		buckets = append(buckets, Range{Start: s, End: e})
	}
	return buckets
}

// Hourly is Partition with one-hour buckets.
func Hourly(start, stop time.Time) []Range {
	return Partition(start, stop, time.Hour)
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
