// Package era aggregates dated works and their citations into fixed-width
// year buckets broken down by canonical section, for the timeline view.
package era

import (
	"github.com/bitflora/patristics-explorer/internal/bible"
	"github.com/bitflora/patristics-explorer/internal/corpus"
	"github.com/bitflora/patristics-explorer/internal/filter"
)

// SectionTotal is one canonical section's share of a bucket.
type SectionTotal struct {
	Section   bible.Section
	Citations int
	Works     int // distinct works citing the section
}

// Bucket covers the years [Start, Start+Width).
type Bucket struct {
	Start     int
	Width     int
	Sections  []SectionTotal // every section, in canonical order
	WorkCount int
}

// Citations is the bucket's citation total across sections.
func (b Bucket) Citations() int {
	n := 0
	for _, s := range b.Sections {
		n += s.Citations
	}
	return n
}

// Timeline is the bucketed view of the active works.
type Timeline struct {
	Width   int
	Buckets []Bucket
	Undated int // active works without a year; never bucketed
}

// ChooseWidth picks a bucket width for a span of years.
func ChooseWidth(span int) int {
	switch {
	case span < 200:
		return 25
	case span < 500:
		return 50
	case span < 1000:
		return 100
	case span < 2000:
		return 200
	default:
		return 500
	}
}

// bucketStart floors year to a multiple of width, also for negative years.
func bucketStart(year, width int) int {
	q := year / width
	if year%width != 0 && year < 0 {
		q--
	}
	return q * width
}

// BucketWorksByEra buckets the works whose category is active. refs holds
// each work's citation list; works without an entry contribute to the work
// count but no citations. A width of zero or less is chosen from the span
// of the dated works. Buckets run contiguously from the earliest to the
// latest populated bucket in ascending order.
func BucketWorksByEra(works []corpus.Work, refs map[int]corpus.WorkDetail, active filter.Categories, width int) Timeline {
	var dated []corpus.Work
	undated := 0
	for _, w := range works {
		if !active.Has(w.Category) {
			continue
		}
		if !w.Dated() {
			undated++
			continue
		}
		dated = append(dated, w)
	}
	if len(dated) == 0 {
		if width <= 0 {
			width = ChooseWidth(0)
		}
		return Timeline{Width: width, Undated: undated}
	}

	minYear, maxYear := *dated[0].Year, *dated[0].Year
	for _, w := range dated[1:] {
		minYear = min(minYear, *w.Year)
		maxYear = max(maxYear, *w.Year)
	}
	if width <= 0 {
		width = ChooseWidth(maxYear - minYear)
	}

	first, last := bucketStart(minYear, width), bucketStart(maxYear, width)
	buckets := make([]Bucket, 0, (last-first)/width+1)
	for start := first; start <= last; start += width {
		buckets = append(buckets, Bucket{
			Start:    start,
			Width:    width,
			Sections: emptySections(),
		})
	}

	for _, w := range dated {
		b := &buckets[(bucketStart(*w.Year, width)-first)/width]
		b.WorkCount++

		var cited [bible.NumSections]bool
		for _, r := range refs[w.ID].Refs {
			sec := bible.CanonicalSection(r.BookSlug)
			b.Sections[sec].Citations++
			cited[sec] = true
		}
		for sec, ok := range cited {
			if ok {
				b.Sections[sec].Works++
			}
		}
	}
	return Timeline{Width: width, Buckets: buckets, Undated: undated}
}

func emptySections() []SectionTotal {
	out := make([]SectionTotal, bible.NumSections)
	for i, s := range bible.Sections() {
		out[i].Section = s
	}
	return out
}

// Totals sums each section across all buckets, in canonical order.
func (t Timeline) Totals() []SectionTotal {
	out := emptySections()
	for _, b := range t.Buckets {
		for i, s := range b.Sections {
			out[i].Citations += s.Citations
			out[i].Works += s.Works
		}
	}
	return out
}
