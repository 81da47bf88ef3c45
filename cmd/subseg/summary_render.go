package main

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"subseg/internal/segment"
)

var numberPrinter = message.NewPrinter(language.English)

// renderSegmentSummary lists each kept segment followed by coverage totals.
func renderSegmentSummary(videoID string, segs []segment.Segment) string {
	rows := make([][]string, 0, len(segs))
	for _, seg := range segs {
		rows = append(rows, []string{
			strconv.Itoa(seg.SegmentID),
			segment.FormatClock(seg.StartTime),
			segment.FormatClock(seg.EndTime),
			strconv.Itoa(seg.Duration()) + "s",
			strconv.Itoa(seg.FrameCount),
			seg.RepresentativeFrame,
		})
	}

	var b strings.Builder
	b.WriteString(renderTable(tableSpec{
		Title:   "Segments for " + videoID,
		Headers: []string{"#", "Start", "End", "Duration", "Frames", "Representative"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	}))
	b.WriteString("\n")
	b.WriteString(renderTotals(segs))
	b.WriteString("\n")
	return b.String()
}

func renderTotals(segs []segment.Segment) string {
	total := segment.TotalDuration(segs)
	return numberPrinter.Sprintf("Total segments: %d\nTotal subtitle duration: %ds (%.1f minutes)",
		len(segs), total, float64(total)/60)
}

func formatCount(n int) string {
	return numberPrinter.Sprintf("%d", n)
}
