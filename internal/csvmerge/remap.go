package csvmerge

import "strconv"

// PassthroughSource is the source whose layout already matches the output.
const PassthroughSource = "isha"

// Column ranges copied from every other source, in output order. The bounds
// are coupled to the layout of the source spreadsheets, which carry no
// semantic column names to derive them from.
var remapRanges = [][2]int{
	{0, 6},
	{9, 12},
	{18, 26},
	{15, 18},
}

// Remap converts one source data row into an output row prefixed with the
// source name and chapter. Ranges past the end of a short row are clamped.
func Remap(spec SourceSpec, row []string, passthroughAll bool) []string {
	out := make([]string, 0, 2+len(row))
	out = append(out, spec.Name, strconv.Itoa(spec.Chapter))
	if passthroughAll || spec.Name == PassthroughSource {
		return append(out, row...)
	}
	for _, r := range remapRanges {
		start, end := min(r[0], len(row)), min(r[1], len(row))
		out = append(out, row[start:end]...)
	}
	return out
}

// RemappedWidth is the number of source columns a full-width row keeps.
func RemappedWidth() int {
	width := 0
	for _, r := range remapRanges {
		width += r[1] - r[0]
	}
	return width
}
