package youtube

import "regexp"

// The Data API reports durations as ISO-8601, e.g. "PT1H2M3S" or
// "P1DT4H". Months and years never appear for videos.
var durationRE = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

func parseISO8601Duration(s string) (int64, bool) {
	m := durationRE.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	var total int64
	for i, mult := range []int64{86400, 3600, 60, 1} {
		part := m[i+1]
		if part == "" {
			continue
		}
		var n int64
		for _, r := range part {
			n = n*10 + int64(r-'0')
		}
		total += n * mult
	}
	return total, true
}
