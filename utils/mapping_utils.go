package utils

import (
	"strings"
)

// Intensity buckets used to spread a bundle across strengths
const (
	IntensityLight    = "light"
	IntensityMedium   = "medium"
	IntensityIntense  = "intense"
	IntensityResidual = "residual"
)

// IntensityBuckets lists the buckets in round-robin order
var IntensityBuckets = []string{IntensityLight, IntensityMedium, IntensityIntense, IntensityResidual}

// IntensityBucket maps the catalog's free text intensity to a bucket
// Input is normalized to lowercase before mapping
// Unknown or empty values land in the residual bucket
func IntensityBucket(intensity string) string {
	intensityLower := strings.ToLower(strings.TrimSpace(intensity))

	intensityMap := map[string]string{
		"light":           IntensityLight,
		"soft":            IntensityLight,
		"fresh":           IntensityLight,
		"subtle":          IntensityLight,
		"eau de cologne":  IntensityLight,
		"eau fraiche":     IntensityLight,
		"medium":          IntensityMedium,
		"moderate":        IntensityMedium,
		"balanced":        IntensityMedium,
		"eau de toilette": IntensityMedium,
		"intense":         IntensityIntense,
		"strong":          IntensityIntense,
		"heavy":           IntensityIntense,
		"eau de parfum":   IntensityIntense,
		"parfum":          IntensityIntense,
		"extrait":         IntensityIntense,
	}

	if bucket, exists := intensityMap[intensityLower]; exists {
		return bucket
	}

	return IntensityResidual
}

// NormalizeTags trims, lowercases and deduplicates tags keeping first-seen
// order, and keeps at most max of them (max <= 0 means no limit)
func NormalizeTags(tags []string, max int) []string {
	seen := make(map[string]bool)
	var out []string

	for _, tag := range tags {
		t := strings.ToLower(strings.Join(strings.Fields(tag), " "))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if max > 0 && len(out) == max {
			break
		}
	}

	return out
}
