package utils

import (
	"strconv"
	"strings"
)

// sizeUnitAliases maps spelled-out units to the canonical suffix
var sizeUnitAliases = []struct {
	from string
	to   string
}{
	{"milliliters", "ml"},
	{"millilitres", "ml"},
	{"mls", "ml"},
	{"ounces", "oz"},
	{"ounce", "oz"},
	{"fl.oz", "oz"},
	{"floz", "oz"},
}

// mlPerOunce converts fluid ounces to milliliters
const mlPerOunce = 29.5735

// NormalizeSize normalizes size values to a canonical form
// "5 ML" -> "5ml", "2,5ml" -> "2.5ml", "1 fl.oz" -> "1oz"
// This function is exported so it can be used by other packages
func NormalizeSize(size string) string {
	s := strings.ToLower(strings.TrimSpace(size))
	s = strings.Join(strings.Fields(s), "")
	s = strings.ReplaceAll(s, ",", ".")

	for _, alias := range sizeUnitAliases {
		if strings.HasSuffix(s, alias.from) {
			s = strings.TrimSuffix(s, alias.from) + alias.to
			break
		}
	}

	return s
}

// SizeVolume returns the volume in milliliters of a size like "5ml" or "1oz".
// The second value is false when the size carries no recognizable volume
func SizeVolume(size string) (float64, bool) {
	s := NormalizeSize(size)

	factor := 1.0
	switch {
	case strings.HasSuffix(s, "ml"):
		s = strings.TrimSuffix(s, "ml")
	case strings.HasSuffix(s, "oz"):
		s = strings.TrimSuffix(s, "oz")
		factor = mlPerOunce
	default:
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v * factor, true
}
