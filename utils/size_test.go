package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSize(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"5ml":            "5ml",
		" 5 ML ":         "5ml",
		"2,5ml":          "2.5ml",
		"10 Milliliters": "10ml",
		"3 mls":          "3ml",
		"1 fl.oz":        "1oz",
		"2 ounces":       "2oz",
		"travel":         "travel",
		"":               "",
	}

	for in, want := range tests {
		assert.Equal(t, want, NormalizeSize(in), "NormalizeSize(%q)", in)
	}
}

func TestSizeVolume(t *testing.T) {
	t.Parallel()

	tests := []struct {
		size string
		want float64
		ok   bool
	}{
		{size: "5ml", want: 5, ok: true},
		{size: "2,5 ml", want: 2.5, ok: true},
		{size: "1oz", want: mlPerOunce, ok: true},
		{size: "0ml", ok: false},
		{size: "mini", ok: false},
		{size: "abcml", ok: false},
	}

	for _, tt := range tests {
		got, ok := SizeVolume(tt.size)
		assert.Equal(t, tt.ok, ok, tt.size)
		assert.InDelta(t, tt.want, got, 1e-9, tt.size)
	}
}
