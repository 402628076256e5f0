package models

// SizeClass is a size position relative to an item's own sizes
type SizeClass string

const (
	SizeSmall  SizeClass = "small"
	SizeMedium SizeClass = "medium"
	SizeLarge  SizeClass = "large"
)

// Tier is the budget tier policy output: how many items to aim for and
// which sizes to prefer
type Tier struct {
	Level           int         `json:"level"` // 0 below T1 up to 3 at or above T3
	TargetItemCount int         `json:"targetItemCount"`
	SizePreference  []SizeClass `json:"sizePreference"` // Largest first
	MaxLargeLines   int         `json:"maxLargeLines"`  // Lines (from the first) allowed to use the largest size
}

// AllowedClasses returns the size classes allowed for the line at lineIndex,
// largest first
func (t Tier) AllowedClasses(lineIndex int) []SizeClass {
	if lineIndex < t.MaxLargeLines {
		return append([]SizeClass{SizeLarge}, t.SizePreference...)
	}
	out := make([]SizeClass, len(t.SizePreference))
	copy(out, t.SizePreference)
	return out
}

// Allows reports whether class may be used at lineIndex
func (t Tier) Allows(lineIndex int, class SizeClass) bool {
	for _, c := range t.AllowedClasses(lineIndex) {
		if c == class {
			return true
		}
	}
	return false
}
