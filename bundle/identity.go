package bundle

import (
	"strings"

	"github.com/google/uuid"

	"fragrance-sampler/models"
)

// bundleNamespace scopes name-based bundle IDs
var bundleNamespace = uuid.MustParse("6f1c8e52-3b7a-4d0e-9a51-2c4b7e9d1f30")

// bundleID derives a stable ID from where the bundle came from and its lines,
// so the same inputs always produce the same ID
func bundleID(origin string, lines []models.BundleLine) string {
	var b strings.Builder
	b.WriteString(origin)
	for _, line := range lines {
		b.WriteByte('|')
		b.WriteString(line.ItemID)
		b.WriteByte('@')
		b.WriteString(line.Size)
	}
	return uuid.NewSHA1(bundleNamespace, []byte(b.String())).String()
}
