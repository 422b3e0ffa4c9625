package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// nameKey normalizes a name for case-insensitive index lookups.
func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// suggestFileName derives an alternative name from a file name by inserting
// a numeric suffix before the extension ("a.pdf" -> "a_2.pdf"), counting up
// until taken reports the candidate free.
func suggestFileName(fileName string, taken func(string) bool) string {
	ext := filepath.Ext(fileName)
	base := strings.TrimSuffix(fileName, ext)

	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", base, n, ext)
		if !taken(nameKey(candidate)) {
			return candidate
		}
	}
}

// slugFor derives a stable content-addressing slug from a file name.
func slugFor(fileName string) string {
	sum := sha256.Sum256([]byte(nameKey(fileName)))
	return hex.EncodeToString(sum[:])[:16]
}
