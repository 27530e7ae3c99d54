package assets

import (
	"embed"
)

//go:embed wordsets.csv
var FS embed.FS

// DefaultWordSets returns the raw CSV bytes of the built-in
// word/definition sets (Technology, Science, Literature).
func DefaultWordSets() ([]byte, error) {
	return FS.ReadFile("wordsets.csv")
}
