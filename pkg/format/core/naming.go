package core

import (
	"path/filepath"
	"strings"

	"github.com/corvus-data/tabular/pkg/compression"
)

// TableName derives a table name from a file path by dropping the
// directory, any compression extension and the format extension.
// "data/accounts.csv.gz" becomes "accounts".
func TableName(path string) string {
	name := filepath.Base(path)
	if compression.Detect(name) != compression.None {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}
