// Package writers registers all built-in format writers. Import it for
// side effects:
//
//	import _ "github.com/corvus-data/tabular/pkg/format/writers"
package writers

import (
	_ "github.com/corvus-data/tabular/pkg/format/writers/csv"
	_ "github.com/corvus-data/tabular/pkg/format/writers/excel"
	_ "github.com/corvus-data/tabular/pkg/format/writers/json"
)
