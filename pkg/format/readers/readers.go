// Package readers registers all built-in format readers. Import it for
// side effects:
//
//	import _ "github.com/corvus-data/tabular/pkg/format/readers"
package readers

import (
	_ "github.com/corvus-data/tabular/pkg/format/readers/csv"
	_ "github.com/corvus-data/tabular/pkg/format/readers/excel"
	_ "github.com/corvus-data/tabular/pkg/format/readers/json"
)
