// Package config materializes application configuration from three
// inputs: a YAML descriptor, a dotenv secrets file and a multi-sheet
// Excel schema workbook. The Factory merges them once into an immutable
// Settings record that the rest of the system shares read-only.
package config

import (
	"github.com/go-viper/mapstructure/v2"

	"github.com/corvus-data/tabular/pkg/errors"
	"github.com/corvus-data/tabular/pkg/table"
)

// Settings is the merged, read-only configuration record. It is built
// once by Factory.Initialize and never mutated afterwards.
type Settings struct {
	// Schema holds the full per-sheet column-metadata tables, keyed by
	// the UPPER_SNAKE form of the sheet name ("Account Name" becomes
	// "ACCOUNT_NAME"). Each table is indexed by its Variable column.
	Schema map[string]*table.Table

	// Col holds per-table variable-to-display-name maps, keyed by the
	// Capitalized_Snake form of the sheet name ("Account Name" becomes
	// "Account_Name"), filtered to variables whose "IS Derived?" or
	// "Is Read?" flag is truthy.
	Col map[string]Columns

	// Path holds filesystem and location settings from the YAML Path
	// block.
	Path Paths

	// Secret holds the key-value pairs of the dotenv file at Path.Env.
	Secret Secrets

	// Param holds the YAML Param block verbatim.
	Param Params
}

// Columns maps a column variable identifier to its display name.
type Columns map[string]string

// Secrets holds dotenv key-value pairs.
type Secrets map[string]string

// Paths carries the YAML Path block. Env is required; the Extra map
// catches any further keys the descriptor defines.
type Paths struct {
	// Env locates the dotenv secrets file. YAML key ENV, required.
	Env string `yaml:"ENV"`
	// Data locates the data directory. Optional.
	Data string `yaml:"DATA"`
	// Output locates the output directory. Optional.
	Output string `yaml:"OUTPUT"`
	// Schema overrides the schema workbook location. Optional.
	Schema string `yaml:"SCHEMA"`
	// Extra catches any remaining Path keys.
	Extra map[string]string `yaml:",inline"`
}

// Params holds arbitrary YAML-defined parameters.
type Params map[string]interface{}

// Decode materializes the Param block into a caller-defined struct,
// matching fields by mapstructure tag or name. Weakly typed input is
// accepted so "8080" decodes into an int field.
func (p Params) Decode(out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to build param decoder")
	}
	if err := decoder.Decode(map[string]interface{}(p)); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to decode params")
	}
	return nil
}
