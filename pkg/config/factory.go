package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/corvus-data/tabular/pkg/errors"
	"github.com/corvus-data/tabular/pkg/logger"
	"github.com/corvus-data/tabular/pkg/table"
)

// DefaultWorkbook is the schema workbook location used when neither the
// Factory nor the YAML Path block overrides it.
const DefaultWorkbook = "data/config/schema.xlsx"

const (
	variableColumn = "Variable"
	nameColumn     = "Name"
	derivedColumn  = "IS Derived?"
	readColumn     = "Is Read?"
)

// Factory assembles Settings from a YAML descriptor, the schema
// workbook and the dotenv secrets file. It holds only the input
// locations; every Initialize call recomputes the Settings from
// scratch, so repeated calls over the same inputs yield structurally
// equal results.
type Factory struct {
	// YAMLPath locates the YAML descriptor. Required.
	YAMLPath string
	// Workbook locates the schema workbook. Defaults to
	// DefaultWorkbook; a SCHEMA key in the YAML Path block wins over
	// both.
	Workbook string

	logger *zap.Logger
}

// NewFactory creates a config factory for the YAML descriptor at
// yamlPath. The path is required; there is no default location.
func NewFactory(yamlPath string) *Factory {
	return &Factory{
		YAMLPath: yamlPath,
		Workbook: DefaultWorkbook,
		logger:   logger.Get().With(zap.String("component", "config_factory")),
	}
}

// yamlFile mirrors the YAML descriptor's top-level structure.
type yamlFile struct {
	Path  Paths                  `yaml:"Path"`
	Param map[string]interface{} `yaml:"Param"`
}

// Initialize reads and merges all configuration inputs. Any failure is
// fatal to the call: an error return means no Settings were produced
// and nothing partial is retained.
func (f *Factory) Initialize() (*Settings, error) {
	if f.YAMLPath == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "config factory requires a YAML descriptor path")
	}

	doc, err := f.loadYAML()
	if err != nil {
		return nil, err
	}

	if doc.Path.Env == "" {
		return nil, errors.Newf(errors.ErrorTypeConfig, "missing Path.ENV key in %s", f.YAMLPath)
	}

	workbook := f.Workbook
	if workbook == "" {
		workbook = DefaultWorkbook
	}
	if doc.Path.Schema != "" {
		workbook = doc.Path.Schema
	}

	schema, col, err := f.loadWorkbook(workbook)
	if err != nil {
		return nil, err
	}

	secrets, err := godotenv.Read(doc.Path.Env)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrorTypeFile, "failed to read secrets file %s", doc.Path.Env)
	}

	settings := &Settings{
		Schema: schema,
		Col:    col,
		Path:   doc.Path,
		Secret: secrets,
		Param:  doc.Param,
	}

	log := f.logger
	if log == nil {
		log = logger.Get()
	}
	log.Info("configuration initialized",
		zap.String("yaml", f.YAMLPath),
		zap.String("workbook", workbook),
		zap.Int("schema_tables", len(schema)),
		zap.Int("secrets", len(secrets)))

	return settings, nil
}

// loadYAML reads and parses the YAML descriptor, substituting
// ${VAR} references from the environment first.
func (f *Factory) loadYAML() (*yamlFile, error) {
	data, err := os.ReadFile(f.YAMLPath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrorTypeFile, "failed to read config file %s", f.YAMLPath)
	}

	content := substituteEnvVars(string(data))

	var doc yamlFile
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, errors.Wrapf(err, errors.ErrorTypeConfig, "failed to parse YAML in %s", f.YAMLPath)
	}

	return &doc, nil
}

// loadWorkbook parses the schema workbook: one sheet per logical table,
// indexed by the Variable column. It returns the full metadata tables
// keyed by upper-snake sheet name and the filtered variable-to-name
// maps keyed by capitalized-snake sheet name.
func (f *Factory) loadWorkbook(path string) (map[string]*table.Table, map[string]Columns, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrorTypeFile, "failed to open schema workbook %s", path)
	}
	defer func() {
		_ = wb.Close()
	}()

	schema := make(map[string]*table.Table)
	col := make(map[string]Columns)

	for _, sheet := range wb.GetSheetList() {
		tbl, cols, err := f.loadSheet(wb, sheet)
		if err != nil {
			return nil, nil, err
		}
		schema[UpperSnake(sheet)] = tbl
		col[CapitalizedSnake(sheet)] = cols
	}

	return schema, col, nil
}

// loadSheet reads a single worksheet into its metadata table and its
// filtered column map.
func (f *Factory) loadSheet(wb *excelize.File, sheet string) (*table.Table, Columns, error) {
	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrorTypeData, "failed to read sheet %s", sheet)
	}
	if len(rows) == 0 {
		return nil, nil, errors.Newf(errors.ErrorTypeData, "sheet %s is empty", sheet)
	}

	header := rows[0]
	tbl := table.New(sheet, header)

	for _, required := range []string{variableColumn, nameColumn} {
		if !tbl.HasColumn(required) {
			return nil, nil, errors.Newf(errors.ErrorTypeData,
				"sheet %s is missing required column %q", sheet, required)
		}
	}

	cols := make(Columns)
	for _, raw := range rows[1:] {
		row := make(table.Row, len(header))
		for i := range header {
			if i < len(raw) {
				row[i] = table.InferValue(raw[i])
			}
		}
		if err := tbl.AppendRow(row); err != nil {
			return nil, nil, errors.Wrapf(err, errors.ErrorTypeData, "malformed row in sheet %s", sheet)
		}
	}

	for i := 0; i < tbl.NumRows(); i++ {
		derived, _ := tbl.Cell(i, derivedColumn)
		read, _ := tbl.Cell(i, readColumn)
		if !table.Truthy(derived) && !table.Truthy(read) {
			continue
		}

		variable, _ := tbl.Cell(i, variableColumn)
		name, _ := tbl.Cell(i, nameColumn)
		cols[table.FormatValue(variable)] = table.FormatValue(name)
	}

	return tbl, cols, nil
}

// UpperSnake converts a space-separated sheet name to its Schema key
// form: "Account Name" becomes "ACCOUNT_NAME".
func UpperSnake(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), "_"))
}

// CapitalizedSnake converts a space-separated sheet name to its Col key
// form: "account name" becomes "Account_Name".
func CapitalizedSnake(name string) string {
	words := strings.Fields(name)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, "_")
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values
func substituteEnvVars(content string) string {
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		varName := content[start+2 : end]
		content = content[:start] + os.Getenv(varName) + content[end+1:]
	}
	return content
}

// Load loads a YAML file into an arbitrary structure, substituting
// ${VAR} environment references. It is the low-level helper behind the
// Factory for callers that keep their own config shapes.
func Load(filePath string, out interface{}) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, fmt.Sprintf("failed to read config file %s", filePath))
	}

	content := substituteEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(content), out); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, fmt.Sprintf("failed to parse YAML in %s", filePath))
	}

	return nil
}
