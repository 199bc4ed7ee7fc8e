package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/corvus-data/tabular/pkg/config"
	"github.com/corvus-data/tabular/pkg/format"
	"github.com/corvus-data/tabular/pkg/format/core"
	"github.com/corvus-data/tabular/pkg/format/registry"
	"github.com/corvus-data/tabular/pkg/logger"
	"github.com/corvus-data/tabular/pkg/observability"
	"github.com/corvus-data/tabular/pkg/table"

	// Import all built-in format handlers to register them
	_ "github.com/corvus-data/tabular/pkg/format/readers"
	_ "github.com/corvus-data/tabular/pkg/format/writers"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	var logLevel string
	var enableTrace bool
	var configPath string

	root := &cobra.Command{
		Use:   "tabular",
		Short: "Tabular - tabular file readers, writers and config loading",
		Long: `Tabular reads and writes tabular files (CSV, Excel, JSON) through a
format registry and materializes application configuration from YAML,
dotenv and Excel schema inputs.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Init(logger.Config{Level: logLevel, Encoding: "json"}); err != nil {
				return err
			}
			if enableTrace {
				return observability.Init(cmd.Context(), observability.Config{
					ServiceName:    "tabular",
					ServiceVersion: version,
					Environment:    "development",
					PrettyPrint:    true,
				})
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if enableTrace {
				_ = observability.Shutdown(cmd.Context())
			}
			_ = logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&enableTrace, "trace", false, "Emit spans to stdout")
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config descriptor for the config factory")

	// Version command
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Tabular v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	// List command to show registered formats
	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered format handlers",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Readers:")
			for _, name := range registry.ListReaders() {
				fmt.Printf("  - %s\n", name)
			}
			fmt.Println("\nWriters:")
			for _, name := range registry.ListWriters() {
				fmt.Printf("  - %s\n", name)
			}
		},
	})

	// Head command: read a file and print a preview
	var headFormat, headSheet string
	var headLimit int
	headCmd := &cobra.Command{
		Use:   "head FILE",
		Short: "Read a file and print the first rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, span := observability.StartSpan(cmd.Context(), "head",
				attribute.String("path", args[0]))
			defer span.End()

			settings, err := loadSettings(configPath)
			if err != nil {
				return err
			}

			name := headFormat
			if name == "" {
				name = guessFormat(args[0])
			}

			tbl, err := format.NewFactory(settings).Read(ctx, name, args[0], core.Options{Sheet: headSheet})
			if err != nil {
				return err
			}

			printPreview(tbl, headLimit)
			return nil
		},
	}
	headCmd.Flags().StringVar(&headFormat, "format", "", "Input format (default: guessed from extension)")
	headCmd.Flags().StringVar(&headSheet, "sheet", "", "Excel sheet name")
	headCmd.Flags().IntVar(&headLimit, "limit", 10, "Number of rows to print")
	root.AddCommand(headCmd)

	// Convert command: read with one handler, write with another
	var fromFormat, toFormat, convertSheet, compressionName string
	convertCmd := &cobra.Command{
		Use:   "convert SRC DST",
		Short: "Convert a tabular file between formats",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, span := observability.StartSpan(cmd.Context(), "convert",
				attribute.String("src", args[0]),
				attribute.String("dst", args[1]))
			defer span.End()

			settings, err := loadSettings(configPath)
			if err != nil {
				return err
			}

			src, dst := fromFormat, toFormat
			if src == "" {
				src = guessFormat(args[0])
			}
			if dst == "" {
				dst = guessFormat(args[1])
			}

			factory := format.NewFactory(settings)
			tbl, err := factory.Read(ctx, src, args[0], core.Options{Sheet: convertSheet})
			if err != nil {
				return err
			}
			if err := factory.Write(ctx, dst, tbl, args[1], core.Options{
				Sheet:       convertSheet,
				Compression: compressionName,
			}); err != nil {
				return err
			}

			fmt.Printf("Converted %s (%d rows) to %s\n", args[0], tbl.NumRows(), args[1])
			return nil
		},
	}
	convertCmd.Flags().StringVar(&fromFormat, "from", "", "Input format (default: guessed from extension)")
	convertCmd.Flags().StringVar(&toFormat, "to", "", "Output format (default: guessed from extension)")
	convertCmd.Flags().StringVar(&convertSheet, "sheet", "", "Excel sheet name")
	convertCmd.Flags().StringVar(&compressionName, "compression", "auto", "Output compression (auto, none, gzip, zstd, snappy, lz4)")
	root.AddCommand(convertCmd)

	// Config command group
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration factory commands",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Run the config factory and summarize the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, span := observability.StartSpan(cmd.Context(), "config_check")
			defer span.End()

			if configPath == "" {
				return fmt.Errorf("--config is required")
			}

			settings, err := config.NewFactory(configPath).Initialize()
			if err != nil {
				return err
			}

			fmt.Printf("Configuration OK (%s)\n", configPath)
			fmt.Printf("  Schema tables: %s\n", joinKeys(settings.Schema))
			fmt.Printf("  Col tables:    %s\n", joinKeys(settings.Col))
			fmt.Printf("  Secrets:       %d entries\n", len(settings.Secret))
			fmt.Printf("  Params:        %d entries\n", len(settings.Param))
			return nil
		},
	})
	root.AddCommand(configCmd)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadSettings runs the config factory when a descriptor was given;
// without one the factories run with no settings.
func loadSettings(path string) (*config.Settings, error) {
	if path == "" {
		return nil, nil
	}
	return config.NewFactory(path).Initialize()
}

// guessFormat maps a file extension to a registered format name,
// skipping over compression extensions.
func guessFormat(path string) string {
	name := strings.ToLower(path)
	for _, ext := range []string{".gz", ".gzip", ".zst", ".zstd", ".sz", ".snappy", ".lz4"} {
		name = strings.TrimSuffix(name, ext)
	}
	switch {
	case strings.HasSuffix(name, ".csv"), strings.HasSuffix(name, ".tsv"):
		return "csv"
	case strings.HasSuffix(name, ".xlsx"), strings.HasSuffix(name, ".xlsm"):
		return "excel"
	case strings.HasSuffix(name, ".json"), strings.HasSuffix(name, ".jsonl"), strings.HasSuffix(name, ".ndjson"):
		return "json"
	default:
		return "csv"
	}
}

// printPreview renders up to limit rows as aligned plain text.
func printPreview(tbl *table.Table, limit int) {
	columns := tbl.Columns()
	fmt.Println(strings.Join(columns, "\t"))

	n := tbl.NumRows()
	if limit > 0 && limit < n {
		n = limit
	}
	cells := make([]string, len(columns))
	for i := 0; i < n; i++ {
		for j, cell := range tbl.Row(i) {
			cells[j] = table.FormatValue(cell)
		}
		fmt.Println(strings.Join(cells, "\t"))
	}
	if n < tbl.NumRows() {
		fmt.Printf("... (%d more rows)\n", tbl.NumRows()-n)
	}
}

func joinKeys[M ~map[string]V, V any](m M) string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
