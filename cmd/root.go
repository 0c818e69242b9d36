package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cmmoran/bindgen/pkg/parser"
)

// LevelTrace sits below slog.LevelDebug.
const LevelTrace = slog.Level(-8)

// app is the state shared by one command tree.
type app struct {
	v           *viper.Viper
	configFiles []string
	level       string
	version     string
	logger      *slog.Logger
	stderr      io.Writer
}

// NewRootCommand assembles the bindgen command tree with its own viper
// instance.
func NewRootCommand(version string) *cobra.Command {
	a := &app{v: viper.New(), version: version, logger: slog.Default(), stderr: os.Stderr}

	rootCmd := &cobra.Command{
		Use:           "bindgen",
		Short:         "Generate typed Go bindings from a described API",
		Long:          "Introspect Go packages, OpenAPI documents or protobuf files into a validated schema and generate Go bindings from it",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			a.stderr = c.ErrOrStderr()
			return a.initConfig(c.Flags().Changed("level"))
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.level, "level", "l", "info", "log level (trace, debug, info, warn, error, debug+1, etc)")
	rootCmd.PersistentFlags().StringSliceVar(&a.configFiles, "config", []string{}, "config file(s) - multiple config files are merged with last specified file having highest priority")
	if version != "" {
		rootCmd.Version = version
	}

	rootCmd.AddCommand(
		newInitCommand(a),
		newIntrospectCommand(a),
		newSnapshotCommand(a),
		newValidateCommand(a),
	)
	return rootCmd
}

// Execute runs the command tree and exits non-zero on failure.
// This is called by main.main(). It only needs to happen once.
func Execute(version string) {
	rootCmd := NewRootCommand(version)
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(rootCmd.ErrOrStderr(), "error:", err)
		os.Exit(1)
	}
}

// ParseLevel accepts the slog level names plus "trace".
func ParseLevel(s string) (slog.Level, error) {
	if strings.EqualFold(s, "trace") {
		return LevelTrace, nil
	}
	var ll slog.Level
	if err := ll.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return ll, nil
}

func (a *app) setLogger(ll slog.Level) {
	a.logger = slog.New(slog.NewJSONHandler(a.stderr, &slog.HandlerOptions{
		AddSource: false,
		Level:     ll,
	}))
	slog.SetDefault(a.logger)
}

// initConfig reads in config files and ENV variables if set. The
// common.log.level key applies when --level was not given.
func (a *app) initConfig(levelFromFlag bool) error {
	ll, err := ParseLevel(a.level)
	if err != nil {
		return err
	}
	a.setLogger(ll)

	a.v.SetEnvPrefix("bindgen")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	if len(a.configFiles) > 0 {
		a.v.SetConfigFile(a.configFiles[0])
	} else {
		a.v.AddConfigPath(".")
		a.v.AddConfigPath("/etc/bindgen")
		a.v.SetConfigType("yaml")
		a.v.SetConfigName("bindgen")
	}

	if err := a.v.ReadInConfig(); err == nil {
		a.logger.Debug("using config file(s)", "config", a.v.ConfigFileUsed())
	} else if len(a.configFiles) > 0 {
		return fmt.Errorf("read config %s: %w", a.configFiles[0], err)
	} else {
		a.logger.Debug("no config file found", "error", err)
	}
	for _, file := range a.configFiles[min(1, len(a.configFiles)):] {
		configBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read config %s: %w", file, err)
		}
		if err = a.v.MergeConfig(bytes.NewReader(configBytes)); err != nil {
			return fmt.Errorf("merge config %s: %w", file, err)
		}
		a.logger.Debug("merged config file", "file", file)
	}
	if len(a.version) > 0 {
		a.v.Set("version", a.version)
	}

	if llstr := a.v.GetString("common.log.level"); !levelFromFlag && llstr != "" {
		if ll, err = ParseLevel(llstr); err != nil {
			return err
		}
		a.setLogger(ll)
	}
	return nil
}

// parserFlags registers the flags shared by every command that reads a
// source. Each flag is bound to the matching key of the parser config section.
type parserFlags struct {
	excludeByTags []string
	bindings      map[string]string
}

func addParserFlags(fs *pflag.FlagSet) *parserFlags {
	pf := &parserFlags{bindings: map[string]string{}}
	def := parser.NewOptions()
	bind := func(flag, key string) { pf.bindings[flag] = "parser." + key }

	fs.String("source", def.Source, "source kind: go, openapi or proto")
	bind("source", "source")
	fs.StringP("input-directory", "i", def.InDir, "directory holding the Go packages to scan")
	bind("input-directory", "in_dir")
	fs.StringSlice("patterns", nil, "Go package patterns relative to the input directory (default ./...)")
	bind("patterns", "patterns")
	fs.StringSlice("input-files", nil, "OpenAPI document or proto files to read")
	bind("input-files", "in_files")
	fs.StringSlice("import-paths", nil, "proto import search path")
	bind("import-paths", "import_paths")
	fs.StringP("output-directory", "o", def.OutDir, "directory to write bindings and snapshots")
	bind("output-directory", "out_dir")
	fs.StringP("output-file", "f", def.OutFile, "output file where bindings will be written")
	bind("output-file", "out_file")
	fs.StringP("package", "p", "", "package clause of the bindings (default: base of the output directory)")
	bind("package", "package")
	fs.Bool("collections", def.Collections, "emit plural slice types for classes used as list elements")
	bind("collections", "collections")
	fs.BoolP("exclude-deprecated", "d", false, "exclude deprecated classes and members")
	bind("exclude-deprecated", "exclude_deprecated")
	fs.StringSliceP("exclude-types", "t", nil, "exclude named classes (case-insensitive)")
	bind("exclude-types", "exclude_types")
	fs.Bool("prune-unresolved", false, "drop members that reference classes missing from the schema")
	bind("prune-unresolved", "prune_unresolved")
	fs.StringSliceVarP(&pf.excludeByTags, "exclude-tags", "T", nil, "exclude fields with matching tags, ex: api:internal")
	return pf
}

// options binds the parser flags and decodes the parser config section over
// the defaults.
func (a *app) options(fs *pflag.FlagSet, pf *parserFlags) (*parser.Options, error) {
	for flag, key := range pf.bindings {
		if err := a.v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	cfg := struct {
		Parser *parser.Options `mapstructure:"parser"`
	}{Parser: parser.NewOptions()}
	if err := a.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode parser config: %w", err)
	}
	if err := cfg.Parser.Normalize(pf.excludeByTags...); err != nil {
		return nil, err
	}
	return cfg.Parser, nil
}
