package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/raymyers/ralph-cpp/pkg/preproc"
)

var version = "0.1.0"

// Debug flags for dumping intermediate results
var (
	dPasses bool
	dMacros bool
	dLines  bool
)

// Preprocessor options
var (
	defineFlags   []string
	undefineFlags []string
	configFile    string
	outputFile    string
	logLevel      string
	useExternalPP bool // Use external preprocessor
)

// debugFlagInfo holds metadata for a debug flag
type debugFlagInfo struct {
	flag *bool
	desc string
}

// debugFlags maps flag names to descriptions for unimplemented warnings
var debugFlags = map[string]debugFlagInfo{
	"dlines": {&dLines, "emit line markers"},
}

// ErrNotImplemented indicates a feature is not yet implemented
var ErrNotImplemented = errors.New("not yet implemented")

// checkDebugFlags checks if any unimplemented debug flags are set and returns an error
func checkDebugFlags(w io.Writer) error {
	for name, info := range debugFlags {
		if *info.flag {
			fmt.Fprintf(w, "ralph-cpp: warning: -%s (%s) is not yet implemented\n", name, info.desc)
			return ErrNotImplemented
		}
	}
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	// Accept cc-style single-dash debug flags
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// debugFlagNames lists all debug flags that accept single-dash style
var debugFlagNames = []string{"dpasses", "dmacros", "dlines"}

// normalizeFlags converts single-dash debug flags like -dpasses to --dpasses
func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		for _, flagName := range debugFlagNames {
			if arg == "-"+flagName {
				result[i] = "--" + flagName
				break
			}
		}
		if result[i] == "" {
			result[i] = arg
		}
	}
	return result
}

// underscoreToDash lets --log_level and --log-level name the same flag.
func underscoreToDash(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ralph-cpp [file]",
		Short: "ralph-cpp expands #define macros in C-like source",
		Long: `ralph-cpp is a macro preprocessor modeled on the C preprocessor.
It removes line continuations and comments, then expands object-like
and function-like #define macros. Use - to read from standard input.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkDebugFlags(errOut); err != nil {
				return err
			}

			if len(args) == 0 {
				cmd.Help()
				return nil
			}

			opts, err := buildPreprocessorOptions(cmd, errOut)
			if err != nil {
				fmt.Fprintf(errOut, "ralph-cpp: %v\n", err)
				return err
			}
			return doPreprocess(args[0], cmd.InOrStdin(), opts, out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.Flags().SetNormalizeFunc(underscoreToDash)

	// Add debug flags
	rootCmd.Flags().BoolVarP(&dPasses, "dpasses", "", false, "Dump the buffer after each pass")
	rootCmd.Flags().BoolVarP(&dMacros, "dmacros", "", false, "Dump the macro table after preprocessing")
	rootCmd.Flags().BoolVarP(&dLines, "dlines", "", false, "Emit line markers")

	// Add preprocessor flags
	rootCmd.Flags().StringArrayVarP(&defineFlags, "define", "D", nil, "Define macro (NAME or NAME=VALUE)")
	rootCmd.Flags().StringArrayVarP(&undefineFlags, "undefine", "U", nil, "Undefine macro")
	rootCmd.Flags().StringVar(&configFile, "config", "", "Read options from a YAML file")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write output to a file instead of stdout")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&useExternalPP, "external-cpp", false, "Use external C preprocessor instead of internal")

	return rootCmd
}

// buildPreprocessorOptions merges the config file, if any, with the CLI
// flags. Flags win.
func buildPreprocessorOptions(cmd *cobra.Command, errOut io.Writer) (*preproc.Options, error) {
	opts := &preproc.Options{Defines: make(map[string]string)}
	level := ""
	if configFile != "" {
		cfg, err := preproc.LoadConfig(configFile)
		if err != nil {
			return nil, err
		}
		opts = cfg.Options()
		level = cfg.LogLevel
	}
	if cmd.Flags().Changed("log-level") || level == "" {
		level = logLevel
	}

	// Parse -D flags. NAME alone means NAME=1, NAME= defines it empty.
	for _, d := range defineFlags {
		name, value, found := strings.Cut(d, "=")
		if !found {
			value = "1"
		}
		opts.Defines[name] = value
	}
	opts.Undefines = append(opts.Undefines, undefineFlags...)
	opts.UseExternal = opts.UseExternal || useExternalPP

	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts.Logger = hclog.New(&hclog.LoggerOptions{
		Name:   "ralph-cpp",
		Level:  lvl,
		Output: errOut,
	})
	return opts, nil
}

// doPreprocess preprocesses filename ("-" for stdin) and writes the result
// to the output file or out.
func doPreprocess(filename string, stdin io.Reader, opts *preproc.Options, out, errOut io.Writer) error {
	if dPasses {
		opts.PassHook = func(pass, output string) {
			fmt.Fprintf(out, "// === %s ===\n%s\n", pass, output)
		}
	}

	var res *preproc.Result
	var err error
	if filename == "-" {
		src, rerr := io.ReadAll(stdin)
		if rerr != nil {
			fmt.Fprintf(errOut, "ralph-cpp: error reading stdin: %v\n", rerr)
			return rerr
		}
		res, err = preproc.RunString(string(src), "<stdin>", opts)
	} else if !preproc.NeedsPreprocessing(filename) {
		var src []byte
		if src, err = os.ReadFile(filename); err == nil {
			res = &preproc.Result{Output: string(src)}
		}
	} else {
		res, err = preproc.Run(filename, opts)
	}
	if err != nil {
		fmt.Fprintf(errOut, "ralph-cpp: preprocessing error: %v\n", err)
		return err
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(res.Output), 0o644); err != nil {
			fmt.Fprintf(errOut, "ralph-cpp: error creating %s: %v\n", outputFile, err)
			return err
		}
	} else {
		fmt.Fprint(out, res.Output)
	}

	if dMacros {
		if res.Macros == nil {
			fmt.Fprintf(errOut, "ralph-cpp: warning: -dmacros: no macro table (external preprocessor or .i input)\n")
		} else {
			fmt.Fprintf(out, "// === macros (%s) ===\n%s", filepath.Base(filename), res.Macros.Dump())
		}
	}
	return nil
}
