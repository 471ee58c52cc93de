// Package preproc runs the macro preprocessor over files.
// It provides both the internal preprocessor and a fallback to an external
// system preprocessor (cc -E).
package preproc

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/exp/maps"

	"github.com/raymyers/ralph-cpp/pkg/cpp"
)

// Options configures the preprocessing step
type Options struct {
	Defines     map[string]string // -D macros (name -> replacement, "" defines an empty macro)
	Undefines   []string          // -U macros
	UseExternal bool              // Force use of external preprocessor
	Logger      hclog.Logger
	PassHook    func(pass, output string)
}

// Result is the outcome of preprocessing one file.
type Result struct {
	Output string
	// Macros is the table after preprocessing. It is nil when the external
	// preprocessor was used.
	Macros *cpp.MacroTable
}

// Preprocess runs the preprocessor on the given source file and returns
// the preprocessed text.
// By default, it uses the internal preprocessor. Set UseExternal option
// to force use of the system preprocessor.
func Preprocess(filename string, opts *Options) (string, error) {
	res, err := Run(filename, opts)
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// Run is Preprocess but also returns the final macro table.
func Run(filename string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{}
	}
	if opts.UseExternal {
		out, err := preprocessExternal(filename, opts)
		if err != nil {
			return nil, err
		}
		return &Result{Output: out}, nil
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return runInternal(string(content), filename, opts)
}

// PreprocessString preprocesses source held in memory. filename is used
// in error messages; the external preprocessor gets a temporary copy.
func PreprocessString(source, filename string, opts *Options) (string, error) {
	res, err := RunString(source, filename, opts)
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// RunString is PreprocessString but also returns the final macro table.
func RunString(source, filename string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{}
	}
	if opts.UseExternal {
		out, err := preprocessExternalString(source, filename, opts)
		if err != nil {
			return nil, err
		}
		return &Result{Output: out}, nil
	}
	return runInternal(source, filename, opts)
}

func runInternal(source, filename string, opts *Options) (*Result, error) {
	pp, err := cpp.NewPreprocessor(cpp.PreprocessorOptions{
		Defines:   defineArgs(opts.Defines),
		Undefines: opts.Undefines,
		Logger:    opts.Logger,
		PassHook:  opts.PassHook,
	})
	if err != nil {
		return nil, err
	}
	out, err := pp.PreprocessString(source, filename)
	if err != nil {
		return nil, err
	}
	return &Result{Output: out, Macros: pp.GetMacros()}, nil
}

// defineArgs converts the defines map to NAME=VALUE strings in a stable
// order.
func defineArgs(defines map[string]string) []string {
	names := maps.Keys(defines)
	sort.Strings(names)
	args := make([]string, 0, len(names))
	for _, name := range names {
		args = append(args, name+"="+defines[name])
	}
	return args
}

// preprocessExternal uses the system C preprocessor (cc -E)
func preprocessExternal(filename string, opts *Options) (string, error) {
	args := []string{"-E", "-P"}
	for _, d := range defineArgs(opts.Defines) {
		args = append(args, "-D"+d)
	}
	for _, name := range opts.Undefines {
		args = append(args, "-U"+name)
	}
	args = append(args, filename)

	cppCmd := findPreprocessor()
	if cppCmd == "" {
		return "", fmt.Errorf("no C preprocessor found (tried: cc, gcc, clang)")
	}

	cmd := exec.Command(cppCmd, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Dir = filepath.Dir(filename)

	if opts.Logger != nil {
		opts.Logger.Debug("running external preprocessor", "cmd", cppCmd, "args", args)
	}
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("preprocessing failed: %v\n%s", err, stderr.String())
	}
	return stdout.String(), nil
}

func preprocessExternalString(source, filename string, opts *Options) (string, error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".c"
	}
	tmp, err := os.CreateTemp("", "ralph-cpp-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(source); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	return preprocessExternal(tmp.Name(), opts)
}

// NeedsPreprocessing returns true if the file might need preprocessing.
// Files ending in .i are considered already preprocessed.
func NeedsPreprocessing(filename string) bool {
	return strings.ToLower(filepath.Ext(filename)) != ".i"
}

// findPreprocessor searches for a C preprocessor on the system
func findPreprocessor() string {
	for _, cmd := range []string{"cc", "gcc", "clang"} {
		if path, err := exec.LookPath(cmd); err == nil {
			return path
		}
	}
	return ""
}
