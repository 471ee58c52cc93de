// preprocess.go implements the preprocessor driver: the ordered passes over
// one buffer.
package cpp

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Preprocessor is the main driver for preprocessing.
type Preprocessor struct {
	macros *MacroTable
	engine *Engine
	opts   PreprocessorOptions
	log    hclog.Logger
}

// PreprocessorOptions configures the preprocessor.
type PreprocessorOptions struct {
	Defines   []string // -D definitions
	Undefines []string // -U undefinitions

	// Logger receives pass output at debug level and rule traces at trace
	// level. Nil means no logging.
	Logger hclog.Logger

	// PassHook, if set, is called with the buffer after each pass.
	PassHook func(pass, output string)
}

// Pass names, in the order Parse runs them.
const (
	PassContinuations = "line continuations"
	PassComments      = "comments"
	PassMacros        = "macro expansion"
)

// Error is a fatal preprocessing error.
type Error struct {
	Pass string
	Err  error
}

func (e *Error) Error() string { return e.Pass + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// NewPreprocessor creates a new preprocessor instance.
func NewPreprocessor(opts PreprocessorOptions) (*Preprocessor, error) {
	log := opts.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	macros := NewMacroTable()
	if err := macros.ApplyCmdlineDefines(opts.Defines, opts.Undefines); err != nil {
		return nil, err
	}
	return &Preprocessor{
		macros: macros,
		engine: NewEngine(macros, log.Named("cpp")),
		opts:   opts,
		log:    log,
	}, nil
}

// Parse runs every pass over input and returns the final buffer. Macros
// defined by input stay in the table for later calls.
func (p *Preprocessor) Parse(input string) (string, error) {
	if i := strings.IndexByte(input, paintMark); i >= 0 {
		return "", &Error{Pass: "input", Err: fmt.Errorf("NUL byte at offset %d", i)}
	}

	passes := []struct {
		name string
		run  func(string) (string, error)
	}{
		{PassContinuations, p.engine.RemoveLineContinuations},
		{PassComments, p.engine.RemoveComments},
		{PassMacros, p.engine.Expand},
	}

	buf := input
	for _, pass := range passes {
		out, err := pass.run(buf)
		if err != nil {
			return "", &Error{Pass: pass.name, Err: err}
		}
		p.log.Debug("pass finished", "pass", pass.name, "output", out)
		if p.opts.PassHook != nil {
			p.opts.PassHook(pass.name, out)
		}
		buf = out
	}
	return buf, nil
}

// PreprocessFile preprocesses a file and returns the result.
func (p *Preprocessor) PreprocessFile(filename string) (string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", filename, err)
	}
	return p.PreprocessString(string(content), filename)
}

// PreprocessString preprocesses a string with a given filename for error messages.
func (p *Preprocessor) PreprocessString(source, filename string) (string, error) {
	out, err := p.Parse(source)
	if err != nil {
		return "", fmt.Errorf("%s: %w", filename, err)
	}
	return out, nil
}

// GetMacros returns the macro table.
func (p *Preprocessor) GetMacros() *MacroTable {
	return p.macros
}
