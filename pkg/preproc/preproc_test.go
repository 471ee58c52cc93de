package preproc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPreprocessInternal(t *testing.T) {
	path := writeFile(t, t.TempDir(), "in.c", "#define TWICE(x) x+x\nint y = TWICE(N);\n")

	got, err := Preprocess(path, &Options{Defines: map[string]string{"N": "4"}})
	if err != nil {
		t.Fatalf("Preprocess() error: %v", err)
	}
	if got != "int y =  4+4;\n" {
		t.Errorf("got %q", got)
	}
}

func TestRunReturnsMacros(t *testing.T) {
	path := writeFile(t, t.TempDir(), "in.c", "#define A 1\n#define B 2\n#undef A\n")

	res, err := Run(path, nil)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Output != "" {
		t.Errorf("Output = %q, want empty", res.Output)
	}
	if res.Macros.IsDefined("A") || !res.Macros.IsDefined("B") {
		t.Errorf("unexpected macros: %v", res.Macros.Names())
	}
}

func TestPreprocessString(t *testing.T) {
	got, err := PreprocessString("FLAG[EMPTY]", "mem.c", &Options{Defines: map[string]string{"FLAG": "1", "EMPTY": ""}})
	if err != nil {
		t.Fatalf("PreprocessString() error: %v", err)
	}
	if got != "1[]" {
		t.Errorf("got %q, want %q", got, "1[]")
	}

	_, err = PreprocessString("#define F(a) a\nF(1,2)", "mem.c", nil)
	if err == nil || !strings.HasPrefix(err.Error(), "mem.c: ") {
		t.Errorf("error = %v, want it to name mem.c", err)
	}
}

func TestPreprocessMissingFile(t *testing.T) {
	if _, err := Preprocess(filepath.Join(t.TempDir(), "nope.c"), nil); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefineArgsAreSorted(t *testing.T) {
	got := defineArgs(map[string]string{"Z": "", "A": "1", "M": "x y"})
	want := []string{"A=1", "M=x y", "Z="}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("defineArgs() = %v, want %v", got, want)
	}
}

func TestNeedsPreprocessing(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"a.c", true},
		{"a.h", true},
		{"a.i", false},
		{"A.I", false},
	}
	for _, tt := range tests {
		if got := NeedsPreprocessing(tt.filename); got != tt.want {
			t.Errorf("NeedsPreprocessing(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestPreprocessExternal(t *testing.T) {
	if findPreprocessor() == "" {
		t.Skip("no system C preprocessor available")
	}
	got, err := PreprocessString("#define V 7\nint v = V;\n", "ext.c", &Options{UseExternal: true})
	if err != nil {
		t.Fatalf("PreprocessString() error: %v", err)
	}
	if !strings.Contains(got, "int v = 7;") {
		t.Errorf("got %q", got)
	}
}
