// Package engine runs candidate programs against test input under simulated
// console I/O.
//
// An Engine prepares a submission once (loading or compiling it) and returns
// a Program. Every Program.Run starts from a fresh, isolated context: input
// is served line by line from the test input, everything the program prints
// is captured, and reading past the last line is a fault. Faults never
// escape as panics; they are returned as *Fault values.
package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AndreyAkinshin/automark/internal/model"
)

// ErrEndOfInput is the cause of faults raised when a program asks for more
// input lines than the test provides.
var ErrEndOfInput = errors.New("EOF when reading a line")

// FaultKind classifies execution faults.
type FaultKind int

const (
	FaultCompile FaultKind = iota + 1
	FaultRuntime
	FaultEndOfInput
)

func (k FaultKind) String() string {
	switch k {
	case FaultCompile:
		return "compile"
	case FaultRuntime:
		return "runtime"
	case FaultEndOfInput:
		return "end of input"
	default:
		return "unknown"
	}
}

// Fault is a failed execution. Message is a short, single-line description
// suitable for a report cell.
type Fault struct {
	Kind    FaultKind
	Message string
	Cause   error
}

func (f *Fault) Error() string {
	return f.Message
}

func (f *Fault) Unwrap() error {
	return f.Cause
}

// AsFault reports whether err is or wraps a *Fault.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

func endOfInputFault() *Fault {
	return &Fault{Kind: FaultEndOfInput, Message: ErrEndOfInput.Error(), Cause: ErrEndOfInput}
}

// Engine loads submissions of one language.
type Engine interface {
	// Name identifies the engine kind, such as "embedded" or "process".
	Name() string
	// Prepare loads sub. Load and compile failures are returned as *Fault.
	Prepare(sub model.Submission) (Program, error)
}

// Program is a prepared submission that can be run any number of times.
type Program interface {
	// Run executes the program with input as its console input and returns
	// everything it printed.
	Run(ctx context.Context, input string) (string, error)
	// Close releases resources held since Prepare.
	Close() error
}

// Language binds file extensions to the engine that runs them.
type Language struct {
	Name       string
	Extensions []string
	Engine     Engine
}

// Registry resolves submissions to languages by file extension.
type Registry struct {
	languages map[string]*Language
	byExt     map[string]*Language
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		languages: make(map[string]*Language),
		byExt:     make(map[string]*Language),
	}
}

// Register adds a language. Extensions are matched case-insensitively and
// may be given with or without the leading dot.
func (r *Registry) Register(lang Language) error {
	if lang.Name == "" {
		return fmt.Errorf("language name is required")
	}
	if lang.Engine == nil {
		return fmt.Errorf("language %q: engine is required", lang.Name)
	}
	if _, exists := r.languages[lang.Name]; exists {
		return fmt.Errorf("language %q already registered", lang.Name)
	}
	l := lang
	l.Extensions = nil
	for _, ext := range lang.Extensions {
		ext = normalizeExt(ext)
		if other, taken := r.byExt[ext]; taken {
			return fmt.Errorf("extension %q claimed by both %q and %q", ext, other.Name, lang.Name)
		}
		l.Extensions = append(l.Extensions, ext)
	}
	if len(l.Extensions) == 0 {
		return fmt.Errorf("language %q: at least one extension is required", lang.Name)
	}
	r.languages[l.Name] = &l
	for _, ext := range l.Extensions {
		r.byExt[ext] = &l
	}
	return nil
}

// ForPath returns the language for a file path.
func (r *Registry) ForPath(path string) (*Language, bool) {
	l, ok := r.byExt[normalizeExt(filepath.Ext(path))]
	return l, ok
}

// Lookup returns a language by name.
func (r *Registry) Lookup(name string) (*Language, bool) {
	l, ok := r.languages[name]
	return l, ok
}

// Extensions returns every registered extension, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Names returns registered language names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.languages))
	for name := range r.languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Executor runs submissions through the engine registered for their
// language.
type Executor struct {
	registry *Registry
}

// NewExecutor returns an executor backed by registry.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

// Prepare loads sub with the engine for its language. The language is taken
// from sub.Language when set, otherwise from the file extension.
func (e *Executor) Prepare(sub model.Submission) (Program, error) {
	var (
		lang *Language
		ok   bool
	)
	if sub.Language != "" {
		lang, ok = e.registry.Lookup(sub.Language)
	} else {
		lang, ok = e.registry.ForPath(sub.Path)
	}
	if !ok {
		return nil, &Fault{
			Kind:    FaultCompile,
			Message: fmt.Sprintf("no engine for %s", describe(sub)),
		}
	}
	return lang.Engine.Prepare(sub)
}

// Run prepares sub and runs it once against input.
func (e *Executor) Run(ctx context.Context, sub model.Submission, input string) (string, error) {
	prog, err := e.Prepare(sub)
	if err != nil {
		return "", err
	}
	defer prog.Close()
	return prog.Run(ctx, input)
}

func describe(sub model.Submission) string {
	if sub.Language != "" {
		return fmt.Sprintf("language %q", sub.Language)
	}
	if ext := filepath.Ext(sub.Path); ext != "" {
		return fmt.Sprintf("extension %q", ext)
	}
	return fmt.Sprintf("%q", sub.ID)
}

// firstLine returns the first non-empty line of s, trimmed.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// lastLine returns the last non-empty line of s, trimmed.
func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
