package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/roach88/suitecheck/internal/suite"
)

// CLI error codes.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeManifest     = "E006" // Manifest failed to load or build
	ErrCodeRegistry     = "E007" // Manifest does not form a valid registry
	ErrCodeUnknownTask  = "E008" // Selector names no registered task
	ErrCodePlan         = "E009" // Plan file invalid
	ErrCodeStore        = "E010" // Database error
	ErrCodeEnvironment  = "E011" // Environment failed to load or step
	ErrCodeGoldenDiffer = "E012" // Check trace differs from golden file
)

// LoadError represents an error that occurred while building the registry.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadRegistry builds the task registry. An empty dir selects the built-in
// manifest; otherwise the CUE package in dir is loaded and bound to the
// built-in domain factories.
func LoadRegistry(dir string) (*suite.Registry, error) {
	var m *suite.Manifest
	var err error
	if dir == "" {
		m, err = suite.BuiltinManifest()
	} else {
		info, statErr := os.Stat(dir)
		if statErr != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("manifest directory not found: %s", dir)}
		}
		if !info.IsDir() {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
		}
		m, err = suite.LoadManifestDir(dir)
	}
	if err != nil {
		var me *suite.ManifestError
		if errors.As(err, &me) {
			return nil, &LoadError{Code: ErrCodeManifest, Message: fmt.Sprintf("%s: %s", me.Path, me.Message), Pos: me.Pos}
		}
		return nil, &LoadError{Code: ErrCodeManifest, Message: err.Error()}
	}

	reg, err := suite.NewRegistry(m, suite.BuiltinFactories())
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRegistry, Message: err.Error()}
	}
	return reg, nil
}

// loadRegistry wraps LoadRegistry failures for command use.
func (o *RootOptions) loadRegistry(f *OutputFormatter) (*suite.Registry, error) {
	reg, err := LoadRegistry(o.Manifest)
	if err != nil {
		code := ErrCodeGeneric
		var le *LoadError
		if errors.As(err, &le) {
			code = le.Code
		}
		_ = f.Error(code, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to load suite", err)
	}
	return reg, nil
}
