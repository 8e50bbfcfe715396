package textscan

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/nao1215/textscan/domain/model"
)

// validator checks builder inputs before any stream is opened
type validator struct {
}

// newValidator creates a new validator instance
func newValidator() *validator {
	return &validator{}
}

// validatePath checks that path exists and returns its file info
func (v *validator) validatePath(path string) (fs.FileInfo, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load file: path does not exist: %s", path)
		}
		return nil, fmt.Errorf("failed to stat path %s: %w", path, err)
	}
	return info, nil
}

// validateReader validates reader input parameters
func (v *validator) validateReader(reader io.Reader, name string) error {
	if reader == nil {
		return errors.New("reader cannot be nil")
	}
	if strings.TrimSpace(name) == "" {
		return errors.New("name must be specified for reader input")
	}
	return nil
}

// validatePassthrough checks that no input carries more passthrough values
// than there are passthrough columns
func (v *validator) validatePassthrough(inputs []Input, columns []model.Column) error {
	for _, in := range inputs {
		if len(in.Passthrough) > len(columns) {
			return fmt.Errorf("%w: input %s has %d passthrough values for %d passthrough columns",
				model.ErrInvalidConfig, in.label(), len(in.Passthrough), len(columns))
		}
	}
	return nil
}

// validateFinalState validates that at least one source was collected
func (v *validator) validateFinalState(sources []*source, inputs []Input) error {
	if len(sources) > 0 {
		return nil
	}
	for _, in := range inputs {
		if in.FS != nil {
			return fmt.Errorf("%w: no matching files found in filesystem", ErrNoInputs)
		}
		if info, err := os.Stat(in.Path); err == nil && info.IsDir() {
			return fmt.Errorf("%w: no matching files found in directory %s", ErrNoInputs, in.Path)
		}
	}
	return ErrNoInputs
}

// label names an input in error messages
func (in Input) label() string {
	switch {
	case in.Reader != nil:
		return in.Name
	case in.FS != nil:
		return "fs.FS"
	default:
		return in.Path
	}
}
