package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds. Match them with errors.Is against any error returned by a run.
var (
	ErrDatasetLoad      = errors.New("DatasetLoadError")
	ErrJoinKeyMissing   = errors.New("JoinKeyMissingError")
	ErrEmptyDataset     = errors.New("EmptyDatasetError")
	ErrUnsupportedScale = errors.New("UnsupportedScaleError")
	ErrDuplicateJoinKey = errors.New("DuplicateJoinKeyError")
)

// PipelineError is a terminal failure of a single run. It records the stage it
// came from and the file and column involved.
type PipelineError struct {
	Kind   error
	Stage  string
	Path   string
	Column string
	Msg    string
	Err    error
}

func (e *PipelineError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "stage %s", e.Stage)
	if e.Path != "" {
		fmt.Fprintf(&b, ", file %q", e.Path)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ", column %q", e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel kind of this error.
func (e *PipelineError) Is(target error) bool {
	return e.Kind == target
}

// KindName returns the taxonomy name of err, or "Error" if it is not a PipelineError.
func KindName(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) && pe.Kind != nil {
		return pe.Kind.Error()
	}
	return "Error"
}

// NewDatasetLoadError reports an unreadable, malformed or incomplete source.
func NewDatasetLoadError(stage, path, column, msg string, err error) error {
	return &PipelineError{Kind: ErrDatasetLoad, Stage: stage, Path: path, Column: column, Msg: msg, Err: err}
}

// NewJoinKeyMissingError reports a dataset without the configured join key.
func NewJoinKeyMissingError(path, column string) error {
	return &PipelineError{Kind: ErrJoinKeyMissing, Stage: "join", Path: path, Column: column, Msg: "join key column not found"}
}

// NewEmptyDatasetError reports that no rows are left to summarize.
func NewEmptyDatasetError(path, column string) error {
	return &PipelineError{Kind: ErrEmptyDataset, Stage: "summarize", Path: path, Column: column, Msg: "no rows left after filtering and coercion"}
}

// NewUnsupportedScaleError reports an unknown y-axis scale.
func NewUnsupportedScaleError(scale string) error {
	return &PipelineError{Kind: ErrUnsupportedScale, Stage: "config", Msg: fmt.Sprintf("unsupported y scale %q (want linear or log)", scale)}
}

// NewDuplicateJoinKeyError reports a size key mapped to more than one category.
func NewDuplicateJoinKeyError(path, column, key, first, second string) error {
	return &PipelineError{
		Kind:   ErrDuplicateJoinKey,
		Stage:  "join",
		Path:   path,
		Column: column,
		Msg:    fmt.Sprintf("key %q maps to both %q and %q", key, first, second),
	}
}
