// =============================================================================
// UltiSales Ingest - Converter Errors
// =============================================================================
//
// Every per-file failure is a *FileError naming the file and the stage it
// failed in. The sentinels below are matched with errors.Is through it.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
)

// Sentinel errors. Match them with errors.Is.
var (
	// ErrUnsupportedFormat is returned for file extensions no loader handles.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyFile is returned for zero-byte payloads.
	ErrEmptyFile = errors.New("file is empty")

	// ErrDecode wraps every loader failure: the bytes are not a readable
	// container of the declared format.
	ErrDecode = errors.New("failed to decode file")

	// ErrInvalid is returned in strict mode for a dataset whose validation
	// result is not valid.
	ErrInvalid = errors.New("dataset failed validation")

	// ErrAllFilesFailed is returned by a collect batch in which no file
	// could be parsed.
	ErrAllFilesFailed = errors.New("all files in the batch failed")

	// ErrBatchAborted is returned by an abort batch in which at least one
	// file failed. Nothing from the batch is committed.
	ErrBatchAborted = errors.New("batch aborted")
)

// Processing stages a file can fail in.
const (
	StageRead     = "read"
	StageDecode   = "decode"
	StageValidate = "validate"
	StageWrite    = "write"
)

// FileError records which file failed and in which stage.
type FileError struct {
	File  string
	Stage string
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.File, e.Stage, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
