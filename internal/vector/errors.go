package vector

import "fmt"

// LoadReason classifies why a store could not be built.
type LoadReason string

const (
	// ReasonSource means the embedding table or identifier list could not be read.
	ReasonSource LoadReason = "source"
	// ReasonRowCountMismatch means the table and identifier list have different lengths.
	ReasonRowCountMismatch LoadReason = "row-count-mismatch"
	// ReasonMalformedRow means a row's width differs from the store dimension.
	ReasonMalformedRow LoadReason = "malformed-row"
)

// LoadError is returned when a Store cannot be constructed. It is fatal at startup.
type LoadError struct {
	Reason LoadReason
	// Row is the offending row for ReasonMalformedRow, -1 otherwise.
	Row int
	Msg string
	Err error
}

func (e *LoadError) Error() string {
	msg := "load vector store: " + string(e.Reason)
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IndexError reports an item index outside [0, Size).
type IndexError struct {
	Index int
	Size  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Size)
}
