package core

import (
	"errors"
	"fmt"
)

// ErrorCode is the machine-readable classification tag carried by an
// ErrorState.
type ErrorCode string

// The failure classifications a container can report.
const (
	CodeEmptyData        ErrorCode = "EmptyDataError"
	CodeTooLong          ErrorCode = "TooLongError"
	CodeOperationFailure ErrorCode = "OperationFailure"
)

// EmptyDataError reports that data was empty where non-empty data is
// required.
type EmptyDataError struct{}

func (e EmptyDataError) Error() string {
	return "data must not be empty"
}

// TooLongError reports that data exceeded the size ceiling.
type TooLongError struct {
	Length int
}

func (e TooLongError) Error() string {
	return fmt.Sprintf("data length %d exceeds the limit of %d characters",
		e.Length, DataSizeLimit)
}

// An OperationFailure wraps any failure raised by a load or update operation
// that is not a validation failure.
type OperationFailure struct {
	Op  string
	Err error
}

func (e OperationFailure) Error() string {
	return fmt.Sprintf("%s operation failed: %s", e.Op, e.Err)
}

func (e OperationFailure) Unwrap() error {
	return e.Err
}

// ClassifyError maps a handler failure to its ErrorCode. Failures that are
// not part of the validation taxonomy classify as CodeOperationFailure.
func ClassifyError(err error) ErrorCode {
	var emptyErr EmptyDataError
	if errors.As(err, &emptyErr) {
		return CodeEmptyData
	}

	var tooLongErr TooLongError
	if errors.As(err, &tooLongErr) {
		return CodeTooLong
	}

	return CodeOperationFailure
}
