package uistate

import (
	"errors"
	"fmt"

	"github.com/adampresley/pictogallery/pkg/models"
)

const (
	UnknownErrorMessage = "An unknown error occurred"
	InvalidImageMessage = "Please upload a valid image file (JPEG, PNG, GIF)"
	ReadFailureMessage  = "Error reading file. Please try again."
)

var (
	ErrInvalidImage  = fmt.Errorf("%s", InvalidImageMessage)
	ErrReadFailure   = fmt.Errorf("%s", ReadFailureMessage)
	ErrNoPendingCrop = fmt.Errorf("there is no uploaded avatar waiting to be cropped")
	ErrStaleCrop     = fmt.Errorf("a newer avatar was selected before the crop finished")
)

type ErrorKind string

const (
	ErrorKindUnknown        ErrorKind = "unknown"
	ErrorKindInvalidInput   ErrorKind = "invalid-input"
	ErrorKindReadFailure    ErrorKind = "read-failure"
	ErrorKindNetworkFailure ErrorKind = "network-failure"
	ErrorKindAuthMismatch   ErrorKind = "auth-mismatch"
)

/*
ClassifyError maps an error onto the kinds the views know how to present.
Anything not recognized as bad input, a read failure or a password mismatch
is treated as a failed call to a backing store.
*/
func ClassifyError(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindUnknown

	case errors.Is(err, ErrInvalidImage),
		errors.Is(err, ErrNoPendingCrop),
		errors.Is(err, models.ErrInvalidAlbumName),
		errors.Is(err, models.ErrPasswordRequired),
		errors.Is(err, models.ErrAlbumExists),
		errors.Is(err, models.ErrInvalidStyles):
		return ErrorKindInvalidInput

	case errors.Is(err, ErrReadFailure):
		return ErrorKindReadFailure

	case errors.Is(err, models.ErrIncorrectPassword):
		return ErrorKindAuthMismatch

	default:
		return ErrorKindNetworkFailure
	}
}

/*
DescribeError is the user facing description of err. Errors without a
message fall back to a generic one.
*/
func DescribeError(err error) string {
	if err == nil || err.Error() == "" {
		return UnknownErrorMessage
	}

	return err.Error()
}
