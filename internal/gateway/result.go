package gateway

import (
	"errors"

	"wallet/internal/api"
	"wallet/internal/core"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// ErrorKind classifies a failed call. It is empty on success.
type ErrorKind string

const (
	ValidationError ErrorKind = "ValidationError"
	ServerError     ErrorKind = "ServerError"
	NetworkError    ErrorKind = "NetworkError"
	UnknownError    ErrorKind = "UnknownError"
)

const (
	MsgValidation = "Please check your information"
	MsgServer     = "The server returned an error"
	MsgNetwork    = "No response received from server"
	MsgUnknown    = "Something went wrong"
)

// Result is what every gateway operation returns. Data is the zero value
// unless Status is StatusSuccess.
type Result[T any] struct {
	Status  Status
	Data    T
	Err     ErrorKind
	Message string
}

func (r Result[T]) OK() bool {
	return r.Status == StatusSuccess
}

// Classify maps err to an error kind and a user-facing message.
func Classify(err error) (ErrorKind, string) {
	var se *api.StatusError
	switch {
	case errors.As(err, &se):
		if se.Code == 400 {
			return ValidationError, MsgValidation
		}
		if se.Message != "" {
			return ServerError, se.Message
		}
		return ServerError, MsgServer
	case errors.Is(err, api.ErrNoResponse):
		return NetworkError, MsgNetwork
	case errors.Is(err, core.ErrValidation):
		return ValidationError, MsgValidation
	case errors.Is(err, core.ErrNotFound), errors.Is(err, core.ErrConflict):
		return ServerError, err.Error()
	default:
		return UnknownError, MsgUnknown
	}
}

func failure[T any](err error) Result[T] {
	kind, msg := Classify(err)
	return Result[T]{Status: StatusFailure, Err: kind, Message: msg}
}

func success[T any](data T) Result[T] {
	return Result[T]{Status: StatusSuccess, Data: data}
}
