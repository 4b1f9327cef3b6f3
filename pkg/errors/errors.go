package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeRejected     Code = "REJECTED"
	CodeTransport    Code = "TRANSPORT_ERROR"
	CodeStorage      Code = "STORAGE_ERROR"
	CodeInternal     Code = "INTERNAL_ERROR"
)

// Metadata describes how a class of failure should surface to the user.
type Metadata struct {
	Retryable      bool
	UserMessage    string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		Retryable:      false,
		UserMessage:    "please check your input",
		DetailsAllowed: true,
	},
	CodeUnauthorized: {
		Retryable:      false,
		UserMessage:    "please login to continue",
		DetailsAllowed: false,
	},
	CodeForbidden: {
		Retryable:      false,
		UserMessage:    "you do not have access to this",
		DetailsAllowed: false,
	},
	CodeNotFound: {
		Retryable:      false,
		UserMessage:    "not found",
		DetailsAllowed: false,
	},
	CodeRejected: {
		Retryable:      false,
		UserMessage:    "the request was rejected",
		DetailsAllowed: true,
	},
	CodeTransport: {
		Retryable:      true,
		UserMessage:    "something went wrong, please try again",
		DetailsAllowed: false,
	},
	CodeStorage: {
		Retryable:      false,
		UserMessage:    "local storage failure",
		DetailsAllowed: false,
	},
	CodeInternal: {
		Retryable:      false,
		UserMessage:    "something went wrong",
		DetailsAllowed: false,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// CodeForStatus maps an HTTP status received from the server onto a Code.
// Business-rule rejections (4xx other than auth/permission/missing) map to
// CodeRejected so the server's detail message can be surfaced verbatim.
func CodeForStatus(status int) Code {
	switch status {
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	}
	if status >= 400 && status < 500 {
		return CodeRejected
	}
	return CodeTransport
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

// UserMessage returns the text fit for a user-facing notification: the
// server/local detail when the code allows it, the generic text otherwise.
func (e *Error) UserMessage() string {
	meta := MetadataFor(e.Code())
	if meta.DetailsAllowed && e.Message() != "" {
		return e.Message()
	}
	return meta.UserMessage
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
