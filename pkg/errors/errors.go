package errors

import (
	stdErrors "errors"
	"fmt"
)

// Code classifies a storefront error so call sites can branch on the
// failure class instead of matching message strings.
type Code string

const (
	CodeNetwork          Code = "NETWORK_ERROR"
	CodeAuth             Code = "AUTH_ERROR"
	CodeRegistration     Code = "REGISTRATION_ERROR"
	CodeAuthRequired     Code = "AUTH_REQUIRED"
	CodeEmptyCart        Code = "EMPTY_CART"
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeServer           Code = "SERVER_ERROR"
	CodeNotFound         Code = "NOT_FOUND"
	CodeCheckoutInFlight Code = "CHECKOUT_IN_FLIGHT"
	CodeInternal         Code = "INTERNAL_ERROR"
)

// Metadata describes how a code should be presented and whether the
// operation is worth retrying as-is.
type Metadata struct {
	Retryable     bool
	PublicMessage string
}

var metadataByCode = map[Code]Metadata{
	CodeNetwork:          {Retryable: true, PublicMessage: "could not reach the server"},
	CodeAuth:             {Retryable: false, PublicMessage: "login failed"},
	CodeRegistration:     {Retryable: false, PublicMessage: "registration failed"},
	CodeAuthRequired:     {Retryable: false, PublicMessage: "please log in first"},
	CodeEmptyCart:        {Retryable: false, PublicMessage: "your cart is empty"},
	CodeValidation:       {Retryable: false, PublicMessage: "validation failed"},
	CodeServer:           {Retryable: true, PublicMessage: "the server had a problem"},
	CodeNotFound:         {Retryable: false, PublicMessage: "resource not found"},
	CodeCheckoutInFlight: {Retryable: false, PublicMessage: "a checkout is already in progress"},
	CodeInternal:         {Retryable: false, PublicMessage: "internal error"},
}

// MetadataFor returns the presentation metadata for a code, falling back
// to the internal-error metadata for unknown codes.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Error is the typed error carried across the storefront. The message is
// user-facing: when the backend supplied a detail string it is preserved
// verbatim here.
type Error struct {
	code    Code
	message string
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

// Message returns the user-facing message, falling back to the code's
// public message when none was set.
func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	if e.message == "" {
		return MetadataFor(e.code).PublicMessage
	}
	return e.message
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.Message())
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As extracts a typed *Error from an error chain, or nil.
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

// CodeOf returns the code of an error, CodeInternal for untyped errors
// and the empty code for nil.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	if typed := As(err); typed != nil {
		return typed.Code()
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
