package service

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure so the HTTP boundary can map it to a
// status code without inspecting message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidState
	KindAlreadyMember
	KindNotMember
	KindAlreadyProcessed
	KindExpired
	KindInvalidCode
	KindValidation
	KindUnauthorized
)

// Error is a domain error with an explicit kind
type Error struct {
	Kind    Kind
	Message string
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// NotFoundError reports an absent entity
func NotFoundError(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", entity)}
}

// InvalidStateError reports an illegal transition
func InvalidStateError(message string) *Error {
	return &Error{Kind: KindInvalidState, Message: message}
}

// AlreadyMemberError reports a join attempt by an active member
func AlreadyMemberError() *Error {
	return &Error{Kind: KindAlreadyMember, Message: "already a member of this community"}
}

// NotMemberError reports a leave attempt without an active membership
func NotMemberError() *Error {
	return &Error{Kind: KindNotMember, Message: "not a member of this community"}
}

// AlreadyProcessedError reports a re-transition of a terminal submission
func AlreadyProcessedError() *Error {
	return &Error{Kind: KindAlreadyProcessed, Message: "submission has already been processed"}
}

// ExpiredCodeError reports a matching but expired verification code
func ExpiredCodeError() *Error {
	return &Error{Kind: KindExpired, Message: "verification code has expired"}
}

// InvalidCodeError reports a code matching no unverified ledger row
func InvalidCodeError() *Error {
	return &Error{Kind: KindInvalidCode, Message: "invalid verification code"}
}

// ValidationError reports malformed input
func ValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// UnauthorizedError reports an authentication failure
func UnauthorizedError(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// KindOf extracts the kind from an error, KindUnknown for foreign errors
func KindOf(err error) Kind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return KindUnknown
}
