package domain

import (
	"errors"
	"fmt"
)

type ErrCode string

const (
	CodeNotFound   ErrCode = "not_found"
	CodeConflict   ErrCode = "conflict"
	CodeNotAllowed ErrCode = "not_allowed"
	CodeInvalid    ErrCode = "invalid"
)

// AppError is a business-rule failure. Reason is the stable machine-readable key
// clients switch on; Message is for humans.
type AppError struct {
	Code    ErrCode
	Reason  string
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s(%s): %s", e.Code, e.Reason, e.Message)
}

func NotFound(reason, msg string) error   { return &AppError{Code: CodeNotFound, Reason: reason, Message: msg} }
func Conflict(reason, msg string) error   { return &AppError{Code: CodeConflict, Reason: reason, Message: msg} }
func NotAllowed(reason, msg string) error { return &AppError{Code: CodeNotAllowed, Reason: reason, Message: msg} }
func Invalid(reason, msg string) error    { return &AppError{Code: CodeInvalid, Reason: reason, Message: msg} }

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code ErrCode) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Code == code
}

// ReasonOf returns the reason of an AppError, or "" for anything else.
func ReasonOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Reason
	}
	return ""
}

// Store-level sentinels. Repositories return these; services translate them.
var (
	ErrNoRows          = errors.New("no rows")
	ErrUniqueViolation = errors.New("unique violation")
	ErrFKViolation     = errors.New("foreign key violation")
)

// Stable reasons.
const (
	ReasonUserNotFound        = "user.not_found"
	ReasonUserEmailTaken      = "user.email_taken"
	ReasonCategoryNotFound    = "category.not_found"
	ReasonCategoryNameTaken   = "category.name_taken"
	ReasonCategoryInUse       = "category.in_use"
	ReasonEventNotFound       = "event.not_found"
	ReasonEventNotPublished   = "event.not_published"
	ReasonEventPublished      = "event.published"
	ReasonEventNotOwner       = "event.not_owner"
	ReasonEventDateTooSoon    = "event.date_too_soon"
	ReasonEventStateConflict  = "event.state_conflict"
	ReasonEventFull           = "event.full"
	ReasonEventLimitTooLow    = "event.limit_below_confirmed"
	ReasonRequestNotFound     = "request.not_found"
	ReasonRequestDuplicate    = "request.duplicate"
	ReasonRequestOwnEvent     = "request.own_event"
	ReasonRequestNotOwner     = "request.not_owner"
	ReasonRequestNotPending   = "request.not_pending"
	ReasonRequestBadStatus    = "request.bad_status"
	ReasonRatingDuplicate     = "rating.duplicate"
	ReasonRatingNotFound      = "rating.not_found"
	ReasonRatingSelf          = "rating.self"
	ReasonRatingNotAttended   = "rating.not_participant"
	ReasonRatingBadAction     = "rating.bad_action"
	ReasonCompilationNotFound = "compilation.not_found"
	ReasonCompilationTaken    = "compilation.title_taken"
	ReasonValidation          = "request.invalid"
)
