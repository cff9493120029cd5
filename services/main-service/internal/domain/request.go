package domain

import (
	"strings"
	"time"
)

type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestConfirmed RequestStatus = "CONFIRMED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCanceled  RequestStatus = "CANCELED"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestConfirmed, RequestRejected, RequestCanceled:
		return true
	}
	return false
}

// Active requests count against the one-per-(requester, event) rule.
func (s RequestStatus) Active() bool { return s != RequestCanceled }

// CanTransitionTo encodes the moderation state machine:
//
//	PENDING   -> CONFIRMED | REJECTED | CANCELED
//	CONFIRMED -> CANCELED
//
// REJECTED and CANCELED are terminal for moderation. A requester withdrawing
// their own request is not bound by it: any Active request can be canceled.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	switch s {
	case RequestPending:
		return next == RequestConfirmed || next == RequestRejected || next == RequestCanceled
	case RequestConfirmed:
		return next == RequestCanceled
	}
	return false
}

type Request struct {
	ID          int64
	EventID     int64
	RequesterID int64
	Status      RequestStatus
	Created     time.Time
}

// ModerationStatus is the organizer's batch verdict; only CONFIRMED and REJECTED exist.
type ModerationStatus string

const (
	ModerationConfirm ModerationStatus = ModerationStatus(RequestConfirmed)
	ModerationReject  ModerationStatus = ModerationStatus(RequestRejected)
)

func ParseModerationStatus(s string) (ModerationStatus, error) {
	switch m := ModerationStatus(strings.ToUpper(strings.TrimSpace(s))); m {
	case ModerationConfirm, ModerationReject:
		return m, nil
	}
	return "", Invalid(ReasonRequestBadStatus, "status must be CONFIRMED or REJECTED")
}

func (m ModerationStatus) RequestStatus() RequestStatus { return RequestStatus(m) }

// ModerationResult is the outcome of a bulk status update.
type ModerationResult struct {
	Confirmed []Request
	Rejected  []Request
}
