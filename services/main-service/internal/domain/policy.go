package domain

// Decision is the outcome of admission control for a new participation request.
type Decision string

const (
	DecisionReject      Decision = "reject"
	DecisionAutoConfirm Decision = "auto_confirm"
	DecisionQueue       Decision = "queue"
)

// Admit decides what happens to a new participation request.
//
// Semantics:
// - participantLimit == 0 means unlimited
// - a limited event whose confirmed count already equals the limit rejects
// - unlimited events and events without moderation confirm immediately
// - everything else waits for the organizer (PENDING)
//
// The caller holds the event row lock, so confirmed is the committed value.
func Admit(participantLimit int, requestModeration bool, confirmed int) Decision {
	if participantLimit != 0 && confirmed >= participantLimit {
		return DecisionReject
	}
	if participantLimit == 0 || !requestModeration {
		return DecisionAutoConfirm
	}
	return DecisionQueue
}

// Status maps a non-reject decision to the initial request status.
func (d Decision) Status() RequestStatus {
	if d == DecisionAutoConfirm {
		return RequestConfirmed
	}
	return RequestPending
}

// FreeSlots returns how many more requests can be confirmed.
// -1 means unlimited.
func FreeSlots(participantLimit, confirmed int) int {
	if participantLimit == 0 {
		return -1
	}
	if confirmed >= participantLimit {
		return 0
	}
	return participantLimit - confirmed
}
