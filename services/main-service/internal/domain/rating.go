package domain

import "strings"

type RatingAction string

const (
	RatingLike    RatingAction = "LIKE"
	RatingDislike RatingAction = "DISLIKE"
)

func ParseRatingAction(s string) (RatingAction, error) {
	switch a := RatingAction(strings.ToUpper(strings.TrimSpace(s))); a {
	case RatingLike, RatingDislike:
		return a, nil
	}
	return "", Invalid(ReasonRatingBadAction, "action must be LIKE or DISLIKE")
}

func (a RatingAction) Like() bool { return a == RatingLike }

// TargetKind separates the two independent ledgers that share one row shape.
type TargetKind string

const (
	TargetEvent     TargetKind = "event"
	TargetInitiator TargetKind = "initiator"
)

type RatingTarget struct {
	Kind TargetKind
	ID   int64
}

func EventTarget(id int64) RatingTarget     { return RatingTarget{Kind: TargetEvent, ID: id} }
func InitiatorTarget(id int64) RatingTarget { return RatingTarget{Kind: TargetInitiator, ID: id} }

type Rating struct {
	ID      int64
	RaterID int64
	Target  RatingTarget
	Like    bool
}

// Delta is the amount this rating contributes to its target's score.
func (r Rating) Delta() int {
	if r.Like {
		return 1
	}
	return -1
}
