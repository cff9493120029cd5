package domain_test

import (
	"testing"
	"time"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func baseEvent() domain.Event {
	return domain.Event{
		ID: 1, Title: "Go meetup", Annotation: "talks", Description: "long talks",
		InitiatorID: 7, EventDate: now.Add(48 * time.Hour), State: domain.EventPending,
	}
}

func TestNewEvent_Build(t *testing.T) {
	n := domain.NewEvent{Title: " t ", Annotation: "a", Description: "d", EventDate: now.Add(3 * time.Hour)}
	e, err := n.Build(9, now)
	require.NoError(t, err)
	assert.Equal(t, domain.EventPending, e.State)
	assert.Equal(t, "t", e.Title)
	assert.Equal(t, int64(9), e.InitiatorID)
	assert.Zero(t, e.ConfirmedRequests)

	n.EventDate = now.Add(time.Hour)
	_, err = n.Build(9, now)
	assert.Equal(t, domain.ReasonEventDateTooSoon, domain.ReasonOf(err))

	n.EventDate = now.Add(3 * time.Hour)
	n.ParticipantLimit = -1
	_, err = n.Build(9, now)
	assert.True(t, domain.HasCode(err, domain.CodeInvalid))
}

func TestApplyUserUpdate_StateActions(t *testing.T) {
	cancel := domain.UserCancelReview
	out, err := baseEvent().ApplyUserUpdate(domain.UserEventUpdate{StateAction: &cancel}, now)
	require.NoError(t, err)
	assert.Equal(t, domain.EventCanceled, out.State)

	send := domain.UserSendToReview
	out, err = out.ApplyUserUpdate(domain.UserEventUpdate{StateAction: &send}, now)
	require.NoError(t, err)
	assert.Equal(t, domain.EventPending, out.State)
}

func TestApplyUserUpdate_PublishedIsFrozen(t *testing.T) {
	e := baseEvent()
	e.State = domain.EventPublished
	title := "new"
	out, err := e.ApplyUserUpdate(domain.UserEventUpdate{EventPatch: domain.EventPatch{Title: &title}}, now)
	assert.True(t, domain.HasCode(err, domain.CodeNotAllowed))
	assert.Equal(t, "Go meetup", out.Title)
}

func TestApplyAdminUpdate(t *testing.T) {
	publish := domain.AdminPublishEvent
	reject := domain.AdminRejectEvent

	t.Run("publish_pending", func(t *testing.T) {
		out, err := baseEvent().ApplyAdminUpdate(domain.AdminEventUpdate{StateAction: &publish}, now)
		require.NoError(t, err)
		assert.Equal(t, domain.EventPublished, out.State)
		require.NotNil(t, out.PublishedOn)
		assert.Equal(t, now, *out.PublishedOn)
	})

	t.Run("publish_twice_fails", func(t *testing.T) {
		e := baseEvent()
		e.State = domain.EventPublished
		_, err := e.ApplyAdminUpdate(domain.AdminEventUpdate{StateAction: &publish}, now)
		assert.Equal(t, domain.ReasonEventStateConflict, domain.ReasonOf(err))
	})

	t.Run("reject_published_fails", func(t *testing.T) {
		e := baseEvent()
		e.State = domain.EventPublished
		_, err := e.ApplyAdminUpdate(domain.AdminEventUpdate{StateAction: &reject}, now)
		assert.True(t, domain.HasCode(err, domain.CodeNotAllowed))
	})

	t.Run("publish_too_close_fails", func(t *testing.T) {
		e := baseEvent()
		e.EventDate = now.Add(30 * time.Minute)
		_, err := e.ApplyAdminUpdate(domain.AdminEventUpdate{StateAction: &publish}, now)
		assert.True(t, domain.HasCode(err, domain.CodeNotAllowed))
	})
}

func TestStateActionParsersAreDisjoint(t *testing.T) {
	_, err := domain.ParseUserStateAction("PUBLISH_EVENT")
	assert.True(t, domain.HasCode(err, domain.CodeInvalid))
	_, err = domain.ParseAdminStateAction("SEND_TO_REVIEW")
	assert.True(t, domain.HasCode(err, domain.CodeInvalid))

	a, err := domain.ParseAdminStateAction("publish_event")
	require.NoError(t, err)
	assert.Equal(t, domain.AdminPublishEvent, a)
}

func TestApplyUpdate_LimitBelowConfirmed(t *testing.T) {
	e := baseEvent()
	e.ParticipantLimit = 2
	e.ConfirmedRequests = 2

	one, zero, two := 1, 0, 2
	_, err := e.ApplyAdminUpdate(domain.AdminEventUpdate{EventPatch: domain.EventPatch{ParticipantLimit: &one}}, now)
	assert.True(t, domain.HasCode(err, domain.CodeConflict))
	assert.Equal(t, domain.ReasonEventLimitTooLow, domain.ReasonOf(err))

	_, err = e.ApplyUserUpdate(domain.UserEventUpdate{EventPatch: domain.EventPatch{ParticipantLimit: &one}}, now)
	assert.Equal(t, domain.ReasonEventLimitTooLow, domain.ReasonOf(err))

	out, err := e.ApplyAdminUpdate(domain.AdminEventUpdate{EventPatch: domain.EventPatch{ParticipantLimit: &zero}}, now)
	require.NoError(t, err)
	assert.Zero(t, out.ParticipantLimit)

	out, err = e.ApplyUserUpdate(domain.UserEventUpdate{EventPatch: domain.EventPatch{ParticipantLimit: &two}}, now)
	require.NoError(t, err)
	assert.Equal(t, 2, out.ParticipantLimit)
}
