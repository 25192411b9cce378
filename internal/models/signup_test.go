package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusVocabularyRoundTrip(t *testing.T) {
	for code, label := range StatusLabels() {
		got, ok := StatusFromLabel(label)
		assert.True(t, ok, label)
		assert.Equal(t, code, got)
	}

	_, ok := StatusFromLabel("cancelled")
	assert.False(t, ok, "cancellation alias is not part of the vocabulary")
}

func TestStatusOrdering(t *testing.T) {
	assert.Less(t, StatusDeclined, StatusApproved)
	assert.Less(t, StatusApproved, StatusWaitlisted)
	assert.Less(t, StatusWaitlisted, StatusBooked)
	assert.Less(t, StatusBooked, StatusFullyAttended)
}

func TestNotificationTypeFromToken(t *testing.T) {
	cases := []struct {
		token string
		want  NotificationType
		ok    bool
	}{
		{"email", NotifyText, true},
		{"ical", NotifyICal, true},
		{"icalendar", NotifyICal, true},
		{"both", NotifyBoth, true},
		{"", NotifyBoth, true},
		{"BOTH", NotifyBoth, true},
		{"pigeon", 0, false},
	}
	for _, tc := range cases {
		got, ok := NotificationTypeFromToken(tc.token)
		assert.Equal(t, tc.ok, ok, tc.token)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.token)
		}
	}
}

func TestSessionTimingWindows(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	unknown := &Session{}
	assert.False(t, unknown.HasStarted(now))
	assert.False(t, unknown.InProgress(now))

	running := &Session{DatetimeKnown: true, Dates: []SessionDate{{
		TimeStart:  now.Add(-time.Hour),
		TimeFinish: now.Add(time.Hour),
	}}}
	assert.True(t, running.HasStarted(now))
	assert.True(t, running.InProgress(now))

	finished := &Session{DatetimeKnown: true, Dates: []SessionDate{{
		TimeStart:  now.Add(-3 * time.Hour),
		TimeFinish: now.Add(-2 * time.Hour),
	}}}
	assert.True(t, finished.HasStarted(now))
	assert.False(t, finished.InProgress(now))

	upcoming := &Session{DatetimeKnown: true, Dates: []SessionDate{{
		TimeStart:  now.Add(time.Hour),
		TimeFinish: now.Add(2 * time.Hour),
	}}}
	assert.False(t, upcoming.HasStarted(now))
	assert.False(t, upcoming.InProgress(now))
}
