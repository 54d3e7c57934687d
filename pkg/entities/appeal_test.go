package entities

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppealStatusCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from AppealStatus
		to   AppealStatus
		want bool
	}{
		{name: "PollingToPending", from: AppealStatusPolling, to: AppealStatusPending, want: true},
		{name: "PendingToAccepted", from: AppealStatusPending, to: AppealStatusAccepted, want: true},
		{name: "PendingToRejected", from: AppealStatusPending, to: AppealStatusRejected, want: true},
		{name: "PollingToAccepted", from: AppealStatusPolling, to: AppealStatusAccepted, want: false},
		{name: "PendingToPolling", from: AppealStatusPending, to: AppealStatusPolling, want: false},
		{name: "AcceptedToRejected", from: AppealStatusAccepted, to: AppealStatusRejected, want: false},
		{name: "RejectedToPending", from: AppealStatusRejected, to: AppealStatusPending, want: false},
		{name: "AcceptedToPolling", from: AppealStatusAccepted, to: AppealStatusPolling, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestAppealStatusValid(t *testing.T) {
	require.True(t, AppealStatusPolling.Valid())
	require.True(t, AppealStatusPending.Valid())
	require.True(t, AppealStatusAccepted.Valid())
	require.True(t, AppealStatusRejected.Valid())
	require.False(t, AppealStatus("closed").Valid())
}

func TestAppealStatusResolved(t *testing.T) {
	require.False(t, AppealStatusPolling.Resolved())
	require.False(t, AppealStatusPending.Resolved())
	require.True(t, AppealStatusAccepted.Resolved())
	require.True(t, AppealStatusRejected.Resolved())
}

func TestAppealChannelName(t *testing.T) {
	a := &Appeal{UserID: "42"}
	require.Equal(t, "appeal-42", a.ChannelName())
}
