package entities

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AppealStatus is the lifecycle state of a ban appeal.
type AppealStatus string

const (
	// AppealStatusPolling is a freshly submitted appeal that has not been
	// picked up by the poller yet.
	AppealStatusPolling AppealStatus = "polling"

	// AppealStatusPending is an appeal with a discussion channel that is
	// waiting on a moderator decision.
	AppealStatusPending AppealStatus = "pending"

	// AppealStatusAccepted is an appeal that has been accepted.
	AppealStatusAccepted AppealStatus = "accepted"

	// AppealStatusRejected is an appeal that has been rejected.
	AppealStatusRejected AppealStatus = "rejected"
)

// appealTransitions is the set of legal status transitions. Statuses only
// ever move forwards; a resolved appeal never re-enters the queue.
var appealTransitions = map[AppealStatus][]AppealStatus{
	AppealStatusPolling:  {AppealStatusPending},
	AppealStatusPending:  {AppealStatusAccepted, AppealStatusRejected},
	AppealStatusAccepted: {},
	AppealStatusRejected: {},
}

// Valid reports whether the status is one of the known statuses.
func (s AppealStatus) Valid() bool {
	_, ok := appealTransitions[s]
	return ok
}

// CanTransition reports whether moving from the current status to the given
// status is legal.
func (s AppealStatus) CanTransition(to AppealStatus) bool {
	for _, next := range appealTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Resolved reports whether the appeal has reached a terminal status.
func (s AppealStatus) Resolved() bool {
	return s == AppealStatusAccepted || s == AppealStatusRejected
}

// AppealQuestion is one question and the answer the submitter gave to it.
type AppealQuestion struct {
	Question string `json:"question" bson:"question"`
	Answer   string `json:"answer" bson:"answer"`
}

// Appeal is one user's ban appeal submission and its resolution state.
//
// The BSON field names match the documents written by the web intake, so the
// bot and the intake share the ban_appeals collection without translation.
type Appeal struct {
	// ID is the store assigned identifier of the appeal.
	ID primitive.ObjectID `json:"id" bson:"_id,omitempty"`

	// UserID is the ID of the banned user that submitted the appeal.
	UserID string `json:"user_id" bson:"userID"`

	// CreatedAt is the submission time in milliseconds since the epoch.
	CreatedAt int64 `json:"created_at" bson:"createdAt"`

	// Questions are the question and answer pairs from the submission form.
	Questions []AppealQuestion `json:"questions" bson:"questions"`

	// Status is the lifecycle status of the appeal.
	Status AppealStatus `json:"status" bson:"status"`

	// Channel is the ID of the discussion channel. It is empty until the
	// appeal has been provisioned.
	Channel string `json:"channel,omitempty" bson:"channel,omitempty"`
}

// ChannelName is the name used for the appeal's discussion channel.
func (a *Appeal) ChannelName() string {
	return fmt.Sprintf("appeal-%s", a.UserID)
}
