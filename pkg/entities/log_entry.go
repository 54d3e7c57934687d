package entities

import (
	"github.com/Jacobbrewer1/gavel/pkg/custom"
)

// LogMessageTypeThread is the message type recorded for relayed discussion
// messages.
const LogMessageTypeThread = "thread_message"

// UserSnapshot is a point in time copy of a user's identity. Snapshots are
// embedded in log documents so that transcripts stay renderable after the
// user changes name or avatar.
type UserSnapshot struct {
	ID            string `json:"id" bson:"id"`
	Name          string `json:"name" bson:"name"`
	Discriminator string `json:"discriminator" bson:"discriminator"`
	AvatarURL     string `json:"avatar_url" bson:"avatar_url"`
	Mod           bool   `json:"mod" bson:"mod"`
}

// Attachment is a file attached to a relayed message.
type Attachment struct {
	ID       string `json:"id" bson:"id"`
	Filename string `json:"filename" bson:"filename"`
	IsImage  bool   `json:"is_image" bson:"is_image"`
	Size     int    `json:"size" bson:"size"`
	URL      string `json:"url" bson:"url"`
}

// LogMessage is one message in a transcript. Messages are append only; they
// are never mutated or removed once recorded.
type LogMessage struct {
	Timestamp   custom.Datetime `json:"timestamp" bson:"timestamp"`
	MessageID   string          `json:"message_id" bson:"message_id"`
	Author      UserSnapshot    `json:"author" bson:"author"`
	Content     string          `json:"content" bson:"content"`
	Type        string          `json:"type" bson:"type"`
	Attachments []Attachment    `json:"attachments" bson:"attachments"`
}

// LogEntry is the durable transcript of one discussion channel. It is
// retrievable by its key for as long as the document exists, including after
// the channel itself has been deleted.
type LogEntry struct {
	// ID is the document ID. It carries the same value as Key.
	ID string `json:"-" bson:"_id"`

	// Key is the opaque retrieval key for the transcript.
	Key string `json:"key" bson:"key"`

	// Open is whether the discussion channel is still live. It flips to
	// false exactly once, at close.
	Open bool `json:"open" bson:"open"`

	// CreatedAt is when the log was opened.
	CreatedAt custom.Datetime `json:"created_at" bson:"created_at"`

	// ClosedAt is when the log was closed. It is nil while the log is open.
	ClosedAt *custom.Datetime `json:"closed_at" bson:"closed_at"`

	// ChannelID is the ID of the discussion channel being transcribed.
	ChannelID string `json:"channel_id" bson:"channel_id"`

	// GuildID is the ID of the guild the channel lives in.
	GuildID string `json:"guild_id" bson:"guild_id"`

	// BotID is the ID of the bot user that recorded the transcript.
	BotID string `json:"bot_id" bson:"bot_id"`

	// Recipient is the submitter the discussion is about.
	Recipient UserSnapshot `json:"recipient" bson:"recipient"`

	// Creator is the identity that opened the discussion.
	Creator UserSnapshot `json:"creator" bson:"creator"`

	// Closer is the moderator that closed the discussion. It is nil while
	// the log is open.
	Closer *UserSnapshot `json:"closer" bson:"closer"`

	// CloseMessage is the resolution message recorded at close.
	CloseMessage string `json:"close_message,omitempty" bson:"close_message,omitempty"`

	// Messages is the ordered transcript, in arrival order.
	Messages []LogMessage `json:"messages" bson:"messages"`
}
