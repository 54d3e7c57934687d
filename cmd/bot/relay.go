package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/gavel/pkg/custom"
	"github.com/Jacobbrewer1/gavel/pkg/dataaccess"
	"github.com/Jacobbrewer1/gavel/pkg/entities"
	"github.com/Jacobbrewer1/gavel/pkg/logging"
)

// messageCreateHandler mirrors every message in an appeal channel into the
// channel's transcript log. Channels without an appeal are not instrumented
// and are ignored.
func messageCreateHandler(a IApp) func(s *discordgo.Session, m *discordgo.MessageCreate) {
	return func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil {
			return
		}

		ctx := context.Background()
		if err := relayMessage(ctx, a, m.Message); err != nil {
			a.Log().Warn("Error relaying message into transcript",
				slog.String(logging.KeyChannel, m.ChannelID),
				slog.String(logging.KeyError, err.Error()),
			)
		}
	}
}

// relayMessage appends one observed message to the transcript of its appeal
// channel. Messages in channels with no linked appeal are ignored; everything
// in an appeal channel is archived, with the bot's own summary embed rendered
// as a plain text rendition of the appeal.
func relayMessage(ctx context.Context, a IApp, m *discordgo.Message) error {
	appeal, err := a.AppealDal(ctx).GetAppealByChannel(m.ChannelID)
	if errors.Is(err, dataaccess.ErrAppealNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	content := m.Content
	if len(m.Embeds) > 0 && m.Embeds[0].Title == appealEmbedTitle {
		content = summaryTranscript(appeal, m.Embeds[0])
	}

	msg := &entities.LogMessage{
		Timestamp:   custom.Datetime(m.Timestamp),
		MessageID:   m.ID,
		Author:      snapshotUser(m.Author, m.Author.ID != appeal.UserID),
		Content:     content,
		Type:        entities.LogMessageTypeThread,
		Attachments: logAttachments(m.Attachments),
	}

	if _, err := a.LogDal(ctx).AppendMessage(m.ChannelID, msg); err != nil {
		return fmt.Errorf("error appending to transcript: %w", err)
	}
	return nil
}

// summaryTranscript renders the appeal summary embed as the plain text first
// line of a transcript.
func summaryTranscript(appeal *entities.Appeal, embed *discordgo.MessageEmbed) string {
	author := ""
	if embed.Author != nil {
		author = embed.Author.Name
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "New ban appeal from %s - %s", author, appeal.UserID)
	for _, q := range appeal.Questions {
		fmt.Fprintf(&sb, "\n\n**Q:** %s\n> **A:** %s", q.Question, q.Answer)
	}
	return sb.String()
}

func logAttachments(attachments []*discordgo.MessageAttachment) []entities.Attachment {
	out := make([]entities.Attachment, 0, len(attachments))
	for _, att := range attachments {
		out = append(out, entities.Attachment{
			ID:       att.ID,
			Filename: att.Filename,
			IsImage:  att.Width > 0,
			Size:     att.Size,
			URL:      att.URL,
		})
	}
	return out
}
