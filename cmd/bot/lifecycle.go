package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/gavel/cmd/bot/config"
	"github.com/Jacobbrewer1/gavel/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/gavel/pkg/dataaccess"
	"github.com/Jacobbrewer1/gavel/pkg/entities"
	"github.com/Jacobbrewer1/gavel/pkg/logging"
	"github.com/Jacobbrewer1/gavel/pkg/messages"
)

const (
	// appealEmbedTitle is the title of the summary embed posted into a new
	// appeal channel. The relay recognises the summary by this title.
	appealEmbedTitle = "Ban Appeal"

	// colorMain is the embed colour for informational messages.
	colorMain = 0x7289DA

	// colorError is the embed colour for resolution messages.
	colorError = 0xE74C3C
)

// provisionAppeal turns a queued appeal into an active discussion: it claims
// the appeal, creates the discussion channel, opens the transcript log and
// posts the summary.
//
// The status flip to pending happens before any external side effect. It is a
// conditional write, so when two poll cycles overlap on the same appeal only
// one of them provisions it.
func provisionAppeal(ctx context.Context, a IApp, appeal *entities.Appeal, cfg *entities.AppealConfig) error {
	dal := a.AppealDal(ctx)

	if err := dal.TransitionStatus(appeal.ID, entities.AppealStatusPolling, entities.AppealStatusPending); err != nil {
		if errors.Is(err, dataaccess.ErrAlreadyHandled) {
			// Another cycle claimed the appeal first.
			return nil
		}
		return fmt.Errorf("error claiming appeal: %w", err)
	}
	appeal.Status = entities.AppealStatusPending

	user, err := a.FetchUser(appeal.UserID)
	if err != nil {
		return fmt.Errorf("error fetching submitter: %w", err)
	}

	a.Log().Info("New appeal",
		slog.String(logging.KeyUser, user.ID),
		slog.String(logging.KeyAppeal, appeal.ID.Hex()),
	)

	channel, err := a.CreateAppealChannel(appeal.ChannelName(), cfg.Category)
	if err != nil {
		return fmt.Errorf("error creating discussion channel: %w", err)
	}

	if err := dal.SetChannel(appeal.ID, channel.ID); err != nil {
		return fmt.Errorf("error linking channel to appeal: %w", err)
	}
	appeal.Channel = channel.ID

	// The log is opened in the name of the guild owner where possible.
	creator := a.BotUser()
	if owner, err := a.GuildOwner(); err == nil {
		creator = owner
	} else {
		a.Log().Warn("Could not fetch guild owner, opening log as the bot",
			slog.String(logging.KeyError, err.Error()))
	}

	key, err := a.LogDal(ctx).CreateLog(&entities.LogEntry{
		ChannelID: channel.ID,
		GuildID:   config.GuildId,
		BotID:     a.BotUser().ID,
		Recipient: snapshotUser(user, false),
		Creator:   snapshotUser(creator, true),
	})
	if err != nil {
		// The channel already exists and is linked; deleting it again would
		// be worse than a transcript-less discussion. Leave the appeal
		// pending and carry on without a log link.
		a.Log().Warn("Could not open transcript log for appeal",
			slog.String(logging.KeyAppeal, appeal.ID.Hex()),
			slog.String(logging.KeyError, err.Error()),
		)
	}

	if err := a.SendEmbed(channel.ID, appealSummaryEmbed(appeal, user, key)); err != nil {
		return fmt.Errorf("error posting appeal summary: %w", err)
	}

	monitoring.TotalAppealsProvisioned.Inc()
	return nil
}

// appealSummaryEmbed builds the summary posted into a fresh appeal channel.
func appealSummaryEmbed(appeal *entities.Appeal, user *discordgo.User, logKey string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       appealEmbedTitle,
		Color:       colorMain,
		Timestamp:   time.UnixMilli(appeal.CreatedAt).UTC().Format(time.RFC3339),
		Description: fmt.Sprintf("User created at: <t:%d:F>", snowflakeCreatedAt(user.ID).Unix()),
		Author: &discordgo.MessageEmbedAuthor{
			Name:    fmt.Sprintf("%s#%s", user.Username, user.Discriminator),
			IconURL: user.AvatarURL(""),
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("User ID: %s", user.ID),
		},
	}

	if logKey != "" {
		embed.URL = logURL(logKey)
	}

	for _, q := range appeal.Questions {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  q.Question,
			Value: q.Answer,
		})
	}
	return embed
}

// acceptAppeal resolves the appeal bound to the given channel as accepted and
// lifts the ban. Returns dataaccess.ErrAppealNotFound when no appeal is bound
// to the channel, dataaccess.ErrAlreadyHandled when the appeal is not
// pending, and ErrNotBanned when there was no ban to lift; in the last case
// the appeal stays accepted but the discussion is left open.
func acceptAppeal(ctx context.Context, a IApp, channelID string, closer *discordgo.User) error {
	dal := a.AppealDal(ctx)

	appeal, err := dal.GetAppealByChannel(channelID)
	if err != nil {
		return err
	}
	if appeal.Status != entities.AppealStatusPending {
		return dataaccess.ErrAlreadyHandled
	}

	if err := dal.TransitionStatus(appeal.ID, entities.AppealStatusPending, entities.AppealStatusAccepted); err != nil {
		return err
	}

	if err := a.RemoveBan(appeal.UserID); err != nil {
		return err
	}

	monitoring.TotalAppealsResolved.WithLabelValues(string(entities.AppealStatusAccepted)).Inc()
	return closeAppeal(ctx, a, appeal, closer, messages.AppealAccepted)
}

// denyAppeal resolves the appeal bound to the given channel as rejected.
// Preconditions are as for acceptAppeal; no external ban action is taken.
func denyAppeal(ctx context.Context, a IApp, channelID string, closer *discordgo.User) error {
	dal := a.AppealDal(ctx)

	appeal, err := dal.GetAppealByChannel(channelID)
	if err != nil {
		return err
	}
	if appeal.Status != entities.AppealStatusPending {
		return dataaccess.ErrAlreadyHandled
	}

	if err := dal.TransitionStatus(appeal.ID, entities.AppealStatusPending, entities.AppealStatusRejected); err != nil {
		return err
	}

	monitoring.TotalAppealsResolved.WithLabelValues(string(entities.AppealStatusRejected)).Inc()
	return closeAppeal(ctx, a, appeal, closer, messages.AppealRejected)
}

// closeAppeal finalizes the transcript log, posts the resolution summary and
// deletes the discussion channel. A failed log finalization does not block
// the close; the summary carries a placeholder instead of a link.
func closeAppeal(ctx context.Context, a IApp, appeal *entities.Appeal, closer *discordgo.User, message string) error {
	entry, err := a.LogDal(ctx).CloseLog(appeal.Channel, snapshotUser(closer, true), message)

	var desc string
	if err != nil {
		a.Log().Warn("Could not finalize transcript log",
			slog.String(logging.KeyChannel, appeal.Channel),
			slog.String(logging.KeyError, err.Error()),
		)
		desc = "Could not resolve log url."
	} else {
		desc = fmt.Sprintf("[`%s`](%s): %s", entry.Key, logURL(entry.Key), message)
	}

	if config.LogChannelId != "" {
		title := fmt.Sprintf("%s Ban Appeal", appeal.UserID)
		if user, err := a.FetchUser(appeal.UserID); err == nil {
			title = fmt.Sprintf("%s#%s (`%s`) Ban Appeal", user.Username, user.Discriminator, user.ID)
		}

		embed := &discordgo.MessageEmbed{
			Title:       title,
			Description: desc,
			Color:       colorError,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
			Footer: &discordgo.MessageEmbedFooter{
				Text:    fmt.Sprintf("Handled by %s#%s (%s)", closer.Username, closer.Discriminator, closer.ID),
				IconURL: closer.AvatarURL(""),
			},
		}
		if err := a.SendEmbed(config.LogChannelId, embed); err != nil {
			a.Log().Warn("Could not post resolution summary",
				slog.String(logging.KeyError, err.Error()))
		}
	}

	return a.DeleteChannel(appeal.Channel)
}

// logURL builds the external link for a transcript key. When no viewer URL is
// configured the link falls back to the monitoring server's path.
func logURL(key string) string {
	base := strings.Trim(config.LogUrl, "/")
	prefix := strings.Trim(config.LogUrlPrefix, "/")
	if strings.EqualFold(prefix, "NONE") {
		prefix = ""
	}

	url := base
	if prefix != "" {
		url += "/" + prefix
	}
	return url + "/" + key
}

// snowflakeCreatedAt extracts the creation time encoded in a Discord ID.
func snowflakeCreatedAt(id string) time.Time {
	t, err := discordgo.SnowflakeTimestamp(id)
	if err != nil {
		return time.Time{}
	}
	return t
}
