package main

import (
	"errors"
	"fmt"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/gavel/cmd/bot/config"
	"github.com/Jacobbrewer1/gavel/pkg/entities"
)

// ErrNotBanned is returned when a ban removal finds no ban to remove.
var ErrNotBanned = errors.New("user is not banned")

func (a *App) BotUser() *discordgo.User {
	return a.s.State.User
}

func (a *App) FetchUser(id string) (*discordgo.User, error) {
	user, err := a.s.User(id)
	if err != nil {
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	return user, nil
}

func (a *App) GuildOwner() (*discordgo.User, error) {
	guild, err := a.s.Guild(config.GuildId)
	if err != nil {
		return nil, fmt.Errorf("error getting guild: %w", err)
	}
	return a.FetchUser(guild.OwnerID)
}

// CreateAppealChannel creates a discussion channel under the appeal category.
// The overwrites are constructed explicitly rather than synced from the
// category: @everyone is denied, the bot and the moderator role can read and
// write.
func (a *App) CreateAppealChannel(name string, categoryID string) (*discordgo.Channel, error) {
	overwrites := []*discordgo.PermissionOverwrite{
		// Deny @everyone from seeing the appeal.
		{
			ID:    config.GuildId,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: 0,
			Deny:  discordgo.PermissionAll,
		},
		// The bot needs to post the summary and relay messages.
		{
			ID:    a.BotUser().ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionAllText,
			Deny:  discordgo.PermissionMentionEveryone,
		},
	}

	// Grant the moderator role when one is configured.
	if config.ModRoleId != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    config.ModRoleId,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: discordgo.PermissionAllText,
			Deny:  discordgo.PermissionMentionEveryone,
		})
	}

	channel, err := a.s.GuildChannelCreateComplex(config.GuildId, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                "Ban appeal discussion",
		PermissionOverwrites: overwrites,
		ParentID:             categoryID,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating appeal channel: %w", err)
	}
	return channel, nil
}

func (a *App) DeleteChannel(id string) error {
	if _, err := a.s.ChannelDelete(id); err != nil {
		return fmt.Errorf("error deleting channel: %w", err)
	}
	return nil
}

func (a *App) SendEmbed(channelID string, embed *discordgo.MessageEmbed) error {
	if _, err := a.s.ChannelMessageSendEmbed(channelID, embed); err != nil {
		return fmt.Errorf("error sending embed: %w", err)
	}
	return nil
}

func (a *App) IsBanned(userID string) (bool, error) {
	_, err := a.s.GuildBan(config.GuildId, userID)
	if err != nil {
		if isUnknownBan(err) {
			return false, nil
		}
		return false, fmt.Errorf("error getting ban: %w", err)
	}
	return true, nil
}

func (a *App) RemoveBan(userID string) error {
	if err := a.s.GuildBanDelete(config.GuildId, userID); err != nil {
		if isUnknownBan(err) {
			return ErrNotBanned
		}
		return fmt.Errorf("error removing ban: %w", err)
	}
	return nil
}

// isUnknownBan reports whether the error is the Discord API telling us that
// no ban exists for the user.
func isUnknownBan(err error) bool {
	er := new(discordgo.RESTError)
	if !errors.As(err, &er) || er.Message == nil {
		return false
	}
	return er.Message.Code == discordgo.ErrCodeUnknownBan || er.Message.Code == discordgo.ErrCodeGeneralError
}

// snapshotUser takes a point in time snapshot of a user's identity for
// embedding in log documents.
func snapshotUser(u *discordgo.User, mod bool) entities.UserSnapshot {
	return entities.UserSnapshot{
		ID:            u.ID,
		Name:          u.Username,
		Discriminator: u.Discriminator,
		AvatarURL:     u.AvatarURL(""),
		Mod:           mod,
	}
}
