package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/gavel/pkg/dataaccess"
	"github.com/Jacobbrewer1/gavel/pkg/entities"
	"github.com/Jacobbrewer1/gavel/pkg/messages"
)

const (
	// BanappealCmdName is the command for configuring the appeal workflow.
	BanappealCmdName = "banappeal"

	// CategoryCmdName is the sub command for the discussion category.
	CategoryCmdName = "category"

	// QuestionsCmdName is the sub command group for the question list.
	QuestionsCmdName = "questions"

	// ListCmdName lists the current questions.
	ListCmdName = "list"

	// SetListCmdName replaces the question list.
	SetListCmdName = "setlist"

	// AddCmdName appends a question.
	AddCmdName = "add"

	// RemoveCmdName removes a question by index.
	RemoveCmdName = "remove"

	// AcceptCmdName resolves the appeal in the current channel as accepted.
	AcceptCmdName = "accept"

	// DenyCmdName resolves the appeal in the current channel as rejected.
	DenyCmdName = "deny"
)

var (
	// banappealCmd is the command for configuring the appeal workflow.
	banappealCmd = &discordgo.ApplicationCommand{
		Name:        BanappealCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Configure the ban appeal workflow.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        CategoryCmdName,
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "View the appeal discussion category, or set a new one.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "category",
						Type:        discordgo.ApplicationCommandOptionChannel,
						Description: "The category to create appeal channels under.",
						Required:    false,
					},
				},
			},
			{
				Name:        QuestionsCmdName,
				Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
				Description: "Manage the appeal form questions.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        ListCmdName,
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Description: "List the current appeal questions.",
					},
					{
						Name:        SetListCmdName,
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Description: "Replace the question list.",
						Options: []*discordgo.ApplicationCommandOption{
							{
								Name:        "questions",
								Type:        discordgo.ApplicationCommandOptionString,
								Description: "The new questions, separated by |.",
								Required:    true,
							},
						},
					},
					{
						Name:        AddCmdName,
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Description: "Add a question to the list.",
						Options: []*discordgo.ApplicationCommandOption{
							{
								Name:        "question",
								Type:        discordgo.ApplicationCommandOptionString,
								Description: "The question to add.",
								Required:    true,
							},
						},
					},
					{
						Name:        RemoveCmdName,
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Description: "Remove the question at an index (starting from 1).",
						Options: []*discordgo.ApplicationCommandOption{
							{
								Name:        "index",
								Type:        discordgo.ApplicationCommandOptionInteger,
								Description: "The 1-based index of the question to remove.",
								Required:    true,
							},
						},
					},
				},
			},
		},
	}

	// acceptCmd resolves the appeal bound to the invoking channel as
	// accepted.
	acceptCmd = &discordgo.ApplicationCommand{
		Name:        AcceptCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Accept the ban appeal discussed in this channel.",
	}

	// denyCmd resolves the appeal bound to the invoking channel as rejected.
	denyCmd = &discordgo.ApplicationCommand{
		Name:        DenyCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Deny the ban appeal discussed in this channel.",
	}

	// applicationCommands is every command the bot registers.
	applicationCommands = []*discordgo.ApplicationCommand{
		banappealCmd,
		acceptCmd,
		denyCmd,
	}
)

func banappealCmdController(a IApp, i *discordgo.InteractionCreate) (commandProcessor, error) {
	// Ensure the user is an administrator.
	if i.Member.Permissions&discordgo.PermissionAdministrator != discordgo.PermissionAdministrator {
		if err := respondEphemeral(a, i, "You must be an administrator to use this command"); err != nil {
			return nil, fmt.Errorf("error responding to interaction: %w", err)
		}
		return nil, nil
	}

	// Extract the sub command.
	subCmd := i.ApplicationCommandData().Options[0]

	switch subCmd.Name {
	case CategoryCmdName:
		return categoryCmdProcessor, nil
	case QuestionsCmdName:
		switch subCmd.Options[0].Name {
		case ListCmdName:
			return questionsListCmdProcessor, nil
		case SetListCmdName:
			return questionsSetListCmdProcessor, nil
		case AddCmdName:
			return questionsAddCmdProcessor, nil
		case RemoveCmdName:
			return questionsRemoveCmdProcessor, nil
		default:
			return nil, fmt.Errorf("unhandled questions sub command %s", subCmd.Options[0].Name)
		}
	default:
		return nil, fmt.Errorf("unhandled sub command %s", subCmd.Name)
	}
}

// categoryCmdProcessor views or sets the appeal discussion category.
func categoryCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	opts := i.ApplicationCommandData().Options[0].Options

	cd := a.ConfigDal(context.Background())

	if len(opts) == 0 {
		cfg, err := cd.GetConfig()
		if err != nil {
			return fmt.Errorf("error getting config: %w", err)
		}

		current := cfg.Category
		if current == "" {
			current = "not set"
		}
		return respondEphemeral(a, i, fmt.Sprintf("Current category: %s", current))
	}

	channel := opts[0].ChannelValue(a.Session())
	if channel.Type != discordgo.ChannelTypeGuildCategory {
		return respondEphemeral(a, i, "You must provide a category channel.")
	}

	if err := cd.SetCategory(channel.ID); err != nil {
		return fmt.Errorf("error setting category: %w", err)
	}

	return respondEphemeral(a, i, messages.CategorySet)
}

// questionsListCmdProcessor lists the configured questions, falling back to
// the defaults when none are set.
func questionsListCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	cfg, err := a.ConfigDal(context.Background()).GetConfig()
	if err != nil {
		return fmt.Errorf("error getting config: %w", err)
	}

	if len(cfg.Questions) == 0 {
		var sb strings.Builder
		sb.WriteString("No questions have been set. Default questions will be used:")
		for idx, q := range entities.DefaultQuestions {
			fmt.Fprintf(&sb, "\n%d. %s", idx+1, q)
		}
		return respondEphemeral(a, i, sb.String())
	}

	var sb strings.Builder
	sb.WriteString("Current questions:")
	for idx, q := range cfg.Questions {
		fmt.Fprintf(&sb, "\n%d. %s", idx+1, q)
	}
	return respondEphemeral(a, i, sb.String())
}

// questionsSetListCmdProcessor replaces the question list.
func questionsSetListCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	raw := i.ApplicationCommandData().Options[0].Options[0].Options[0].StringValue()

	questions := make([]string, 0)
	for _, q := range strings.Split(raw, "|") {
		if q = strings.TrimSpace(q); q != "" {
			questions = append(questions, q)
		}
	}

	if err := a.ConfigDal(context.Background()).SetQuestions(questions); err != nil {
		return fmt.Errorf("error setting questions: %w", err)
	}

	return respondEphemeral(a, i, messages.QuestionsSet)
}

// questionsAddCmdProcessor appends a question to the list.
func questionsAddCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	question := i.ApplicationCommandData().Options[0].Options[0].Options[0].StringValue()

	cd := a.ConfigDal(context.Background())

	cfg, err := cd.GetConfig()
	if err != nil {
		return fmt.Errorf("error getting config: %w", err)
	}

	cfg.AddQuestion(question)

	if err := cd.SetQuestions(cfg.Questions); err != nil {
		return fmt.Errorf("error setting questions: %w", err)
	}

	return respondEphemeral(a, i, messages.QuestionAdded)
}

// questionsRemoveCmdProcessor removes the question at a 1-based index.
func questionsRemoveCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	index := int(i.ApplicationCommandData().Options[0].Options[0].Options[0].IntValue())

	cd := a.ConfigDal(context.Background())

	cfg, err := cd.GetConfig()
	if err != nil {
		return fmt.Errorf("error getting config: %w", err)
	}

	if err := cfg.RemoveQuestion(index); err != nil {
		if errors.Is(err, entities.ErrOutOfRange) {
			return respondEphemeral(a, i, messages.ErrInvalidQuestionIndex)
		}
		return fmt.Errorf("error removing question: %w", err)
	}

	if err := cd.SetQuestions(cfg.Questions); err != nil {
		return fmt.Errorf("error setting questions: %w", err)
	}

	return respondEphemeral(a, i, messages.QuestionRemoved)
}

func acceptCmdController(a IApp, i *discordgo.InteractionCreate) (commandProcessor, error) {
	if i.Member.Permissions&discordgo.PermissionBanMembers != discordgo.PermissionBanMembers {
		if err := respondEphemeral(a, i, "You must be able to ban members to resolve appeals"); err != nil {
			return nil, fmt.Errorf("error responding to interaction: %w", err)
		}
		return nil, nil
	}
	return acceptCmdProcessor, nil
}

func denyCmdController(a IApp, i *discordgo.InteractionCreate) (commandProcessor, error) {
	if i.Member.Permissions&discordgo.PermissionBanMembers != discordgo.PermissionBanMembers {
		if err := respondEphemeral(a, i, "You must be able to ban members to resolve appeals"); err != nil {
			return nil, fmt.Errorf("error responding to interaction: %w", err)
		}
		return nil, nil
	}
	return denyCmdProcessor, nil
}

func acceptCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	err := acceptAppeal(context.Background(), a, i.ChannelID, i.Member.User)
	switch {
	case errors.Is(err, dataaccess.ErrAppealNotFound):
		return respondEphemeral(a, i, messages.ErrNoAppealLinked)
	case errors.Is(err, dataaccess.ErrAlreadyHandled):
		return respondEphemeral(a, i, messages.ErrAppealAlreadyHandled)
	case errors.Is(err, ErrNotBanned):
		return respond(a, i, messages.ErrUserNotBanned)
	case err != nil:
		return err
	}

	// The discussion channel is gone by now; the response is best effort.
	if err := respond(a, i, "Appeal accepted."); err != nil {
		a.Log().Debug("Could not respond in resolved channel")
	}
	return nil
}

func denyCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	err := denyAppeal(context.Background(), a, i.ChannelID, i.Member.User)
	switch {
	case errors.Is(err, dataaccess.ErrAppealNotFound):
		return respondEphemeral(a, i, messages.ErrNoAppealLinked)
	case errors.Is(err, dataaccess.ErrAlreadyHandled):
		return respondEphemeral(a, i, messages.ErrAppealAlreadyHandled)
	case err != nil:
		return err
	}

	// The discussion channel is gone by now; the response is best effort.
	if err := respond(a, i, "Appeal denied."); err != nil {
		a.Log().Debug("Could not respond in resolved channel")
	}
	return nil
}
