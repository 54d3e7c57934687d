package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/gavel/pkg/dataaccess"
	"github.com/Jacobbrewer1/gavel/pkg/entities"
	"github.com/Jacobbrewer1/gavel/pkg/messages"
	"github.com/stretchr/testify/require"
)

func testAppeal(a *fakeApp, userID string) *entities.Appeal {
	a.mu.Lock()
	a.users[userID] = &discordgo.User{ID: userID, Username: "appellant", Discriminator: "0042"}
	a.banned[userID] = true
	a.mu.Unlock()

	return a.store.addAppeal(&entities.Appeal{
		UserID:    userID,
		CreatedAt: time.Now().UnixMilli(),
		Questions: []entities.AppealQuestion{
			{Question: "Who banned you?", Answer: "A moderator did."},
			{Question: "Are you sorry?", Answer: "Yes, very much so."},
		},
		Status: entities.AppealStatusPolling,
	})
}

func TestProvisionAppeal(t *testing.T) {
	a := newFakeApp(t)
	appeal := testAppeal(a, "42")
	cfg := &entities.AppealConfig{Category: "cat-1"}

	require.NoError(t, provisionAppeal(context.Background(), a, appeal, cfg))

	got := a.appeal(appeal.ID)
	require.Equal(t, entities.AppealStatusPending, got.Status)
	require.Equal(t, "chan-1", got.Channel)
	require.True(t, a.channels["chan-1"])

	entry := a.logFor("chan-1")
	require.NotNil(t, entry)
	require.True(t, entry.Open)
	require.Equal(t, "42", entry.Recipient.ID)
	require.False(t, entry.Recipient.Mod)
	require.Empty(t, entry.Messages)

	// The summary embed lands in the new channel.
	require.Len(t, a.embeds["chan-1"], 1)
	require.Equal(t, appealEmbedTitle, a.embeds["chan-1"][0].Title)
}

func TestProvisionAppealIdempotent(t *testing.T) {
	a := newFakeApp(t)
	appeal := testAppeal(a, "42")
	cfg := &entities.AppealConfig{Category: "cat-1"}

	// Two overlapping cycles pick up the same queued appeal. The conditional
	// claim lets exactly one of them provision it.
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cp := *appeal
			errs <- provisionAppeal(context.Background(), a, &cp, cfg)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.Equal(t, 1, a.channelsCreated)
	require.Len(t, a.store.logs, 1)
	require.Equal(t, entities.AppealStatusPending, a.appeal(appeal.ID).Status)
}

func TestProvisionAppealLogUnavailable(t *testing.T) {
	a := newFakeApp(t)
	a.logDal.failCreate = true
	appeal := testAppeal(a, "42")

	require.NoError(t, provisionAppeal(context.Background(), a, appeal, &entities.AppealConfig{Category: "cat-1"}))

	// The discussion still opens; the summary just has no log link.
	require.Equal(t, entities.AppealStatusPending, a.appeal(appeal.ID).Status)
	require.True(t, a.channels["chan-1"])
	require.Len(t, a.embeds["chan-1"], 1)
	require.Empty(t, a.embeds["chan-1"][0].URL)
}

func TestAcceptAppeal(t *testing.T) {
	a := newFakeApp(t)
	appeal := testAppeal(a, "42")
	require.NoError(t, provisionAppeal(context.Background(), a, appeal, &entities.AppealConfig{Category: "cat-1"}))

	closer := &discordgo.User{ID: "mod", Username: "mod", Discriminator: "0007"}
	require.NoError(t, acceptAppeal(context.Background(), a, appeal.Channel, closer))

	got := a.appeal(appeal.ID)
	require.Equal(t, entities.AppealStatusAccepted, got.Status)
	require.False(t, a.banned["42"])
	require.False(t, a.channels[appeal.Channel])

	entry := a.logFor(appeal.Channel)
	require.NotNil(t, entry)
	require.False(t, entry.Open)
	require.Equal(t, messages.AppealAccepted, entry.CloseMessage)
	require.NotNil(t, entry.ClosedAt)
	require.Equal(t, "mod", entry.Closer.ID)
}

func TestAcceptAppealNotLinked(t *testing.T) {
	a := newFakeApp(t)

	err := acceptAppeal(context.Background(), a, "chan-none", &discordgo.User{ID: "mod"})
	require.ErrorIs(t, err, dataaccess.ErrAppealNotFound)
}

func TestAcceptAppealAlreadyHandled(t *testing.T) {
	a := newFakeApp(t)
	appeal := testAppeal(a, "42")
	require.NoError(t, provisionAppeal(context.Background(), a, appeal, &entities.AppealConfig{Category: "cat-1"}))

	closer := &discordgo.User{ID: "mod", Username: "mod", Discriminator: "0007"}
	require.NoError(t, acceptAppeal(context.Background(), a, appeal.Channel, closer))

	// The resolved appeal keeps its channel link, so a second resolution on
	// the same channel finds it and refuses.
	err := acceptAppeal(context.Background(), a, appeal.Channel, closer)
	require.ErrorIs(t, err, dataaccess.ErrAlreadyHandled)
	require.Equal(t, entities.AppealStatusAccepted, a.appeal(appeal.ID).Status)

	err = denyAppeal(context.Background(), a, appeal.Channel, closer)
	require.ErrorIs(t, err, dataaccess.ErrAlreadyHandled)
	require.Equal(t, entities.AppealStatusAccepted, a.appeal(appeal.ID).Status)
}

func TestAcceptAppealNotBanned(t *testing.T) {
	a := newFakeApp(t)
	appeal := testAppeal(a, "42")
	require.NoError(t, provisionAppeal(context.Background(), a, appeal, &entities.AppealConfig{Category: "cat-1"}))

	a.mu.Lock()
	delete(a.banned, "42")
	a.mu.Unlock()

	err := acceptAppeal(context.Background(), a, appeal.Channel, &discordgo.User{ID: "mod"})
	require.ErrorIs(t, err, ErrNotBanned)

	// The appeal is already accepted at that point; the discussion is left
	// open for the moderators.
	require.Equal(t, entities.AppealStatusAccepted, a.appeal(appeal.ID).Status)
	require.True(t, a.channels[appeal.Channel])
	require.True(t, a.logFor(appeal.Channel).Open)
}

func TestDenyAppeal(t *testing.T) {
	a := newFakeApp(t)
	appeal := testAppeal(a, "42")
	require.NoError(t, provisionAppeal(context.Background(), a, appeal, &entities.AppealConfig{Category: "cat-1"}))

	closer := &discordgo.User{ID: "mod", Username: "mod", Discriminator: "0007"}
	require.NoError(t, denyAppeal(context.Background(), a, appeal.Channel, closer))

	got := a.appeal(appeal.ID)
	require.Equal(t, entities.AppealStatusRejected, got.Status)
	require.True(t, a.banned["42"], "deny must not lift the ban")
	require.False(t, a.channels[appeal.Channel])

	entry := a.logFor(appeal.Channel)
	require.False(t, entry.Open)
	require.Equal(t, messages.AppealRejected, entry.CloseMessage)
}

func TestLogKeyRoundTrip(t *testing.T) {
	a := newFakeApp(t)
	appeal := testAppeal(a, "42")
	require.NoError(t, provisionAppeal(context.Background(), a, appeal, &entities.AppealConfig{Category: "cat-1"}))

	key := a.logFor("chan-1").Key
	require.NotEmpty(t, key)

	require.NoError(t, denyAppeal(context.Background(), a, "chan-1", &discordgo.User{ID: "mod"}))

	// The key stays valid after the close; that is what the log viewer uses.
	entry, err := a.logDal.GetLogByKey(key)
	require.NoError(t, err)
	require.Equal(t, key, entry.Key)
	require.False(t, entry.Open)
}

// TestAppealLifecycle walks one appeal from submission to rejection.
func TestAppealLifecycle(t *testing.T) {
	a := newFakeApp(t)
	ctx := context.Background()

	appeal := testAppeal(a, "42")
	require.NoError(t, a.ConfigDal(ctx).SetCategory("cat-1"))

	p := newPoller(a, pollInterval)
	p.cycle(ctx)

	got := a.appeal(appeal.ID)
	require.Equal(t, entities.AppealStatusPending, got.Status)
	require.Equal(t, "chan-1", got.Channel)

	entry := a.logFor("chan-1")
	require.True(t, entry.Open)
	require.Equal(t, "42", entry.Recipient.ID)
	require.Empty(t, entry.Messages)

	// A second cycle finds nothing left to provision.
	p.cycle(ctx)
	require.Equal(t, 1, a.channelsCreated)

	// Three messages arrive in the discussion.
	for i, text := range []string{"hello", "any context?", "thanks"} {
		author := &discordgo.User{ID: "42", Username: "appellant", Discriminator: "0042"}
		if i == 1 {
			author = &discordgo.User{ID: "mod", Username: "mod", Discriminator: "0007"}
		}
		require.NoError(t, relayMessage(ctx, a, &discordgo.Message{
			ID:        string(rune('a' + i)),
			ChannelID: "chan-1",
			Author:    author,
			Content:   text,
			Timestamp: time.Now(),
		}))
	}

	require.NoError(t, denyAppeal(ctx, a, "chan-1", &discordgo.User{ID: "mod", Username: "mod", Discriminator: "0007"}))

	require.Equal(t, entities.AppealStatusRejected, a.appeal(appeal.ID).Status)
	require.False(t, a.channels["chan-1"])

	entry = a.logFor("chan-1")
	require.False(t, entry.Open)
	require.Equal(t, messages.AppealRejected, entry.CloseMessage)
	require.Len(t, entry.Messages, 3)
	require.Equal(t, "hello", entry.Messages[0].Content)
	require.Equal(t, "any context?", entry.Messages[1].Content)
	require.True(t, entry.Messages[1].Author.Mod)
	require.Equal(t, "thanks", entry.Messages[2].Content)
	require.False(t, entry.Messages[2].Author.Mod)
}
