package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/gavel/pkg/custom"
	"github.com/Jacobbrewer1/gavel/pkg/dataaccess"
	"github.com/Jacobbrewer1/gavel/pkg/entities"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeStore is an in-memory stand-in for the document store. Mutations take
// the store lock, so conditional updates behave like the per-document
// compare-and-set the real store provides.
type fakeStore struct {
	mu      sync.Mutex
	appeals map[primitive.ObjectID]*entities.Appeal
	config  *entities.AppealConfig
	logs    map[string]*entities.LogEntry
	nextKey int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		appeals: make(map[primitive.ObjectID]*entities.Appeal),
		logs:    make(map[string]*entities.LogEntry),
	}
}

func (s *fakeStore) addAppeal(appeal *entities.Appeal) *entities.Appeal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if appeal.ID.IsZero() {
		appeal.ID = primitive.NewObjectID()
	}
	s.appeals[appeal.ID] = appeal
	return appeal
}

type fakeAppealDal struct {
	s *fakeStore
}

func (d *fakeAppealDal) SaveAppeal(appeal *entities.Appeal) error {
	d.s.addAppeal(appeal)
	return nil
}

func (d *fakeAppealDal) GetAppealByChannel(channelID string) (*entities.Appeal, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	for _, appeal := range d.s.appeals {
		if appeal.Channel == channelID {
			cp := *appeal
			return &cp, nil
		}
	}
	return nil, dataaccess.ErrAppealNotFound
}

func (d *fakeAppealDal) GetAppealByUser(userID string) (*entities.Appeal, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	for _, appeal := range d.s.appeals {
		if appeal.UserID == userID {
			cp := *appeal
			return &cp, nil
		}
	}
	return nil, dataaccess.ErrAppealNotFound
}

func (d *fakeAppealDal) GetPollingAppeals() ([]*entities.Appeal, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	var out []*entities.Appeal
	for _, appeal := range d.s.appeals {
		if appeal.Status == entities.AppealStatusPolling {
			cp := *appeal
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (d *fakeAppealDal) TransitionStatus(id primitive.ObjectID, from, to entities.AppealStatus) error {
	if !from.CanTransition(to) {
		return fmt.Errorf("illegal status transition %s -> %s", from, to)
	}
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	appeal, ok := d.s.appeals[id]
	if !ok || appeal.Status != from {
		return dataaccess.ErrAlreadyHandled
	}
	appeal.Status = to
	return nil
}

func (d *fakeAppealDal) SetChannel(id primitive.ObjectID, channelID string) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	if appeal, ok := d.s.appeals[id]; ok {
		appeal.Channel = channelID
	}
	return nil
}

type fakeConfigDal struct {
	s *fakeStore
}

func (d *fakeConfigDal) GetConfig() (*entities.AppealConfig, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	if d.s.config == nil {
		return &entities.AppealConfig{}, nil
	}
	cp := *d.s.config
	return &cp, nil
}

func (d *fakeConfigDal) SetCategory(categoryID string) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	if d.s.config == nil {
		d.s.config = &entities.AppealConfig{}
	}
	d.s.config.Category = categoryID
	return nil
}

func (d *fakeConfigDal) SetQuestions(questions []string) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	if d.s.config == nil {
		d.s.config = &entities.AppealConfig{}
	}
	d.s.config.Questions = questions
	return nil
}

type fakeLogDal struct {
	s *fakeStore

	// failCreate makes CreateLog fail, for partial-provision tests.
	failCreate bool
}

func (d *fakeLogDal) CreateLog(entry *entities.LogEntry) (string, error) {
	if d.failCreate {
		return "", fmt.Errorf("log service unavailable")
	}
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	d.s.nextKey++
	key := fmt.Sprintf("%012x", d.s.nextKey)
	entry.ID = key
	entry.Key = key
	entry.Open = true
	entry.CreatedAt = custom.Now()
	if entry.Messages == nil {
		entry.Messages = []entities.LogMessage{}
	}
	d.s.logs[key] = entry
	return key, nil
}

func (d *fakeLogDal) AppendMessage(channelID string, msg *entities.LogMessage) (*entities.LogEntry, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	for _, entry := range d.s.logs {
		if entry.ChannelID == channelID && entry.Open {
			entry.Messages = append(entry.Messages, *msg)
			cp := *entry
			return &cp, nil
		}
	}
	return nil, dataaccess.ErrLogNotFound
}

func (d *fakeLogDal) CloseLog(channelID string, closer entities.UserSnapshot, message string) (*entities.LogEntry, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	for _, entry := range d.s.logs {
		if entry.ChannelID == channelID && entry.Open {
			now := custom.Now()
			entry.Open = false
			entry.ClosedAt = &now
			entry.CloseMessage = message
			entry.Closer = &closer
			cp := *entry
			return &cp, nil
		}
	}
	return nil, dataaccess.ErrLogNotFound
}

func (d *fakeLogDal) GetLogByKey(key string) (*entities.LogEntry, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	if entry, ok := d.s.logs[key]; ok {
		cp := *entry
		return &cp, nil
	}
	return nil, dataaccess.ErrLogNotFound
}

// fakeApp implements IApp against the fake store and a scripted Discord
// surface.
type fakeApp struct {
	l *slog.Logger

	store  *fakeStore
	logDal *fakeLogDal

	mu sync.Mutex

	// users that FetchUser can resolve.
	users map[string]*discordgo.User

	// banned users.
	banned map[string]bool

	// channels that currently exist, by ID.
	channels map[string]bool

	// channelsCreated counts every channel ever created.
	channelsCreated int

	// embeds sent, by channel ID.
	embeds map[string][]*discordgo.MessageEmbed
}

func newFakeApp(t *testing.T) *fakeApp {
	t.Helper()
	store := newFakeStore()
	return &fakeApp{
		l:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		store:    store,
		logDal:   &fakeLogDal{s: store},
		users:    make(map[string]*discordgo.User),
		banned:   make(map[string]bool),
		channels: make(map[string]bool),
		embeds:   make(map[string][]*discordgo.MessageEmbed),
	}
}

func (a *fakeApp) Log() *slog.Logger               { return a.l }
func (a *fakeApp) Session() *discordgo.Session      { return nil }
func (a *fakeApp) AppealDal(_ context.Context) dataaccess.AppealDal {
	return &fakeAppealDal{s: a.store}
}
func (a *fakeApp) ConfigDal(_ context.Context) dataaccess.AppealConfigDal {
	return &fakeConfigDal{s: a.store}
}
func (a *fakeApp) LogDal(_ context.Context) dataaccess.LogDal { return a.logDal }

func (a *fakeApp) BotUser() *discordgo.User {
	return &discordgo.User{ID: "bot", Username: "gavel", Discriminator: "0001"}
}

func (a *fakeApp) FetchUser(id string) (*discordgo.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if u, ok := a.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("unknown user %s", id)
}

func (a *fakeApp) GuildOwner() (*discordgo.User, error) {
	return &discordgo.User{ID: "owner", Username: "owner", Discriminator: "0001"}, nil
}

func (a *fakeApp) CreateAppealChannel(name string, categoryID string) (*discordgo.Channel, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.channelsCreated++
	id := fmt.Sprintf("chan-%d", a.channelsCreated)
	a.channels[id] = true
	return &discordgo.Channel{ID: id, Name: name, ParentID: categoryID}, nil
}

func (a *fakeApp) DeleteChannel(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.channels[id] {
		return fmt.Errorf("unknown channel %s", id)
	}
	delete(a.channels, id)
	return nil
}

func (a *fakeApp) SendEmbed(channelID string, embed *discordgo.MessageEmbed) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.embeds[channelID] = append(a.embeds[channelID], embed)
	return nil
}

func (a *fakeApp) IsBanned(userID string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.banned[userID], nil
}

func (a *fakeApp) RemoveBan(userID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.banned[userID] {
		return ErrNotBanned
	}
	delete(a.banned, userID)
	return nil
}

// appeal returns the stored appeal by ID.
func (a *fakeApp) appeal(id primitive.ObjectID) *entities.Appeal {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	cp := *a.store.appeals[id]
	return &cp
}

// logFor returns the log entry for the given channel, open or closed.
func (a *fakeApp) logFor(channelID string) *entities.LogEntry {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	for _, entry := range a.store.logs {
		if entry.ChannelID == channelID {
			cp := *entry
			return &cp
		}
	}
	return nil
}
