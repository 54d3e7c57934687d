package dataaccess

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/gavel/pkg/custom"
	"github.com/Jacobbrewer1/gavel/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/gavel/pkg/entities"
	"github.com/Jacobbrewer1/gavel/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const logDalName = "log_dal"

// logKeyBytes is the number of random bytes in a log key. Hex encoded this
// gives a 12 character key, wide enough that collisions are negligible.
const logKeyBytes = 6

// LogDal is the data access layer for transcript logs.
type LogDal interface {
	// CreateLog opens a new transcript for the given entry and returns its
	// retrieval key. The key, creation time and open flag are set by the
	// store; callers fill in the channel, guild, bot and identity fields.
	CreateLog(entry *entities.LogEntry) (string, error)

	// AppendMessage appends a message to the open transcript linked to the
	// given channel and returns the updated entry. Returns ErrLogNotFound
	// when no open transcript is linked to the channel.
	AppendMessage(channelID string, msg *entities.LogMessage) (*entities.LogEntry, error)

	// CloseLog finalizes the open transcript linked to the given channel and
	// returns the finalized entry. Returns ErrLogNotFound when no open
	// transcript is linked to the channel.
	CloseLog(channelID string, closer entities.UserSnapshot, message string) (*entities.LogEntry, error)

	// GetLogByKey gets a transcript by its retrieval key.
	GetLogByKey(key string) (*entities.LogEntry, error)
}

type logDal struct {
	// ctx is the context.
	ctx context.Context

	// l is the logger.
	l *slog.Logger

	// client is the database.
	client *mongo.Client
}

// NewLogDal creates a new transcript log data access layer.
func NewLogDal(ctx context.Context, logger *slog.Logger) LogDal {
	// If the context is nil, create a new one.
	if ctx == nil {
		ctx = context.Background()
	}

	l := logger.With(slog.String(logging.KeyDal, logDalName))

	if MongoDB == nil {
		l.Warn("MongoDB is nil, this can cause a panic. Proceeding...")
	}

	return &logDal{
		ctx:    ctx,
		l:      l,
		client: MongoDB,
	}
}

func (d *logDal) collection() *mongo.Collection {
	return d.client.Database(mongoDatabase).Collection(collectionLogs)
}

// newLogKey generates a fresh log key.
func newLogKey() (string, error) {
	buf := make([]byte, logKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("error generating log key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (d *logDal) CreateLog(entry *entities.LogEntry) (string, error) {
	key, err := newLogKey()
	if err != nil {
		return "", err
	}

	entry.ID = key
	entry.Key = key
	entry.Open = true
	entry.CreatedAt = custom.Now()
	if entry.Messages == nil {
		entry.Messages = []entities.LogMessage{}
	}

	monitoring.MongoTotalRequests.WithLabelValues(logDalName, "create_log", mongoDatabase, collectionLogs).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(logDalName, "create_log", mongoDatabase, collectionLogs))
	defer t.ObserveDuration()

	if _, err := d.collection().InsertOne(d.ctx, entry); err != nil {
		return "", fmt.Errorf("error inserting log entry: %w", err)
	}

	d.l.Debug("Created a log entry", slog.String(logging.KeyLog, key))
	return key, nil
}

func (d *logDal) AppendMessage(channelID string, msg *entities.LogMessage) (*entities.LogEntry, error) {
	monitoring.MongoTotalRequests.WithLabelValues(logDalName, "append_message", mongoDatabase, collectionLogs).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(logDalName, "append_message", mongoDatabase, collectionLogs))
	defer t.ObserveDuration()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	entry := new(entities.LogEntry)
	err := d.collection().FindOneAndUpdate(d.ctx,
		bson.M{"channel_id": channelID, "open": true},
		bson.M{"$push": bson.M{"messages": msg}},
		opts,
	).Decode(entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrLogNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error appending log message: %w", err)
	}
	return entry, nil
}

func (d *logDal) CloseLog(channelID string, closer entities.UserSnapshot, message string) (*entities.LogEntry, error) {
	monitoring.MongoTotalRequests.WithLabelValues(logDalName, "close_log", mongoDatabase, collectionLogs).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(logDalName, "close_log", mongoDatabase, collectionLogs))
	defer t.ObserveDuration()

	now := custom.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	entry := new(entities.LogEntry)
	// The open flag is part of the filter, so a log can only be closed once.
	err := d.collection().FindOneAndUpdate(d.ctx,
		bson.M{"channel_id": channelID, "open": true},
		bson.M{"$set": bson.M{
			"open":          false,
			"closed_at":     &now,
			"close_message": message,
			"closer":        closer,
		}},
		opts,
	).Decode(entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrLogNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error closing log entry: %w", err)
	}
	return entry, nil
}

func (d *logDal) GetLogByKey(key string) (*entities.LogEntry, error) {
	monitoring.MongoTotalRequests.WithLabelValues(logDalName, "get_log_by_key", mongoDatabase, collectionLogs).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(logDalName, "get_log_by_key", mongoDatabase, collectionLogs))
	defer t.ObserveDuration()

	entry := new(entities.LogEntry)
	err := d.collection().FindOne(d.ctx, bson.M{"_id": key}).Decode(entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrLogNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error getting log entry: %w", err)
	}
	return entry, nil
}
