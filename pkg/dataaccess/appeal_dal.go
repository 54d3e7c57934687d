package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/gavel/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/gavel/pkg/entities"
	"github.com/Jacobbrewer1/gavel/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const appealDalName = "appeal_dal"

// AppealDal is the data access layer for ban appeals.
type AppealDal interface {
	// SaveAppeal inserts a new appeal. The store assigned ID is written back
	// onto the appeal.
	SaveAppeal(appeal *entities.Appeal) error

	// GetAppealByChannel gets the appeal linked to the given discussion
	// channel. Returns ErrAppealNotFound when no appeal is linked to it.
	GetAppealByChannel(channelID string) (*entities.Appeal, error)

	// GetAppealByUser gets the most recent appeal submitted by the given
	// user. Returns ErrAppealNotFound when the user has never appealed.
	GetAppealByUser(userID string) (*entities.Appeal, error)

	// GetPollingAppeals gets all appeals that are waiting to be provisioned.
	GetPollingAppeals() ([]*entities.Appeal, error)

	// TransitionStatus moves an appeal from one status to another. The write
	// is conditional on the stored status still being the expected one, so
	// two workers racing on the same appeal cannot both succeed; the loser
	// gets ErrAlreadyHandled.
	TransitionStatus(id primitive.ObjectID, from, to entities.AppealStatus) error

	// SetChannel links the appeal to its discussion channel.
	SetChannel(id primitive.ObjectID, channelID string) error
}

type appealDal struct {
	// ctx is the context.
	ctx context.Context

	// l is the logger.
	l *slog.Logger

	// client is the database.
	client *mongo.Client
}

// NewAppealDal creates a new appeal data access layer.
func NewAppealDal(ctx context.Context, logger *slog.Logger) AppealDal {
	// If the context is nil, create a new one.
	if ctx == nil {
		ctx = context.Background()
	}

	l := logger.With(slog.String(logging.KeyDal, appealDalName))

	if MongoDB == nil {
		l.Warn("MongoDB is nil, this can cause a panic. Proceeding...")
	}

	return &appealDal{
		ctx:    ctx,
		l:      l,
		client: MongoDB,
	}
}

func (d *appealDal) collection() *mongo.Collection {
	return d.client.Database(mongoDatabase).Collection(collectionAppeals)
}

func (d *appealDal) SaveAppeal(appeal *entities.Appeal) error {
	monitoring.MongoTotalRequests.WithLabelValues(appealDalName, "save_appeal", mongoDatabase, collectionAppeals).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(appealDalName, "save_appeal", mongoDatabase, collectionAppeals))
	defer t.ObserveDuration()

	res, err := d.collection().InsertOne(d.ctx, appeal)
	if err != nil {
		return fmt.Errorf("error inserting appeal: %w", err)
	}

	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		appeal.ID = id
	}
	return nil
}

func (d *appealDal) GetAppealByChannel(channelID string) (*entities.Appeal, error) {
	monitoring.MongoTotalRequests.WithLabelValues(appealDalName, "get_appeal_by_channel", mongoDatabase, collectionAppeals).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(appealDalName, "get_appeal_by_channel", mongoDatabase, collectionAppeals))
	defer t.ObserveDuration()

	appeal := new(entities.Appeal)
	err := d.collection().FindOne(d.ctx, bson.M{"channel": channelID}).Decode(appeal)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrAppealNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error getting appeal: %w", err)
	}
	return appeal, nil
}

func (d *appealDal) GetAppealByUser(userID string) (*entities.Appeal, error) {
	monitoring.MongoTotalRequests.WithLabelValues(appealDalName, "get_appeal_by_user", mongoDatabase, collectionAppeals).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(appealDalName, "get_appeal_by_user", mongoDatabase, collectionAppeals))
	defer t.ObserveDuration()

	opts := options.FindOne()
	opts.SetSort(bson.M{"createdAt": -1})

	appeal := new(entities.Appeal)
	err := d.collection().FindOne(d.ctx, bson.M{"userID": userID}, opts).Decode(appeal)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrAppealNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error getting appeal: %w", err)
	}
	return appeal, nil
}

func (d *appealDal) GetPollingAppeals() ([]*entities.Appeal, error) {
	monitoring.MongoTotalRequests.WithLabelValues(appealDalName, "get_polling_appeals", mongoDatabase, collectionAppeals).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(appealDalName, "get_polling_appeals", mongoDatabase, collectionAppeals))
	defer t.ObserveDuration()

	cursor, err := d.collection().Find(d.ctx, bson.M{"status": entities.AppealStatusPolling})
	if err != nil {
		return nil, fmt.Errorf("error finding polling appeals: %w", err)
	}

	var appeals []*entities.Appeal
	if err := cursor.All(d.ctx, &appeals); err != nil {
		return nil, fmt.Errorf("error decoding polling appeals: %w", err)
	}
	return appeals, nil
}

func (d *appealDal) TransitionStatus(id primitive.ObjectID, from, to entities.AppealStatus) error {
	if !from.CanTransition(to) {
		return fmt.Errorf("illegal status transition %s -> %s", from, to)
	}

	monitoring.MongoTotalRequests.WithLabelValues(appealDalName, "transition_status", mongoDatabase, collectionAppeals).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(appealDalName, "transition_status", mongoDatabase, collectionAppeals))
	defer t.ObserveDuration()

	// The status is part of the filter so that the write only lands when the
	// appeal is still in the expected state.
	res, err := d.collection().UpdateOne(d.ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to}},
	)
	if err != nil {
		return fmt.Errorf("error updating appeal status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrAlreadyHandled
	}
	return nil
}

func (d *appealDal) SetChannel(id primitive.ObjectID, channelID string) error {
	monitoring.MongoTotalRequests.WithLabelValues(appealDalName, "set_channel", mongoDatabase, collectionAppeals).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(appealDalName, "set_channel", mongoDatabase, collectionAppeals))
	defer t.ObserveDuration()

	_, err := d.collection().UpdateOne(d.ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"channel": channelID}},
	)
	if err != nil {
		return fmt.Errorf("error setting appeal channel: %w", err)
	}
	return nil
}
