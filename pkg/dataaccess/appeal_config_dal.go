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
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const configDalName = "appeal_config_dal"

// AppealConfigDal is the data access layer for the singleton appeal
// configuration.
type AppealConfigDal interface {
	// GetConfig gets the appeal configuration. A default configuration is
	// returned when none has been stored yet.
	GetConfig() (*entities.AppealConfig, error)

	// SetCategory persists the discussion category ID.
	SetCategory(categoryID string) error

	// SetQuestions persists the question list, replacing the previous one.
	SetQuestions(questions []string) error
}

type appealConfigDal struct {
	// ctx is the context.
	ctx context.Context

	// l is the logger.
	l *slog.Logger

	// client is the database.
	client *mongo.Client
}

// NewAppealConfigDal creates a new appeal configuration data access layer.
func NewAppealConfigDal(ctx context.Context, logger *slog.Logger) AppealConfigDal {
	// If the context is nil, create a new one.
	if ctx == nil {
		ctx = context.Background()
	}

	l := logger.With(slog.String(logging.KeyDal, configDalName))

	if MongoDB == nil {
		l.Warn("MongoDB is nil, this can cause a panic. Proceeding...")
	}

	return &appealConfigDal{
		ctx:    ctx,
		l:      l,
		client: MongoDB,
	}
}

func (d *appealConfigDal) collection() *mongo.Collection {
	return d.client.Database(mongoDatabase).Collection(collectionAppealConfig)
}

func (d *appealConfigDal) GetConfig() (*entities.AppealConfig, error) {
	monitoring.MongoTotalRequests.WithLabelValues(configDalName, "get_config", mongoDatabase, collectionAppealConfig).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(configDalName, "get_config", mongoDatabase, collectionAppealConfig))
	defer t.ObserveDuration()

	config := new(entities.AppealConfig)
	err := d.collection().FindOne(d.ctx, bson.M{}).Decode(config)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// The config is created lazily; hand out the default until something
		// is written.
		return &entities.AppealConfig{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("error getting config: %w", err)
	}
	return config, nil
}

func (d *appealConfigDal) SetCategory(categoryID string) error {
	return d.set("set_category", bson.M{"category": categoryID})
}

func (d *appealConfigDal) SetQuestions(questions []string) error {
	if questions == nil {
		questions = []string{}
	}
	return d.set("set_questions", bson.M{"questions": questions})
}

// set upserts fields on the singleton document. The empty filter matches the
// single config document, creating it on first write.
func (d *appealConfigDal) set(query string, fields bson.M) error {
	monitoring.MongoTotalRequests.WithLabelValues(configDalName, query, mongoDatabase, collectionAppealConfig).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(configDalName, query, mongoDatabase, collectionAppealConfig))
	defer t.ObserveDuration()

	opts := options.Update().SetUpsert(true)
	_, err := d.collection().UpdateOne(d.ctx, bson.M{}, bson.M{"$set": fields}, opts)
	if err != nil {
		return fmt.Errorf("error updating config: %w", err)
	}
	return nil
}
