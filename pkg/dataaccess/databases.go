package dataaccess

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB is the Mongo client. This is a connection pool.
var MongoDB *mongo.Client

const (
	mongoDatabase = "gavel"

	// collectionAppeals holds the appeal documents.
	collectionAppeals = "ban_appeals"

	// collectionAppealConfig holds the singleton appeal configuration.
	collectionAppealConfig = "ban_appeal_config"

	// collectionLogs holds the transcript log documents, keyed by their
	// retrieval key.
	collectionLogs = "logs"
)
