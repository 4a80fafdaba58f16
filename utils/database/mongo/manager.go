package manager

import (
	"context"
	"time"

	"gamelink-suite/utils/oauth"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type grantEventDocument struct {
	Type   string    `bson:"type"`
	APIKey string    `bson:"apiKey"`
	UserID string    `bson:"userId,omitempty"`
	Scopes []string  `bson:"scopes"`
	At     time.Time `bson:"at"`
}

var (
	_ oauth.GrantRecorder    = (*MongoDBManager)(nil)
	_ oauth.GrantEventLister = (*MongoDBManager)(nil)
)

// MongoDBManager keeps the audit trail of grant events.
type MongoDBManager struct {
	client                *mongo.Client
	grantEventsCollection *mongo.Collection
}

func NewMongoDBManager(ctx context.Context, dbURL, db, grantEvents string) (*MongoDBManager, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(dbURL))
	if err != nil {
		return nil, err
	}
	return &MongoDBManager{
		client:                client,
		grantEventsCollection: client.Database(db).Collection(grantEvents),
	}, nil
}

func (m *MongoDBManager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

// EnsureIndexes creates the (apiKey, userId, at) index used by ListGrantEvents.
func (m *MongoDBManager) EnsureIndexes(ctx context.Context) error {
	_, err := m.grantEventsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "apiKey", Value: 1}, {Key: "userId", Value: 1}, {Key: "at", Value: -1}},
	})
	return err
}

func (m *MongoDBManager) RecordGrantEvent(ctx context.Context, event oauth.GrantEvent) error {
	scopes := []string(event.Scopes)
	if scopes == nil {
		scopes = []string{}
	}
	_, err := m.grantEventsCollection.InsertOne(ctx, grantEventDocument{
		Type:   string(event.Type),
		APIKey: event.APIKey,
		UserID: event.UserID,
		Scopes: scopes,
		At:     event.At.UTC(),
	})
	return err
}

// ListGrantEvents returns the newest events for apiKey, optionally narrowed to
// one user. limit <= 0 means no limit.
func (m *MongoDBManager) ListGrantEvents(ctx context.Context, apiKey, userID string, limit int64) ([]oauth.GrantEvent, error) {
	filter := bson.M{"apiKey": apiKey}
	if userID != "" {
		filter["userId"] = userID
	}
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := m.grantEventsCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []grantEventDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	events := make([]oauth.GrantEvent, 0, len(docs))
	for _, d := range docs {
		events = append(events, oauth.GrantEvent{
			Type:   oauth.GrantEventType(d.Type),
			APIKey: d.APIKey,
			UserID: d.UserID,
			Scopes: oauth.ScopeSet(d.Scopes),
			At:     d.At,
		})
	}
	return events, nil
}

func (m *MongoDBManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
