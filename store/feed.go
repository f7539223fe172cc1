package store

import (
	"context"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rotafield/rotafield-api/schema"
)

// VisitFeed - change notifications for the visit collection
type VisitFeed interface {
	WatchVisits(ctx context.Context) (<-chan struct{}, error)
}

// WatchVisits opens a change stream over the visit collection and emits one
// signal per change. Consumers reload their whole view on any signal rather
// than interpreting the event, so coalescing drops nothing. The channel
// closes when ctx ends or the stream dies.
func (m *mongoDB) WatchVisits(ctx context.Context) (<-chan struct{}, error) {
	c := m.client.Database(m.database).Collection(schema.VisitCollection)

	stream, err := c.Watch(ctx, []bson.M{
		{"$match": bson.M{"operationType": bson.M{"$in": bson.A{"insert", "update", "replace", "delete"}}}},
	}, options.ChangeStream())
	if err != nil {
		return nil, err
	}

	events := make(chan struct{}, 1)

	go func() {
		defer close(events)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			select {
			case events <- struct{}{}:
			default:
				// a signal is already pending, the reload covers this change too
			}
		}

		if err := stream.Err(); err != nil && ctx.Err() == nil {
			log.WithFields(log.Fields{
				"prefix": mongoLogPrefix,
				"error":  err,
			}).Error("visit change stream closed")
		}
	}()

	return events, nil
}
