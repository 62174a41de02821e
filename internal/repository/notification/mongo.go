package notification

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

const CollectionNotifications = "notifications"

// document is the stored shape of a notification. Ids are kept as strings.
type document struct {
	ID           string         `bson:"_id"`
	UserID       string         `bson:"user_id"`
	Title        string         `bson:"title"`
	Message      string         `bson:"message"`
	Type         string         `bson:"type"`
	Priority     string         `bson:"priority"`
	Channels     []string       `bson:"channels"`
	Read         bool           `bson:"read"`
	ReadAt       *time.Time     `bson:"read_at,omitempty"`
	Archived     bool           `bson:"archived"`
	CreatedAt    time.Time      `bson:"created_at"`
	ScheduledFor *time.Time     `bson:"scheduled_for,omitempty"`
	DispatchedAt *time.Time     `bson:"dispatched_at,omitempty"`
	Tags         []string       `bson:"tags,omitempty"`
	Actions      []model.Action `bson:"actions,omitempty"`
}

func toDocument(n model.Notification) document {
	return document{
		ID:           n.ID.String(),
		UserID:       n.UserID,
		Title:        n.Title,
		Message:      n.Message,
		Type:         string(n.Type),
		Priority:     string(n.Priority),
		Channels:     channelStrings(n.Channels),
		Read:         n.Read,
		ReadAt:       n.ReadAt,
		Archived:     n.Archived,
		CreatedAt:    n.CreatedAt,
		ScheduledFor: n.ScheduledFor,
		DispatchedAt: n.DispatchedAt,
		Tags:         n.Tags,
		Actions:      n.Actions,
	}
}

func (d document) model() (model.Notification, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return model.Notification{}, fmt.Errorf("parse notification id: %w", err)
	}

	n := model.Notification{
		ID:           id,
		UserID:       d.UserID,
		Title:        d.Title,
		Message:      d.Message,
		Type:         model.Type(d.Type),
		Priority:     model.Priority(d.Priority),
		Read:         d.Read,
		ReadAt:       d.ReadAt,
		Archived:     d.Archived,
		CreatedAt:    d.CreatedAt,
		ScheduledFor: d.ScheduledFor,
		DispatchedAt: d.DispatchedAt,
		Tags:         d.Tags,
		Actions:      d.Actions,
	}
	for _, c := range d.Channels {
		n.Channels = append(n.Channels, model.Channel(c))
	}

	return n, nil
}

// MongoRepository stores notifications in a MongoDB collection.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository creates a repository over the notifications collection of database.
func NewMongoRepository(client *mongo.Client, database string) *MongoRepository {
	return &MongoRepository{collection: client.Database(database).Collection(CollectionNotifications)}
}

func (r *MongoRepository) CreateNotification(ctx context.Context, n model.Notification) error {
	if _, err := r.collection.InsertOne(ctx, toDocument(n)); err != nil {
		return fmt.Errorf("failed to insert notification to Mongo: %w", err)
	}

	return nil
}

func (r *MongoRepository) GetNotification(ctx context.Context, userID string, id uuid.UUID) (model.Notification, error) {
	var d document
	err := r.collection.FindOne(ctx, bson.M{"_id": id.String(), "user_id": userID}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Notification{}, ErrNotificationNotFound
		}

		return model.Notification{}, fmt.Errorf("failed to get notification: %w", err)
	}

	return d.model()
}

func (r *MongoRepository) ListNotifications(ctx context.Context, userID string, f model.Filter) ([]model.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cur, err := r.collection.Find(ctx, listFilter(userID, f), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return decodeAll(ctx, cur)
}

// listFilter translates f into a query document.
func listFilter(userID string, f model.Filter) bson.M {
	q := bson.M{"user_id": userID, "archived": f.Archived}

	switch f.ReadState {
	case model.ReadUnread:
		q["read"] = false
	case model.ReadRead:
		q["read"] = true
	}

	if f.Type != "" {
		q["type"] = string(f.Type)
	}

	if text := strings.TrimSpace(f.Query); text != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"message": re},
			bson.M{"tags": re},
		}
	}

	return q
}

func (r *MongoRepository) MarkRead(ctx context.Context, userID string, id uuid.UUID, at time.Time) (bool, error) {
	return r.updateOnce(ctx, userID, id, bson.M{"read": false}, bson.M{"read": true, "read_at": at})
}

func (r *MongoRepository) Archive(ctx context.Context, userID string, id uuid.UUID) (bool, error) {
	return r.updateOnce(ctx, userID, id, bson.M{"archived": false}, bson.M{"archived": true})
}

func (r *MongoRepository) updateOnce(ctx context.Context, userID string, id uuid.UUID, cond, set bson.M) (bool, error) {
	filter := bson.M{"_id": id.String(), "user_id": userID}
	for k, v := range cond {
		filter[k] = v
	}

	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("failed to update notification: %w", err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id.String(), "user_id": userID})
	if err != nil {
		return false, fmt.Errorf("failed to check notification: %w", err)
	}
	if count == 0 {
		return false, ErrNotificationNotFound
	}

	return false, nil
}

func (r *MongoRepository) DeleteNotification(ctx context.Context, userID string, id uuid.UUID) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String(), "user_id": userID})
	if err != nil {
		return false, fmt.Errorf("failed to delete notification: %w", err)
	}

	return res.DeletedCount > 0, nil
}

func (r *MongoRepository) Stats(ctx context.Context, userID string) (model.Stats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": 1},
			"archived": bson.M{"$sum": bson.M{
				"$cond": bson.A{"$archived", 1, 0},
			}},
			"read": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$and": bson.A{"$read", bson.M{"$not": bson.A{"$archived"}}}}, 1, 0},
			}},
		}}},
	}

	cur, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return model.Stats{}, fmt.Errorf("failed to get notification stats: %w", err)
	}
	defer cur.Close(ctx)

	var row struct {
		Total    int `bson:"total"`
		Read     int `bson:"read"`
		Archived int `bson:"archived"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&row); err != nil {
			return model.Stats{}, fmt.Errorf("failed to decode notification stats: %w", err)
		}
	}

	return model.Stats{
		Total:    row.Total,
		Unread:   row.Total - row.Archived - row.Read,
		Read:     row.Read,
		Archived: row.Archived,
	}, cur.Err()
}

func (r *MongoRepository) MarkDispatched(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id.String(), "dispatched_at": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"dispatched_at": at}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification dispatched: %w", err)
	}

	return nil
}

func (r *MongoRepository) ListPending(ctx context.Context) ([]model.Notification, error) {
	cur, err := r.collection.Find(ctx,
		bson.M{"dispatched_at": bson.M{"$exists": false}, "scheduled_for": bson.M{"$exists": true}},
		options.Find().SetSort(bson.D{{Key: "scheduled_for", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending notifications: %w", err)
	}

	return decodeAll(ctx, cur)
}

func (r *MongoRepository) DeleteArchivedBefore(ctx context.Context, before time.Time) ([]model.Notification, error) {
	filter := bson.M{"archived": true, "created_at": bson.M{"$lt": before}}

	cur, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1, "user_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to find archived notifications: %w", err)
	}

	removed, err := decodeAll(ctx, cur)
	if err != nil {
		return nil, err
	}

	if len(removed) == 0 {
		return removed, nil
	}

	// delete exactly the records returned to the caller
	ids := make(bson.A, 0, len(removed))
	for _, n := range removed {
		ids = append(ids, n.ID.String())
	}

	if _, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}, "archived": true}); err != nil {
		return nil, fmt.Errorf("failed to prune notifications: %w", err)
	}

	return removed, nil
}

func decodeAll(ctx context.Context, cur *mongo.Cursor) ([]model.Notification, error) {
	defer cur.Close(ctx)

	out := make([]model.Notification, 0)
	for cur.Next(ctx) {
		var d document
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("failed to decode notification: %w", err)
		}

		n, err := d.model()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}

	return out, cur.Err()
}
