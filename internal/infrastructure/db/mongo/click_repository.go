package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/geoclick/clicktracker/internal/core/domain"
)

const collectionClicks = "clicks"

// ClickRepository implements ports.ClickRepository on the clicks collection.
type ClickRepository struct {
	coll *mongo.Collection
}

func NewClickRepository(db *mongo.Database) *ClickRepository {
	return &ClickRepository{coll: db.Collection(collectionClicks)}
}

type mongoClick struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Lat       float64            `bson:"lat"`
	Lon       float64            `bson:"lon"`
	Username  string             `bson:"username"`
	Timestamp time.Time          `bson:"timestamp"`
}

func (mc *mongoClick) toDomain() *domain.ClickEvent {
	return &domain.ClickEvent{
		ID:        mc.ID.Hex(),
		Lat:       mc.Lat,
		Lon:       mc.Lon,
		Owner:     mc.Username,
		Timestamp: mc.Timestamp.UTC(),
	}
}

// Create inserts a new click document.
func (r *ClickRepository) Create(ctx context.Context, click *domain.ClickEvent) (*domain.ClickEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, mongoClick{
		Lat:       click.Lat,
		Lon:       click.Lon,
		Username:  click.Owner,
		Timestamp: click.Timestamp.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("insert click: %w: %w", domain.ErrPersistence, err)
	}

	created := *click
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *ClickRepository) ListAll(ctx context.Context) ([]*domain.ClickEvent, error) {
	return r.find(ctx, bson.M{})
}

func (r *ClickRepository) ListForOwner(ctx context.Context, owner string) ([]*domain.ClickEvent, error) {
	return r.find(ctx, bson.M{"username": owner})
}

// ListInRange filters on start <= timestamp <= end; an empty owner matches everyone.
func (r *ClickRepository) ListInRange(ctx context.Context, owner string, start, end time.Time) ([]*domain.ClickEvent, error) {
	filter := bson.M{
		"timestamp": bson.M{
			"$gte": start.UTC(),
			"$lte": end.UTC(),
		},
	}
	if owner != "" {
		filter["username"] = owner
	}
	return r.find(ctx, filter)
}

func (r *ClickRepository) find(ctx context.Context, filter bson.M) ([]*domain.ClickEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list clicks: %w: %w", domain.ErrPersistence, err)
	}

	var docs []mongoClick
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode clicks: %w: %w", domain.ErrPersistence, err)
	}

	out := make([]*domain.ClickEvent, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// EnsureIndexes creates the owner/time index used by listings and reports.
func (r *ClickRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}, {Key: "timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "timestamp", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
