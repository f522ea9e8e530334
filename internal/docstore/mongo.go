package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// noObjectID keeps Mongo's internal _id out of every document we hand back.
var noObjectID = bson.M{"_id": 0}

// MongoCollection stores documents in a MongoDB collection, matched on the "id" field
// rather than on _id.
type MongoCollection struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects to uri and verifies the connection with a ping.
func OpenMongo(ctx context.Context, uri, database, collection string) (*MongoCollection, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &MongoCollection{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

func (c *MongoCollection) InsertOne(ctx context.Context, doc Document) error {
	if _, err := c.coll.InsertOne(ctx, bson.M(doc)); err != nil {
		return fmt.Errorf("insert one: %w", err)
	}
	return nil
}

func (c *MongoCollection) FindByID(ctx context.Context, id string) (Document, error) {
	var raw bson.M
	err := c.coll.FindOne(ctx, bson.M{KeyAttribute: id}, options.FindOne().SetProjection(noObjectID)).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find one: %w", err)
	}
	return fromBSON(raw), nil
}

func (c *MongoCollection) FindAll(ctx context.Context) ([]Document, error) {
	cur, err := c.coll.Find(ctx, bson.M{}, options.Find().SetProjection(noObjectID))
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	var raws []bson.M
	if err := cur.All(ctx, &raws); err != nil {
		return nil, fmt.Errorf("read cursor: %w", err)
	}
	docs := make([]Document, 0, len(raws))
	for _, raw := range raws {
		docs = append(docs, fromBSON(raw))
	}
	return docs, nil
}

func (c *MongoCollection) UpdateByID(ctx context.Context, id string, set Document) (bool, error) {
	res, err := c.coll.UpdateOne(ctx, bson.M{KeyAttribute: id}, bson.M{"$set": bson.M(set)})
	if err != nil {
		return false, fmt.Errorf("update one: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (c *MongoCollection) DeleteByID(ctx context.Context, id string) (bool, error) {
	res, err := c.coll.DeleteOne(ctx, bson.M{KeyAttribute: id})
	if err != nil {
		return false, fmt.Errorf("delete one: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (c *MongoCollection) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := c.coll.DeleteMany(ctx, bson.M{KeyAttribute: bson.M{"$in": uniqueIDs(ids)}})
	if err != nil {
		return 0, fmt.Errorf("delete many: %w", err)
	}
	return res.DeletedCount, nil
}

func (c *MongoCollection) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

func fromBSON(raw bson.M) Document {
	doc, _ := plain(raw).(map[string]any)
	return Document(doc)
}

// plain rewrites driver-specific containers and scalars into the map/slice/float64
// shapes the other backends produce.
func plain(v any) any {
	switch t := v.(type) {
	case bson.M:
		return plain(map[string]any(t))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = plain(val)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = plain(e.Value)
		}
		return out
	case bson.A:
		return plain([]any(t))
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = plain(val)
		}
		return out
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case primitive.DateTime:
		return t.Time().UTC()
	default:
		return v
	}
}
