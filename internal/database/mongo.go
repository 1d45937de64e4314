package database

import (
	"context"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDatabase struct {
	client *mongo.Client
	name   string
}

const (
	connectTimeout   = 10 * time.Second
	operationTimeout = 15 * time.Second
)

// NewMongoDatabase connects to uri and pings the server so an unreachable
// database is reported at startup instead of on first use.
func NewMongoDatabase(uri, name string) (*MongoDatabase, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(connectTimeout))
	if err != nil {
		return nil, errors.Wrap(err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongodb")
	}
	return &MongoDatabase{client: client, name: name}, nil
}

type document struct {
	Key   string `bson:"_id"`
	Value any    `bson:"value"`
}

func (db *MongoDatabase) collection(name string) *mongo.Collection {
	return db.client.Database(db.name).Collection(name)
}

func (db *MongoDatabase) GetObject(collectionName, key string, object any) error {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	var result bson.M
	err := db.collection(collectionName).FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrKeyNotFound
	} else if err != nil {
		return err
	}
	if value, ok := result["value"]; ok {
		return unmarshalValue(value, object)
	}
	return nil
}

func (db *MongoDatabase) SaveObject(collectionName, key string, object any) error {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	_, err := db.collection(collectionName).ReplaceOne(ctx, bson.D{{Key: "_id", Value: key}}, document{Key: key, Value: object}, options.Replace().SetUpsert(true))
	return err
}

func (db *MongoDatabase) InsertObject(collectionName, key string, object any) error {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	_, err := db.collection(collectionName).InsertOne(ctx, document{Key: key, Value: object})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	return err
}

func (db *MongoDatabase) DeleteObject(collectionName, key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	result, err := db.collection(collectionName).DeleteOne(ctx, bson.D{{Key: "_id", Value: key}})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrKeyNotFound
	}
	return nil
}

func (db *MongoDatabase) Keys(collectionName, prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	filter := bson.D{}
	if prefix != "" {
		// An anchored regex on _id is answered from the _id index.
		filter = bson.D{{Key: "_id", Value: bson.D{{Key: "$regex", Value: "^" + regexp.QuoteMeta(prefix)}}}}
	}
	opts := options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}}).SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := db.collection(collectionName).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	keys := []string{}
	for cursor.Next(ctx) {
		var doc struct {
			Key string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		keys = append(keys, doc.Key)
	}
	return keys, cursor.Err()
}

func (db *MongoDatabase) Close() error {
	return db.client.Disconnect(context.Background())
}

func unmarshalValue(value any, object any) error {
	bsonType, data, err := bson.MarshalValue(value)
	if err != nil {
		return err
	}
	rawData := bson.RawValue{Type: bsonType, Value: data}
	return rawData.Unmarshal(object)
}
