// Package mongostore implements the store interfaces on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"chirp/models"
	"chirp/store"
)

type TweetStore struct {
	tweets *mongo.Collection
}

func NewTweetStore(db *mongo.Database) *TweetStore {
	return &TweetStore{tweets: db.Collection("tweets")}
}

// authorStages joins the author document into the pipeline output under
// "user", keeping tweets whose author record no longer exists.
func authorStages() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "author"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "user"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$user"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

func (s *TweetStore) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]models.FeedTweet, error) {
	cursor, err := s.tweets.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tweets []models.FeedTweet
	if err := cursor.All(ctx, &tweets); err != nil {
		return nil, err
	}
	return tweets, nil
}

func (s *TweetStore) Insert(ctx context.Context, tweet *models.Tweet) error {
	_, err := s.tweets.InsertOne(ctx, tweet)
	return err
}

func (s *TweetStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error) {
	var tweet models.Tweet
	err := s.tweets.FindOne(ctx, bson.M{"_id": id}).Decode(&tweet)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tweet, nil
}

func (s *TweetStore) GetWithAuthor(ctx context.Context, id primitive.ObjectID) (*models.FeedTweet, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}},
	}
	pipeline = append(pipeline, authorStages()...)

	tweets, err := s.aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if len(tweets) == 0 {
		return nil, store.ErrNotFound
	}
	return &tweets[0], nil
}

func (s *TweetStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.tweets.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *TweetStore) ListPage(ctx context.Context, skip, limit int64) ([]models.FeedTweet, int64, error) {
	total, err := s.tweets.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$skip", Value: skip}},
		{{Key: "$limit", Value: limit}},
	}
	pipeline = append(pipeline, authorStages()...)

	tweets, err := s.aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	return tweets, total, nil
}

func (s *TweetStore) ListByAuthor(ctx context.Context, author primitive.ObjectID) ([]models.FeedTweet, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "author", Value: author}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	}
	pipeline = append(pipeline, authorStages()...)

	return s.aggregate(ctx, pipeline)
}

func (s *TweetStore) Search(ctx context.Context, query string, limit int64) ([]models.FeedTweet, error) {
	// QuoteMeta so the query matches literally, never as a pattern.
	filter := bson.D{{Key: "content", Value: bson.D{
		{Key: "$regex", Value: regexp.QuoteMeta(query)},
		{Key: "$options", Value: "i"},
	}}}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}
	pipeline = append(pipeline, authorStages()...)

	return s.aggregate(ctx, pipeline)
}

func (s *TweetStore) CountByAuthorBetween(ctx context.Context, author primitive.ObjectID, from, to time.Time) (int64, error) {
	return s.tweets.CountDocuments(ctx, bson.M{
		"author": author,
		"createdAt": bson.M{
			"$gte": from,
			"$lt":  to,
		},
	})
}
