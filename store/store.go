// Package store defines the persistence interfaces the handlers depend on.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"chirp/models"
)

var ErrNotFound = errors.New("not found")

type TweetStore interface {
	Insert(ctx context.Context, tweet *models.Tweet) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error)
	GetWithAuthor(ctx context.Context, id primitive.ObjectID) (*models.FeedTweet, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// ListPage returns one feed page (createdAt descending) plus the total
	// tweet count.
	ListPage(ctx context.Context, skip, limit int64) ([]models.FeedTweet, int64, error)
	ListByAuthor(ctx context.Context, author primitive.ObjectID) ([]models.FeedTweet, error)

	// Search matches query as a literal, case-insensitive substring of the
	// tweet content.
	Search(ctx context.Context, query string, limit int64) ([]models.FeedTweet, error)

	CountByAuthorBetween(ctx context.Context, author primitive.ObjectID, from, to time.Time) (int64, error)
}

type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// RecordLogin refreshes lastSeen and fills in the GitHub id and avatar
	// if the stored document lacks them.
	RecordLogin(ctx context.Context, id primitive.ObjectID, githubID *int64, image string) error
}
