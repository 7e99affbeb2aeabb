package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"chirp/models"
	"chirp/store"
)

// In-memory store implementations backing handler tests.

type memUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[primitive.ObjectID]*models.User{}}
}

func (s *memUserStore) Insert(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return fmt.Errorf("duplicate email %s", user.Email)
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *memUserStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memUserStore) RecordLogin(_ context.Context, id primitive.ObjectID, githubID *int64, image string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.LastSeen = time.Now().Unix()
	if githubID != nil {
		u.GitHubID = githubID
		u.AuthProvider = "github"
	}
	if image != "" {
		u.Image = image
	}
	return nil
}

type memTweetStore struct {
	mu     sync.Mutex
	users  *memUserStore
	tweets []models.Tweet
}

func newMemTweetStore(users *memUserStore) *memTweetStore {
	return &memTweetStore{users: users}
}

func (s *memTweetStore) Insert(_ context.Context, tweet *models.Tweet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tweets = append(s.tweets, *tweet)
	return nil
}

func (s *memTweetStore) Get(_ context.Context, id primitive.ObjectID) (*models.Tweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tweets {
		if t.ID == id {
			cp := t
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memTweetStore) GetWithAuthor(ctx context.Context, id primitive.ObjectID) (*models.FeedTweet, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ft := s.join(*t)
	return &ft, nil
}

func (s *memTweetStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tweets {
		if t.ID == id {
			s.tweets = append(s.tweets[:i], s.tweets[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *memTweetStore) join(t models.Tweet) models.FeedTweet {
	ft := models.FeedTweet{Tweet: t}
	if u, ok := s.users.users[t.Author]; ok {
		cp := *u
		ft.User = &cp
	}
	return ft
}

// sortedDesc returns all tweets newest first.
func (s *memTweetStore) sortedDesc() []models.Tweet {
	out := make([]models.Tweet, len(s.tweets))
	copy(out, s.tweets)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *memTweetStore) ListPage(_ context.Context, skip, limit int64) ([]models.FeedTweet, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.sortedDesc()
	total := int64(len(all))

	if skip > total {
		skip = total
	}
	end := skip + limit
	if end > total {
		end = total
	}

	out := make([]models.FeedTweet, 0, end-skip)
	for _, t := range all[skip:end] {
		out = append(out, s.join(t))
	}
	return out, total, nil
}

func (s *memTweetStore) ListByAuthor(_ context.Context, author primitive.ObjectID) ([]models.FeedTweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.FeedTweet
	for _, t := range s.sortedDesc() {
		if t.Author == author {
			out = append(out, s.join(t))
		}
	}
	return out, nil
}

func (s *memTweetStore) Search(_ context.Context, query string, limit int64) ([]models.FeedTweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(query)
	var out []models.FeedTweet
	for _, t := range s.sortedDesc() {
		if int64(len(out)) == limit {
			break
		}
		if strings.Contains(strings.ToLower(t.Content), needle) {
			out = append(out, s.join(t))
		}
	}
	return out, nil
}

func (s *memTweetStore) CountByAuthorBetween(_ context.Context, author primitive.ObjectID, from, to time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, t := range s.tweets {
		if t.Author == author && !t.CreatedAt.Before(from) && t.CreatedAt.Before(to) {
			count++
		}
	}
	return count, nil
}
