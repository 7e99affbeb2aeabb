package handlers

import (
	"time"

	"chirp/models"
)

// Constants shared across handler files.
const (
	pageSize         = 20
	dailyTweetLimit  = 10
	searchResultCap  = 50
	maxContentLength = 280

	requestTimeout = 10 * time.Second
)

// todayWindow returns [local midnight, next local midnight) for the given
// instant. The quota in CreateTweet and the snapshot in checkLimit must use
// the same boundaries.
func todayWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

type authorJSON struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type tweetJSON struct {
	ID        string      `json:"_id"`
	Content   string      `json:"content"`
	Image     string      `json:"image,omitempty"`
	Author    *authorJSON `json:"author"`
	CreatedAt string      `json:"createdAt"`
}

// serializeTweet flattens internal representations for the wire: ObjectIDs
// become hex strings and timestamps ISO-8601.
func serializeTweet(t models.FeedTweet) tweetJSON {
	out := tweetJSON{
		ID:        t.ID.Hex(),
		Content:   t.Content,
		Image:     t.Image,
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if t.User != nil {
		out.Author = &authorJSON{
			ID:    t.User.ID.Hex(),
			Name:  t.User.Name,
			Image: t.User.Image,
		}
	}
	return out
}

func serializeTweets(tweets []models.FeedTweet) []tweetJSON {
	out := make([]tweetJSON, 0, len(tweets))
	for _, t := range tweets {
		out = append(out, serializeTweet(t))
	}
	return out
}
