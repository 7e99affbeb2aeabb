package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Image        string             `bson:"image" json:"image"`
	PasswordHash *string            `bson:"passwordHash,omitempty" json:"-"`
	GitHubID     *int64             `bson:"githubId,omitempty" json:"-"`
	AuthProvider string             `bson:"authProvider" json:"-"`
	CreatedAt    int64              `bson:"createdAt" json:"createdAt"`
	LastSeen     int64              `bson:"lastSeen" json:"lastSeen"`
}
