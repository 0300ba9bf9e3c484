package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Media is one hosted asset attached to a project.
type Media struct {
	URL string `bson:"url" json:"url"`
}

// Feedback is a visitor note on a project, only collected when the owner
// allows it.
type Feedback struct {
	ProfileID primitive.ObjectID `bson:"profile_id" json:"profile_id"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Project is a portfolio item.
type Project struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProfileID       primitive.ObjectID `bson:"profile_id" json:"profile_id"`
	Title           string             `bson:"title" json:"title"`
	Description     string             `bson:"description" json:"description"`
	URL             string             `bson:"url,omitempty" json:"url,omitempty"`
	Media           []Media            `bson:"media" json:"media"`
	Thumbnail       string             `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Tags            []string           `bson:"tags" json:"tags"`
	FeedbackAllowed bool               `bson:"feedback_allowed" json:"feedback_allowed"`
	Feedback        []Feedback         `bson:"feedback" json:"feedback"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}
