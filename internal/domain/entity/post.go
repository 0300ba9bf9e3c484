package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is an append-only subdocument on a post, deletable by id.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	ProfileID primitive.ObjectID `bson:"profile_id" json:"profile_id"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Post is a feed entry. Likes carry set semantics: a profile id appears at
// most once regardless of how often the toggle endpoint is hit.
type Post struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	ProfileID primitive.ObjectID   `bson:"profile_id" json:"profile_id"`
	Content   string               `bson:"content,omitempty" json:"content,omitempty"`
	Image     string               `bson:"image,omitempty" json:"image,omitempty"`
	Likes     []primitive.ObjectID `bson:"likes" json:"-"`
	Comments  []Comment            `bson:"comments" json:"comments"`
	CreatedAt time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at" json:"updated_at"`
}

// LikedBy reports whether profileID is in the like set.
func (p *Post) LikedBy(profileID primitive.ObjectID) bool {
	for _, id := range p.Likes {
		if id == profileID {
			return true
		}
	}
	return false
}
