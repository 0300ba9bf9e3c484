package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Location is an embedded profile attribute.
type Location struct {
	Country string `bson:"country,omitempty" json:"country,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
}

// Profile is the document-store half of a user. CrossRef mirrors
// Identity.CrossRef; the application layer owns that invariant since no
// foreign key spans the two stores.
type Profile struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CrossRef         string             `bson:"cross_ref" json:"-"`
	FriendlyID       string             `bson:"friendly_id" json:"friendly_id"`
	Username         string             `bson:"username,omitempty" json:"username,omitempty"`
	Bio              string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Profession       string             `bson:"profession,omitempty" json:"profession,omitempty"`
	Age              *int               `bson:"age,omitempty" json:"age,omitempty"`
	CountryOrigin    string             `bson:"country_origin,omitempty" json:"country_origin,omitempty"`
	ProfilePicture   string             `bson:"profile_picture,omitempty" json:"profile_picture,omitempty"`
	CoverImage       string             `bson:"cover_image,omitempty" json:"cover_image,omitempty"`
	Location         Location           `bson:"location,omitempty" json:"location,omitempty"`
	CompletedProfile bool               `bson:"completed_profile" json:"completed_profile"`
	Active           bool               `bson:"active" json:"active"`
	DeletedAt        *time.Time         `bson:"deleted_at,omitempty" json:"-"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

// Completed is the derived completed_profile flag: the display fields a
// public profile page needs are all present.
func (p *Profile) Completed() bool {
	return p.Username != "" && p.Bio != "" && p.Profession != "" && p.ProfilePicture != ""
}
