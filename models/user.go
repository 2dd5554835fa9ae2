package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	LoginName    string             `bson:"login_name" json:"login_name"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	FirstName    string             `bson:"first_name" json:"first_name"`
	LastName     string             `bson:"last_name" json:"last_name"`
	Location     string             `bson:"location" json:"location"`
	Description  string             `bson:"description" json:"description"`
	Occupation   string             `bson:"occupation" json:"occupation"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// UserSummary is the reduced identity shown in lists and next to comments.
type UserSummary struct {
	ID        primitive.ObjectID `json:"_id"`
	FirstName string             `json:"first_name"`
	LastName  string             `json:"last_name"`
}

// UserProfile is what GET /user/:id exposes; the login name and hash stay private.
type UserProfile struct {
	ID          primitive.ObjectID `json:"_id"`
	FirstName   string             `json:"first_name"`
	LastName    string             `json:"last_name"`
	Location    string             `json:"location"`
	Description string             `json:"description"`
	Occupation  string             `json:"occupation"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
}

func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Location:    u.Location,
		Description: u.Description,
		Occupation:  u.Occupation,
	}
}
