package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Photo owns its comments; a comment never exists outside the photo document.
type Photo struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	FileName string             `bson:"file_name" json:"file_name"`
	DateTime time.Time          `bson:"date_time" json:"date_time"`
	Comments []Comment          `bson:"comments" json:"comments"`
}

type Comment struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Comment  string             `bson:"comment" json:"comment"`
	DateTime time.Time          `bson:"date_time" json:"date_time"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	Mentions []Mention          `bson:"mentions" json:"mentions"`
}

type Mention struct {
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	DateTime time.Time          `bson:"date_time" json:"date_time"`
}

// Mentions reports whether any comment on the photo names userID.
func (p *Photo) Mentions(userID primitive.ObjectID) bool {
	for _, c := range p.Comments {
		for _, m := range c.Mentions {
			if m.UserID == userID {
				return true
			}
		}
	}
	return false
}

// FindComment returns the index of the comment with the given id, or -1.
func (p *Photo) FindComment(commentID primitive.ObjectID) int {
	for i, c := range p.Comments {
		if c.ID == commentID {
			return i
		}
	}
	return -1
}

// CommentView is a comment joined with its author for direct rendering.
type CommentView struct {
	ID       primitive.ObjectID `json:"_id"`
	Comment  string             `json:"comment"`
	DateTime time.Time          `json:"date_time"`
	Mentions []Mention          `json:"mentions"`
	User     UserSummary        `json:"user"`
}

// PhotoView is a photo with every comment joined to its author.
type PhotoView struct {
	ID       primitive.ObjectID `json:"_id"`
	UserID   primitive.ObjectID `json:"user_id"`
	FileName string             `json:"file_name"`
	DateTime time.Time          `json:"date_time"`
	Comments []CommentView      `json:"comments"`
}

// MentionedPhoto is the summary returned for "where was this user mentioned".
type MentionedPhoto struct {
	ID             primitive.ObjectID `json:"_id"`
	UserID         primitive.ObjectID `json:"user_id"`
	FileName       string             `json:"file_name"`
	DateTime       time.Time          `json:"date_time"`
	OwnerFirstName string             `json:"owner_first_name"`
	OwnerLastName  string             `json:"owner_last_name"`
}
