package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Favorite struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	PhotoID  primitive.ObjectID `bson:"photo_id" json:"photo_id"`
	DateTime time.Time          `bson:"date_time" json:"date_time"`
}

// FavoriteView joins a favorite with the photo and the photo's owner.
type FavoriteView struct {
	ID       primitive.ObjectID `json:"_id"`
	DateTime time.Time          `json:"date_time"`
	Photo    FavoritePhoto      `json:"photo"`
	Owner    UserSummary        `json:"owner"`
}

type FavoritePhoto struct {
	ID       primitive.ObjectID `json:"_id"`
	UserID   primitive.ObjectID `json:"user_id"`
	FileName string             `json:"file_name"`
	DateTime time.Time          `json:"date_time"`
}
