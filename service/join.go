package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"photoshare/models"
	"photoshare/store"
)

// userDirectory resolves user ids to display summaries. Unknown ids resolve
// to a summary with empty names, since mentions, comments and favorites may
// outlive the users they point at.
type userDirectory map[primitive.ObjectID]models.UserSummary

func loadUsers(ctx context.Context, users store.UserStore, ids []primitive.ObjectID) (userDirectory, error) {
	found, err := users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	dir := make(userDirectory, len(found))
	for i := range found {
		dir[found[i].ID] = found[i].Summary()
	}
	return dir, nil
}

func (d userDirectory) get(id primitive.ObjectID) models.UserSummary {
	if s, ok := d[id]; ok {
		return s
	}
	return models.UserSummary{ID: id}
}

func commentView(c models.Comment, author models.UserSummary) models.CommentView {
	mentions := c.Mentions
	if mentions == nil {
		mentions = []models.Mention{}
	}
	return models.CommentView{
		ID:       c.ID,
		Comment:  c.Comment,
		DateTime: c.DateTime,
		Mentions: mentions,
		User:     author,
	}
}
