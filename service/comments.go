package service

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"photoshare/apperr"
	"photoshare/logger"
	"photoshare/metrics"
	"photoshare/models"
)

// Comments is the comment/mention engine. Mentions arrive already resolved to
// user ids by the client; the server never parses them out of comment text.
type Comments struct {
	deps *Deps
}

// Add appends a comment to a photo. Mention ids that are malformed or name no
// existing user are dropped silently; only empty text fails validation.
func (s *Comments) Add(ctx context.Context, actor Actor, photoHex, text string, mentionIDs []string) (*models.CommentView, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.InvalidInput("Comment text is required")
	}
	photoID, err := parseID(photoHex, "photo")
	if err != nil {
		return nil, err
	}
	u, err := requireLiveUser(ctx, s.deps, actor)
	if err != nil {
		return nil, err
	}

	now := s.deps.Now()
	mentions, err := s.resolveMentions(ctx, mentionIDs, now)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	c := models.Comment{
		ID:       primitive.NewObjectID(),
		Comment:  text,
		DateTime: now,
		UserID:   actor.UserID,
		Mentions: mentions,
	}
	if err := s.deps.Photos.PushComment(ctx, photoID, c); err != nil {
		return nil, storeErr(err, "Photo")
	}

	m := metrics.Get()
	m.CommentsCreatedTotal.Inc()
	m.CommentMentionsTotal.Add(float64(len(mentions)))

	view := commentView(c, u.Summary())
	return &view, nil
}

// resolveMentions keeps the distinct, well-formed ids that name existing
// users, in the order given.
func (s *Comments) resolveMentions(ctx context.Context, ids []string, at time.Time) ([]models.Mention, error) {
	candidates := make([]primitive.ObjectID, 0, len(ids))
	seen := make(map[primitive.ObjectID]bool, len(ids))
	for _, raw := range ids {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		candidates = append(candidates, id)
	}
	if len(candidates) == 0 {
		return []models.Mention{}, nil
	}

	existing, err := s.deps.Users.FindByIDs(ctx, candidates)
	if err != nil {
		return nil, err
	}
	exists := make(map[primitive.ObjectID]bool, len(existing))
	for i := range existing {
		exists[existing[i].ID] = true
	}

	mentions := make([]models.Mention, 0, len(existing))
	for _, id := range candidates {
		if exists[id] {
			mentions = append(mentions, models.Mention{UserID: id, DateTime: at})
		}
	}
	return mentions, nil
}

// Delete removes a comment. Only its author may do so; owning the photo is
// not enough.
func (s *Comments) Delete(ctx context.Context, actor Actor, photoHex, commentHex string) error {
	if err := requireSession(actor); err != nil {
		return err
	}
	photoID, err := parseID(photoHex, "photo")
	if err != nil {
		return err
	}
	commentID, err := parseID(commentHex, "comment")
	if err != nil {
		return err
	}

	p, err := s.deps.Photos.FindByID(ctx, photoID)
	if err != nil {
		return storeErr(err, "Photo")
	}
	idx := p.FindComment(commentID)
	if idx < 0 {
		return apperr.NotFound("Comment")
	}
	if err := canDeleteComment(actor, &p.Comments[idx]); err != nil {
		return err
	}

	// The pull filters on the author too, so a concurrent delete shows up as
	// NotFound rather than removing something else.
	if err := s.deps.Photos.PullComment(ctx, photoID, commentID, actor.UserID); err != nil {
		return storeErr(err, "Comment")
	}
	logger.Log.Info("Comment deleted",
		zap.String("photo_id", photoHex),
		zap.String("comment_id", commentHex),
	)
	return nil
}

// MentionsOfUser lists each photo that has at least one comment mentioning
// the user, once, with the owner's display name.
func (s *Comments) MentionsOfUser(ctx context.Context, userHex string) ([]models.MentionedPhoto, error) {
	userID, err := parseID(userHex, "user")
	if err != nil {
		return nil, err
	}
	photos, err := s.deps.Photos.ListMentioning(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	unique := make([]models.Photo, 0, len(photos))
	seen := make(map[primitive.ObjectID]bool, len(photos))
	ownerIDs := make([]primitive.ObjectID, 0, len(photos))
	for _, p := range photos {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		unique = append(unique, p)
		ownerIDs = append(ownerIDs, p.UserID)
	}

	owners, err := loadUsers(ctx, s.deps.Users, ownerIDs)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	out := make([]models.MentionedPhoto, len(unique))
	for i, p := range unique {
		owner := owners.get(p.UserID)
		out[i] = models.MentionedPhoto{
			ID:             p.ID,
			UserID:         p.UserID,
			FileName:       p.FileName,
			DateTime:       p.DateTime,
			OwnerFirstName: owner.FirstName,
			OwnerLastName:  owner.LastName,
		}
	}
	return out, nil
}
