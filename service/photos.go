package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"photoshare/apperr"
	"photoshare/logger"
	"photoshare/metrics"
	"photoshare/models"
	"photoshare/store"
)

type Photos struct {
	deps *Deps
}

// Upload stores the file and then records the photo. A failure between the
// two leaves an orphan file; that is accepted.
func (s *Photos) Upload(ctx context.Context, actor Actor, originalName string, data []byte) (*models.Photo, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, apperr.InvalidInput("No photo file provided")
	}
	if _, err := requireLiveUser(ctx, s.deps, actor); err != nil {
		return nil, err
	}

	fileName, err := s.deps.Files.Save(ctx, originalName, data)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	p := &models.Photo{
		UserID:   actor.UserID,
		FileName: fileName,
		DateTime: s.deps.Now(),
		Comments: []models.Comment{},
	}
	if err := s.deps.Photos.Create(ctx, p); err != nil {
		logger.Log.Error("Photo metadata insert failed after file write",
			zap.String("file_name", fileName), zap.Error(err))
		return nil, apperr.Internal(err)
	}

	metrics.Get().PhotosUploadedTotal.Inc()
	logger.Log.Info("Photo uploaded",
		zap.String("photo_id", p.ID.Hex()),
		zap.String("user_id", actor.UserID.Hex()),
		zap.Int("bytes", len(data)),
	)
	return p, nil
}

// ListOfUser returns the owner's photos with every comment joined to its
// author. An owner with no photos yields an empty list.
func (s *Photos) ListOfUser(ctx context.Context, ownerHex string) ([]models.PhotoView, error) {
	owner, err := parseID(ownerHex, "user")
	if err != nil {
		return nil, err
	}
	photos, err := s.deps.Photos.ListByOwner(ctx, owner)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	var authorIDs []primitive.ObjectID
	for i := range photos {
		for _, c := range photos[i].Comments {
			authorIDs = append(authorIDs, c.UserID)
		}
	}
	authors, err := loadUsers(ctx, s.deps.Users, authorIDs)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	views := make([]models.PhotoView, len(photos))
	for i, p := range photos {
		comments := make([]models.CommentView, len(p.Comments))
		for j, c := range p.Comments {
			comments[j] = commentView(c, authors.get(c.UserID))
		}
		views[i] = models.PhotoView{
			ID:       p.ID,
			UserID:   p.UserID,
			FileName: p.FileName,
			DateTime: p.DateTime,
			Comments: comments,
		}
	}
	return views, nil
}

// Delete removes a photo, and with it every embedded comment and mention.
func (s *Photos) Delete(ctx context.Context, actor Actor, photoHex string) error {
	if err := requireSession(actor); err != nil {
		return err
	}
	photoID, err := parseID(photoHex, "photo")
	if err != nil {
		return err
	}
	p, err := s.deps.Photos.FindByID(ctx, photoID)
	if err != nil {
		return storeErr(err, "Photo")
	}
	if err := canDeletePhoto(actor, p); err != nil {
		return err
	}
	if err := s.deps.Photos.Delete(ctx, photoID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperr.Internal(err)
	}

	removeFiles(ctx, s.deps, []models.Photo{*p})
	logger.Log.Info("Photo deleted", zap.String("photo_id", photoHex), zap.String("user_id", actor.UserID.Hex()))
	return nil
}

// DeleteAllOfUser removes every photo the owner has uploaded.
func (s *Photos) DeleteAllOfUser(ctx context.Context, actor Actor, ownerHex string) (int64, error) {
	if err := requireSession(actor); err != nil {
		return 0, err
	}
	owner, err := parseID(ownerHex, "user")
	if err != nil {
		return 0, err
	}
	if err := canDeleteAllPhotos(actor, owner); err != nil {
		return 0, err
	}

	owned, err := s.deps.Photos.ListByOwner(ctx, owner)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	n, err := s.deps.Photos.DeleteByOwner(ctx, owner)
	if err != nil {
		return 0, apperr.Internal(err)
	}

	removeFiles(ctx, s.deps, owned)
	logger.Log.Info("Photos of user deleted", zap.String("user_id", ownerHex), zap.Int64("count", n))
	return n, nil
}

// removeFiles drops stored binaries; failures only leave orphans and are logged.
func removeFiles(ctx context.Context, deps *Deps, photos []models.Photo) {
	for i := range photos {
		if err := deps.Files.Remove(ctx, photos[i].FileName); err != nil {
			logger.Log.Warn("Failed to remove photo file",
				zap.String("file_name", photos[i].FileName), zap.Error(err))
		}
	}
}
