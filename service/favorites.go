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

type Favorites struct {
	deps *Deps
}

func (s *Favorites) Add(ctx context.Context, actor Actor, photoHex string) (*models.Favorite, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	photoID, err := parseID(photoHex, "photo")
	if err != nil {
		return nil, err
	}
	if _, err := requireLiveUser(ctx, s.deps, actor); err != nil {
		return nil, err
	}
	if _, err := s.deps.Photos.FindByID(ctx, photoID); err != nil {
		return nil, storeErr(err, "Photo")
	}

	f := &models.Favorite{
		UserID:   actor.UserID,
		PhotoID:  photoID,
		DateTime: s.deps.Now(),
	}
	if err := s.deps.Favorites.Create(ctx, f); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("Photo already in favorites")
		}
		return nil, apperr.Internal(err)
	}

	metrics.Get().FavoritesAddedTotal.Inc()
	logger.Log.Debug("Favorite added", zap.String("user_id", actor.UserID.Hex()), zap.String("photo_id", photoHex))
	return f, nil
}

// Remove is idempotent: removing a favorite that is not there succeeds.
func (s *Favorites) Remove(ctx context.Context, actor Actor, photoHex string) error {
	if err := requireSession(actor); err != nil {
		return err
	}
	photoID, err := parseID(photoHex, "photo")
	if err != nil {
		return err
	}
	if err := s.deps.Favorites.Delete(ctx, actor.UserID, photoID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// List returns the actor's favorites joined to photo and owner. Favorites
// whose photo has since been deleted are skipped.
func (s *Favorites) List(ctx context.Context, actor Actor) ([]models.FavoriteView, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	favs, err := s.deps.Favorites.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if len(favs) == 0 {
		return []models.FavoriteView{}, nil
	}

	photoIDs := make([]primitive.ObjectID, len(favs))
	for i := range favs {
		photoIDs[i] = favs[i].PhotoID
	}
	photos, err := s.deps.Photos.FindByIDs(ctx, photoIDs)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	byID := make(map[primitive.ObjectID]*models.Photo, len(photos))
	ownerIDs := make([]primitive.ObjectID, 0, len(photos))
	for i := range photos {
		byID[photos[i].ID] = &photos[i]
		ownerIDs = append(ownerIDs, photos[i].UserID)
	}
	owners, err := loadUsers(ctx, s.deps.Users, ownerIDs)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	views := make([]models.FavoriteView, 0, len(favs))
	for _, f := range favs {
		p, ok := byID[f.PhotoID]
		if !ok {
			continue
		}
		views = append(views, models.FavoriteView{
			ID:       f.ID,
			DateTime: f.DateTime,
			Photo: models.FavoritePhoto{
				ID:       p.ID,
				UserID:   p.UserID,
				FileName: p.FileName,
				DateTime: p.DateTime,
			},
			Owner: owners.get(p.UserID),
		})
	}
	return views, nil
}
