package store

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"photoshare/models"
)

// The Memory* stores keep documents in process. They honor the same
// uniqueness and atomicity contracts as the Mongo stores and back the
// package tests and the `serve --memory` development mode.

type MemoryUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[primitive.ObjectID]models.User)}
}

var _ UserStore = (*MemoryUsers)(nil)

func (s *MemoryUsers) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.LoginName == u.LoginName {
			return ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryUsers) FindByLoginName(_ context.Context, loginName string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.LoginName == loginName {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUsers) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := []models.User{}
	seen := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if u, ok := s.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *MemoryUsers) List(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].LastName != users[j].LastName {
			return users[i].LastName < users[j].LastName
		}
		return users[i].FirstName < users[j].FirstName
	})
	return users, nil
}

func (s *MemoryUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

type MemoryPhotos struct {
	mu     sync.Mutex
	photos map[primitive.ObjectID]models.Photo
}

func NewMemoryPhotos() *MemoryPhotos {
	return &MemoryPhotos{photos: make(map[primitive.ObjectID]models.Photo)}
}

var _ PhotoStore = (*MemoryPhotos)(nil)

func (s *MemoryPhotos) Create(_ context.Context, p *models.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}
	s.photos[p.ID] = clonePhoto(*p)
	return nil
}

func (s *MemoryPhotos) FindByID(_ context.Context, id primitive.ObjectID) (*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.photos[id]
	if !ok {
		return nil, ErrNotFound
	}
	p = clonePhoto(p)
	return &p, nil
}

func (s *MemoryPhotos) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Photo, error) {
	want := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return s.filter(func(p *models.Photo) bool { return want[p.ID] }), nil
}

func (s *MemoryPhotos) ListByOwner(_ context.Context, ownerID primitive.ObjectID) ([]models.Photo, error) {
	return s.filter(func(p *models.Photo) bool { return p.UserID == ownerID }), nil
}

func (s *MemoryPhotos) ListMentioning(_ context.Context, userID primitive.ObjectID) ([]models.Photo, error) {
	return s.filter(func(p *models.Photo) bool { return p.Mentions(userID) }), nil
}

func (s *MemoryPhotos) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.photos[id]; !ok {
		return ErrNotFound
	}
	delete(s.photos, id)
	return nil
}

func (s *MemoryPhotos) DeleteByOwner(_ context.Context, ownerID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, p := range s.photos {
		if p.UserID == ownerID {
			delete(s.photos, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryPhotos) PushComment(_ context.Context, photoID primitive.ObjectID, c models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.photos[photoID]
	if !ok {
		return ErrNotFound
	}
	if c.Mentions == nil {
		c.Mentions = []models.Mention{}
	}
	p.Comments = append(p.Comments, cloneComment(c))
	s.photos[photoID] = p
	return nil
}

func (s *MemoryPhotos) PullComment(_ context.Context, photoID, commentID, authorID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.photos[photoID]
	if !ok {
		return ErrNotFound
	}
	kept, removed := pullComments(p.Comments, func(c *models.Comment) bool {
		return c.ID == commentID && c.UserID == authorID
	})
	if removed == 0 {
		return ErrNotFound
	}
	p.Comments = kept
	s.photos[photoID] = p
	return nil
}

func (s *MemoryPhotos) PullCommentsByAuthor(_ context.Context, authorID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var modified int64
	for id, p := range s.photos {
		kept, removed := pullComments(p.Comments, func(c *models.Comment) bool { return c.UserID == authorID })
		if removed > 0 {
			p.Comments = kept
			s.photos[id] = p
			modified++
		}
	}
	return modified, nil
}

func (s *MemoryPhotos) filter(keep func(*models.Photo) bool) []models.Photo {
	s.mu.Lock()
	defer s.mu.Unlock()

	photos := []models.Photo{}
	for _, p := range s.photos {
		if keep(&p) {
			photos = append(photos, clonePhoto(p))
		}
	}
	sort.Slice(photos, func(i, j int) bool { return photos[i].DateTime.After(photos[j].DateTime) })
	return photos
}

func pullComments(comments []models.Comment, match func(*models.Comment) bool) ([]models.Comment, int) {
	kept := make([]models.Comment, 0, len(comments))
	removed := 0
	for i := range comments {
		if match(&comments[i]) {
			removed++
			continue
		}
		kept = append(kept, comments[i])
	}
	return kept, removed
}

func clonePhoto(p models.Photo) models.Photo {
	comments := make([]models.Comment, len(p.Comments))
	for i, c := range p.Comments {
		comments[i] = cloneComment(c)
	}
	p.Comments = comments
	return p
}

func cloneComment(c models.Comment) models.Comment {
	c.Mentions = append([]models.Mention{}, c.Mentions...)
	return c
}

type favoriteKey struct {
	user  primitive.ObjectID
	photo primitive.ObjectID
}

type MemoryFavorites struct {
	mu        sync.Mutex
	favorites map[favoriteKey]models.Favorite
}

func NewMemoryFavorites() *MemoryFavorites {
	return &MemoryFavorites{favorites: make(map[favoriteKey]models.Favorite)}
}

var _ FavoriteStore = (*MemoryFavorites)(nil)

func (s *MemoryFavorites) Create(_ context.Context, f *models.Favorite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := favoriteKey{user: f.UserID, photo: f.PhotoID}
	if _, ok := s.favorites[key]; ok {
		return ErrDuplicate
	}
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	s.favorites[key] = *f
	return nil
}

func (s *MemoryFavorites) Delete(_ context.Context, userID, photoID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.favorites, favoriteKey{user: userID, photo: photoID})
	return nil
}

func (s *MemoryFavorites) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	favorites := []models.Favorite{}
	for key, f := range s.favorites {
		if key.user == userID {
			favorites = append(favorites, f)
		}
	}
	sort.Slice(favorites, func(i, j int) bool { return favorites[i].DateTime.After(favorites[j].DateTime) })
	return favorites, nil
}
