// Package seed fills a development database with fake accounts, photos,
// comments and favorites. Everything goes through the service layer, so the
// seeded data obeys the same rules as real traffic.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"

	"photoshare/apperr"
	"photoshare/logger"
	"photoshare/models"
	"photoshare/service"
)

// Password is shared by every seeded account.
const Password = "password123"

const maxLoginAttempts = 5

type Options struct {
	Users         int
	PhotosPerUser int
	Comments      int
	// Seed makes the fake data reproducible; 0 picks a random seed.
	Seed int64
}

type Result struct {
	Users     int
	Photos    int
	Comments  int
	Favorites int
}

type Seeder struct {
	svc  *service.Services
	fake *gofakeit.Faker
	rng  *rand.Rand
}

func NewSeeder(svc *service.Services, seed int64) *Seeder {
	if seed == 0 {
		seed = rand.Int63()
	}
	return &Seeder{
		svc:  svc,
		fake: gofakeit.New(uint64(seed)),
		rng:  rand.New(rand.NewSource(seed)),
	}
}

type seededUser struct {
	actor service.Actor
	name  string
}

func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{}

	users := make([]seededUser, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u, err := s.seedUser(ctx)
		if err != nil {
			return res, fmt.Errorf("seed user %d: %w", i, err)
		}
		users = append(users, u)
	}
	res.Users = len(users)
	logger.Log.Info("Seeded users", zap.Int("count", res.Users))
	if len(users) == 0 {
		return res, nil
	}

	var photos []*models.Photo
	for _, u := range users {
		for j := 0; j < opts.PhotosPerUser; j++ {
			img := s.fake.ImageJpeg(64, 64)
			p, err := s.svc.Photos.Upload(ctx, u.actor, s.fake.Word()+".jpg", img)
			if err != nil {
				return res, fmt.Errorf("seed photo: %w", err)
			}
			photos = append(photos, p)
		}
	}
	res.Photos = len(photos)
	if len(photos) == 0 {
		return res, nil
	}

	for i := 0; i < opts.Comments; i++ {
		author := users[s.rng.Intn(len(users))]
		photo := photos[s.rng.Intn(len(photos))]

		text := s.fake.HipsterSentence()
		var mentions []string
		// About a third of comments mention someone.
		if s.rng.Intn(3) == 0 {
			target := users[s.rng.Intn(len(users))]
			text = "@[" + target.name + "](" + target.actor.UserID.Hex() + ") " + text
			mentions = []string{target.actor.UserID.Hex()}
		}
		if _, err := s.svc.Comments.Add(ctx, author.actor, photo.ID.Hex(), text, mentions); err != nil {
			return res, fmt.Errorf("seed comment: %w", err)
		}
		res.Comments++

		if s.rng.Intn(4) == 0 {
			_, err := s.svc.Favorites.Add(ctx, author.actor, photo.ID.Hex())
			switch {
			case err == nil:
				res.Favorites++
			case apperr.HasCode(err, apperr.CodeConflict):
			default:
				return res, fmt.Errorf("seed favorite: %w", err)
			}
		}
	}

	logger.Log.Info("Seeding complete",
		zap.Int("users", res.Users),
		zap.Int("photos", res.Photos),
		zap.Int("comments", res.Comments),
		zap.Int("favorites", res.Favorites),
	)
	return res, nil
}

// seedUser registers a fake account, retrying when the generated login name
// is taken, then logs in to obtain an actor.
func (s *Seeder) seedUser(ctx context.Context) (seededUser, error) {
	in := service.RegisterInput{
		Password:    Password,
		FirstName:   s.fake.FirstName(),
		LastName:    s.fake.LastName(),
		Location:    s.fake.City() + ", " + s.fake.Country(),
		Description: s.fake.HipsterSentence(),
		Occupation:  s.fake.JobTitle(),
	}

	var (
		u   *models.User
		err error
	)
	for attempt := 0; attempt < maxLoginAttempts; attempt++ {
		in.LoginName = strings.ToLower(s.fake.Username())
		u, err = s.svc.Accounts.Register(ctx, in)
		if !apperr.HasCode(err, apperr.CodeConflict) {
			break
		}
	}
	if err != nil {
		return seededUser{}, err
	}

	login, err := s.svc.Accounts.Login(ctx, u.LoginName, Password)
	if err != nil {
		return seededUser{}, err
	}
	return seededUser{
		actor: service.Actor{UserID: u.ID, SessionID: login.SessionID},
		name:  u.FirstName,
	}, nil
}
