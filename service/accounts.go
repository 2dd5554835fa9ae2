package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"photoshare/apperr"
	"photoshare/logger"
	"photoshare/metrics"
	"photoshare/models"
	"photoshare/store"
)

type Accounts struct {
	deps *Deps

	dummyOnce sync.Once
	dummyHash []byte
}

type RegisterInput struct {
	LoginName   string `json:"login_name"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Occupation  string `json:"occupation"`
}

// Register creates an account. Login name uniqueness is left to the store's
// unique index, so two concurrent registrations cannot both succeed.
func (a *Accounts) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.LoginName = strings.TrimSpace(in.LoginName)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	var missing []string
	if in.LoginName == "" {
		missing = append(missing, "login_name")
	}
	if in.Password == "" {
		missing = append(missing, "password")
	}
	if in.FirstName == "" {
		missing = append(missing, "first_name")
	}
	if in.LastName == "" {
		missing = append(missing, "last_name")
	}
	if len(missing) > 0 {
		return nil, apperr.InvalidInput("Missing required fields: " + strings.Join(missing, ", "))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), a.deps.BcryptCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	u := &models.User{
		LoginName:    in.LoginName,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Location:     strings.TrimSpace(in.Location),
		Description:  strings.TrimSpace(in.Description),
		Occupation:   strings.TrimSpace(in.Occupation),
		CreatedAt:    a.deps.Now(),
	}
	if err := a.deps.Users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("Login name already taken")
		}
		return nil, apperr.Internal(err)
	}

	logger.Log.Info("User registered", zap.String("user_id", u.ID.Hex()), zap.String("login_name", u.LoginName))
	return u, nil
}

type LoginResult struct {
	Token     string
	SessionID string
	User      *models.User
}

// Login checks credentials and opens a session.
func (a *Accounts) Login(ctx context.Context, loginName, password string) (*LoginResult, error) {
	loginName = strings.TrimSpace(loginName)
	if loginName == "" || password == "" {
		return nil, apperr.InvalidInput("Both login name and password are required")
	}

	invalid := apperr.Unauthorized("Invalid login name or password")
	m := metrics.Get()

	u, err := a.deps.Users.FindByLoginName(ctx, loginName)
	if errors.Is(err, store.ErrNotFound) {
		// Spend the same bcrypt time as a real check so unknown names are
		// not distinguishable by latency.
		_ = bcrypt.CompareHashAndPassword(a.dummy(), []byte(password))
		m.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, invalid
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		m.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, invalid
	}

	token, sess, err := a.deps.Sessions.Issue(ctx, u.ID.Hex())
	if err != nil {
		return nil, apperr.Internal(err)
	}

	m.LoginsTotal.WithLabelValues("accepted").Inc()
	logger.Log.Info("User logged in", zap.String("user_id", u.ID.Hex()))
	return &LoginResult{Token: token, SessionID: sess.ID, User: u}, nil
}

func (a *Accounts) dummy() []byte {
	a.dummyOnce.Do(func() {
		a.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("photoshare-dummy-password"), a.deps.BcryptCost)
	})
	return a.dummyHash
}

func (a *Accounts) Logout(ctx context.Context, actor Actor) error {
	if err := requireSession(actor); err != nil {
		return err
	}
	if err := a.deps.Sessions.Revoke(ctx, actor.SessionID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (a *Accounts) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	users, err := a.deps.Users.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	out := make([]models.UserSummary, len(users))
	for i := range users {
		out[i] = users[i].Summary()
	}
	return out, nil
}

func (a *Accounts) GetUser(ctx context.Context, idHex string) (*models.UserProfile, error) {
	id, err := parseID(idHex, "user")
	if err != nil {
		return nil, err
	}
	u, err := a.deps.Users.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "User")
	}
	p := u.Profile()
	return &p, nil
}

func (a *Accounts) CurrentUser(ctx context.Context, actor Actor) (*models.UserSummary, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	u, err := a.deps.Users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, storeErr(err, "User")
	}
	s := u.Summary()
	return &s, nil
}

// DeleteAccount removes the actor's account and everything it owns. Photos go
// first, while the owner id is still a valid filter, then the account's
// comments on other photos, then the user record, then every session the account holds.
// Favorites and mentions pointing at the account are left for readers to
// tolerate.
func (a *Accounts) DeleteAccount(ctx context.Context, actor Actor, targetHex string) error {
	if err := requireSession(actor); err != nil {
		return err
	}
	target, err := parseID(targetHex, "user")
	if err != nil {
		return err
	}
	if err := canDeleteAccount(actor, target); err != nil {
		return err
	}
	if _, err := a.deps.Users.FindByID(ctx, target); err != nil {
		return storeErr(err, "User")
	}

	owned, err := a.deps.Photos.ListByOwner(ctx, target)
	if err != nil {
		return apperr.Internal(err)
	}
	if _, err := a.deps.Photos.DeleteByOwner(ctx, target); err != nil {
		return apperr.Internal(err)
	}
	pulled, err := a.deps.Photos.PullCommentsByAuthor(ctx, target)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := a.deps.Users.Delete(ctx, target); err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperr.Internal(err)
	}
	if err := a.deps.Sessions.RevokeUser(ctx, target.Hex()); err != nil {
		logger.Log.Warn("Failed to revoke sessions after account deletion",
			zap.String("user_id", target.Hex()), zap.Error(err))
	}

	removeFiles(ctx, a.deps, owned)
	metrics.Get().AccountsDeletedTotal.Inc()
	logger.Log.Info("Account deleted",
		zap.String("user_id", target.Hex()),
		zap.Int("photos", len(owned)),
		zap.Int64("photos_with_comments_removed", pulled),
	)
	return nil
}
