package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"photoshare/filestore"
	"photoshare/handlers"
	"photoshare/middleware"
	"photoshare/service"
	"photoshare/session"
	"photoshare/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type client struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func newServer(t *testing.T) *gin.Engine {
	t.Helper()
	dir := t.TempDir()
	files, err := filestore.NewDiskStorage(dir)
	require.NoError(t, err)
	sessions := session.NewManager(session.NewMemoryStore(), "test-secret", time.Hour)
	svc := service.New(service.Deps{
		Users:      store.NewMemoryUsers(),
		Photos:     store.NewMemoryPhotos(),
		Favorites:  store.NewMemoryFavorites(),
		Files:      files,
		Sessions:   sessions,
		BcryptCost: bcrypt.MinCost,
	})
	h := handlers.New(svc, handlers.Options{SessionTTL: time.Hour, MaxUploadBytes: 1 << 20})
	return SetupRouter(h, sessions, Options{
		CORSOrigins:  []string{"http://localhost:3000"},
		LoginLimiter: middleware.NewIPRateLimiter(100),
		ImageDir:     dir,
	})
}

func (c *client) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func (c *client) json(method, path string, payload any) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(c.t, err)
		body = bytes.NewReader(b)
	}
	return c.do(method, path, body, "application/json")
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// signup registers and logs in, returning a client carrying the session
// token and the new user's id.
func signup(t *testing.T, router *gin.Engine, login, first, last string) (*client, string) {
	t.Helper()
	c := &client{t: t, router: router}
	w := c.json(http.MethodPost, "/user", map[string]string{
		"login_name": login, "password": "pw", "first_name": first, "last_name": last,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = c.json(http.MethodPost, "/admin/login", map[string]string{"login_name": login, "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[map[string]string](t, w)
	require.NotEmpty(t, res["token"])

	var cookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == middleware.SessionCookie {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	c.token = res["token"]
	return c, res["_id"]
}

func (c *client) upload(name string) string {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("uploadedphoto", name)
	require.NoError(c.t, err)
	_, _ = part.Write([]byte("jpeg-bytes"))
	require.NoError(c.t, mw.Close())

	w := c.do(http.MethodPost, "/photos/new", &buf, mw.FormDataContentType())
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())
	return decode[map[string]any](c.t, w)["_id"].(string)
}

func TestHealthAndMetrics(t *testing.T) {
	c := &client{t: t, router: newServer(t)}
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/health", nil, "").Code)

	w := c.do(http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "photoshare_http_requests_total")
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	c := &client{t: t, router: newServer(t)}
	for _, path := range []string{"/user/list", "/user/current", "/favorites"} {
		w := c.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestDuplicateRegistration(t *testing.T) {
	router := newServer(t)
	_, firstID := signup(t, router, "ann", "Ann", "A")

	c := &client{t: t, router: router}
	w := c.json(http.MethodPost, "/user", map[string]string{
		"login_name": "ann", "password": "x", "first_name": "B", "last_name": "B",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", decode[map[string]string](t, w)["code"])

	login := c.json(http.MethodPost, "/admin/login", map[string]string{"login_name": "ann", "password": "pw"})
	require.Equal(t, http.StatusOK, login.Code)
	assert.Equal(t, firstID, decode[map[string]string](t, login)["_id"])
}

func TestBadLogin(t *testing.T) {
	router := newServer(t)
	signup(t, router, "ann", "Ann", "A")
	c := &client{t: t, router: router}

	w := c.json(http.MethodPost, "/admin/login", map[string]string{"login_name": "ann", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = c.json(http.MethodPost, "/admin/login", map[string]string{"login_name": "ann"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCommentMentionFlow(t *testing.T) {
	router := newServer(t)
	alice, aliceID := signup(t, router, "alice", "Alice", "Anders")
	bob, _ := signup(t, router, "bob", "Bob", "B")
	_, carolID := signup(t, router, "carol", "Carol", "C")

	photoID := alice.upload("p.jpg")

	w := bob.json(http.MethodPost, "/commentsOfPhoto/"+photoID, map[string]any{
		"comment":  "Hello @[Carol](" + carolID + ")",
		"mentions": []string{carolID},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	added := decode[struct {
		Comment struct {
			ID   string `json:"_id"`
			User struct {
				FirstName string `json:"first_name"`
			} `json:"user"`
		} `json:"comment"`
	}](t, w)
	assert.Equal(t, "Bob", added.Comment.User.FirstName)

	w = bob.json(http.MethodPost, "/commentsOfPhoto/"+photoID, map[string]any{"comment": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = alice.do(http.MethodGet, "/mentionsOfUser/"+carolID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	mentions := decode[[]map[string]any](t, w)
	require.Len(t, mentions, 1)
	assert.Equal(t, photoID, mentions[0]["_id"])
	assert.Equal(t, aliceID, mentions[0]["user_id"])
	assert.Equal(t, "Alice", mentions[0]["owner_first_name"])

	w = alice.do(http.MethodDelete, "/comments/"+photoID+"/"+added.Comment.ID, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = bob.do(http.MethodDelete, "/comments/"+photoID+"/"+added.Comment.ID, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = alice.do(http.MethodGet, "/photosOfUser/"+aliceID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	photos := decode[[]map[string]any](t, w)
	require.Len(t, photos, 1)
	assert.Empty(t, photos[0]["comments"])

	w = alice.do(http.MethodGet, "/photosOfUser/not-an-id", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFavoritesFlow(t *testing.T) {
	router := newServer(t)
	alice, _ := signup(t, router, "alice", "Alice", "A")
	bob, _ := signup(t, router, "bob", "Bob", "B")
	photoID := alice.upload("p.jpg")

	assert.Equal(t, http.StatusCreated, bob.do(http.MethodPost, "/favorites/add/"+photoID, nil, "").Code)
	assert.Equal(t, http.StatusConflict, bob.do(http.MethodPost, "/favorites/add/"+photoID, nil, "").Code)

	w := bob.do(http.MethodGet, "/favorites", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	assert.Equal(t, http.StatusOK, bob.do(http.MethodDelete, "/favorites/remove/"+photoID, nil, "").Code)
	assert.Equal(t, http.StatusOK, bob.do(http.MethodDelete, "/favorites/remove/"+photoID, nil, "").Code)
}

func TestDeleteAccountFlow(t *testing.T) {
	router := newServer(t)
	alice, aliceID := signup(t, router, "alice", "Alice", "A")
	bob, bobID := signup(t, router, "bob", "Bob", "B")
	alicePhoto := alice.upload("a.jpg")
	bob.upload("b.jpg")

	w := bob.json(http.MethodPost, "/commentsOfPhoto/"+alicePhoto, map[string]any{"comment": "hi"})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusForbidden, alice.do(http.MethodDelete, "/user/"+bobID, nil, "").Code)
	assert.Equal(t, http.StatusOK, bob.do(http.MethodDelete, "/user/"+bobID, nil, "").Code)

	// The deleting session is gone.
	assert.Equal(t, http.StatusUnauthorized, bob.do(http.MethodGet, "/user/list", nil, "").Code)

	assert.Equal(t, http.StatusNotFound, alice.do(http.MethodGet, "/user/"+bobID, nil, "").Code)

	w = alice.do(http.MethodGet, "/photosOfUser/"+bobID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]map[string]any](t, w))

	w = alice.do(http.MethodGet, "/photosOfUser/"+aliceID, nil, "")
	photos := decode[[]map[string]any](t, w)
	require.Len(t, photos, 1)
	assert.Empty(t, photos[0]["comments"])
}

func TestLogout(t *testing.T) {
	router := newServer(t)
	alice, _ := signup(t, router, "alice", "Alice", "A")

	assert.Equal(t, http.StatusOK, alice.do(http.MethodGet, "/user/current", nil, "").Code)
	assert.Equal(t, http.StatusOK, alice.do(http.MethodPost, "/admin/logout", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, alice.do(http.MethodGet, "/user/current", nil, "").Code)
}
