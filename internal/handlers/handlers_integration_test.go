package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"strings"
	"testing"

	"spots/internal/database/dbtest"
	"spots/internal/geo"
	"spots/internal/handlers"
	"spots/internal/middleware"
	"spots/internal/repositories"
	"spots/internal/services"
	"spots/internal/spotquery"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionCookie = "spots_session"

type testApp struct {
	app   *fiber.App
	users *repositories.GORMUserRepository
}

// setupApp builds the full route table over a fresh in-memory database.
func setupApp(t *testing.T) *testApp {
	t.Helper()
	db := dbtest.New(t)

	userRepo := repositories.NewGORMUserRepository(db)
	spotRepo, err := repositories.NewGORMSpotRepository(db, spotquery.DialectSQLite)
	require.NoError(t, err)
	reviewRepo := repositories.NewGORMReviewRepository(db)
	favoriteRepo := repositories.NewGORMFavoriteRepository(db)

	authService := services.NewAuthService(userRepo, "test_jwt_secret")
	spotService := services.NewSpotService(spotRepo, reviewRepo, favoriteRepo, geo.NewClassifier(), nil)
	reviewService := services.NewReviewService(reviewRepo, spotRepo, nil)
	favoriteService := services.NewFavoriteService(favoriteRepo, spotRepo, nil)

	app := fiber.New()
	app.Use(middleware.Authenticate(authService, sessionCookie))

	handlers.NewAuthHandler(authService, sessionCookie).RegisterRoutes(app)
	handlers.NewSpotHandler(spotService).RegisterRoutes(app)
	handlers.NewReviewHandler(reviewService).RegisterRoutes(app)
	handlers.NewFavoriteHandler(favoriteService).RegisterRoutes(app)

	return &testApp{app: app, users: userRepo}
}

// TestMain silences the global logger for cleaner output
func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func (a *testApp) do(t *testing.T, req *http.Request, token string) *http.Response {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(t, req, token)
}

func (a *testApp) postJSON(t *testing.T, path string, body interface{}, token string) *http.Response {
	t.Helper()
	jsonBody, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	return a.do(t, req, token)
}

func (a *testApp) get(t *testing.T, path, token string) *http.Response {
	t.Helper()
	return a.do(t, httptest.NewRequest(http.MethodGet, path, nil), token)
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, out), string(body))
}

// signup registers and logs in a user, returning the session token.
func (a *testApp) signup(t *testing.T, username string) string {
	t.Helper()
	resp := a.postForm(t, "/register", url.Values{"username": {username}, "password": {"password123"}}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = a.postForm(t, "/login", url.Values{"username": {username}, "password": {"password123"}}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var loginResp map[string]string
	decode(t, resp, &loginResp)
	require.NotEmpty(t, loginResp["token"])
	return loginResp["token"]
}

func (a *testApp) admin(t *testing.T, username string) string {
	t.Helper()
	token := a.signup(t, username)
	require.NoError(t, a.users.SetAdmin(context.Background(), username, true))
	return token
}

func (a *testApp) createSpot(t *testing.T, token string, spot map[string]interface{}) uint {
	t.Helper()
	resp := a.postJSON(t, "/add-spot", spot, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID    uint `json:"id"`
		Close bool `json:"close"`
	}
	decode(t, resp, &created)
	require.NotZero(t, created.ID)
	return created.ID
}

func (a *testApp) review(t *testing.T, token string, spotID uint, rating string) int {
	t.Helper()
	resp := a.postForm(t, spotPath(spotID, "/review"), url.Values{"rating": {rating}, "text": {"ok"}}, token)
	resp.Body.Close()
	return resp.StatusCode
}

func spotPath(id uint, suffix string) string {
	return "/spot/" + strconv.FormatUint(uint64(id), 10) + suffix
}

type summary struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Affordable  bool     `json:"affordable"`
	AvgRating   *float64 `json:"avg_rating"`
	ReviewCount int      `json:"review_count"`
}

type browseResponse struct {
	Spots   []summary `json:"spots"`
	Markers []struct {
		ID uint `json:"id"`
	} `json:"markers"`
}

func names(spots []summary) []string {
	out := make([]string, 0, len(spots))
	for _, s := range spots {
		out = append(out, s.Name)
	}
	return out
}

func TestAuthRegisterAndLogin(t *testing.T) {
	a := setupApp(t)

	resp := a.get(t, "/register", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = a.postJSON(t, "/register", map[string]string{"username": "testuser", "password": "password123"}, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var registerResp map[string]interface{}
	decode(t, resp, &registerResp)
	assert.Equal(t, "User registered successfully", registerResp["message"])
	user := registerResp["user"].(map[string]interface{})
	assert.NotContains(t, user, "hash")

	// Duplicate username
	resp = a.postJSON(t, "/register", map[string]string{"username": "testuser", "password": "other"}, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Missing password
	resp = a.postForm(t, "/register", url.Values{"username": {"nopass"}}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Wrong password
	resp = a.postForm(t, "/login", url.Values{"username": {"testuser"}, "password": {"nope"}}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = a.postForm(t, "/login", url.Values{"username": {"testuser"}, "password": {"password123"}}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var session *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == sessionCookie {
			session = ck
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	resp.Body.Close()

	// The cookie alone authenticates.
	req := httptest.NewRequest(http.MethodGet, "/my-reviews", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: session.Value})
	resp = a.do(t, req, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = a.get(t, "/logout", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	cleared := false
	for _, ck := range resp.Cookies() {
		if ck.Name == sessionCookie && ck.Value == "" {
			cleared = true
		}
	}
	assert.True(t, cleared)
	resp.Body.Close()
}

func TestLoggedInRoutesRejectAnonymous(t *testing.T) {
	a := setupApp(t)

	for _, path := range []string{"/spots", "/spot/1", "/add-spot", "/my-reviews", "/favorites"} {
		resp := a.get(t, path, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		resp.Body.Close()
	}

	req := httptest.NewRequest(http.MethodGet, "/favorites", nil)
	req.Header.Set("Accept", "text/html")
	resp := a.do(t, req, "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	resp.Body.Close()

	// Home page is public.
	resp = a.get(t, "/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestBrowseFilters(t *testing.T) {
	a := setupApp(t)
	token := a.signup(t, "browser")
	other := a.signup(t, "other")

	nero := a.createSpot(t, token, map[string]interface{}{"name": "Cafe Nero", "category": "Cafe", "affordable": true, "latitude": 42.3745, "longitude": -71.1172})
	blue := a.createSpot(t, token, map[string]interface{}{"name": "Bluebird", "category": "Cafe", "affordable": true})
	luna := a.createSpot(t, token, map[string]interface{}{"name": "Cafe Luna", "category": "Cafe", "affordable": true})
	posh := a.createSpot(t, token, map[string]interface{}{"name": "Cafe Posh", "category": "Cafe"})
	a.createSpot(t, token, map[string]interface{}{"name": "Cafe Empty", "category": "Cafe", "affordable": true})

	require.Equal(t, http.StatusCreated, a.review(t, token, nero, "5"))
	require.Equal(t, http.StatusCreated, a.review(t, other, nero, "4"))
	require.Equal(t, http.StatusCreated, a.review(t, token, blue, "4"))
	require.Equal(t, http.StatusCreated, a.review(t, token, luna, "3"))
	require.Equal(t, http.StatusCreated, a.review(t, token, posh, "5"))

	var result browseResponse
	decode(t, a.get(t, "/spots?q=Cafe&min_rating=4.0&affordable=1", token), &result)
	assert.Equal(t, []string{"Bluebird", "Cafe Nero"}, names(result.Spots))
	for _, s := range result.Spots {
		assert.True(t, s.Affordable)
		require.NotNil(t, s.AvgRating)
		assert.GreaterOrEqual(t, *s.AvgRating, 4.0)
	}
	require.Len(t, result.Markers, 1)
	assert.Equal(t, nero, result.Markers[0].ID)

	// No filter: everything, unreviewed spots with null average.
	result = browseResponse{}
	decode(t, a.get(t, "/spots", token), &result)
	assert.Len(t, result.Spots, 5)
	for _, s := range result.Spots {
		if s.Name == "Cafe Empty" {
			assert.Nil(t, s.AvgRating)
			assert.Equal(t, 0, s.ReviewCount)
		}
	}

	// Unchecked tags impose nothing.
	result = browseResponse{}
	decode(t, a.get(t, "/spots?affordable=0&q=%20%20", token), &result)
	assert.Len(t, result.Spots, 5)

	for _, bad := range []string{"/spots?min_rating=high", "/spots?late_night=maybe"} {
		resp := a.get(t, bad, token)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, bad)
		resp.Body.Close()
	}
}

func TestHomeTopRated(t *testing.T) {
	a := setupApp(t)
	token := a.signup(t, "rater")

	good := a.createSpot(t, token, map[string]interface{}{"name": "Good"})
	a.createSpot(t, token, map[string]interface{}{"name": "Unreviewed"})
	require.Equal(t, http.StatusCreated, a.review(t, token, good, "4"))

	var home struct {
		Spots []summary `json:"spots"`
	}
	decode(t, a.get(t, "/", ""), &home)
	assert.Equal(t, []string{"Good"}, names(home.Spots))
}

func TestReviewValidation(t *testing.T) {
	a := setupApp(t)
	token := a.signup(t, "critic")
	id := a.createSpot(t, token, map[string]interface{}{"name": "Diner"})

	assert.Equal(t, http.StatusBadRequest, a.review(t, token, id, "6"))
	assert.Equal(t, http.StatusBadRequest, a.review(t, token, id, "0"))
	assert.Equal(t, http.StatusBadRequest, a.review(t, token, id, "great"))
	assert.Equal(t, http.StatusNotFound, a.review(t, token, 9999, "4"))
	assert.Equal(t, http.StatusCreated, a.review(t, token, id, "5"))

	var mine struct {
		Reviews []struct {
			SpotName string `json:"spot_name"`
			Rating   int    `json:"rating"`
		} `json:"reviews"`
	}
	decode(t, a.get(t, "/my-reviews", token), &mine)
	require.Len(t, mine.Reviews, 1)
	assert.Equal(t, "Diner", mine.Reviews[0].SpotName)
}

func TestSpotValidation(t *testing.T) {
	a := setupApp(t)
	token := a.signup(t, "maker")

	resp := a.postForm(t, "/add-spot", url.Values{"category": {"Cafe"}}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = a.postJSON(t, "/add-spot", map[string]interface{}{"name": "Pole", "latitude": 91.0}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = a.postForm(t, "/add-spot", url.Values{"name": {"Checkbox Cafe"}, "late_night": {"on"}}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		LateNight bool `json:"late_night"`
	}
	decode(t, resp, &created)
	assert.True(t, created.LateNight)
}

func TestDetailAndFavorites(t *testing.T) {
	a := setupApp(t)
	token := a.signup(t, "fan")
	id := a.createSpot(t, token, map[string]interface{}{"name": "Arcade"})

	resp := a.get(t, "/spot/9999", token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
	resp = a.get(t, "/spot/abc", token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	for i := 0; i < 2; i++ {
		resp = a.postForm(t, spotPath(id, "/favorite"), url.Values{}, token)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	var favs struct {
		Spots []summary `json:"spots"`
	}
	decode(t, a.get(t, "/favorites", token), &favs)
	assert.Len(t, favs.Spots, 1)

	var detail struct {
		IsFavorite  bool          `json:"is_favorite"`
		AvgRating   *float64      `json:"avg_rating"`
		ReviewCount int           `json:"review_count"`
		Reviews     []interface{} `json:"reviews"`
	}
	decode(t, a.get(t, spotPath(id, ""), token), &detail)
	assert.True(t, detail.IsFavorite)
	assert.Nil(t, detail.AvgRating)
	assert.Equal(t, 0, detail.ReviewCount)
	assert.Empty(t, detail.Reviews)

	resp = a.postForm(t, spotPath(id, "/unfavorite"), url.Values{}, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	favs.Spots = nil
	decode(t, a.get(t, "/favorites", token), &favs)
	assert.Empty(t, favs.Spots)
}

func TestAdminEditAndDelete(t *testing.T) {
	a := setupApp(t)
	member := a.signup(t, "member")
	boss := a.admin(t, "boss")

	id := a.createSpot(t, member, map[string]interface{}{"name": "Near", "latitude": 42.3745, "longitude": -71.1172})
	require.Equal(t, http.StatusCreated, a.review(t, member, id, "4"))

	resp := a.get(t, spotPath(id, "/edit"), member)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
	resp = a.postForm(t, spotPath(id, "/delete"), url.Values{}, member)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	var current struct {
		Name  string `json:"name"`
		Close bool   `json:"close"`
	}
	decode(t, a.get(t, spotPath(id, "/edit"), boss), &current)
	assert.Equal(t, "Near", current.Name)
	assert.True(t, current.Close)

	resp = a.postJSON(t, spotPath(id, "/edit"), map[string]interface{}{"name": "Far", "latitude": 40.0, "longitude": -70.0}, boss)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &current)
	assert.Equal(t, "Far", current.Name)
	assert.True(t, current.Close)

	resp = a.postForm(t, spotPath(id, "/delete"), url.Values{}, boss)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = a.get(t, spotPath(id, ""), member)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	var mine struct {
		Reviews []interface{} `json:"reviews"`
	}
	decode(t, a.get(t, "/my-reviews", member), &mine)
	assert.Empty(t, mine.Reviews)

	resp = a.postForm(t, spotPath(id, "/delete"), url.Values{}, boss)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
