package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/ikkim/photoshare-backend/config"
	"github.com/ikkim/photoshare-backend/internal/app/controller"
	"github.com/ikkim/photoshare-backend/internal/app/repository"
	"github.com/ikkim/photoshare-backend/internal/app/service"
	"github.com/ikkim/photoshare-backend/internal/db"
	"github.com/ikkim/photoshare-backend/internal/middleware"
	"github.com/ikkim/photoshare-backend/internal/router"
	"github.com/ikkim/photoshare-backend/internal/storage"
	ws "github.com/ikkim/photoshare-backend/internal/websocket"
	"github.com/ikkim/photoshare-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const integrationSecret = "integration-secret"

type TestServer struct {
	Router  *gin.Engine
	DB      *gorm.DB
	Storage *storage.MemoryStorage
}

// setupIntegrationTest wires the full router the way cmd/server does with
// redis disabled
func setupIntegrationTest(t *testing.T) *TestServer {
	util.SetHashCost(4)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	cfg := &config.Config{
		Server: config.ServerConfig{GinMode: gin.TestMode},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
	store := storage.NewMemoryStorage("https://cdn.test", "photoshare")
	hub := ws.NewHub()

	userRepo := repository.NewUserRepository(testDB)
	resetRepo := repository.NewPasswordResetRepository(testDB)
	photoRepo := repository.NewPhotoRepository(testDB)
	tagRepo := repository.NewTagRepository(testDB)
	transformationRepo := repository.NewTransformationRepository(testDB)
	commentRepo := repository.NewCommentRepository(testDB)
	ratingRepo := repository.NewRatingRepository(testDB)

	authService := service.NewAuthService(userRepo, resetRepo, nil, integrationSecret,
		15*time.Minute, 7*24*time.Hour, time.Hour)

	r := router.NewRouter(
		controller.NewAuthController(authService),
		controller.NewUserController(service.NewUserService(userRepo, photoRepo, commentRepo, store), 1<<20),
		controller.NewPhotoController(service.NewPhotoService(photoRepo, tagRepo, ratingRepo, store), 1<<20),
		controller.NewTransformationController(service.NewTransformationService(transformationRepo, photoRepo, store)),
		controller.NewTagController(service.NewTagService(tagRepo)),
		controller.NewCommentController(service.NewCommentService(commentRepo, photoRepo, nil, hub), hub, cfg.CORS.AllowedOrigins),
		controller.NewRatingController(service.NewRatingService(ratingRepo, photoRepo)),
		controller.NewHealthController(testDB, nil),
		middleware.NewAuthMiddleware(integrationSecret, userRepo, nil),
		nil,
		cfg,
	)

	return &TestServer{Router: r.Setup(), DB: testDB, Storage: store}
}

func (s *TestServer) request(t *testing.T, method, path string, body io.Reader, contentType, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func (s *TestServer) json(t *testing.T, method, path string, payload interface{}, token string) *httptest.ResponseRecorder {
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return s.request(t, method, path, bytes.NewReader(body), "application/json", token)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func testImage(t *testing.T) []byte {
	var buf bytes.Buffer
	img := imaging.New(40, 30, color.NRGBA{R: 30, G: 140, B: 200, A: 255})
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func photoUpload(t *testing.T, title string, tags []string, file []byte) (io.Reader, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("title", title))
	for _, tag := range tags {
		require.NoError(t, writer.WriteField("tags", tag))
	}
	part, err := writer.CreateFormFile("file", "photo.png")
	require.NoError(t, err)
	_, err = part.Write(file)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func (s *TestServer) signupAndLogin(t *testing.T, username string) string {
	email := username + "@example.com"
	w := s.json(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": username,
		"email":    email,
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.json(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := decode(t, w)["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestIntegration_Health(t *testing.T) {
	server := setupIntegrationTest(t)

	w := server.request(t, http.MethodGet, "/health", nil, "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = server.request(t, http.MethodGet, "/api/healthchecker", nil, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIntegration_CORS(t *testing.T) {
	server := setupIntegrationTest(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/photos", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	w = httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestIntegration_PhotoFlow(t *testing.T) {
	server := setupIntegrationTest(t)
	adminToken := server.signupAndLogin(t, "admin")
	bobToken := server.signupAndLogin(t, "bob")

	// bob uploads a tagged photo
	body, contentType := photoUpload(t, "Night market", []string{"travel, Night"}, testImage(t))
	w := server.request(t, http.MethodPost, "/api/photos", body, contentType, bobToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	photo := decode(t, w)["data"].(map[string]interface{})
	photoID := uint(photo["id"].(float64))
	assert.Len(t, photo["tags"], 2)

	w = server.request(t, http.MethodGet, "/api/photos?query=night", nil, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])

	w = server.request(t, http.MethodGet, "/api/tags", nil, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 2)

	// comments and ratings from another user
	w = server.json(t, http.MethodPost, "/api/comments", map[string]interface{}{
		"photo_id": photoID,
		"comment":  "Lovely colours",
	}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = server.request(t, http.MethodGet, fmt.Sprintf("/api/comments/%d", photoID), nil, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)

	w = server.json(t, http.MethodPost, fmt.Sprintf("/api/rating/%d", photoID), map[string]int{"rating": 5}, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	w = server.json(t, http.MethodPost, fmt.Sprintf("/api/rating/%d", photoID), map[string]int{"rating": 2}, bobToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = server.request(t, http.MethodGet, fmt.Sprintf("/api/rating/%d", photoID), nil, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3.5, decode(t, w)["rating"])

	w = server.request(t, http.MethodGet, fmt.Sprintf("/api/photos/%d", photoID), nil, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3.5, decode(t, w)["data"].(map[string]interface{})["rating"])

	// transformation with a QR code
	w = server.json(t, http.MethodPost, fmt.Sprintf("/api/photos/%d/transformations", photoID), map[string]interface{}{
		"width":  20,
		"effect": "sepia",
	}, bobToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	transformationID := uint(decode(t, w)["data"].(map[string]interface{})["id"].(float64))

	w = server.request(t, http.MethodPost, fmt.Sprintf("/api/transformations/%d/qrcode", transformationID), nil, "", adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = server.request(t, http.MethodGet, fmt.Sprintf("/api/transformations/%d/qrcode", transformationID), nil, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, server.Storage.Len(), "original, rendition and QR code")

	// profile counters
	w = server.request(t, http.MethodGet, "/api/user/profile/bob", nil, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), profile["count_photos"])
	assert.Equal(t, float64(0), profile["count_comments"])

	// deleting the photo removes every stored asset
	w = server.request(t, http.MethodDelete, fmt.Sprintf("/api/photos/%d", photoID), nil, "", bobToken)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, server.Storage.Len())

	w = server.request(t, http.MethodGet, fmt.Sprintf("/api/comments/%d", photoID), nil, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIntegration_Moderation(t *testing.T) {
	server := setupIntegrationTest(t)
	adminToken := server.signupAndLogin(t, "admin")
	bobToken := server.signupAndLogin(t, "bob")

	w := server.request(t, http.MethodGet, "/api/user/all", nil, "", bobToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = server.json(t, http.MethodPatch, "/api/user/change_role", map[string]string{
		"email": "bob@example.com",
		"role":  "moderator",
	}, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = server.json(t, http.MethodPatch, "/api/user/block", map[string]interface{}{
		"email": "bob@example.com",
		"block": true,
	}, adminToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = server.json(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "bob@example.com",
		"password": "password123",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "User is blocked", decode(t, w)["message"])
}

func TestIntegration_Logout_WithoutRedis(t *testing.T) {
	server := setupIntegrationTest(t)
	token := server.signupAndLogin(t, "alice")

	w := server.request(t, http.MethodGet, "/api/auth/logout", nil, "", token)
	require.Equal(t, http.StatusNoContent, w.Code)

	// no blacklist is configured, the access token lives until it expires
	w = server.request(t, http.MethodGet, "/api/user/current", nil, "", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIntegration_RoleChangeAppliesToIssuedTokens(t *testing.T) {
	server := setupIntegrationTest(t)
	adminToken := server.signupAndLogin(t, "admin")
	bobToken := server.signupAndLogin(t, "bob")

	changeRole := func(token, email, role string) *httptest.ResponseRecorder {
		return server.json(t, http.MethodPatch, "/api/user/change_role", map[string]string{
			"email": email,
			"role":  role,
		}, token)
	}

	// promotion is honoured by the token bob already holds
	require.Equal(t, http.StatusOK, changeRole(adminToken, "bob@example.com", "admin").Code)
	w := server.request(t, http.MethodGet, "/api/user/all", nil, "", bobToken)
	assert.Equal(t, http.StatusOK, w.Code)

	// and so is the demotion
	require.Equal(t, http.StatusOK, changeRole(adminToken, "bob@example.com", "user").Code)
	w = server.request(t, http.MethodGet, "/api/user/all", nil, "", bobToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = changeRole(bobToken, "admin@example.com", "user")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = server.request(t, http.MethodGet, "/api/user/current", nil, "", adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", decode(t, w)["data"].(map[string]interface{})["role"])
}

func TestIntegration_BlockedUserTokenRejected(t *testing.T) {
	server := setupIntegrationTest(t)
	adminToken := server.signupAndLogin(t, "admin")
	bobToken := server.signupAndLogin(t, "bob")

	w := server.request(t, http.MethodGet, "/api/user/current", nil, "", bobToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = server.json(t, http.MethodPatch, "/api/user/block", map[string]interface{}{
		"email": "bob@example.com",
		"block": true,
	}, adminToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = server.request(t, http.MethodGet, "/api/user/current", nil, "", bobToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_USER_BLOCKED", decode(t, w)["error"])

	w = server.json(t, http.MethodPatch, "/api/user/block", map[string]interface{}{
		"email": "bob@example.com",
		"block": false,
	}, adminToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = server.request(t, http.MethodGet, "/api/user/current", nil, "", bobToken)
	assert.Equal(t, http.StatusOK, w.Code)
}
