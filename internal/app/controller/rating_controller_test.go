package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/ikkim/photoshare-backend/internal/app/model"
	apperrors "github.com/ikkim/photoshare-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRatingControllerTest(t *testing.T) *testAPI {
	api := setupAPI(t)
	ctrl := NewRatingController(api.ratingService)

	staff := api.auth.RequireRole(model.RoleAdmin, model.RoleModerator)
	rating := api.engine.Group("/rating")
	rating.GET("/:photo_id", ctrl.Summary)
	rating.POST("/:photo_id", api.auth.Authenticate(), ctrl.Rate)
	rating.DELETE("/:photo_id", api.auth.Authenticate(), ctrl.DeleteOwn)
	rating.GET("/:photo_id/all", api.auth.Authenticate(), staff, ctrl.List)
	rating.DELETE("/:photo_id/users/:user_id", api.auth.Authenticate(), staff, ctrl.DeleteForUser)
	return api
}

func TestRatingController_RateAndSummary(t *testing.T) {
	api := setupRatingControllerTest(t)
	owner, aliceToken := api.createUser(t, "alice", model.RoleUser)
	_, bobToken := api.createUser(t, "bob", model.RoleUser)
	photo := api.createPhoto(t, owner, "Sunset")
	path := fmt.Sprintf("/rating/%d", photo.ID)

	w := api.do(http.MethodGet, path, nil, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	summary := decodeBody(t, w)
	assert.Equal(t, float64(0), summary["rating"])
	assert.Equal(t, float64(0), summary["count"])

	w = api.doJSON(http.MethodPost, path, RatePhotoRequest{Rating: 2}, aliceToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(2), dataOf(t, w)["rating"])

	// a second rating from the same user replaces the first
	w = api.doJSON(http.MethodPost, path, RatePhotoRequest{Rating: 4}, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	w = api.doJSON(http.MethodPost, path, RatePhotoRequest{Rating: 5}, bobToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, path, nil, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	summary = decodeBody(t, w)
	assert.Equal(t, float64(photo.ID), summary["photo_id"])
	assert.Equal(t, 4.5, summary["rating"])
	assert.Equal(t, float64(2), summary["count"])
}

func TestRatingController_Rate_Rejections(t *testing.T) {
	api := setupRatingControllerTest(t)
	owner, token := api.createUser(t, "alice", model.RoleUser)
	photo := api.createPhoto(t, owner, "Sunset")
	path := fmt.Sprintf("/rating/%d", photo.ID)

	tests := []struct {
		name   string
		path   string
		body   interface{}
		token  string
		status int
		code   string
	}{
		{"anonymous", path, RatePhotoRequest{Rating: 3}, "", http.StatusUnauthorized, ""},
		{"missing value", path, map[string]interface{}{}, token, http.StatusBadRequest, apperrors.RatingInvalidValue},
		{"above range", path, RatePhotoRequest{Rating: 6}, token, http.StatusBadRequest, apperrors.RatingInvalidValue},
		{"below range", path, RatePhotoRequest{Rating: -1}, token, http.StatusBadRequest, apperrors.RatingInvalidValue},
		{"unknown photo", "/rating/999", RatePhotoRequest{Rating: 3}, token, http.StatusNotFound, apperrors.PhotoNotFound},
		{"invalid id", "/rating/abc", RatePhotoRequest{Rating: 3}, token, http.StatusBadRequest, apperrors.ValidationInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.doJSON(http.MethodPost, tt.path, tt.body, tt.token)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeBody(t, w)["error"])
			}
		})
	}

	w := api.do(http.MethodGet, path, nil, "", "")
	assert.Equal(t, float64(0), decodeBody(t, w)["count"])
}

func TestRatingController_Delete(t *testing.T) {
	api := setupRatingControllerTest(t)
	alice, aliceToken := api.createUser(t, "alice", model.RoleUser)
	bob, bobToken := api.createUser(t, "bob", model.RoleUser)
	_, moderatorToken := api.createUser(t, "mod", model.RoleModerator)
	photo := api.createPhoto(t, alice, "Sunset")
	path := fmt.Sprintf("/rating/%d", photo.ID)

	_, err := api.ratingService.RatePhoto(alice.ID, photo.ID, 3)
	require.NoError(t, err)
	_, err = api.ratingService.RatePhoto(bob.ID, photo.ID, 1)
	require.NoError(t, err)

	w := api.do(http.MethodDelete, path, nil, "", aliceToken)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodDelete, path, nil, "", aliceToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.RatingNotFound, decodeBody(t, w)["error"])

	w = api.do(http.MethodGet, path+"/all", nil, "", bobToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, path+"/all", nil, "", moderatorToken)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody(t, w)["data"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, float64(bob.ID), list[0].(map[string]interface{})["user_id"])

	userPath := fmt.Sprintf("%s/users/%d", path, bob.ID)
	w = api.do(http.MethodDelete, userPath, nil, "", bobToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodDelete, userPath, nil, "", moderatorToken)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodGet, path, nil, "", "")
	assert.Equal(t, float64(0), decodeBody(t, w)["count"])
}
