package repository

import (
	"fmt"
	"testing"

	"github.com/ikkim/photoshare-backend/internal/app/model"
	"github.com/ikkim/photoshare-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func createUser(t *testing.T, testDB *gorm.DB, username string) *model.User {
	user := &model.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "hashedpassword",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func createPhoto(t *testing.T, testDB *gorm.DB, owner *model.User, title string, tags ...model.Tag) *model.Photo {
	photo := &model.Photo{
		Title:     title,
		OwnerID:   owner.ID,
		PublicID:  "photoshare/photos/" + title + ".jpg",
		SecureURL: "https://cdn.test/photoshare/photos/" + title + ".jpg",
		Folder:    model.FolderPhotos,
		Tags:      tags,
	}
	require.NoError(t, testDB.Create(photo).Error)
	return photo
}
