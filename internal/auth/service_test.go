package auth

import (
	"testing"

	"sitestock-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupAuthTest(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	orgID := uuid.New()
	u := &domain.User{
		Fullname:     "Site Manager",
		Email:        email,
		PasswordHash: string(hash),
		OrgID:        &orgID,
		Role:         "manager",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestLoginUser(t *testing.T) {
	db := setupAuthTest(t)
	seeded := seedUser(t, db, "manager@example.com", "s3cret")

	u, err := LoginUser(db, LoginInput{Email: "manager@example.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, seeded.UserID, u.UserID)
	assert.Equal(t, "manager", u.Role)
}

func TestLoginUser_Failures(t *testing.T) {
	db := setupAuthTest(t)
	seedUser(t, db, "manager@example.com", "s3cret")

	_, err := LoginUser(db, LoginInput{})
	assert.ErrorIs(t, err, ErrEmailPasswordRequired)

	_, err = LoginUser(db, LoginInput{Email: "nobody@example.com", Password: "s3cret"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = LoginUser(db, LoginInput{Email: "manager@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrIncorrectPassword)
}

func TestVerifyUser(t *testing.T) {
	orgID := uuid.NewString()
	shape, err := VerifyUser(map[string]interface{}{
		"user_id":  uuid.NewString(),
		"fullname": "Site Manager",
		"email":    "manager@example.com",
		"role":     "manager",
		"org_id":   orgID,
	})
	require.NoError(t, err)
	assert.Equal(t, "manager", shape.Role)
	require.NotNil(t, shape.OrgID)
	assert.Equal(t, orgID, *shape.OrgID)

	_, err = VerifyUser(nil)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = VerifyUser(map[string]interface{}{"fullname": "no id"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = VerifyUser("not a map")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
