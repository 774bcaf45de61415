package main

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"hack-portal.backend/internal/domain/entities"
)

func newPromoteTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE TABLE profile (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'applicant'
	);`).Error)
	return db
}

func TestSetRole(t *testing.T) {
	db := newPromoteTestDB(t)
	id := uuid.New()
	require.NoError(t, db.Exec(`INSERT INTO profile (id, email, role) VALUES (?, ?, 'applicant')`,
		id.String(), "jane@x.io").Error)

	require.NoError(t, setRole(context.Background(), db, "jane@x.io", entities.RoleAdmin))

	var role string
	require.NoError(t, db.Table("profile").Select("role").Where("id = ?", id.String()).Scan(&role).Error)
	assert.Equal(t, "admin", role)

	require.NoError(t, setRole(context.Background(), db, "jane@x.io", entities.RoleApplicant))
	require.NoError(t, db.Table("profile").Select("role").Where("id = ?", id.String()).Scan(&role).Error)
	assert.Equal(t, "applicant", role)
}

func TestSetRole_UnknownEmail(t *testing.T) {
	db := newPromoteTestDB(t)

	err := setRole(context.Background(), db, "ghost@x.io", entities.RoleAdmin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost@x.io")
}
