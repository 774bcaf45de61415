package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createProfileTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE profile (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		display_name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'applicant',
		is_profile_complete BOOLEAN NOT NULL DEFAULT 0,
		dob DATETIME,
		school TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createApplicationTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE application (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'Draft',
		phone_number TEXT NOT NULL,
		address TEXT NOT NULL,
		citizenship TEXT NOT NULL,
		is_student BOOLEAN,
		school TEXT,
		study_level TEXT,
		graduation_year INTEGER,
		major TEXT,
		attended_mlh BOOLEAN,
		technical_skills TEXT,
		programming_languages TEXT,
		hackathon_experience BOOLEAN,
		hackathon_experience_desc TEXT,
		has_team BOOLEAN,
		needs_teammates BOOLEAN,
		desired_teammate_skills TEXT,
		goals TEXT NOT NULL,
		heard_from TEXT NOT NULL,
		needs_sponsorship BOOLEAN,
		accessibility_needs BOOLEAN,
		accessibility_desc TEXT,
		dietary_restrictions BOOLEAN,
		dietary_desc TEXT,
		emergency_contact_name TEXT NOT NULL,
		emergency_contact_phone TEXT NOT NULL,
		emergency_contact_relation TEXT NOT NULL,
		tshirt_size TEXT NOT NULL,
		ethnicity TEXT,
		underrepresented BOOLEAN,
		mlh_code_of_conduct BOOLEAN,
		mlh_data_sharing BOOLEAN,
		mlh_communications BOOLEAN,
		info_accurate BOOLEAN,
		understands_admission BOOLEAN,
		resume_key TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}
