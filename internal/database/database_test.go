package database

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mathgrader-api/internal/models"
)

func TestConnectSQLiteMigratesSchema(t *testing.T) {
	db, err := Connect(fmt.Sprintf("sqlite://file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, model := range []interface{}{&models.User{}, &models.Exam{}, &models.Submission{}, &models.GradingResult{}, &models.GradedAnswer{}, &models.ActivityLog{}} {
		require.True(t, db.Migrator().HasTable(model))
	}
	require.True(t, db.Migrator().HasTable("exam_students"))
}

func TestConnectRejectsEmptyDSN(t *testing.T) {
	_, err := ConnectPostgres("")
	require.Error(t, err)

	_, err = Connect("sqlite://")
	require.Error(t, err)
}
