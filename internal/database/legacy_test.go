package database_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/edu_go_server/internal/database"
	"github.com/qs3c/edu_go_server/internal/model"
	"github.com/qs3c/edu_go_server/internal/testutil"
)

func TestMigrateLegacyContent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	require.NoError(t, db.Exec("ALTER TABLE chapters ADD COLUMN content_html TEXT").Error)
	require.NoError(t, db.Exec("ALTER TABLE chapters ADD COLUMN chapter_content TEXT").Error)

	subject := testutil.TestSubject(t, db, "Science")
	fromHTML := testutil.TestChapter(t, db, subject.ID, testutil.WithNumber(1))
	fromSecond := testutil.TestChapter(t, db, subject.ID, testutil.WithNumber(2))
	current := testutil.TestChapter(t, db, subject.ID, testutil.WithNumber(3), testutil.WithContent(testutil.LongContent))
	tooShort := testutil.TestChapter(t, db, subject.ID, testutil.WithNumber(4))

	legacy := "<p>" + strings.Repeat("Legacy body text. ", 20) + "</p>"
	require.NoError(t, db.Exec("UPDATE chapters SET content_html = ? WHERE id = ?", legacy, fromHTML.ID).Error)
	require.NoError(t, db.Exec("UPDATE chapters SET chapter_content = ? WHERE id IN ?", legacy, []int64{fromSecond.ID, current.ID}).Error)
	require.NoError(t, db.Exec("UPDATE chapters SET content_html = ? WHERE id = ?", "<p>tiny</p>", tooShort.ID).Error)

	require.NoError(t, database.MigrateLegacyContent(db))

	load := func(id int64) *model.Chapter {
		var c model.Chapter
		require.NoError(t, db.First(&c, id).Error)
		return &c
	}

	assert.Equal(t, legacy, load(fromHTML.ID).Content)
	assert.Equal(t, legacy, load(fromSecond.ID).Content)
	assert.Equal(t, testutil.LongContent, load(current.ID).Content)
	assert.False(t, load(tooShort.ID).HasContent())

	// 再次执行不产生变化
	require.NoError(t, database.MigrateLegacyContent(db))
	assert.Equal(t, testutil.LongContent, load(current.ID).Content)
}

func TestMigrateLegacyContent_NoLegacyColumns(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	assert.NoError(t, database.MigrateLegacyContent(db))
}
