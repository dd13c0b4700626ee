package gradestore

import (
	"context"
	"gradewatch/lib/configutil/sqldb"
	"gradewatch/lib/grades"
	"gradewatch/lib/gradestore/db"
	"gradewatch/lib/testutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func fixture() []grades.Grade {
	pct := grades.Classify("86", "--")
	return []grades.Grade{
		{
			SemesterID: "4324", SemesterLabel: "2024-2025 2",
			CourseCode: "MATH101", CourseSequence: "MATH101.01",
			CourseName: "高等数学", CourseCategory: "专业必修",
			Credits: 5, Scheme: grades.SchemeLetter,
			RawGradeLabel: "A-", GPA: grades.Float(3.7),
		},
		{
			SemesterID: "4324", CourseCode: "PE101", CourseName: "体育",
			Credits: 1, Scheme: grades.SchemePassFail, RawGradeLabel: "通过",
		},
		{
			SemesterID: "4324", CourseCode: "CS101", CourseName: "程序设计",
			Credits: 3, Scheme: pct.Scheme, RawGradeLabel: pct.Label,
			GPA: pct.GPA, Score: pct.Score,
		},
	}
}

var byCourseCode = cmpopts.SortSlices(func(a, b grades.Grade) bool {
	return a.CourseCode < b.CourseCode
})

func testStore(t *testing.T, store Store) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	target := Target{Identity: "2210000", SemesterID: "4324"}

	empty, err := store.Load(ctx, target)
	require.NoError(t, err)
	require.True(t, empty.Empty())
	require.Equal(t, target, empty.Target)

	takenAt := time.Date(2025, 1, 20, 10, 30, 0, 0, time.UTC)
	err = store.Save(ctx, Snapshot{Target: target, TakenAt: takenAt, Grades: fixture()})
	require.NoError(t, err)

	loaded, err := store.Load(ctx, target)
	require.NoError(t, err)
	require.False(t, loaded.Empty())
	require.True(t, takenAt.Equal(loaded.TakenAt))
	if diff := cmp.Diff(fixture(), loaded.Grades, byCourseCode); diff != "" {
		t.Fatal(diff)
	}
	require.True(t, grades.Diff(fixture(), loaded.Grades).Empty())

	// other targets are unaffected
	other, err := store.Load(ctx, Target{Identity: "2210000", SemesterID: "4262"})
	require.NoError(t, err)
	require.True(t, other.Empty())

	// saving replaces, it never merges
	err = store.Save(ctx, Snapshot{Target: target, TakenAt: takenAt, Grades: fixture()[:1]})
	require.NoError(t, err)
	loaded, err = store.Load(ctx, target)
	require.NoError(t, err)
	require.Len(t, loaded.Grades, 1)
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	testStore(t, store)
}

func TestSQLStore(t *testing.T) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "gradestore",
		DbSchema: db.Schema,
	})
	defer cleanup()

	store := NewSQLStore(res.DB)
	testStore(t, store)

	targets, err := store.Targets(context.Background())
	require.NoError(t, err)
	require.Equal(t, []Target{{Identity: "2210000", SemesterID: "4324"}}, targets)
}

func TestFileStoreFormat(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	target := Target{Identity: "2210000", SemesterID: "4324"}
	err = store.Save(context.Background(), Snapshot{Target: target, Grades: fixture()[:1]})
	require.NoError(t, err)

	path := filepath.Join(dir, "2210000_4324.json")
	require.Equal(t, path, store.Path(target))
	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `[{
		"semester_id": "4324",
		"semester_label": "2024-2025 2",
		"course_code": "MATH101",
		"course_sequence": "MATH101.01",
		"course_name": "高等数学",
		"course_category": "专业必修",
		"credits": 5,
		"scheme": "letter",
		"grade_label": "A-",
		"gpa": 3.7
	}]`, string(contents))

	// no temporary files are left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestFileStoreCorrupt(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	target := Target{Identity: "2210000", SemesterID: "4324"}
	err = os.WriteFile(store.Path(target), []byte("{not json"), 0644)
	require.NoError(t, err)

	_, err = store.Load(context.Background(), target)
	require.ErrorIs(t, err, ErrCorruptSnapshot)
}

func TestOpen(t *testing.T) {
	store, closer, err := Open(t.TempDir(), sqldb.Struct{})
	require.NoError(t, err)
	require.IsType(t, FileStore{}, store)
	require.NoError(t, closer.Close())

	store, closer, err = Open("", sqldb.Struct{File: filepath.Join(t.TempDir(), "snapshots.db")})
	require.NoError(t, err)
	require.IsType(t, SQLStore{}, store)
	testStore(t, store)
	require.NoError(t, closer.Close())
}

func TestStampTakenAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "2112000_4324.json")
	takenAt := time.Date(2025, 1, 20, 9, 30, 0, 0, time.UTC)

	require.Error(t, stampTakenAt(path, takenAt))

	require.NoError(t, os.WriteFile(path, []byte("[]"), 0600))
	require.NoError(t, stampTakenAt(path, takenAt))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.True(t, takenAt.Equal(info.ModTime()))
}
