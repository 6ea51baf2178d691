package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/dewvow/housepulse/internal/gazetteer"
	"github.com/dewvow/housepulse/internal/models"
	"github.com/dewvow/housepulse/internal/normalizer"
)

func testFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(logrus.New(), filepath.Join(t.TempDir(), "data", "suburbs-data.json"))
	assert.NoError(t, err)
	return s
}

func testRecord(id string) models.SuburbRecord {
	return models.SuburbRecord{
		ID:           id,
		Suburb:       "Richmond",
		State:        models.VIC,
		Postcode:     "3121",
		NominatedFor: []string{},
		House:        models.EmptyPropertyData(),
		Unit:         models.EmptyPropertyData(),
		DateAdded:    time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		LastUpdated:  time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestFileStore_EmptyStore(t *testing.T) {
	s := testFileStore(t)

	records, err := s.List()
	assert.NoError(t, err)
	assert.Empty(t, records)

	_, found, err := s.Get("missing")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestFileStore_RoundTrip(t *testing.T) {
	s := testFileStore(t)
	record := testRecord("richmond-3121-vic")

	assert.NoError(t, s.Upsert(record))

	got, found, err := s.Get("richmond-3121-vic")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, record, got)

	records, err := s.List()
	assert.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestFileStore_UpsertReplacesById(t *testing.T) {
	s := testFileStore(t)
	record := testRecord("richmond-3121-vic")
	assert.NoError(t, s.Upsert(record))

	record.IsHot = true
	assert.NoError(t, s.Upsert(record))

	records, err := s.List()
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.True(t, records[0].IsHot)
}

func TestFileStore_UpsertPreservesDateAdded(t *testing.T) {
	s := testFileStore(t)
	original := testRecord("richmond-3121-vic")
	assert.NoError(t, s.Upsert(original))

	update := testRecord("richmond-3121-vic")
	update.DateAdded = time.Time{}
	update.LastUpdated = time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, s.Upsert(update))

	got, found, err := s.Get("richmond-3121-vic")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, original.DateAdded, got.DateAdded)
	assert.Equal(t, update.LastUpdated, got.LastUpdated)
}

func TestFileStore_DateAddedImmutableOnReSave(t *testing.T) {
	// Re-pasting the same suburb stamps a fresh DateAdded on the incoming
	// record; the stored creation timestamp must still win.
	s := testFileStore(t)

	logger := logrus.New()
	norm := normalizer.New(logger, gazetteer.NewLoader(logger, filepath.Join(t.TempDir(), "none.json")))
	payload := []byte(`{"suburb": "Richmond", "state": "VIC", "postcode": "3121"}`)

	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	first, err := norm.Normalize(payload, t1)
	assert.NoError(t, err)
	assert.NoError(t, s.Upsert(first))

	t2 := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	second, err := norm.Normalize(payload, t2)
	assert.NoError(t, err)
	assert.Equal(t, t2, second.DateAdded)
	assert.NoError(t, s.Upsert(second))

	got, found, err := s.Get("richmond-3121-vic")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, t1, got.DateAdded)
	assert.Equal(t, t2, got.LastUpdated)
}

func TestFileStore_Remove(t *testing.T) {
	s := testFileStore(t)
	assert.NoError(t, s.Upsert(testRecord("a")))
	assert.NoError(t, s.Upsert(testRecord("b")))

	assert.NoError(t, s.Remove("a"))

	records, err := s.List()
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "b", records[0].ID)

	// Removing a missing id is not an error
	assert.NoError(t, s.Remove("nope"))
}

func TestFileStore_Clear(t *testing.T) {
	s := testFileStore(t)
	assert.NoError(t, s.Upsert(testRecord("a")))

	assert.NoError(t, s.Clear())

	records, err := s.List()
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suburbs-data.json")
	assert.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))

	s, err := NewFileStore(logrus.New(), path)
	assert.NoError(t, err)

	_, err = s.List()
	assert.Error(t, err)
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suburbs-data.json")

	first, err := NewFileStore(logrus.New(), path)
	assert.NoError(t, err)
	assert.NoError(t, first.Upsert(testRecord("richmond-3121-vic")))

	second, err := NewFileStore(logrus.New(), path)
	assert.NoError(t, err)
	records, err := second.List()
	assert.NoError(t, err)
	assert.Len(t, records, 1)
}
