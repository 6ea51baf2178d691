package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dewvow/housepulse/internal/models"
)

// suburbRow is the sqlite row shape. The nested bucket maps and optional
// demographics are stored as JSON columns; the queryable identity and flag
// fields get real columns.
type suburbRow struct {
	ID                string `gorm:"primaryKey"`
	Suburb            string `gorm:"index"`
	State             string `gorm:"index"`
	Postcode          string
	IsHot             bool
	DistanceToCapital float64
	NominatedFor      string
	Demographics      *string
	House             string
	Unit              string
	DateAdded         time.Time
	LastUpdated       time.Time
}

func (suburbRow) TableName() string {
	return "suburbs"
}

// SQLiteStore persists records in a local sqlite database.
type SQLiteStore struct {
	logger *logrus.Logger
	db     *gorm.DB
}

// NewSQLiteStore opens (and migrates) the sqlite database at path.
func NewSQLiteStore(logger *logrus.Logger, path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&suburbRow{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{
		logger: logger,
		db:     db,
	}, nil
}

// List returns every stored record.
func (s *SQLiteStore) List() ([]models.SuburbRecord, error) {
	var rows []suburbRow
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}

	records := make([]models.SuburbRecord, 0, len(rows))
	for _, row := range rows {
		record, err := rowToRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// Get returns the record with the given id, if present.
func (s *SQLiteStore) Get(id string) (models.SuburbRecord, bool, error) {
	var row suburbRow
	err := s.db.First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.SuburbRecord{}, false, nil
	}
	if err != nil {
		return models.SuburbRecord{}, false, fmt.Errorf("failed to query record: %w", err)
	}

	record, err := rowToRecord(row)
	if err != nil {
		return models.SuburbRecord{}, false, err
	}
	return record, true, nil
}

// Upsert replaces the record with a matching id or inserts a new one inside
// a transaction.
func (s *SQLiteStore) Upsert(record models.SuburbRecord) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing suburbRow
		err := tx.First(&existing, "id = ?", record.ID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// insert path
		case err != nil:
			return fmt.Errorf("failed to query existing record: %w", err)
		default:
			// DateAdded is immutable after creation
			record.DateAdded = existing.DateAdded
		}

		row, err := recordToRow(record)
		if err != nil {
			return err
		}
		if err := tx.Save(&row).Error; err != nil {
			return fmt.Errorf("failed to save record: %w", err)
		}
		return nil
	})
}

// Remove deletes the record with the given id.
func (s *SQLiteStore) Remove(id string) error {
	if err := s.db.Delete(&suburbRow{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// Clear deletes every record.
func (s *SQLiteStore) Clear() error {
	if err := s.db.Where("1 = 1").Delete(&suburbRow{}).Error; err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	return nil
}

func recordToRow(record models.SuburbRecord) (suburbRow, error) {
	nominated, err := json.Marshal(record.NominatedFor)
	if err != nil {
		return suburbRow{}, fmt.Errorf("failed to marshal tags: %w", err)
	}
	house, err := json.Marshal(record.House)
	if err != nil {
		return suburbRow{}, fmt.Errorf("failed to marshal house data: %w", err)
	}
	unit, err := json.Marshal(record.Unit)
	if err != nil {
		return suburbRow{}, fmt.Errorf("failed to marshal unit data: %w", err)
	}

	row := suburbRow{
		ID:                record.ID,
		Suburb:            record.Suburb,
		State:             string(record.State),
		Postcode:          record.Postcode,
		IsHot:             record.IsHot,
		DistanceToCapital: record.DistanceToCapital,
		NominatedFor:      string(nominated),
		House:             string(house),
		Unit:              string(unit),
		DateAdded:         record.DateAdded,
		LastUpdated:       record.LastUpdated,
	}

	if record.Demographics != nil {
		demo, err := json.Marshal(record.Demographics)
		if err != nil {
			return suburbRow{}, fmt.Errorf("failed to marshal demographics: %w", err)
		}
		encoded := string(demo)
		row.Demographics = &encoded
	}

	return row, nil
}

func rowToRecord(row suburbRow) (models.SuburbRecord, error) {
	record := models.SuburbRecord{
		ID:                row.ID,
		Suburb:            row.Suburb,
		State:             models.StateCode(row.State),
		Postcode:          row.Postcode,
		IsHot:             row.IsHot,
		DistanceToCapital: row.DistanceToCapital,
		DateAdded:         row.DateAdded,
		LastUpdated:       row.LastUpdated,
	}

	if row.NominatedFor != "" {
		if err := json.Unmarshal([]byte(row.NominatedFor), &record.NominatedFor); err != nil {
			return models.SuburbRecord{}, fmt.Errorf("failed to parse tags: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(row.House), &record.House); err != nil {
		return models.SuburbRecord{}, fmt.Errorf("failed to parse house data: %w", err)
	}
	if err := json.Unmarshal([]byte(row.Unit), &record.Unit); err != nil {
		return models.SuburbRecord{}, fmt.Errorf("failed to parse unit data: %w", err)
	}
	if row.Demographics != nil {
		record.Demographics = &models.Demographics{}
		if err := json.Unmarshal([]byte(*row.Demographics), record.Demographics); err != nil {
			return models.SuburbRecord{}, fmt.Errorf("failed to parse demographics: %w", err)
		}
	}

	return record, nil
}
