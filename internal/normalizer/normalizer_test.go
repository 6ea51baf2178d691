package normalizer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/dewvow/housepulse/internal/gazetteer"
	"github.com/dewvow/housepulse/internal/models"
)

func testNormalizer(t *testing.T, gazetteerJSON string) *Normalizer {
	t.Helper()
	logger := logrus.New()

	path := filepath.Join(t.TempDir(), "suburbs.json")
	err := os.WriteFile(path, []byte(gazetteerJSON), 0644)
	assert.NoError(t, err)

	return New(logger, gazetteer.NewLoader(logger, path))
}

const richmondGazetteer = `[
	{"suburb": "Richmond", "state": "VIC", "postcode": "3121", "lat": -37.8230, "lng": 144.9980}
]`

var now = time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

func TestNormalize_CurrentSchema(t *testing.T) {
	n := testNormalizer(t, richmondGazetteer)

	raw := []byte(`{
		"suburb": "Richmond",
		"state": "vic",
		"postcode": "3121",
		"isHot": true,
		"house": {
			"bedrooms": {
				"2": {"buyPrice": 520000, "rentPrice": 400},
				"3": {"buyPrice": 690000, "rentPrice": 500}
			}
		}
	}`)

	record, err := n.Normalize(raw, now)
	assert.NoError(t, err)

	assert.Equal(t, "richmond-3121-vic", record.ID)
	assert.Equal(t, models.VIC, record.State)
	assert.True(t, record.IsHot)
	assert.Equal(t, now, record.DateAdded)
	assert.Equal(t, now, record.LastUpdated)
	assert.NotNil(t, record.NominatedFor)
	assert.Empty(t, record.NominatedFor)

	assert.InDelta(t, 4.0, record.House.Yield[models.TwoBed], 0.01)
	assert.InDelta(t, 3.77, record.House.Yield[models.ThreeBed], 0.01)
	assert.Equal(t, 0.0, record.House.Yield[models.FourPlusBed])

	// Unit section absent from the payload still comes out fully bucketed
	assert.Len(t, record.Unit.Bedrooms, 3)
	assert.Equal(t, models.BedroomPrice{}, record.Unit.Bedrooms[models.TwoBed])

	// Gazetteer hit fills the distance to Melbourne
	assert.True(t, record.DistanceToCapital > 0)
	assert.True(t, record.DistanceToCapital < 10)
}

func TestNormalize_LegacySchema(t *testing.T) {
	n := testNormalizer(t, `[]`)

	raw := []byte(`{
		"suburb": "Bondi",
		"state": "NSW",
		"postcode": "2026",
		"bedrooms": {
			"3": {"salePrice": 2000000, "rent": 1200}
		}
	}`)

	record, err := n.Normalize(raw, now)
	assert.NoError(t, err)

	assert.Equal(t, "bondi-2026-nsw", record.ID)
	assert.Equal(t, models.BedroomPrice{BuyPrice: 2000000, RentPrice: 1200}, record.House.Bedrooms[models.ThreeBed])
	assert.InDelta(t, 3.12, record.House.Yield[models.ThreeBed], 0.01)

	// The legacy schema never carried unit pricing
	for _, b := range models.BedroomBuckets {
		assert.Equal(t, models.BedroomPrice{}, record.Unit.Bedrooms[b])
		assert.Equal(t, 0.0, record.Unit.Yield[b])
	}
}

func TestNormalize_UnpricedEntry(t *testing.T) {
	n := testNormalizer(t, `[]`)

	record, err := n.Normalize([]byte(`{"suburb": "Broome", "state": "WA", "postcode": "6725"}`), now)
	assert.NoError(t, err)

	assert.Equal(t, "broome-6725-wa", record.ID)
	assert.Len(t, record.House.Bedrooms, 3)
	assert.Len(t, record.Unit.Bedrooms, 3)
}

func TestNormalize_MissingFields(t *testing.T) {
	n := testNormalizer(t, `[]`)

	_, err := n.Normalize([]byte(`{"suburb": "Richmond"}`), now)
	assert.Error(t, err)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"state", "postcode"}, verr.MissingFields)
	assert.Contains(t, verr.Error(), "missing required fields")
}

func TestNormalize_InvalidJSON(t *testing.T) {
	n := testNormalizer(t, `[]`)

	_, err := n.Normalize([]byte(`{not json`), now)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestNormalize_UnknownState(t *testing.T) {
	n := testNormalizer(t, `[]`)

	_, err := n.Normalize([]byte(`{"suburb": "Nowhere", "state": "ZZ", "postcode": "0000"}`), now)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "unknown state")
}

func TestNormalize_NumericPostcode(t *testing.T) {
	n := testNormalizer(t, `[]`)

	record, err := n.Normalize([]byte(`{"suburb": "Darwin", "state": "NT", "postcode": 800}`), now)
	assert.NoError(t, err)
	assert.Equal(t, "800", record.Postcode)
}

func TestNormalize_PreservesSuppliedIDAndDateAdded(t *testing.T) {
	n := testNormalizer(t, `[]`)
	added := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	raw := []byte(`{
		"id": "custom-id",
		"suburb": "Richmond",
		"state": "VIC",
		"postcode": "3121",
		"dateAdded": "2025-02-01T00:00:00Z"
	}`)

	record, err := n.Normalize(raw, now)
	assert.NoError(t, err)
	assert.Equal(t, "custom-id", record.ID)
	assert.Equal(t, added, record.DateAdded)
	assert.Equal(t, now, record.LastUpdated)
}

func TestNormalize_RetainsDistanceOnGazetteerMiss(t *testing.T) {
	n := testNormalizer(t, `[]`)

	raw := []byte(`{
		"suburb": "Richmond",
		"state": "VIC",
		"postcode": "3121",
		"distanceToCapital": 3.3
	}`)

	record, err := n.Normalize(raw, now)
	assert.NoError(t, err)
	assert.Equal(t, 3.3, record.DistanceToCapital)
}

func TestNormalize_Idempotent(t *testing.T) {
	n := testNormalizer(t, richmondGazetteer)

	raw := []byte(`{
		"suburb": "Richmond",
		"state": "VIC",
		"postcode": "3121",
		"house": {"bedrooms": {"2": {"buyPrice": 520000, "rentPrice": 400}}}
	}`)

	first, err := n.Normalize(raw, now)
	assert.NoError(t, err)

	reencoded, err := json.Marshal(first)
	assert.NoError(t, err)

	second, err := n.Normalize(reencoded, now)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRecompute(t *testing.T) {
	record := models.SuburbRecord{
		House: models.PropertyTypeData{
			Bedrooms: map[models.BedroomBucket]models.BedroomPrice{
				models.TwoBed:      {BuyPrice: 500000, RentPrice: 500},
				models.ThreeBed:    {},
				models.FourPlusBed: {},
			},
			Yield: map[models.BedroomBucket]float64{models.TwoBed: 99},
		},
		Unit: models.EmptyPropertyData(),
	}

	record = Recompute(record)
	assert.InDelta(t, 5.2, record.House.Yield[models.TwoBed], 0.0001)
}
