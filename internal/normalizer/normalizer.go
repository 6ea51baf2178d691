package normalizer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dewvow/housepulse/internal/gazetteer"
	"github.com/dewvow/housepulse/internal/geo"
	"github.com/dewvow/housepulse/internal/metrics"
	"github.com/dewvow/housepulse/internal/models"
)

// ValidationError is returned when an input payload cannot become a
// canonical record: unparseable JSON, missing identity fields, or an
// unknown state. The attempted write must not proceed.
type ValidationError struct {
	Message       string
	MissingFields []string
}

func (e *ValidationError) Error() string {
	if len(e.MissingFields) > 0 {
		return "missing required fields: " + strings.Join(e.MissingFields, ", ")
	}
	return e.Message
}

// Normalizer turns heterogeneous input payloads (manual form entries,
// bookmarklet JSON, records being edited) into canonical suburb records,
// filling derived fields from the gazetteer and the yield and distance
// calculators.
type Normalizer struct {
	logger *logrus.Logger
	gaz    *gazetteer.Loader
}

// New creates a normalizer backed by the given gazetteer.
func New(logger *logrus.Logger, gaz *gazetteer.Loader) *Normalizer {
	return &Normalizer{
		logger: logger,
		gaz:    gaz,
	}
}

// flexString accepts a JSON string or number, preserving string postcodes
// exactly (including leading zeros).
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// payload is the union of every accepted input shape. The current schema
// carries house/unit; the legacy flat schema carries bedrooms only and is
// migrated one way.
type payload struct {
	ID                string                               `json:"id"`
	Suburb            string                               `json:"suburb"`
	State             string                               `json:"state"`
	Postcode          flexString                           `json:"postcode"`
	IsHot             bool                                 `json:"isHot"`
	DistanceToCapital float64                              `json:"distanceToCapital"`
	NominatedFor      []string                             `json:"nominatedFor"`
	Demographics      *models.Demographics                 `json:"demographics"`
	House             *models.PropertyTypeData             `json:"house"`
	Unit              *models.PropertyTypeData             `json:"unit"`
	Bedrooms          map[string]models.LegacyBedroomPrice `json:"bedrooms"`
	DateAdded         time.Time                            `json:"dateAdded"`
}

// Normalize converts a raw JSON payload into a canonical record, stamping
// lastUpdated with now. See ValidationError for the failure cases; price
// data problems never fail the record, they degrade to zero prices.
func (n *Normalizer) Normalize(raw []byte, now time.Time) (models.SuburbRecord, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return models.SuburbRecord{}, &ValidationError{Message: "invalid JSON"}
	}
	return n.normalize(p, now)
}

func (n *Normalizer) normalize(p payload, now time.Time) (models.SuburbRecord, error) {
	var missing []string
	if p.Suburb == "" {
		missing = append(missing, "suburb")
	}
	if p.State == "" {
		missing = append(missing, "state")
	}
	if p.Postcode == "" {
		missing = append(missing, "postcode")
	}
	if len(missing) > 0 {
		return models.SuburbRecord{}, &ValidationError{MissingFields: missing}
	}

	state := models.StateCode(strings.ToUpper(p.State))
	if !models.ValidState(state) {
		return models.SuburbRecord{}, &ValidationError{
			Message: fmt.Sprintf("unknown state: %s", p.State),
		}
	}
	postcode := string(p.Postcode)

	house, unit := n.resolvePricing(p)

	record := models.SuburbRecord{
		ID:                p.ID,
		Suburb:            p.Suburb,
		State:             state,
		Postcode:          postcode,
		IsHot:             p.IsHot,
		DistanceToCapital: p.DistanceToCapital,
		NominatedFor:      p.NominatedFor,
		Demographics:      p.Demographics,
		House:             house,
		Unit:              unit,
		DateAdded:         p.DateAdded,
		LastUpdated:       now,
	}

	if record.ID == "" {
		record.ID = models.RecordID(record.Suburb, record.State, record.Postcode)
	}
	if record.NominatedFor == nil {
		record.NominatedFor = []string{}
	}
	if record.DateAdded.IsZero() {
		record.DateAdded = now
	}

	// A gazetteer miss keeps whatever distance the payload already knew
	// rather than regressing it to zero.
	if loc, ok := n.gaz.FindDetails(record.Suburb, record.State, record.Postcode); ok {
		if loc.Latitude != nil && loc.Longitude != nil {
			if km, known := geo.DistanceToCapital(record.State, *loc.Latitude, *loc.Longitude); known {
				record.DistanceToCapital = km
			}
		}
	} else {
		n.logger.WithFields(logrus.Fields{
			"suburb":   record.Suburb,
			"state":    record.State,
			"postcode": record.Postcode,
		}).Debug("No gazetteer match for suburb")
	}

	return record, nil
}

// resolvePricing dispatches on the payload's schema version: house/unit
// keys mean the current schema, a bedrooms key means the legacy flat
// schema (which never had unit pricing), and neither means an unpriced
// manual entry.
func (n *Normalizer) resolvePricing(p payload) (house, unit models.PropertyTypeData) {
	if p.House != nil || p.Unit != nil {
		return normalizePropertyData(p.House), normalizePropertyData(p.Unit)
	}

	if p.Bedrooms != nil {
		house = models.PropertyTypeData{
			Bedrooms: models.ConvertLegacyBedrooms(p.Bedrooms),
		}
		house.Yield = metrics.PropertyYields(house.Bedrooms)
		return house, models.EmptyPropertyData()
	}

	return models.EmptyPropertyData(), models.EmptyPropertyData()
}

// normalizePropertyData fills every bucket of the supplied data, accepting
// supplied yields provisionally and computing the rest from the prices.
func normalizePropertyData(data *models.PropertyTypeData) models.PropertyTypeData {
	result := models.EmptyPropertyData()
	if data == nil {
		return result
	}

	for _, b := range models.BedroomBuckets {
		if price, ok := data.Bedrooms[b]; ok {
			result.Bedrooms[b] = price
		}
	}
	for _, b := range models.BedroomBuckets {
		if y, ok := data.Yield[b]; ok {
			result.Yield[b] = y
		} else {
			price := result.Bedrooms[b]
			result.Yield[b] = metrics.Yield(price.RentPrice, price.BuyPrice)
		}
	}
	return result
}

// Recompute re-derives both yield maps from the record's prices, replacing
// any provisionally accepted values.
func Recompute(record models.SuburbRecord) models.SuburbRecord {
	record.House.Yield = metrics.PropertyYields(record.House.Bedrooms)
	record.Unit.Yield = metrics.PropertyYields(record.Unit.Bedrooms)
	return record
}
