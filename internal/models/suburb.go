package models

import (
	"strings"
	"time"
)

// StateCode identifies one of the eight Australian states and territories.
type StateCode string

const (
	NSW StateCode = "NSW"
	VIC StateCode = "VIC"
	QLD StateCode = "QLD"
	WA  StateCode = "WA"
	SA  StateCode = "SA"
	TAS StateCode = "TAS"
	ACT StateCode = "ACT"
	NT  StateCode = "NT"
)

// State pairs a state code with its full name.
type State struct {
	Code StateCode `json:"code"`
	Name string    `json:"name"`
}

// AustralianStates lists every supported jurisdiction in display order.
var AustralianStates = []State{
	{NSW, "New South Wales"},
	{VIC, "Victoria"},
	{QLD, "Queensland"},
	{WA, "Western Australia"},
	{SA, "South Australia"},
	{TAS, "Tasmania"},
	{ACT, "Australian Capital Territory"},
	{NT, "Northern Territory"},
}

// ValidState reports whether code names a known state or territory.
func ValidState(code StateCode) bool {
	for _, s := range AustralianStates {
		if s.Code == code {
			return true
		}
	}
	return false
}

// StateName returns the full name for a state code, or the code itself
// when unknown.
func StateName(code StateCode) string {
	for _, s := range AustralianStates {
		if s.Code == code {
			return s.Name
		}
	}
	return string(code)
}

// BedroomBucket is one of the tracked bedroom counts.
type BedroomBucket string

const (
	TwoBed      BedroomBucket = "2"
	ThreeBed    BedroomBucket = "3"
	FourPlusBed BedroomBucket = "4+"
)

// BedroomBuckets lists every bucket; both house and unit data always carry
// all of them, even when unpriced.
var BedroomBuckets = []BedroomBucket{TwoBed, ThreeBed, FourPlusBed}

// PropertyType distinguishes house pricing from unit pricing.
type PropertyType string

const (
	House PropertyType = "house"
	Unit  PropertyType = "unit"
)

var PropertyTypes = []PropertyType{House, Unit}

// BedroomPrice holds the buy price and weekly rent for one bedroom bucket.
// A zero buy price means "no data", not a free property.
type BedroomPrice struct {
	BuyPrice  float64 `json:"buyPrice"`
	RentPrice float64 `json:"rentPrice"`
}

// PropertyTypeData holds per-bucket prices and the yields derived from them.
type PropertyTypeData struct {
	Bedrooms map[BedroomBucket]BedroomPrice `json:"bedrooms"`
	Yield    map[BedroomBucket]float64      `json:"yield"`
}

// LegacyBedroomPrice is the old flat-schema price shape, accepted for
// one-way migration only.
type LegacyBedroomPrice struct {
	SalePrice float64 `json:"salePrice"`
	Rent      float64 `json:"rent"`
}

// Demographics carries census-derived statistics attached lazily to a record.
type Demographics struct {
	MedianIncome   float64 `json:"medianIncome"`
	MedianAge      float64 `json:"medianAge"`
	MainLanguage   string  `json:"mainLanguage"`
	OccupationType string  `json:"occupationType"`
	CensusYear     int     `json:"censusYear"`
	Source         string  `json:"source"`
}

// SuburbRecord is the canonical persisted record for one researched suburb.
type SuburbRecord struct {
	ID                string           `json:"id"`
	Suburb            string           `json:"suburb"`
	State             StateCode        `json:"state"`
	Postcode          string           `json:"postcode"`
	IsHot             bool             `json:"isHot"`
	DistanceToCapital float64          `json:"distanceToCapital"`
	NominatedFor      []string         `json:"nominatedFor"`
	Demographics      *Demographics    `json:"demographics,omitempty"`
	House             PropertyTypeData `json:"house"`
	Unit              PropertyTypeData `json:"unit"`
	DateAdded         time.Time        `json:"dateAdded"`
	LastUpdated       time.Time        `json:"lastUpdated"`
}

// Locality is one entry of the reference gazetteer. Optional fields are
// pointers so that "absent" is distinguishable from zero.
type Locality struct {
	Suburb       string    `json:"suburb"`
	State        StateCode `json:"state"`
	Postcode     string    `json:"postcode"`
	SSCCode      *int      `json:"sscCode,omitempty"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	Population   *int      `json:"population,omitempty"`
	MedianIncome *float64  `json:"medianIncome,omitempty"`
}

// FilterCriteria restricts a record collection. Empty sets mean
// "no restriction", not "match nothing".
type FilterCriteria struct {
	States        []StateCode     `json:"states"`
	Bedrooms      []BedroomBucket `json:"bedrooms"`
	PropertyTypes []PropertyType  `json:"propertyTypes"`
	MaxPrice      *float64        `json:"maxPrice"`
	MinYield      *float64        `json:"minYield"`
	HotOnly       bool            `json:"hotOnly"`
}

// RecordID derives the stable record id from the (suburb, state, postcode)
// triple: lowercase-kebab suburb, then postcode, then lowercase state.
// The same triple always collides to the same id; this is the upsert key.
func RecordID(suburb string, state StateCode, postcode string) string {
	name := strings.Join(strings.Fields(strings.ToLower(suburb)), "-")
	return name + "-" + postcode + "-" + strings.ToLower(string(state))
}

// EmptyBedroomData returns a fully populated bucket map with zero prices.
func EmptyBedroomData() map[BedroomBucket]BedroomPrice {
	data := make(map[BedroomBucket]BedroomPrice, len(BedroomBuckets))
	for _, b := range BedroomBuckets {
		data[b] = BedroomPrice{}
	}
	return data
}

// EmptyYieldData returns a fully populated yield map with zero values.
func EmptyYieldData() map[BedroomBucket]float64 {
	data := make(map[BedroomBucket]float64, len(BedroomBuckets))
	for _, b := range BedroomBuckets {
		data[b] = 0
	}
	return data
}

// EmptyPropertyData returns PropertyTypeData with every bucket present and
// unpriced.
func EmptyPropertyData() PropertyTypeData {
	return PropertyTypeData{
		Bedrooms: EmptyBedroomData(),
		Yield:    EmptyYieldData(),
	}
}

// ConvertLegacyBedrooms maps the old flat schema (salePrice/rent) onto the
// canonical bucket map. Buckets missing from the source come out zero-priced.
func ConvertLegacyBedrooms(old map[string]LegacyBedroomPrice) map[BedroomBucket]BedroomPrice {
	data := EmptyBedroomData()
	for _, b := range BedroomBuckets {
		if entry, ok := old[string(b)]; ok {
			data[b] = BedroomPrice{BuyPrice: entry.SalePrice, RentPrice: entry.Rent}
		}
	}
	return data
}
