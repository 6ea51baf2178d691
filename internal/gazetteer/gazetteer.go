package gazetteer

import (
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dewvow/housepulse/internal/models"
)

// Loader reads the bundled locality gazetteer and serves lookups against it.
// The dataset is loaded once per Loader; a failed load is not cached, so a
// later call may retry.
type Loader struct {
	logger *logrus.Logger
	path   string

	mu         sync.Mutex
	loaded     bool
	localities []models.Locality
	index      map[string]int
}

// NewLoader creates a gazetteer loader for the dataset at path.
func NewLoader(logger *logrus.Logger, path string) *Loader {
	return &Loader{
		logger: logger,
		path:   path,
	}
}

// flexString accepts a JSON string or number; numbers are formatted without
// any float artifacts. Postcodes in the source data appear both ways and a
// string postcode must keep its leading zeros.
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

// rawLocality mirrors the heterogeneous source entries: the suburb name and
// postcode appear under several equivalent field names.
type rawLocality struct {
	Suburb       string     `json:"suburb"`
	Name         string     `json:"name"`
	Locality     string     `json:"locality"`
	State        string     `json:"state"`
	Postcode     flexString `json:"postcode"`
	Zip          flexString `json:"zip"`
	SSCCode      *int       `json:"ssc_code"`
	Latitude     *float64   `json:"lat"`
	Longitude    *float64   `json:"lng"`
	Population   *int       `json:"population"`
	MedianIncome *float64   `json:"median_income"`
}

func (r rawLocality) name() string {
	switch {
	case r.Suburb != "":
		return r.Suburb
	case r.Name != "":
		return r.Name
	default:
		return r.Locality
	}
}

func (r rawLocality) postcode() string {
	if r.Postcode != "" {
		return string(r.Postcode)
	}
	return string(r.Zip)
}

// Load returns the normalized locality list. The first successful load is
// memoized; subsequent calls return the cached list without re-reading the
// source. On read or parse failure it returns an empty list and leaves the
// loader ready to retry.
func (l *Loader) Load() []models.Locality {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded {
		return l.localities
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		l.logger.WithError(err).WithField("path", l.path).Warn("Could not read gazetteer dataset")
		return nil
	}

	raw, err := decodeEntries(data)
	if err != nil {
		l.logger.WithError(err).WithField("path", l.path).Error("Failed to parse gazetteer dataset")
		return nil
	}

	localities := make([]models.Locality, 0, len(raw))
	index := make(map[string]int, len(raw))
	for _, entry := range raw {
		loc := models.Locality{
			Suburb:       entry.name(),
			State:        models.StateCode(strings.ToUpper(entry.State)),
			Postcode:     entry.postcode(),
			SSCCode:      entry.SSCCode,
			Latitude:     entry.Latitude,
			Longitude:    entry.Longitude,
			Population:   entry.Population,
			MedianIncome: entry.MedianIncome,
		}
		index[lookupKey(loc.Suburb, loc.State, loc.Postcode)] = len(localities)
		localities = append(localities, loc)
	}

	l.localities = localities
	l.index = index
	l.loaded = true

	l.logger.WithField("count", len(localities)).Info("Loaded gazetteer dataset")
	return l.localities
}

// decodeEntries accepts either a bare array of entries or an object wrapping
// the array under a "data" key.
func decodeEntries(data []byte) ([]rawLocality, error) {
	var wrapped struct {
		Data []rawLocality `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Data != nil {
		return wrapped.Data, nil
	}

	var entries []rawLocality
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// FindDetails looks up a locality by its full key: case-insensitive exact
// name, exact state and exact postcode string. No fuzzy matching is done;
// a miss means "no enrichment", never an error.
func (l *Loader) FindDetails(name string, state models.StateCode, postcode string) (models.Locality, bool) {
	l.Load()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.index == nil {
		return models.Locality{}, false
	}
	i, ok := l.index[lookupKey(name, state, postcode)]
	if !ok {
		return models.Locality{}, false
	}
	return l.localities[i], true
}

// Search returns localities whose name or postcode contains the query
// (name match case-insensitive), optionally restricted to one state.
func (l *Loader) Search(query string, state models.StateCode) []models.Locality {
	lower := strings.ToLower(query)

	var matches []models.Locality
	for _, loc := range l.Load() {
		if state != "" && loc.State != state {
			continue
		}
		if strings.Contains(strings.ToLower(loc.Suburb), lower) ||
			strings.Contains(loc.Postcode, query) {
			matches = append(matches, loc)
		}
	}
	return matches
}

// ByState returns every locality in the given state.
func (l *Loader) ByState(state models.StateCode) []models.Locality {
	var matches []models.Locality
	for _, loc := range l.Load() {
		if loc.State == state {
			matches = append(matches, loc)
		}
	}
	return matches
}

func lookupKey(name string, state models.StateCode, postcode string) string {
	return strings.ToLower(name) + "|" + string(state) + "|" + postcode
}
