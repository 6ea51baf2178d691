package demographics

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dewvow/housepulse/internal/models"
)

// Cache holds successfully fetched demographics keyed by postcode. Entries
// live for the process lifetime; there is no invalidation. Construct one per
// client (or per test) rather than sharing ambient global state.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]models.Demographics
}

// NewCache returns an empty demographics cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]models.Demographics)}
}

// Get returns the cached demographics for a postcode, if any.
func (c *Cache) Get(postcode string) (models.Demographics, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.entries[postcode]
	return d, ok
}

// Put stores demographics for a postcode.
func (c *Cache) Put(postcode string, d models.Demographics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[postcode] = d
}

// Len returns the number of cached postcodes.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every cached entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]models.Demographics)
}

// LookupTable is a postcode-to-string table pre-built from a census
// DataPack (dominant language, dominant occupation). The backing file is
// loaded lazily on first use and memoized, including when the load fails:
// a missing or broken DataPack degrades to an empty table.
type LookupTable struct {
	logger *logrus.Logger
	path   string

	once   sync.Once
	values map[string]string
}

// NewLookupTable creates a lookup table backed by the JSON file at path.
func NewLookupTable(logger *logrus.Logger, path string) *LookupTable {
	return &LookupTable{
		logger: logger,
		path:   path,
	}
}

// Lookup returns the value for a postcode and whether the table has an entry.
func (t *LookupTable) Lookup(postcode string) (string, bool) {
	t.once.Do(t.load)
	value, ok := t.values[postcode]
	return value, ok
}

func (t *LookupTable) load() {
	t.values = make(map[string]string)

	data, err := os.ReadFile(t.path)
	if err != nil {
		t.logger.WithError(err).WithField("path", t.path).Warn("Could not load census lookup table")
		return
	}

	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		t.logger.WithError(err).WithField("path", t.path).Error("Failed to parse census lookup table")
		return
	}

	t.values = values
	t.logger.WithFields(logrus.Fields{
		"path":  t.path,
		"count": len(values),
	}).Info("Loaded census lookup table")
}
