package demographics

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dewvow/housepulse/internal/models"
)

const (
	// censusYear is the census the ABS dataflow and DataPack tables were
	// built from.
	censusYear = 2021

	// sourceABSAPI tags demographics that came from the live ABS query.
	sourceABSAPI = "abs-api"

	// notAvailable is attached when a DataPack table has no entry for the
	// postcode. This is distinct from an overall enrichment failure.
	notAvailable = "Not available"

	metricMedianAge          = "1"
	metricMedianWeeklyIncome = "2"
)

// Client fetches census-derived statistics for a postcode from the ABS data
// API plus two pre-built DataPack lookup tables. It never returns an error:
// any failure anywhere in the pipeline degrades to a nil result, and only
// successes are cached, so a failed postcode is re-attempted on the next
// call while a succeeded one never hits the network again.
type Client struct {
	logger      *logrus.Logger
	client      *http.Client
	baseURL     string
	cache       *Cache
	languages   *LookupTable
	occupations *LookupTable
}

// NewClient creates a demographics client. The cache and lookup tables are
// injected so tests can substitute or reset them.
func NewClient(logger *logrus.Logger, baseURL string, timeout time.Duration, cache *Cache, languages, occupations *LookupTable) *Client {
	return &Client{
		logger:      logger,
		client:      &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		cache:       cache,
		languages:   languages,
		occupations: occupations,
	}
}

// Fetch returns demographics for a postcode, or nil when enrichment failed.
// The statistical-area code and gazetteer hints are accepted from callers
// that hold a locality match; the ABS postal-area query supersedes them, so
// they are currently unused beyond logging.
func (c *Client) Fetch(sscCode int, postcode string, knownMedianIncome *float64, knownPopulation *int) *models.Demographics {
	if cached, ok := c.cache.Get(postcode); ok {
		return &cached
	}

	var (
		medianAge    *float64
		weeklyIncome *float64
		language     string
		languageOK   bool
		occupation   string
		occupationOK bool
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		medianAge, weeklyIncome, err = c.fetchMedians(postcode)
		return err
	})
	g.Go(func() error {
		language, languageOK = c.languages.Lookup(postcode)
		return nil
	})
	g.Go(func() error {
		occupation, occupationOK = c.occupations.Lookup(postcode)
		return nil
	})

	if err := g.Wait(); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"postcode": postcode,
			"ssc_code": sscCode,
		}).Warn("Demographics fetch failed")
		return nil
	}

	// Both medians are required; a partial result is a failure, never a
	// partially populated record.
	if medianAge == nil || weeklyIncome == nil {
		c.logger.WithField("postcode", postcode).Warn("ABS response missing median age or income")
		return nil
	}

	if !languageOK {
		language = notAvailable
	}
	if !occupationOK {
		occupation = notAvailable
	}

	result := models.Demographics{
		MedianIncome:   *weeklyIncome * 52,
		MedianAge:      *medianAge,
		MainLanguage:   language,
		OccupationType: occupation,
		CensusYear:     censusYear,
		Source:         sourceABSAPI,
	}

	c.cache.Put(postcode, result)

	c.logger.WithFields(logrus.Fields{
		"postcode":   postcode,
		"median_age": result.MedianAge,
		"income":     result.MedianIncome,
	}).Info("Fetched demographics")

	return &result
}

// fetchMedians queries the C21_G02_POA dataflow for median age and median
// weekly personal income.
func (c *Client) fetchMedians(postcode string) (medianAge, weeklyIncome *float64, err error) {
	url := fmt.Sprintf("%s/C21_G02_POA/1+2.%s...2021?format=jsondata", c.baseURL, postcode)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.sdmx.data+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("ABS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("ABS API error: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read ABS response: %w", err)
	}

	var parsed sdmxResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, nil, fmt.Errorf("failed to parse ABS response: %w", err)
	}

	return extractValue(parsed, metricMedianAge), extractValue(parsed, metricMedianWeeklyIncome), nil
}
