package filter

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dewvow/housepulse/internal/models"
)

// SortField selects the record attribute views are ordered by.
type SortField string

const (
	SortBySuburb SortField = "suburb"
	SortByYield  SortField = "yield"
	SortByPrice  SortField = "price"
)

// Direction is the sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Apply reduces a record collection to the records matching the criteria.
// It is a pure function: the input slice is never mutated.
//
// A record passes when its state is unrestricted or matches, it is hot if
// hotOnly is set, and — only when a price or yield bound is active — at
// least one surfaced (property type, bedroom bucket) combination has a
// positive buy price inside the bounds. With no price/yield bound there is
// no combination check at all, so hot records without any priced bedrooms
// still surface during triage.
func Apply(records []models.SuburbRecord, c models.FilterCriteria) []models.SuburbRecord {
	matched := make([]models.SuburbRecord, 0, len(records))
	for _, r := range records {
		if matches(r, c) {
			matched = append(matched, r)
		}
	}
	return matched
}

func matches(r models.SuburbRecord, c models.FilterCriteria) bool {
	if len(c.States) > 0 && !containsState(c.States, r.State) {
		return false
	}
	if c.HotOnly && !r.IsHot {
		return false
	}
	if c.MaxPrice == nil && c.MinYield == nil {
		return true
	}

	for _, combo := range surfacedCombinations(r, c) {
		if combo.BuyPrice <= 0 {
			continue
		}
		if c.MaxPrice != nil && combo.BuyPrice > *c.MaxPrice {
			continue
		}
		if c.MinYield != nil && combo.Yield < *c.MinYield {
			continue
		}
		return true
	}
	return false
}

// Combination is one surfaced (property type, bedroom bucket) pairing of a
// record.
type Combination struct {
	PropertyType models.PropertyType
	Bedrooms     models.BedroomBucket
	BuyPrice     float64
	RentPrice    float64
	Yield        float64
}

// surfacedCombinations enumerates the record's combinations allowed by the
// criteria's property-type and bedroom sets (all of them when unrestricted).
func surfacedCombinations(r models.SuburbRecord, c models.FilterCriteria) []Combination {
	types := c.PropertyTypes
	if len(types) == 0 {
		types = models.PropertyTypes
	}
	buckets := c.Bedrooms
	if len(buckets) == 0 {
		buckets = models.BedroomBuckets
	}

	combos := make([]Combination, 0, len(types)*len(buckets))
	for _, t := range types {
		data := r.House
		if t == models.Unit {
			data = r.Unit
		}
		for _, b := range buckets {
			price := data.Bedrooms[b]
			combos = append(combos, Combination{
				PropertyType: t,
				Bedrooms:     b,
				BuyPrice:     price.BuyPrice,
				RentPrice:    price.RentPrice,
				Yield:        data.Yield[b],
			})
		}
	}
	return combos
}

// BestCombination returns the surfaced combination with the highest yield,
// or false when the record has no surfaced combination.
func BestCombination(r models.SuburbRecord, c models.FilterCriteria) (Combination, bool) {
	combos := surfacedCombinations(r, c)
	if len(combos) == 0 {
		return Combination{}, false
	}

	best := combos[0]
	for _, combo := range combos[1:] {
		if combo.Yield > best.Yield {
			best = combo
		}
	}
	return best, true
}

// Sort orders records by suburb name (locale collation), by best surfaced
// yield, or by the best-yield combination's buy price. The sort is stable,
// so ties keep their input order.
func Sort(records []models.SuburbRecord, c models.FilterCriteria, field SortField, dir Direction) []models.SuburbRecord {
	sorted := make([]models.SuburbRecord, len(records))
	copy(sorted, records)

	collator := collate.New(language.English)

	less := func(a, b models.SuburbRecord) bool {
		switch field {
		case SortByYield:
			ca, _ := BestCombination(a, c)
			cb, _ := BestCombination(b, c)
			return ca.Yield < cb.Yield
		case SortByPrice:
			ca, _ := BestCombination(a, c)
			cb, _ := BestCombination(b, c)
			return ca.BuyPrice < cb.BuyPrice
		default:
			return collator.CompareString(a.Suburb, b.Suburb) < 0
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if dir == Descending {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})

	return sorted
}

func containsState(states []models.StateCode, state models.StateCode) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}
