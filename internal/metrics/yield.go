package metrics

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dewvow/housepulse/internal/models"
)

// Yield converts a weekly rent and a purchase price into an annualized
// percentage. A non-positive buy price yields 0: the ratio is meaningless
// and zero prices mean "no data".
func Yield(weeklyRent, buyPrice float64) float64 {
	if buyPrice <= 0 {
		return 0
	}
	annualRent := weeklyRent * 52
	return (annualRent / buyPrice) * 100
}

// PropertyYields applies Yield element-wise over a bucket map. The result is
// the only valid yield map for those prices; externally supplied yields are
// provisional and recomputable through this function.
func PropertyYields(bedrooms map[models.BedroomBucket]models.BedroomPrice) map[models.BedroomBucket]float64 {
	yields := make(map[models.BedroomBucket]float64, len(models.BedroomBuckets))
	for _, b := range models.BedroomBuckets {
		price := bedrooms[b]
		yields[b] = Yield(price.RentPrice, price.BuyPrice)
	}
	return yields
}

// BestYield returns the highest yield across both property types of a record.
func BestYield(record models.SuburbRecord) float64 {
	best := 0.0
	for _, data := range []models.PropertyTypeData{record.House, record.Unit} {
		for _, y := range data.Yield {
			if y > best {
				best = y
			}
		}
	}
	return best
}

var (
	pricePattern = regexp.MustCompile(`(?i)\$?([\d.,]+)\s*(k|m)?`)
	rentPattern  = regexp.MustCompile(`\$?([\d,]+)`)
)

// ParsePrice extracts a dollar amount from free text as scraped from a
// listing page. It tolerates a currency symbol, thousands separators and a
// trailing K/M unit suffix ("$1.2M", "650k", "450,000"). Text with no
// parseable number yields 0. The numeric component is expanded through
// decimal arithmetic so "1.2M" comes out exactly 1200000.
func ParsePrice(text string) float64 {
	match := pricePattern.FindStringSubmatch(text)
	if match == nil {
		return 0
	}

	num, err := decimal.NewFromString(strings.ReplaceAll(match[1], ",", ""))
	if err != nil {
		return 0
	}

	switch strings.ToLower(match[2]) {
	case "k":
		num = num.Mul(decimal.NewFromInt(1000))
	case "m":
		num = num.Mul(decimal.NewFromInt(1000000))
	}

	value, _ := num.Float64()
	return value
}

// ParseRent extracts a weekly rent from free text. Only the leading digit run
// is captured, so trailing units like "/week" are ignored. Unparseable text
// yields 0.
func ParseRent(text string) float64 {
	match := rentPattern.FindStringSubmatch(text)
	if match == nil {
		return 0
	}

	num, err := decimal.NewFromString(strings.ReplaceAll(match[1], ",", ""))
	if err != nil {
		return 0
	}

	value, _ := num.Float64()
	return value
}
