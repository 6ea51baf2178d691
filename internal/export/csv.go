package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/dewvow/housepulse/internal/models"
)

var headers = []string{
	"Suburb",
	"State",
	"Postcode",
	"Hot",
	"Property Type",
	"Beds",
	"Buy Price",
	"Weekly Rent",
	"Yield %",
	"Date Added",
	"Last Updated",
}

// WriteCSV flattens the records into one CSV row per record, property type
// and bedroom bucket. Unpriced buckets keep their row with empty numeric
// cells so the spreadsheet shape stays stable across exports.
func WriteCSV(w io.Writer, records []models.SuburbRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, record := range records {
		for _, pt := range models.PropertyTypes {
			data := record.House
			if pt == models.Unit {
				data = record.Unit
			}
			for _, bucket := range models.BedroomBuckets {
				if err := cw.Write(row(record, pt, bucket, data)); err != nil {
					return fmt.Errorf("failed to write CSV row: %w", err)
				}
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func row(record models.SuburbRecord, pt models.PropertyType, bucket models.BedroomBucket, data models.PropertyTypeData) []string {
	price := data.Bedrooms[bucket]

	hot := "No"
	if record.IsHot {
		hot = "Yes"
	}

	buy, rent, yield := "", "", ""
	if price.BuyPrice > 0 {
		buy = fmt.Sprintf("%.0f", price.BuyPrice)
		rent = fmt.Sprintf("%.0f", price.RentPrice)
		yield = fmt.Sprintf("%.2f", data.Yield[bucket])
	}

	return []string{
		record.Suburb,
		string(record.State),
		record.Postcode,
		hot,
		string(pt),
		string(bucket),
		buy,
		rent,
		yield,
		record.DateAdded.Format("2006-01-02"),
		record.LastUpdated.Format("2006-01-02"),
	}
}

// Filename returns the dated download name for an export.
func Filename(now time.Time) string {
	return fmt.Sprintf("housepulse-data-%s.csv", now.Format("2006-01-02"))
}
