package demographics

import (
	"strconv"
	"strings"
)

// sdmxResponse mirrors the SDMX-JSON shape returned by the ABS data API for
// the C21_G02_POA dataflow (selected medians and averages by postal area).
type sdmxResponse struct {
	Data struct {
		DataSets []struct {
			Series map[string]struct {
				Observations map[string][]float64 `json:"observations"`
			} `json:"series"`
		} `json:"dataSets"`
		Structures []struct {
			Dimensions struct {
				Series []struct {
					ID     string `json:"id"`
					Values []struct {
						ID   string `json:"id"`
						Name string `json:"name"`
					} `json:"values"`
				} `json:"series"`
			} `json:"dimensions"`
		} `json:"structures"`
	} `json:"data"`
}

// extractValue pulls the observation for one metric out of the response.
// The first series dimension is the metric (MEDAVG); series keys are
// colon-separated dimension indexes, so a series belongs to the target
// metric when its first index matches the metric's position in the
// dimension value list.
func extractValue(resp sdmxResponse, metricID string) *float64 {
	if len(resp.Data.DataSets) == 0 || len(resp.Data.Structures) == 0 {
		return nil
	}
	series := resp.Data.DataSets[0].Series
	if series == nil {
		return nil
	}

	dims := resp.Data.Structures[0].Dimensions.Series
	if len(dims) == 0 {
		return nil
	}

	target := -1
	for i, v := range dims[0].Values {
		if v.ID == metricID {
			target = i
			break
		}
	}
	if target == -1 {
		return nil
	}

	for key, data := range series {
		first := strings.SplitN(key, ":", 2)[0]
		index, err := strconv.Atoi(first)
		if err != nil || index != target {
			continue
		}
		for _, obs := range data.Observations {
			if len(obs) > 0 {
				value := obs[0]
				return &value
			}
		}
	}

	return nil
}
