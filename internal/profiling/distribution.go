package profiling

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// OptionSummary describes the distribution of distinct option counts over
// the dropdown fields of a workbook
type OptionSummary struct {
	Dropdowns int     `json:"dropdowns"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Mean      float64 `json:"mean"`
	Median    float64 `json:"median"`
	StdDev    float64 `json:"std_dev"`
	Q90       float64 `json:"q90"`
	Skewness  float64 `json:"skewness"`
}

// DistributionAnalyzer summarizes option counts
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// AnalyzeOptionCounts summarizes the counts. An empty input yields a zero
// summary.
func (da *DistributionAnalyzer) AnalyzeOptionCounts(counts []int) (OptionSummary, error) {
	summary := OptionSummary{Dropdowns: len(counts)}
	if len(counts) == 0 {
		return summary, nil
	}

	data := make(stats.Float64Data, len(counts))
	for i, c := range counts {
		data[i] = float64(c)
	}

	var err error
	if summary.Mean, err = stats.Mean(data); err != nil {
		return summary, err
	}
	if summary.Min, err = stats.Min(data); err != nil {
		return summary, err
	}
	if summary.Max, err = stats.Max(data); err != nil {
		return summary, err
	}
	if summary.Median, err = stats.Median(data); err != nil {
		return summary, err
	}
	if summary.StdDev, err = stats.StandardDeviation(data); err != nil {
		return summary, err
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	summary.Q90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)

	// Skew divides by the sample deviation; a single value or identical
	// values have none.
	if len(sorted) > 2 && summary.StdDev > 0 {
		if skew := stat.Skew(sorted, nil); !math.IsNaN(skew) && !math.IsInf(skew, 0) {
			summary.Skewness = skew
		}
	}
	return summary, nil
}
