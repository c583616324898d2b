package yahoo

import "math"

// TradingDays is the number of trading days used to annualize volatility
const TradingDays = 252

// Statistics summarizes a series of daily closes
type Statistics struct {
	MinClose             float64 `json:"min_close"`
	MaxClose             float64 `json:"max_close"`
	MeanClose            float64 `json:"mean_close"`
	StdDev               float64 `json:"std_dev"`
	PercentChange        float64 `json:"percent_change"`
	VolatilityAnnualized float64 `json:"volatility_annualized"`
	LastClose            float64 `json:"last_close"`
	Days                 int     `json:"days"`
}

// Compute returns the statistics of closes, it reports false for an empty series
func Compute(closes []float64) (Statistics, bool) {
	if len(closes) == 0 {
		return Statistics{}, false
	}
	ret := Statistics{
		MinClose:  closes[0],
		MaxClose:  closes[0],
		LastClose: closes[len(closes)-1],
		Days:      len(closes),
	}
	for _, v := range closes {
		ret.MinClose = math.Min(ret.MinClose, v)
		ret.MaxClose = math.Max(ret.MaxClose, v)
	}
	ret.MeanClose = mean(closes)
	ret.StdDev = stddev(closes)
	if first := closes[0]; first != 0 {
		ret.PercentChange = (ret.LastClose - first) / first * 100
	}
	returns := make([]float64, 0, len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	ret.VolatilityAnnualized = stddev(returns) * math.Sqrt(TradingDays) * 100
	return ret, true
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

// stddev is the sample standard deviation
func stddev(v []float64) float64 {
	if len(v) < 2 {
		return 0
	}
	m := mean(v)
	var sum float64
	for _, x := range v {
		sum += (x - m) * (x - m)
	}
	return math.Sqrt(sum / float64(len(v)-1))
}
