package monitor

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xseed-project/xseed-token/pkg/supply"
)

// Metrics used in monitoring service.
var (
	totalSupply = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Total supply of the token",
			Name:      "total_supply",
			Namespace: "xseed",
		},
	)
	ownerBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Token balance of the owner account",
			Name:      "owner_balance",
			Namespace: "xseed",
		},
	)
	supplyMatches = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "1 if the owner balance equals the total supply, 0 otherwise",
			Name:      "supply_matches",
			Namespace: "xseed",
		},
	)
	checkFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of failed supply checks",
			Name:      "supply_check_failures_total",
			Namespace: "xseed",
		},
		[]string{"reason"},
	)
)

const (
	reasonMismatch = "mismatch"
	reasonError    = "error"
)

func init() {
	prometheus.MustRegister(
		totalSupply,
		ownerBalance,
		supplyMatches,
		checkFailures,
	)
}

func updateReportMetrics(rep *supply.Report) {
	totalSupply.Set(toFloat(rep.TotalSupply))
	ownerBalance.Set(toFloat(rep.Balance))
	if rep.Matches() {
		supplyMatches.Set(1)
	} else {
		supplyMatches.Set(0)
	}
}

// resetReportMetrics drops the values of the last successful round, the
// supply is unknown until the next one.
func resetReportMetrics() {
	totalSupply.Set(0)
	ownerBalance.Set(0)
	supplyMatches.Set(0)
}

func toFloat(v *big.Int) float64 {
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
