package sync

import (
	"math"
	"sort"
	"time"

	"github.com/kleros/t2cr-dashboard-backend/domain"
)

// BuildDepositData unions all transactions of both families and computes the
// deposit totals plus the cumulative monthly series. Months without
// transactions are not synthesized; the series may skip calendar months.
func BuildDepositData(tokenTransactions, badgeTransactions []domain.Transaction) *domain.DepositData {
	var tokensTotal, badgesTotal float64
	for _, tx := range tokenTransactions {
		tokensTotal += tx.Value
	}
	for _, tx := range badgeTransactions {
		badgesTotal += tx.Value
	}

	deposits := make([]domain.Transaction, 0, len(tokenTransactions)+len(badgeTransactions))
	deposits = append(deposits, tokenTransactions...)
	deposits = append(deposits, badgeTransactions...)
	sort.SliceStable(deposits, func(i, j int) bool {
		return deposits[i].Timestamp < deposits[j].Timestamp
	})

	dataset := &domain.ChartDataset{Labels: []string{}, Data: []float64{}}
	var sum float64
	for _, deposit := range deposits {
		sum += deposit.Value
		label := monthLabel(deposit.Timestamp)
		if len(dataset.Labels) == 0 || label != dataset.Labels[len(dataset.Labels)-1] {
			dataset.Labels = append(dataset.Labels, label)
			dataset.Data = append(dataset.Data, round2(sum))
		} else {
			dataset.Data[len(dataset.Data)-1] = round2(sum)
		}
	}

	return &domain.DepositData{
		TokensTotalEth: round2(tokensTotal),
		BadgesTotalEth: round2(badgesTotal),
		ChartDataset:   dataset,
	}
}

// monthLabel formats a unix timestamp as e.g. "Jan '24".
func monthLabel(timestamp int64) string {
	t := time.Unix(timestamp, 0).UTC()
	return t.Format("Jan") + " '" + t.Format("06")
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
