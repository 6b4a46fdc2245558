package sync

import (
	"slices"

	"github.com/kleros/t2cr-dashboard-backend/domain"
)

// fundingData maps item id to each funder's most recent funding time.
type fundingData map[string]map[string]int64

func collectFundingData(transactions []domain.Transaction) fundingData {
	funding := make(fundingData)
	for _, tx := range transactions {
		if !tx.IsFundAppeal {
			continue
		}
		funders := funding[tx.ItemID]
		if funders == nil {
			funders = make(map[string]int64)
			funding[tx.ItemID] = funders
		}
		if tx.Timestamp > funders[tx.From] {
			funders[tx.From] = tx.Timestamp
		}
	}
	return funding
}

// crowdfundingOf reports whether the item ever received funding from a
// non-party address, and the time of the latest such funding. Funding from a
// party to its own dispute is normal litigation funding, not crowdfunding.
func (f fundingData) crowdfundingOf(item *domain.Item) (bool, int64) {
	var hadCrowdfunding bool
	var lastCrowdfunding int64
	for funder, lastFunding := range f[item.FundingID()] {
		if slices.Contains(item.Parties, funder) {
			continue
		}
		hadCrowdfunding = true
		if lastFunding > lastCrowdfunding {
			lastCrowdfunding = lastFunding
		}
	}
	return hadCrowdfunding, lastCrowdfunding
}
