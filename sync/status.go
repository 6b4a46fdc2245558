package sync

import (
	"github.com/kleros/t2cr-dashboard-backend/domain"
)

// FamilyAggregate is the per-status summary of one entity family (or one
// contract instance of it): counters plus the items currently crowdfunding and
// the items that had crowdfunding in the past.
type FamilyAggregate struct {
	Counts       domain.StatusCounts
	Crowdfunding []*domain.Item
	Crowdfunded  []*domain.Item
}

// AggregateByStatus combines loaded items with their contract's classified
// transactions. Items with crowdfunding history get LastCrowdfunding set; the
// ones not currently in the crowdfunding state go to the Crowdfunded list.
func AggregateByStatus(items []*domain.Item, transactions []domain.Transaction) *FamilyAggregate {
	aggregate := &FamilyAggregate{
		Counts:       domain.StatusCounts{Total: len(items)},
		Crowdfunding: []*domain.Item{},
		Crowdfunded:  []*domain.Item{},
	}
	funding := collectFundingData(transactions)
	for _, item := range items {
		switch item.CurrentStatus {
		case domain.StatusAccepted:
			aggregate.Counts.Accepted++
		case domain.StatusRejected:
			aggregate.Counts.Rejected++
		case domain.StatusPending:
			aggregate.Counts.Pending++
		}
		if item.Challenged {
			aggregate.Counts.Challenged++
		}
		if item.Appealed {
			aggregate.Counts.Appealed++
		}
		if hadCrowdfunding, lastCrowdfunding := funding.crowdfundingOf(item); hadCrowdfunding {
			aggregate.Counts.Crowdfunding++
			item.LastCrowdfunding = lastCrowdfunding
			if item.CurrentStatus != domain.StatusCrowdfunding {
				aggregate.Crowdfunded = append(aggregate.Crowdfunded, item)
			}
		}
		if item.CurrentStatus == domain.StatusCrowdfunding {
			aggregate.Crowdfunding = append(aggregate.Crowdfunding, item)
		}
	}
	return aggregate
}

// MergeAggregates sums counts field-wise and concatenates lists across the
// contract instances of a family, in configured instance order.
func MergeAggregates(aggregates ...*FamilyAggregate) *FamilyAggregate {
	merged := &FamilyAggregate{
		Crowdfunding: []*domain.Item{},
		Crowdfunded:  []*domain.Item{},
	}
	for _, aggregate := range aggregates {
		merged.Counts.Add(aggregate.Counts)
		merged.Crowdfunding = append(merged.Crowdfunding, aggregate.Crowdfunding...)
		merged.Crowdfunded = append(merged.Crowdfunded, aggregate.Crowdfunded...)
	}
	return merged
}
