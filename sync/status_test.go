package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleros/t2cr-dashboard-backend/domain"
)

func TestAggregateByStatus(t *testing.T) {
	items := []*domain.Item{
		{TokenID: "0x01", CurrentStatus: domain.StatusAccepted},
		{TokenID: "0x02", CurrentStatus: domain.StatusAccepted, Challenged: true},
		{TokenID: "0x03", CurrentStatus: domain.StatusRejected},
		{TokenID: "0x04", CurrentStatus: domain.StatusPending},
		{TokenID: "0x05", CurrentStatus: domain.StatusCrowdfunding, Challenged: true, Parties: []string{requester}},
		{TokenID: "0x06", CurrentStatus: domain.StatusAppealed, Challenged: true, Appealed: true, Parties: []string{requester}},
	}
	transactions := []domain.Transaction{
		{Timestamp: 1000, From: funder, IsFundAppeal: true, ItemID: "0x05"},
		{Timestamp: 2000, From: funder, IsFundAppeal: true, ItemID: "0x06"},
		{Timestamp: 3000, From: requester, IsFundAppeal: true, ItemID: "0x04"}, // party funding only
	}

	aggregate := AggregateByStatus(items, transactions)

	assert.Equal(t, domain.StatusCounts{
		Accepted:     2,
		Rejected:     1,
		Pending:      1,
		Challenged:   3,
		Crowdfunding: 3, // 0x04's funder is a non-party here
		Appealed:     1,
		Total:        6,
	}, aggregate.Counts)

	require.Len(t, aggregate.Crowdfunding, 1)
	assert.Equal(t, "0x05", aggregate.Crowdfunding[0].TokenID)
	assert.Equal(t, int64(1000), aggregate.Crowdfunding[0].LastCrowdfunding)

	require.Len(t, aggregate.Crowdfunded, 2)
	assert.Equal(t, "0x04", aggregate.Crowdfunded[0].TokenID)
	assert.Equal(t, "0x06", aggregate.Crowdfunded[1].TokenID)
}

func TestAggregateByStatus_GivenNoItems(t *testing.T) {
	aggregate := AggregateByStatus(nil, nil)

	assert.Equal(t, domain.StatusCounts{}, aggregate.Counts)
	assert.Empty(t, aggregate.Crowdfunding)
	assert.Empty(t, aggregate.Crowdfunded)
}

func TestMergeAggregates(t *testing.T) {
	first := &FamilyAggregate{
		Counts:       domain.StatusCounts{Accepted: 2, Pending: 1, Total: 3},
		Crowdfunding: []*domain.Item{{Address: "0x0a"}},
		Crowdfunded:  []*domain.Item{{Address: "0x0b"}},
	}
	second := &FamilyAggregate{
		Counts:       domain.StatusCounts{Accepted: 1, Rejected: 4, Total: 5},
		Crowdfunding: []*domain.Item{{Address: "0x0c"}},
	}

	merged := MergeAggregates(first, second)

	assert.Equal(t, domain.StatusCounts{Accepted: 3, Rejected: 4, Pending: 1, Total: 8}, merged.Counts)
	require.Len(t, merged.Crowdfunding, 2)
	assert.Equal(t, "0x0a", merged.Crowdfunding[0].Address)
	assert.Equal(t, "0x0c", merged.Crowdfunding[1].Address)
	require.Len(t, merged.Crowdfunded, 1)
}
