package sync

import (
	"sort"

	"github.com/kleros/t2cr-dashboard-backend/domain"
)

// crowdfundingListSize is the display list target: once the active list
// reaches it, the active list is published alone; below it, past crowdfunded
// items pad the list up to this total.
const crowdfundingListSize = 16

// BuildCrowdfundingList merges the token and address families into the ranked
// display list: active crowdfunding items sorted by most recent request first,
// padded with previously crowdfunded items sorted by most recent crowdfunding.
func BuildCrowdfundingList(tokens, addresses *FamilyAggregate, tokenItems []*domain.Item) []*domain.Item {
	active := concat(tokens.Crowdfunding, addresses.Crowdfunding)
	past := concat(tokens.Crowdfunded, addresses.Crowdfunded)
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].LastRequestTime > active[j].LastRequestTime
	})
	sort.SliceStable(past, func(i, j int) bool {
		return past[i].LastCrowdfunding > past[j].LastCrowdfunding
	})

	list := active
	if len(active) < crowdfundingListSize {
		remaining := min(crowdfundingListSize-len(active), len(past))
		list = append(list, past[:remaining]...)
	}

	result := make([]*domain.Item, 0, len(list))
	for _, item := range list {
		if item.TokenID != "" {
			result = append(result, item)
			continue
		}
		result = append(result, enrichAddressItem(item, tokenItems))
	}
	return result
}

// enrichAddressItem attaches token display metadata to an address-family entry
// when some token's addr matches the listed address. Best effort: no match
// means no metadata, never fabricated.
func enrichAddressItem(item *domain.Item, tokens []*domain.Item) *domain.Item {
	for _, token := range tokens {
		if token.Addr == item.Address {
			enriched := *item
			enriched.TokenID = token.TokenID
			enriched.Name = token.Name
			enriched.Ticker = token.Ticker
			enriched.SymbolMultihash = token.SymbolMultihash
			return &enriched
		}
	}
	return item
}

func concat(first, second []*domain.Item) []*domain.Item {
	merged := make([]*domain.Item, 0, len(first)+len(second))
	merged = append(merged, first...)
	return append(merged, second...)
}
