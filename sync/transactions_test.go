package sync

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleros/t2cr-dashboard-backend/etherscan"
)

const listContract = "0xEBcf3bcA271B26ae4B162Ba560e243055Af0E679"

type FakeTransactionSource struct {
	pages          map[int][]etherscan.RawTransaction
	requestedPages []int
	failing        bool
}

func (f *FakeTransactionSource) Page(_ context.Context, _ string, page, _ int) ([]etherscan.RawTransaction, error) {
	if f.failing {
		return nil, errors.New("rate limited")
	}
	f.requestedPages = append(f.requestedPages, page)
	return f.pages[page], nil
}

type FakeCallDecoder struct {
	fundAppeals map[string]string
}

func (f *FakeCallDecoder) FundAppealItem(input string) (string, bool) {
	itemID, ok := f.fundAppeals[input]
	return itemID, ok
}

func TestTransactionFetcher_FetchTransactions(t *testing.T) {
	source := &FakeTransactionSource{pages: map[int][]etherscan.RawTransaction{
		1: {
			{From: "0xAbCd000000000000000000000000000000000001", Value: "1000000000000000000", TimeStamp: "1500000000", ReceiptStatus: "1", Input: "0x"},
			{From: funder, Value: "500000000000000000", TimeStamp: "1500000100", ReceiptStatus: "1", Input: "0xfund"},
		},
	}}
	decoder := &FakeCallDecoder{fundAppeals: map[string]string{"0xfund": pnkID}}
	fetcher := NewTransactionFetcher(source, decoder, 0)

	transactions, err := fetcher.FetchTransactions(context.Background(), listContract)
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	assert.Equal(t, "0xabcd000000000000000000000000000000000001", transactions[0].From)
	assert.InDelta(t, 1.0, transactions[0].Value, 1e-9)
	assert.Equal(t, int64(1500000000), transactions[0].Timestamp)
	assert.False(t, transactions[0].IsFundAppeal)

	assert.True(t, transactions[1].IsFundAppeal)
	assert.Equal(t, pnkID, transactions[1].ItemID)
	assert.InDelta(t, 0.5, transactions[1].Value, 1e-9)
}

func TestTransactionFetcher_FetchTransactions_GivenFullPage_ThenFetchNext(t *testing.T) {
	fullPage := make([]etherscan.RawTransaction, 2)
	for i := range fullPage {
		fullPage[i] = etherscan.RawTransaction{From: funder, Value: "1000000000000000000", TimeStamp: "1500000000", ReceiptStatus: "1"}
	}
	source := &FakeTransactionSource{pages: map[int][]etherscan.RawTransaction{
		1: fullPage,
		2: fullPage,
		3: fullPage[:1],
	}}
	fetcher := NewTransactionFetcher(source, &FakeCallDecoder{}, 2)

	transactions, err := fetcher.FetchTransactions(context.Background(), listContract)
	require.NoError(t, err)
	assert.Len(t, transactions, 5)
	assert.Equal(t, []int{1, 2, 3}, source.requestedPages)
}

func TestTransactionFetcher_FetchTransactions_GivenShortFirstPage_ThenStop(t *testing.T) {
	source := &FakeTransactionSource{pages: map[int][]etherscan.RawTransaction{
		1: {{From: funder, Value: "1000000000000000000", TimeStamp: "1500000000", ReceiptStatus: "1"}},
	}}
	fetcher := NewTransactionFetcher(source, &FakeCallDecoder{}, 2)

	transactions, err := fetcher.FetchTransactions(context.Background(), listContract)
	require.NoError(t, err)
	assert.Len(t, transactions, 1)
	assert.Equal(t, []int{1}, source.requestedPages)
}

func TestTransactionFetcher_FetchTransactions_FiltersIrrelevantTransactions(t *testing.T) {
	source := &FakeTransactionSource{pages: map[int][]etherscan.RawTransaction{
		1: {
			// outgoing, contract address match is case-insensitive
			{From: "0xebcf3bca271b26ae4b162ba560e243055af0e679", Value: "1000000000000000000", TimeStamp: "1500000000", ReceiptStatus: "1"},
			// zero value
			{From: funder, Value: "0", TimeStamp: "1500000000", ReceiptStatus: "1"},
			// unparseable value
			{From: funder, Value: "not-a-number", TimeStamp: "1500000000", ReceiptStatus: "1"},
			// failed on chain
			{From: funder, Value: "1000000000000000000", TimeStamp: "1500000000", ReceiptStatus: "0"},
			// bad timestamp
			{From: funder, Value: "1000000000000000000", TimeStamp: "not-a-number", ReceiptStatus: "1"},
			// pre-byzantium transactions have no receipt status
			{From: funder, Value: "2000000000000000000", TimeStamp: "1400000000", ReceiptStatus: ""},
		},
	}}
	fetcher := NewTransactionFetcher(source, &FakeCallDecoder{}, 0)

	transactions, err := fetcher.FetchTransactions(context.Background(), listContract)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.InDelta(t, 2.0, transactions[0].Value, 1e-9)
}

func TestTransactionFetcher_FetchTransactions_GivenSourceError_ThenError(t *testing.T) {
	fetcher := NewTransactionFetcher(&FakeTransactionSource{failing: true}, &FakeCallDecoder{}, 0)

	_, err := fetcher.FetchTransactions(context.Background(), listContract)
	assert.Error(t, err)
}
