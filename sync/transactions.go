package sync

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/kleros/t2cr-dashboard-backend/domain"
	"github.com/kleros/t2cr-dashboard-backend/etherscan"
)

const defaultPageSize = 10000

// TransactionSource returns one page of raw transactions of an address,
// oldest first.
type TransactionSource interface {
	Page(ctx context.Context, address string, page, pageSize int) ([]etherscan.RawTransaction, error)
}

// CallDecoder recognizes fund-appeal calls in raw input data.
type CallDecoder interface {
	FundAppealItem(input string) (itemID string, ok bool)
}

// TransactionFetcher pages through a contract's transaction history and
// classifies the economically relevant incoming transactions.
type TransactionFetcher struct {
	source   TransactionSource
	decoder  CallDecoder
	pageSize int
}

func NewTransactionFetcher(source TransactionSource, decoder CallDecoder, pageSize int) *TransactionFetcher {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &TransactionFetcher{source: source, decoder: decoder, pageSize: pageSize}
}

// FetchTransactions loads the full transaction history of a contract.
// Pagination is strictly sequential: a full page always triggers one more
// fetch, a short page stops.
func (f *TransactionFetcher) FetchTransactions(ctx context.Context, contractAddress string) ([]domain.Transaction, error) {
	var raw []etherscan.RawTransaction
	for page := 1; ; page++ {
		pageTransactions, err := f.source.Page(ctx, contractAddress, page, f.pageSize)
		if err != nil {
			return nil, errors.Wrapf(err, "fetching transactions page [%d] of [%s]", page, contractAddress)
		}
		raw = append(raw, pageTransactions...)
		if len(pageTransactions) != f.pageSize {
			break
		}
	}
	return f.classify(raw, contractAddress), nil
}

// classify drops outgoing, zero-value and failed transactions, then decodes
// fund-appeal calls. Undecodable input is kept as a plain deposit.
func (f *TransactionFetcher) classify(raw []etherscan.RawTransaction, contractAddress string) []domain.Transaction {
	transactions := make([]domain.Transaction, 0, len(raw))
	for _, tx := range raw {
		if strings.EqualFold(tx.From, contractAddress) {
			continue // outgoing
		}
		value, err := strconv.ParseFloat(tx.Value, 64)
		if err != nil || value <= 0 {
			continue
		}
		if tx.ReceiptStatus == "0" {
			continue // failed
		}
		timestamp, err := strconv.ParseInt(tx.TimeStamp, 10, 64)
		if err != nil {
			log.Printf("[WARN] skipping transaction with bad timestamp [%s]", tx.TimeStamp)
			continue
		}

		itemID, isFundAppeal := f.decoder.FundAppealItem(tx.Input)
		transactions = append(transactions, domain.Transaction{
			Timestamp:    timestamp,
			From:         strings.ToLower(tx.From),
			Value:        value / 1e18,
			IsFundAppeal: isFundAppeal,
			ItemID:       itemID,
		})
	}
	return transactions
}
