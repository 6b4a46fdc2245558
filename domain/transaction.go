package domain

// Transaction is a classified incoming transaction of a curated-list contract.
// Value is in ETH, already converted from wei. ItemID is set only for decoded
// fund-appeal calls and holds the target token id or address, lower-cased.
type Transaction struct {
	Timestamp    int64   `json:"timestamp"`
	From         string  `json:"from"`
	Value        float64 `json:"value"`
	IsFundAppeal bool    `json:"isFundAppeal"`
	ItemID       string  `json:"tokenId,omitempty"`
}
