package domain

// ZeroAddress marks an empty party slot in on-chain request data.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// RegistrationStatus is the raw status of an item in a curated-list contract.
type RegistrationStatus int

const (
	RegistrationAbsent RegistrationStatus = iota
	RegistrationRegistered
	RegistrationRequested
	ClearingRequested
)

// DisputeStatus is the status of a dispute in the arbitrator contract.
type DisputeStatus int

const (
	DisputeWaiting DisputeStatus = iota
	DisputeAppealable
	DisputeSolved
)

// DashboardStatus is the derived, display-facing status of an item. The
// numbering is part of the published JSON contract and must not change.
type DashboardStatus int

const (
	StatusAccepted DashboardStatus = iota
	StatusRejected
	StatusPending
	StatusChallenged // kept for numbering, never assigned as a primary status
	StatusCrowdfunding
	StatusAppealed
)

// Round is one funding/appeal round of a disputed request. PaidFees are
// converted from wei to ETH at load time; FeeRewards stays raw.
type Round struct {
	Appealed   bool      `json:"appealed"`
	PaidFees   []float64 `json:"paidFees"`
	HasPaid    []bool    `json:"hasPaid"`
	FeeRewards string    `json:"feeRewards"`
}

// Request is an on-chain proposal to change an item's registration status.
// Parties slot 0 is unused; slot 1 is the requester, slot 2 the challenger,
// either may hold the zero address.
type Request struct {
	Disputed            bool      `json:"disputed"`
	DisputeID           uint64    `json:"disputeID"`
	SubmissionTime      int64     `json:"submissionTime"`
	Resolved            bool      `json:"resolved"`
	Parties             [3]string `json:"parties"`
	Rounds              []*Round  `json:"rounds"`
	Ruling              int       `json:"ruling"`
	Arbitrator          string    `json:"arbitrator"`
	ArbitratorExtraData string    `json:"arbitratorExtraData"`
}

// Item is a token or address entry in a curated list. Token entries carry
// display metadata (TokenID, Name, Ticker, SymbolMultihash); address entries
// carry Address and may be enriched with token metadata for display.
type Item struct {
	TokenID         string `json:"tokenId,omitempty"`
	Name            string `json:"name,omitempty"`
	Ticker          string `json:"ticker,omitempty"`
	Addr            string `json:"addr,omitempty"`
	SymbolMultihash string `json:"symbolMultihash,omitempty"`
	Address         string `json:"address,omitempty"`

	Status        RegistrationStatus `json:"status"`
	CurrentStatus DashboardStatus    `json:"currentStatus"`
	Requests      []*Request         `json:"requests"`

	LastRequestTime  int64    `json:"lastRequestTime"`
	Challenged       bool     `json:"challenged"`
	Appealed         bool     `json:"appealed"`
	Parties          []string `json:"parties"`
	LastCrowdfunding int64    `json:"lastCrowdfunding,omitempty"`
}

// LastRequest returns the most recent request, or false for an item with an
// empty request history.
func (i *Item) LastRequest() (*Request, bool) {
	if len(i.Requests) == 0 {
		return nil, false
	}
	return i.Requests[len(i.Requests)-1], true
}

// FundingID is the identifier fund-appeal transactions reference: the token id
// for token entries, the listed address for address entries.
func (i *Item) FundingID() string {
	if i.TokenID != "" {
		return i.TokenID
	}
	return i.Address
}
