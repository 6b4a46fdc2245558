package domain

// StatusCounts holds the per-status counters of one entity family. The
// challenged, crowdfunding and appealed counters are overlay flags and are not
// mutually exclusive with the primary statuses.
type StatusCounts struct {
	Accepted     int `json:"accepted"`
	Rejected     int `json:"rejected"`
	Pending      int `json:"pending"`
	Challenged   int `json:"challenged"`
	Crowdfunding int `json:"crowdfunding"`
	Appealed     int `json:"appealed"`
	Total        int `json:"total"`
}

// Add sums other into c field-wise. Used when merging multiple contract
// instances of the same family.
func (c *StatusCounts) Add(other StatusCounts) {
	c.Accepted += other.Accepted
	c.Rejected += other.Rejected
	c.Pending += other.Pending
	c.Challenged += other.Challenged
	c.Crowdfunding += other.Crowdfunding
	c.Appealed += other.Appealed
	c.Total += other.Total
}

// ChartDataset is the deposit time series: one label and one cumulative value
// per calendar month that saw at least one transaction.
type ChartDataset struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// DepositData is the published deposit artifact of one network.
type DepositData struct {
	TokensTotalEth float64       `json:"tokensTotalEth"`
	BadgesTotalEth float64       `json:"badgesTotalEth"`
	ChartDataset   *ChartDataset `json:"chartDataset"`
}
