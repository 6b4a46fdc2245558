package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItem_LastRequest(t *testing.T) {
	item := &Item{Requests: []*Request{
		{SubmissionTime: 1000},
		{SubmissionTime: 2000},
	}}

	request, ok := item.LastRequest()
	require.True(t, ok)
	assert.Equal(t, int64(2000), request.SubmissionTime)
}

func TestItem_LastRequest_GivenNoRequests(t *testing.T) {
	_, ok := (&Item{}).LastRequest()
	assert.False(t, ok)
}

func TestItem_FundingID(t *testing.T) {
	token := &Item{TokenID: "0x01", Addr: "0xaa"}
	assert.Equal(t, "0x01", token.FundingID())

	address := &Item{Address: "0xbb"}
	assert.Equal(t, "0xbb", address.FundingID())
}

func TestItem_JSONOmitsEmptyMetadata(t *testing.T) {
	encoded, err := json.Marshal(&Item{Address: "0xbb", CurrentStatus: StatusPending})
	require.NoError(t, err)

	assert.NotContains(t, string(encoded), "tokenId")
	assert.NotContains(t, string(encoded), "name")
	assert.NotContains(t, string(encoded), "lastCrowdfunding")
	assert.Contains(t, string(encoded), `"address":"0xbb"`)
	assert.Contains(t, string(encoded), `"currentStatus":2`)
}
