package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleros/t2cr-dashboard-backend/db"
)

type FakeCacheReader struct {
	values map[string]string
}

func (f *FakeCacheReader) Get(_ context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", errors.Errorf("cache key [%s] not found", key)
	}
	return value, nil
}

type FakeRefreshReader struct {
	lastRefresh map[string]int64
}

func (f *FakeRefreshReader) GetLastRefresh(network string) (int64, error) {
	lastRefresh, ok := f.lastRefresh[network]
	if !ok {
		return 0, db.ErrNotFound
	}
	return lastRefresh, nil
}

func testHandler() *Handler {
	cache := &FakeCacheReader{values: map[string]string{
		"eth-price":                 "2345.67",
		"main_tokens-by-status":     `{"accepted":10,"rejected":2,"pending":1,"challenged":3,"crowdfunding":1,"appealed":0,"total":13}`,
		"main_addresses-by-status":  `{"accepted":5,"rejected":0,"pending":0,"challenged":0,"crowdfunding":0,"appealed":0,"total":5}`,
		"main_crowdfunding-tokens":  `[{"tokenId":"0x01","name":"Pinakion"}]`,
		"main_deposit-data":         `{"tokensTotalEth":12.5,"badgesTotalEth":3.25,"chartDataset":{"labels":["Jan '24"],"data":[15.75]}}`,
		"kovan_tokens-by-status":    `{"accepted":1,"rejected":0,"pending":0,"challenged":0,"crowdfunding":0,"appealed":0,"total":1}`,
	}}
	store := &FakeRefreshReader{lastRefresh: map[string]int64{"main": 1700000000}}
	return NewHandler(cache, store, []string{"main", "kovan"})
}

func get(t *testing.T, handlerFunc http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodGet, target, nil)
	recorder := httptest.NewRecorder()
	handlerFunc(recorder, request)
	return recorder
}

func TestHandler_GetEthPrice(t *testing.T) {
	recorder := get(t, testHandler().GetEthPrice, "/eth-price")

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"price":2345.67}`, recorder.Body.String())
}

func TestHandler_GetEthPrice_GivenMissingKey_ThenBadRequest(t *testing.T) {
	handler := NewHandler(&FakeCacheReader{}, &FakeRefreshReader{}, []string{"main"})
	recorder := get(t, handler.GetEthPrice, "/eth-price")

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.NotEmpty(t, response.Error)
}

func TestHandler_GetTokensByStatus_DefaultsToMain(t *testing.T) {
	recorder := get(t, testHandler().GetTokensByStatus, "/tokens-by-status")

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"countByStatus":{"accepted":10,"rejected":2,"pending":1,"challenged":3,"crowdfunding":1,"appealed":0,"total":13}}`,
		recorder.Body.String())
}

func TestHandler_GetTokensByStatus_GivenNetworkParam(t *testing.T) {
	recorder := get(t, testHandler().GetTokensByStatus, "/tokens-by-status?network=kovan")

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"countByStatus":{"accepted":1,"rejected":0,"pending":0,"challenged":0,"crowdfunding":0,"appealed":0,"total":1}}`,
		recorder.Body.String())
}

func TestHandler_GetTokensByStatus_GivenUnknownNetwork_ThenBadRequest(t *testing.T) {
	recorder := get(t, testHandler().GetTokensByStatus, "/tokens-by-status?network=ropsten")

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Contains(t, response.Error, "ropsten")
}

func TestHandler_GetAddressesByStatus(t *testing.T) {
	recorder := get(t, testHandler().GetAddressesByStatus, "/addresses-by-status")

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"countByStatus":{"accepted":5,"rejected":0,"pending":0,"challenged":0,"crowdfunding":0,"appealed":0,"total":5}}`,
		recorder.Body.String())
}

func TestHandler_GetCrowdfundingTokens(t *testing.T) {
	recorder := get(t, testHandler().GetCrowdfundingTokens, "/crowdfunding-tokens")

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"crowdfundingTokens":[{"tokenId":"0x01","name":"Pinakion"}]}`, recorder.Body.String())
}

func TestHandler_GetDepositData(t *testing.T) {
	recorder := get(t, testHandler().GetDepositData, "/deposit-data")

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"depositData":{"tokensTotalEth":12.5,"badgesTotalEth":3.25,"chartDataset":{"labels":["Jan '24"],"data":[15.75]}}}`,
		recorder.Body.String())
}

func TestHandler_GetDepositData_GivenUnpublishedNetwork_ThenBadRequest(t *testing.T) {
	recorder := get(t, testHandler().GetDepositData, "/deposit-data?network=kovan")

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandler_GetStatus(t *testing.T) {
	recorder := get(t, testHandler().GetStatus, "/status")

	require.Equal(t, http.StatusOK, recorder.Code)
	// kovan never refreshed, reported as zero
	assert.JSONEq(t, `{"lastRefreshTimes":{"main":1700000000,"kovan":0}}`, recorder.Body.String())
}

func TestHandler_GetHealth(t *testing.T) {
	recorder := get(t, testHandler().GetHealth, "/health")

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status":"UP"}`, recorder.Body.String())
}

func TestCORS(t *testing.T) {
	mux := http.NewServeMux()
	testHandler().RegisterRoutes(mux)
	server := httptest.NewServer(CORS(mux))
	defer server.Close()

	response, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer response.Body.Close()
	assert.Equal(t, "*", response.Header.Get("Access-Control-Allow-Origin"))

	request, err := http.NewRequest(http.MethodOptions, server.URL+"/tokens-by-status", nil)
	require.NoError(t, err)
	preflight, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	defer preflight.Body.Close()
	assert.Equal(t, http.StatusNoContent, preflight.StatusCode)
	assert.Equal(t, "GET, OPTIONS", preflight.Header.Get("Access-Control-Allow-Methods"))
}
