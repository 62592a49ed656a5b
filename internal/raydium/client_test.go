package raydium

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSwap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/compute/swap-base-in", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "MintA", q.Get("inputMint"))
		assert.Equal(t, "MintB", q.Get("outputMint"))
		assert.Equal(t, "5000000", q.Get("amount"))
		assert.Equal(t, "2000", q.Get("slippageBps"))
		assert.Equal(t, "V0", q.Get("txVersion"))

		w.Write([]byte(`{
			"success": true,
			"data": {
				"inputMint": "MintA",
				"outputMint": "MintB",
				"inputAmount": "5000000",
				"outputAmount": "987654"
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	compute, err := client.ComputeSwap(context.Background(), ComputeRequest{
		InputMint:   "MintA",
		OutputMint:  "MintB",
		Amount:      5_000_000,
		SlippageBps: 2000,
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(5_000_000), compute.InAmount)
	assert.Equal(t, uint64(987_654), compute.OutAmount)
	assert.NotEmpty(t, compute.Raw)
}

func TestComputeSwapAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "msg": "ROUTE_NOT_FOUND"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.ComputeSwap(context.Background(), ComputeRequest{
		InputMint: "A", OutputMint: "B", Amount: 1, SlippageBps: 2000,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ROUTE_NOT_FOUND")
}

func TestBuildSwap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/swap-base-in", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var payload struct {
			SwapResponse struct {
				Success bool            `json:"success"`
				Data    json.RawMessage `json:"data"`
			} `json:"swapResponse"`
			TxVersion string `json:"txVersion"`
			Wallet    string `json:"wallet"`
			WrapSol   bool   `json:"wrapSol"`
			UnwrapSol bool   `json:"unwrapSol"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.True(t, payload.SwapResponse.Success)
		assert.JSONEq(t, `{"outputAmount": "2"}`, string(payload.SwapResponse.Data))
		assert.Equal(t, "V0", payload.TxVersion)
		assert.Equal(t, "WalletPubkey", payload.Wallet)
		assert.True(t, payload.WrapSol)
		assert.True(t, payload.UnwrapSol)

		w.Write([]byte(`{"success": true, "data": [{"transaction": "bmF0aXZldHg="}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	compute := &Compute{Raw: json.RawMessage(`{"outputAmount": "2"}`)}
	tx, err := client.BuildSwap(context.Background(), compute, "WalletPubkey")
	require.NoError(t, err)
	assert.Equal(t, "bmF0aXZldHg=", tx)
}

func TestBuildSwapEmptyTransactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "data": []}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.BuildSwap(context.Background(), &Compute{Raw: json.RawMessage(`{}`)}, "W")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing transaction")
}
