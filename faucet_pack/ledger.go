package faucet_pack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/modulrcloud/modulr-api/structures"
	"github.com/modulrcloud/modulr-api/utils"

	"github.com/valyala/fasthttp"
)

// NodeLedgerReader reads accounts from GET <node>/account/{id}.
type NodeLedgerReader struct {
	baseURL string
	client  *fasthttp.Client
	timeout time.Duration
}

func NewNodeLedgerReader(baseURL string, client *fasthttp.Client, timeout time.Duration) *NodeLedgerReader {
	return &NodeLedgerReader{baseURL: strings.TrimRight(baseURL, "/"), client: client, timeout: timeout}
}

func (r *NodeLedgerReader) GetAccount(ctx context.Context, address string) (*structures.Account, error) {

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	status, body, err := utils.DoNodeRequest(ctx, r.client, fasthttp.MethodGet, r.baseURL+"/account/"+url.PathEscape(address), nil, r.timeout)
	if err != nil {
		return nil, err
	}

	switch {
	case status == fasthttp.StatusNotFound:
		return nil, ErrAccountNotFound
	case status != fasthttp.StatusOK:
		return nil, fmt.Errorf("node answered %d for account %s", status, address)
	}

	var account structures.Account
	if err := json.Unmarshal(body, &account); err != nil {
		return nil, fmt.Errorf("decode account %s: %w", address, err)
	}

	// The node reports the last executed nonce.
	account.Nonce++

	return &account, nil
}
