package faucet_pack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modulrcloud/modulr-api/structures"
	"github.com/modulrcloud/modulr-api/utils"

	"github.com/valyala/fasthttp"
)

type Submitter interface {
	// Submit returns an error only when the outcome is unknown (transport failure, 5xx).
	Submit(ctx context.Context, tx structures.Transaction) (structures.SubmissionResult, error)
}

// NodeSubmitter posts transactions to POST <node>/transaction.
type NodeSubmitter struct {
	baseURL string
	client  *fasthttp.Client
	timeout time.Duration
}

func NewNodeSubmitter(baseURL string, client *fasthttp.Client, timeout time.Duration) *NodeSubmitter {
	return &NodeSubmitter{baseURL: strings.TrimRight(baseURL, "/"), client: client, timeout: timeout}
}

type nodeErrResponse struct {
	Err string `json:"err"`
}

func (s *NodeSubmitter) Submit(ctx context.Context, tx structures.Transaction) (structures.SubmissionResult, error) {

	payload, err := json.Marshal(tx)
	if err != nil {
		return structures.SubmissionResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	status, body, err := utils.DoNodeRequest(ctx, s.client, fasthttp.MethodPost, s.baseURL+"/transaction", payload, s.timeout)
	if err != nil {
		return structures.SubmissionResult{}, err
	}

	switch {

	case status >= 200 && status < 300:
		return structures.SubmissionAccepted(tx.Hash()), nil

	case status >= 500:
		return structures.SubmissionResult{}, fmt.Errorf("node answered %d: %s", status, rejectionReason(status, body))

	default:
		return structures.SubmissionRejected(rejectionReason(status, body)), nil
	}
}

func rejectionReason(status int, body []byte) string {
	var parsed nodeErrResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Err != "" {
		return parsed.Err
	}
	return fasthttp.StatusMessage(status)
}
