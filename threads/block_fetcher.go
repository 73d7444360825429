package threads

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/modulrcloud/modulr-api/structures"
	"github.com/modulrcloud/modulr-api/utils"
	"github.com/modulrcloud/modulr-api/websocket_pack"

	"github.com/valyala/fasthttp"
)

type BlockFetcher interface {
	// BlockByHeight returns nil, nil when the block at this height does not exist yet.
	BlockByHeight(ctx context.Context, height int64) (*structures.Block, error)
}

// HTTPBlockFetcher reads GET <node>/height/{absoluteHeightIndex}.
type HTTPBlockFetcher struct {
	baseURL string
	client  *fasthttp.Client
	timeout time.Duration
}

func NewHTTPBlockFetcher(baseURL string, client *fasthttp.Client, timeout time.Duration) *HTTPBlockFetcher {
	return &HTTPBlockFetcher{baseURL: strings.TrimRight(baseURL, "/"), client: client, timeout: timeout}
}

func (f *HTTPBlockFetcher) BlockByHeight(ctx context.Context, height int64) (*structures.Block, error) {

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	status, body, err := utils.DoNodeRequest(ctx, f.client, fasthttp.MethodGet, f.baseURL+"/height/"+strconv.FormatInt(height, 10), nil, f.timeout)
	if err != nil {
		return nil, err
	}

	switch status {
	case fasthttp.StatusOK:
	case fasthttp.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("node answered %d for height %d", status, height)
	}

	var block structures.Block
	if err := json.Unmarshal(body, &block); err != nil {
		return nil, fmt.Errorf("decode block at height %d: %w", height, err)
	}

	return &block, nil
}

// PoDBlockFetcher asks the point of distribution over its websocket.
type PoDBlockFetcher struct{}

func (PoDBlockFetcher) BlockByHeight(ctx context.Context, height int64) (*structures.Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return websocket_pack.GetBlockByHeightFromPoD(height)
}
