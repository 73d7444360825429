package websocket_pack

import "github.com/modulrcloud/modulr-api/structures"

type WsRouteRequest struct {
	Route string `json:"route"`
}

type WsTpsCurrentRequest struct {
	Route     string `json:"route"`
	Frequency string `json:"frequency"`
}

// Interval may be empty: the raw one-hour history is returned then.
type WsTpsHistoryRequest struct {
	Route    string `json:"route"`
	Interval string `json:"interval"`
}

// Interval may be empty: the all-time max is returned then.
type WsTpsMaxRequest struct {
	Route    string `json:"route"`
	Interval string `json:"interval"`
}

type WsTransactionCountRequest struct {
	Route string `json:"route"`
	Raw   bool   `json:"raw"`
}

type WsErrResponse struct {
	Err string `json:"err"`
}

type WsBlockByHeightRequest struct {
	Route  string `json:"route"`
	Height int64  `json:"height"`
}

type WsBlockByHeightResponse struct {
	Block *structures.Block `json:"block"`
}
