package websocket_pack

import (
	"context"
	"encoding/json"

	"github.com/modulrcloud/modulr-api/constants"
	"github.com/modulrcloud/modulr-api/handlers"
	"github.com/modulrcloud/modulr-api/tps_pack"
)

func errReply(msg string) []byte {
	reply, _ := json.Marshal(WsErrResponse{Err: msg})
	return reply
}

func jsonReply(v any) []byte {
	reply, err := json.Marshal(v)
	if err != nil {
		return errReply("Failed to marshal response")
	}
	return reply
}

// HandleRequest dispatches one websocket request by its route and returns the reply payload.
// Replies carry the same JSON as the HTTP routes.
func HandleRequest(ctx context.Context, raw []byte) []byte {

	var request WsRouteRequest

	if err := json.Unmarshal(raw, &request); err != nil {
		return errReply("Invalid JSON")
	}

	if handlers.TPS == nil {
		return errReply("TPS aggregator is not ready")
	}

	switch request.Route {

	case constants.WsRouteGetTpsLatest:
		return jsonReply(handlers.TPS.Latest(ctx))

	case constants.WsRouteGetTpsMax:
		var parsed WsTpsMaxRequest
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return errReply("Invalid JSON")
		}
		return GetTpsMax(ctx, parsed)

	case constants.WsRouteGetTpsCurrent:
		var parsed WsTpsCurrentRequest
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return errReply("Invalid JSON")
		}
		return GetTpsCurrent(ctx, parsed)

	case constants.WsRouteGetTpsHistory:
		var parsed WsTpsHistoryRequest
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return errReply("Invalid JSON")
		}
		return GetTpsHistory(ctx, parsed)

	case constants.WsRouteGetTransactionCount:
		var parsed WsTransactionCountRequest
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return errReply("Invalid JSON")
		}
		if parsed.Raw {
			return jsonReply(handlers.TPS.TransactionCountFromSource(ctx))
		}
		return jsonReply(handlers.TPS.TransactionCount(ctx))

	default:
		return errReply("Unknown route")
	}
}

func GetTpsMax(ctx context.Context, parsedRequest WsTpsMaxRequest) []byte {

	if parsedRequest.Interval == "" {
		return jsonReply(handlers.TPS.Max(ctx))
	}

	interval, err := tps_pack.ParseInterval(parsedRequest.Interval)
	if err != nil {
		return errReply("Unknown interval")
	}

	return jsonReply(handlers.TPS.MaxByInterval(ctx, interval))
}

func GetTpsCurrent(ctx context.Context, parsedRequest WsTpsCurrentRequest) []byte {

	frequency, err := tps_pack.ParseFrequency(parsedRequest.Frequency)
	if err != nil {
		return errReply("Unknown frequency")
	}

	return jsonReply(handlers.TPS.Current(ctx, frequency))
}

func GetTpsHistory(ctx context.Context, parsedRequest WsTpsHistoryRequest) []byte {

	if parsedRequest.Interval == "" {
		return jsonReply(handlers.TPS.HistoryRaw(ctx))
	}

	interval, err := tps_pack.ParseInterval(parsedRequest.Interval)
	if err != nil {
		return errReply("Unknown interval")
	}

	return jsonReply(handlers.TPS.HistoryByInterval(ctx, interval))
}
