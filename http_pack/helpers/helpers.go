package helpers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modulrcloud/modulr-api/globals"

	"github.com/valyala/fasthttp"
)

type errResponse struct {
	Err string `json:"err"`
}

func setJSONHeaders(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
	ctx.SetContentType("application/json")
}

func WriteErr(ctx *fasthttp.RequestCtx, status int, msg string) {
	setJSONHeaders(ctx)
	ctx.SetStatusCode(status)
	if payload, err := json.Marshal(errResponse{Err: msg}); err == nil {
		ctx.Write(payload)
		return
	}
	ctx.Write([]byte(`{"err":"marshal failed"}`))
}

func WriteJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	setJSONHeaders(ctx)
	data, err := json.Marshal(v)
	if err != nil {
		WriteErr(ctx, fasthttp.StatusInternalServerError, "Failed to marshal response")
		return
	}
	ctx.SetStatusCode(status)
	ctx.Write(data)
}

// RequestContext bounds the work done for one request by UPSTREAM_TIMEOUT_MS.
func RequestContext() (context.Context, context.CancelFunc) {
	timeout := time.Duration(globals.CONFIGURATION.UpstreamTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}
