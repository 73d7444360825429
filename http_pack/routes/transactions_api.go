package routes

import (
	"github.com/modulrcloud/modulr-api/handlers"
	"github.com/modulrcloud/modulr-api/http_pack/helpers"

	"github.com/valyala/fasthttp"
)

func GetTransactionCount(ctx *fasthttp.RequestCtx) {

	if !tpsReady(ctx) {
		return
	}

	reqCtx, cancel := helpers.RequestContext()
	defer cancel()

	helpers.WriteJSON(ctx, fasthttp.StatusOK, handlers.TPS.TransactionCount(reqCtx))
}

// GetTransactionCountFromSource counts indexed operations instead of summing shard counters.
func GetTransactionCountFromSource(ctx *fasthttp.RequestCtx) {

	if !tpsReady(ctx) {
		return
	}

	reqCtx, cancel := helpers.RequestContext()
	defer cancel()

	helpers.WriteJSON(ctx, fasthttp.StatusOK, handlers.TPS.TransactionCountFromSource(reqCtx))
}
