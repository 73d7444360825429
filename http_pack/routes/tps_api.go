package routes

import (
	"github.com/modulrcloud/modulr-api/handlers"
	"github.com/modulrcloud/modulr-api/http_pack/helpers"
	"github.com/modulrcloud/modulr-api/tps_pack"

	"github.com/valyala/fasthttp"
)

func tpsReady(ctx *fasthttp.RequestCtx) bool {
	if handlers.TPS == nil {
		helpers.WriteErr(ctx, fasthttp.StatusServiceUnavailable, "TPS aggregator is not ready")
		return false
	}
	return true
}

func intervalParam(ctx *fasthttp.RequestCtx) (tps_pack.TpsInterval, bool) {
	name, _ := ctx.UserValue("interval").(string)
	interval, err := tps_pack.ParseInterval(name)
	if err != nil {
		helpers.WriteErr(ctx, fasthttp.StatusBadRequest, "Unknown interval")
		return 0, false
	}
	return interval, true
}

func GetTpsLatest(ctx *fasthttp.RequestCtx) {

	if !tpsReady(ctx) {
		return
	}

	reqCtx, cancel := helpers.RequestContext()
	defer cancel()

	helpers.WriteJSON(ctx, fasthttp.StatusOK, handlers.TPS.Latest(reqCtx))
}

func GetTpsMax(ctx *fasthttp.RequestCtx) {

	if !tpsReady(ctx) {
		return
	}

	reqCtx, cancel := helpers.RequestContext()
	defer cancel()

	helpers.WriteJSON(ctx, fasthttp.StatusOK, handlers.TPS.Max(reqCtx))
}

func GetTpsMaxByInterval(ctx *fasthttp.RequestCtx) {

	if !tpsReady(ctx) {
		return
	}

	interval, ok := intervalParam(ctx)
	if !ok {
		return
	}

	reqCtx, cancel := helpers.RequestContext()
	defer cancel()

	helpers.WriteJSON(ctx, fasthttp.StatusOK, handlers.TPS.MaxByInterval(reqCtx, interval))
}

func GetTpsCurrent(ctx *fasthttp.RequestCtx) {

	if !tpsReady(ctx) {
		return
	}

	name, _ := ctx.UserValue("frequency").(string)
	frequency, err := tps_pack.ParseFrequency(name)
	if err != nil {
		helpers.WriteErr(ctx, fasthttp.StatusBadRequest, "Unknown frequency")
		return
	}

	reqCtx, cancel := helpers.RequestContext()
	defer cancel()

	helpers.WriteJSON(ctx, fasthttp.StatusOK, handlers.TPS.Current(reqCtx, frequency))
}

func GetTpsHistoryByInterval(ctx *fasthttp.RequestCtx) {

	if !tpsReady(ctx) {
		return
	}

	interval, ok := intervalParam(ctx)
	if !ok {
		return
	}

	reqCtx, cancel := helpers.RequestContext()
	defer cancel()

	helpers.WriteJSON(ctx, fasthttp.StatusOK, handlers.TPS.HistoryByInterval(reqCtx, interval))
}

func GetTpsHistoryRaw(ctx *fasthttp.RequestCtx) {

	if !tpsReady(ctx) {
		return
	}

	reqCtx, cancel := helpers.RequestContext()
	defer cancel()

	helpers.WriteJSON(ctx, fasthttp.StatusOK, handlers.TPS.HistoryRaw(reqCtx))
}
