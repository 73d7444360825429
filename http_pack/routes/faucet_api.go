package routes

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/modulrcloud/modulr-api/faucet_pack"
	"github.com/modulrcloud/modulr-api/handlers"
	"github.com/modulrcloud/modulr-api/http_pack/helpers"
	"github.com/modulrcloud/modulr-api/utils"

	"github.com/valyala/fasthttp"
)

type faucetRequest struct {
	Address string `json:"address"`
}

type faucetResponse struct {
	TxHash string `json:"txHash"`
}

func Dispense(ctx *fasthttp.RequestCtx) {

	if handlers.FAUCET == nil {
		helpers.WriteErr(ctx, fasthttp.StatusServiceUnavailable, "Faucet is not ready")
		return
	}

	var request faucetRequest

	if err := json.Unmarshal(ctx.PostBody(), &request); err != nil {
		helpers.WriteErr(ctx, fasthttp.StatusBadRequest, "Invalid JSON")
		return
	}

	reqCtx, cancel := helpers.RequestContext()
	defer cancel()

	result, err := handlers.FAUCET.Dispense(reqCtx, request.Address)

	var rejected *faucet_pack.SubmissionRejectedError

	switch {

	case err == nil:
		helpers.WriteJSON(ctx, fasthttp.StatusOK, faucetResponse{TxHash: result.Accepted.TxHash})

	case errors.Is(err, faucet_pack.ErrInvalidAddress):
		helpers.WriteErr(ctx, fasthttp.StatusNotAcceptable, "Invalid address")

	case errors.As(err, &rejected):
		helpers.WriteErr(ctx, fasthttp.StatusBadRequest, rejected.Reason)

	case errors.Is(err, faucet_pack.ErrUpstreamUnavailable):
		utils.LogWithTimeThrottled("faucet:upstream", 10*time.Second, "Faucet dispense failed: "+err.Error(), utils.RED_COLOR)
		helpers.WriteErr(ctx, fasthttp.StatusServiceUnavailable, "Service temporarily unavailable")

	default:
		utils.LogWithTime("Faucet dispense failed: "+err.Error(), utils.RED_COLOR)
		helpers.WriteErr(ctx, fasthttp.StatusInternalServerError, "Failed to dispense")
	}
}
