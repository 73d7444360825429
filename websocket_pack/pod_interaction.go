package websocket_pack

import (
	"encoding/json"
	"fmt"

	"github.com/modulrcloud/modulr-api/constants"
	"github.com/modulrcloud/modulr-api/structures"
	"github.com/modulrcloud/modulr-api/utils"
)

// GetBlockByHeightFromPoD asks the point of distribution for the block at an absolute height.
// A nil block with a nil error means the PoD does not have it yet.
func GetBlockByHeightFromPoD(height int64) (*structures.Block, error) {

	reqBytes, err := json.Marshal(WsBlockByHeightRequest{Route: constants.WsRouteGetBlockByHeight, Height: height})
	if err != nil {
		return nil, err
	}

	respBytes, err := utils.SendWebsocketMessageToPoD(reqBytes)
	if err != nil {
		return nil, err
	}

	var resp WsBlockByHeightResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("decode PoD response for height %d: %w", height, err)
	}

	return resp.Block, nil
}
