package websocket_pack

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/modulrcloud/modulr-api/globals"
	"github.com/modulrcloud/modulr-api/utils"

	"github.com/lxzan/gws"
)

type Handler struct {
	gws.BuiltinEventHandler
}

func (h *Handler) OnMessage(connection *gws.Conn, message *gws.Message) {

	defer message.Close()

	timeout := time.Duration(globals.CONFIGURATION.UpstreamTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := connection.WriteMessage(gws.OpcodeText, HandleRequest(ctx, message.Bytes())); err != nil {
		utils.LogWithTimeThrottled("WS:WRITE", 5*time.Second, fmt.Sprintf("Websocket reply failed: %v", err), utils.YELLOW_COLOR)
	}
}

func CreateWebsocketServer() {

	addr := globals.CONFIGURATION.WebSocketInterface + ":" + strconv.Itoa(globals.CONFIGURATION.WebSocketPort)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		utils.LogWithTime(fmt.Sprintf("Websocket server failed to listen on %s: %v", addr, err), utils.RED_COLOR)
		return
	}

	utils.OnShutdown(listener.Close)

	server := gws.NewServer(&Handler{}, &gws.ServerOption{
		ParallelEnabled: true,
		Recovery:        gws.Recovery,
	})

	utils.LogWithTime(fmt.Sprintf("Websocket server is starting at ws://%s ...✅", addr), utils.CYAN_COLOR)

	if err := server.RunListener(listener); err != nil {
		utils.LogWithTime(fmt.Sprintf("Websocket server stopped: %v", err), utils.YELLOW_COLOR)
	}
}
