package utils

import (
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/modulrcloud/modulr-api/globals"

	"github.com/gorilla/websocket"
)

const (
	MAX_RETRIES         = 3
	RETRY_INTERVAL      = 200 * time.Millisecond
	READ_WRITE_DEADLINE = 2 * time.Second // timeout for read/write operations for POD (point of distribution)
)

var (
	POD_ACCESS_MUTEX         sync.Mutex      // Guards open/close & replace of PoD conn
	POD_READ_WRITE_MUTEX     sync.Mutex      // Single request (write+read) guarantee for PoD
	POD_WEBSOCKET_CONNECTION *websocket.Conn // Connection with PoD itself
)

// SendWebsocketMessageToPoD writes one request to the PoD and waits for its reply. A broken
// connection is dropped and re-dialed on the next attempt.
func SendWebsocketMessageToPoD(msg []byte) ([]byte, error) {

	var lastErr error

	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {

		c, err := podConnection()

		if err != nil {
			lastErr = err
			LogWithTimeThrottled(
				"POD:WS:DIAL",
				2*time.Second,
				fmt.Sprintf("PoD websocket dial failed (attempt %d/%d): %v", attempt, MAX_RETRIES, err),
				YELLOW_COLOR,
			)
			time.Sleep(RETRY_INTERVAL)
			continue
		}

		resp, err := roundTrip(c, msg)

		if err != nil {
			lastErr = err
			LogWithTimeThrottled(
				"POD:WS:ROUNDTRIP",
				2*time.Second,
				fmt.Sprintf("PoD websocket request failed (attempt %d/%d): %v", attempt, MAX_RETRIES, err),
				YELLOW_COLOR,
			)
			dropPoDConnection(c)
			time.Sleep(RETRY_INTERVAL)
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("failed to send message after %d attempts: %w", MAX_RETRIES, lastErr)
}

// ClosePoDConnection is registered as a shutdown hook.
func ClosePoDConnection() error {
	POD_ACCESS_MUTEX.Lock()
	defer POD_ACCESS_MUTEX.Unlock()

	if POD_WEBSOCKET_CONNECTION == nil {
		return nil
	}
	err := POD_WEBSOCKET_CONNECTION.Close()
	POD_WEBSOCKET_CONNECTION = nil
	return err
}

func podConnection() (*websocket.Conn, error) {
	POD_ACCESS_MUTEX.Lock()
	defer POD_ACCESS_MUTEX.Unlock()

	if POD_WEBSOCKET_CONNECTION == nil {
		conn, err := openWebsocketConnectionWithPoD()
		if err != nil {
			return nil, err
		}
		POD_WEBSOCKET_CONNECTION = conn
	}

	return POD_WEBSOCKET_CONNECTION, nil
}

func roundTrip(c *websocket.Conn, msg []byte) ([]byte, error) {
	POD_READ_WRITE_MUTEX.Lock()
	defer POD_READ_WRITE_MUTEX.Unlock()

	_ = c.SetWriteDeadline(time.Now().Add(READ_WRITE_DEADLINE))

	if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
		return nil, err
	}

	_ = c.SetReadDeadline(time.Now().Add(READ_WRITE_DEADLINE))

	_, resp, err := c.ReadMessage()
	return resp, err
}

func dropPoDConnection(c *websocket.Conn) {
	POD_ACCESS_MUTEX.Lock()
	defer POD_ACCESS_MUTEX.Unlock()

	if POD_WEBSOCKET_CONNECTION == c {
		_ = c.Close()
		POD_WEBSOCKET_CONNECTION = nil
	}
}

func openWebsocketConnectionWithPoD() (*websocket.Conn, error) {
	if globals.CONFIGURATION.PointOfDistributionWS == "" {
		return nil, errors.New("POINT_OF_DISTRIBUTION_WS is not configured")
	}

	u, err := url.Parse(globals.CONFIGURATION.PointOfDistributionWS)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial error: %w", err)
	}

	return conn, nil
}
