package utils

import (
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/modulrcloud/modulr-api/databases"

	"lukechampine.com/blake3"
)

// ANSI escape codes for text colors
const (
	RESET_COLOR      = "\033[0m"
	RED_COLOR        = "\033[31;1m"
	DEEP_GREEN_COLOR = "\u001b[38;5;23m"
	DEEP_GRAY        = "\u001b[38;5;240m"
	GREEN_COLOR      = "\033[32;1m"
	YELLOW_COLOR     = "\033[33m"
	MAGENTA_COLOR    = "\033[38;5;99m"
	CYAN_COLOR       = "\033[36;1m"
	WHITE_COLOR      = "\033[37;1m"
)

var SHUTDOWN_ONCE sync.Once

var shutdownHooksMutex sync.Mutex
var shutdownHooks []func() error

// OnShutdown registers a closer executed by GracefulShutdown before the databases are closed.
func OnShutdown(hook func() error) {
	shutdownHooksMutex.Lock()
	defer shutdownHooksMutex.Unlock()
	shutdownHooks = append(shutdownHooks, hook)
}

func GracefulShutdown() {

	SHUTDOWN_ONCE.Do(func() {

		LogWithTime("Stop signal has been initiated.Keep waiting...", CYAN_COLOR)

		LogWithTime("Closing server connections...", CYAN_COLOR)

		shutdownHooksMutex.Lock()
		hooks := shutdownHooks
		shutdownHooksMutex.Unlock()

		for _, hook := range hooks {
			if err := hook(); err != nil {
				LogWithTime(fmt.Sprintf("shutdown hook failed: %v", err), RED_COLOR)
			}
		}

		if err := databases.CloseAll(); err != nil {
			LogWithTime(fmt.Sprintf("failed to close databases: %v", err), RED_COLOR)
		}

		LogWithTime("API was gracefully stopped", GREEN_COLOR)

		os.Exit(0)

	})

}

func LogWithTime(msg, msgColor string) {

	formattedDate := time.Now().Format("02 January 2006 at 03:04:05 PM")

	fmt.Printf(DEEP_GREEN_COLOR+"[%s]"+MAGENTA_COLOR+"(pid:%d)"+msgColor+"  %s\n"+RESET_COLOR, formattedDate, os.Getpid(), msg)

}

func Blake3(data string) string {

	blake3Hash := blake3.Sum256([]byte(data))

	return hex.EncodeToString(blake3Hash[:])

}

func GetUTCTimestampInMilliSeconds() int64 {

	return time.Now().UTC().UnixMilli()

}

func GetUTCTimestampInSeconds() int64 {

	return time.Now().UTC().Unix()

}
