package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modulrcloud/modulr-api/cryptography"
	"github.com/modulrcloud/modulr-api/utils"

	"github.com/alecthomas/kong"
)

type CLI struct {
	Serve  ServeCmd  `cmd:"" default:"1" help:"Start the faucet and TPS API."`
	Keygen KeygenCmd `cmd:"" help:"Derive a faucet key pair from a BIP-39 mnemonic."`
}

type ServeCmd struct {
	Chaindata string `help:"Directory with configs.json and databases (overrides CHAINDATA_PATH)." type:"path"`
}

func (c *ServeCmd) Run() error {

	if c.Chaindata != "" {
		if err := os.Setenv("CHAINDATA_PATH", c.Chaindata); err != nil {
			return err
		}
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signals
		utils.GracefulShutdown()
	}()

	if err := RunApi(); err != nil {
		utils.LogWithTime(fmt.Sprintf("Failed to start API: %v", err), utils.RED_COLOR)
		utils.GracefulShutdown()
	}

	return nil
}

type KeygenCmd struct {
	Mnemonic string   `help:"Mnemonic to derive from. A fresh 24-word one is generated when empty."`
	Password string   `help:"Mnemonic password."`
	Path     []uint32 `help:"Hardened BIP-44 path, comma separated." default:"44,7337,0,0"`
}

func (c *KeygenCmd) Run() error {

	box, err := cryptography.GenerateKeyPair(c.Mnemonic, c.Password, c.Path)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(map[string]any{
		"mnemonic":   box.Mnemonic,
		"bip44Path":  box.Bip44Path,
		"publicKey":  box.Pub,
		"privateKey": box.Prv,
	}, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))

	return nil
}

func main() {

	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("modulr-api"),
		kong.Description("Faucet and network throughput API for Modulr"),
		kong.UsageOnError(),
	)

	ctx.FatalIfErrorf(ctx.Run())
}
