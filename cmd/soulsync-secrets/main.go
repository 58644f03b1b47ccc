package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/williskipsjr/SoulSync-Beta/internal/secrets"
)

type SetCmd struct {
	Key   string `arg:"" help:"Secret name (telegram_bot_token, jwt_secret, database_url)."`
	Value string `arg:"" help:"Secret value."`
}

func (cmd *SetCmd) Run() error {
	if err := secrets.Set(cmd.Key, cmd.Value); err != nil {
		return err
	}
	fmt.Printf("✓ %s stored in OS keyring\n", cmd.Key)
	return nil
}

type CheckCmd struct{}

func (cmd *CheckCmd) Run() error {
	for _, key := range secrets.Keys() {
		_, err := secrets.Get(key)
		switch {
		case err == nil:
			fmt.Printf("%-20s set\n", key)
		case errors.Is(err, secrets.ErrNotFound):
			fmt.Printf("%-20s not set\n", key)
		default:
			return err
		}
	}
	return nil
}

type DeleteCmd struct {
	Key string `arg:"" help:"Secret name."`
}

func (cmd *DeleteCmd) Run() error {
	if err := secrets.Delete(cmd.Key); err != nil {
		if errors.Is(err, secrets.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", cmd.Key)
		}
		return err
	}
	fmt.Printf("✓ %s removed from OS keyring\n", cmd.Key)
	return nil
}

var CLI struct {
	Set    SetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
	Check  CheckCmd  `cmd:"" help:"Show which secrets are stored." default:"1"`
	Delete DeleteCmd `cmd:"" help:"Remove a secret from the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("soulsync-secrets"),
		kong.Description("Manage SoulSync credentials in the OS keyring ("+strings.Join(secrets.Keys(), ", ")+")"),
		kong.UsageOnError(),
	)

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
