package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/zalando/go-keyring"
)

const (
	tokenFileName  = "model_token"
	tokenEnvVar    = "CARDIOCHECK_MODEL_TOKEN"
	keyringService = "cardiocheck"
	keyringUser    = "model_token"
)

var (
	deleteTokenFlag = &cli.BoolFlag{
		Name:  "delete",
		Usage: "Remove the stored token",
	}

	tokenCmd = &cli.Command{
		Name:            "token",
		HideHelpCommand: true,
		Usage:           "Store the bearer token used by remote model endpoints (read from stdin)",
		Action:          cmdToken,
		Flags: []cli.Flag{
			deleteTokenFlag,
		},
	}
)

func cmdToken(_ context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)

	if cmd.Bool(deleteTokenFlag.Name) {
		return deleteModelToken(cfg.Dir)
	}

	r := cmd.Root().Reader
	if r == nil {
		r = os.Stdin
	}

	token, err := readToken(r)
	if err != nil {
		return err
	}

	if err := saveModelToken(cfg.Dir, token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	fmt.Fprintln(writer(cmd), "Token saved")
	return nil
}

func readToken(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading token: %w", err)
	}
	token := strings.TrimSpace(line)
	if token == "" {
		return "", errors.New("token is empty")
	}
	return token, nil
}

func saveModelToken(dir, token string) error {
	if err := keyring.Set(keyringService, keyringUser, token); err != nil {
		slog.Warn("keychain unavailable, falling back to file", "error", err)
		return os.WriteFile(filepath.Join(dir, tokenFileName), []byte(token), 0600)
	}

	// the keychain copy wins, drop any file fallback
	os.Remove(filepath.Join(dir, tokenFileName))
	return nil
}

// getModelToken returns the token from the environment, the keychain or the
// fallback file, in that order.
func getModelToken(dir string) (string, error) {
	if token := os.Getenv(tokenEnvVar); token != "" {
		return token, nil
	}

	token, err := keyring.Get(keyringService, keyringUser)
	if err == nil && token != "" {
		return token, nil
	}

	b, err := os.ReadFile(filepath.Join(dir, tokenFileName))
	if err != nil {
		return "", fmt.Errorf("reading token file: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func deleteModelToken(dir string) error {
	if err := keyring.Delete(keyringService, keyringUser); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		slog.Warn("failed to delete keychain token", "error", err)
	}
	if err := os.Remove(filepath.Join(dir, tokenFileName)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}
