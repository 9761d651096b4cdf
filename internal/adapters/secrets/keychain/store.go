package keychain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bnema/claude-usage-tracker/internal/domain"
	"github.com/bnema/claude-usage-tracker/internal/ports"
)

// ErrUnavailable is returned when the security binary cannot be found,
// i.e. on anything that is not macOS. The chain store falls back on it.
var ErrUnavailable = errors.New("security command unavailable")

// security exits with this code when a keychain item does not exist.
const exitItemNotFound = 44

type runFunc func(ctx context.Context, args ...string) (stdout string, stderr string, exitCode int, err error)

// Store keeps secrets in the macOS Keychain via the security CLI, as
// generic-password items under a fixed service name with the secret key as
// the account name.
type Store struct {
	service string
	run     runFunc
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore(service string) *Store {
	return &Store{service: service, run: runSecurityCommand}
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}

	// -U updates an existing item in place instead of failing on duplicates.
	_, stderr, _, err := s.run(ctx, "add-generic-password", "-s", s.service, "-a", key, "-w", value, "-U")
	if err != nil {
		return formatError("put", key, err, stderr)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validateKey(key); err != nil {
		return "", err
	}

	stdout, stderr, exitCode, err := s.run(ctx, "find-generic-password", "-s", s.service, "-a", key, "-w")
	if err != nil {
		if exitCode == exitItemNotFound {
			return "", fmt.Errorf("keychain secret %q: %w", key, domain.ErrSecretNotFound)
		}
		return "", formatError("get", key, err, stderr)
	}

	return strings.TrimRight(stdout, "\r\n"), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}

	_, stderr, exitCode, err := s.run(ctx, "delete-generic-password", "-s", s.service, "-a", key)
	if err != nil {
		if exitCode == exitItemNotFound {
			return nil
		}
		return formatError("delete", key, err, stderr)
	}

	return nil
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("secret key is empty")
	}

	return nil
}

func runSecurityCommand(ctx context.Context, args ...string) (string, string, int, error) {
	path, err := exec.LookPath("security")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", 0, ErrUnavailable
		}
		return "", "", 0, fmt.Errorf("locate security command: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, args...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	exitCode := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	return stdout.String(), strings.TrimSpace(stderr.String()), exitCode, err
}

func formatError(op string, key string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("keychain %s %q: %w", op, key, err)
	}

	return fmt.Errorf("keychain %s %q: %w: %s", op, key, err, stderr)
}
