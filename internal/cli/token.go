package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/terraincognita07/platewise/internal/auth"
)

// RunIssueTokenCommand prints a bearer token for the user given by -user.
func RunIssueTokenCommand(secret string, defaultTTL time.Duration, args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("issue-token", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	userID := flags.String("user", "", "user id the token is issued for")
	ttl := flags.Duration("ttl", defaultTTL, "token lifetime")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("parse issue-token flags: %w", err)
	}

	if strings.TrimSpace(*userID) == "" {
		return errors.New("user id is required (-user)")
	}

	issuer, err := auth.NewIssuer(secret, *ttl)
	if err != nil {
		return fmt.Errorf("token issuer init failed: %w", err)
	}
	token, err := issuer.Issue(strings.TrimSpace(*userID))
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	_, err = fmt.Fprintln(stdout, token)
	return err
}

func RunGenerateSecretCommand(stdout io.Writer) error {
	secret, err := auth.GenerateSecret()
	if err != nil {
		return fmt.Errorf("generate secret: %w", err)
	}
	_, err = fmt.Fprintln(stdout, secret)
	return err
}
