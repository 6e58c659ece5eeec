package cli

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/saltmarshlabs/crossgate/internal/token"
)

// newLogoutKeyCommand prints the api key the external logout endpoint
// expects for an identity.
func newLogoutKeyCommand() *cobra.Command {
	var (
		secret     string
		externalID string
		system     string
	)

	cmd := &cobra.Command{
		Use:   "logout-key",
		Short: "Derive the external-logout api key for an identity",
		Long: `Derive the api key the board's external logout endpoint expects
for an identity. The issuing system computes the same value when it
wants every board session for a user destroyed server-to-server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := resolveSecret(secret)
			if err != nil {
				return err
			}
			codec, err := token.NewCodec(resolved)
			if err != nil {
				return err
			}

			fmt.Println(codec.LogoutKey(externalID, system))
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "Shared bridge secret (or EXTERNAL_AUTH_SECRET)")
	cmd.Flags().StringVar(&externalID, "external-id", "", "Stable identifier in the issuing system")
	cmd.Flags().StringVar(&system, "system", "main_system", "Issuing system tag")
	cmd.MarkFlagRequired("external-id")

	return cmd
}

// newHashPasswordCommand hashes a password for the portal user list.
func newHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Hash a password for the portal user directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(os.Stderr, "Password: ")
			password, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			if len(password) == 0 {
				return errors.New("password must not be empty")
			}

			fmt.Fprint(os.Stderr, "Confirm:  ")
			confirm, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return fmt.Errorf("failed to read confirmation: %w", err)
			}
			if string(password) != string(confirm) {
				return errors.New("passwords do not match")
			}

			hash, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}

			fmt.Println(string(hash))
			return nil
		},
	}
}
