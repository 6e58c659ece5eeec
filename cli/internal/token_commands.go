package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/saltmarshlabs/crossgate/internal/token"
)

// newTokenCommand groups the bridge token subcommands
func newTokenCommand() *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Mint, verify, and inspect bridge tokens",
	}

	tokenCmd.AddCommand(newTokenMintCommand())
	tokenCmd.AddCommand(newTokenVerifyCommand())
	tokenCmd.AddCommand(newTokenInspectCommand())

	return tokenCmd
}

func newTokenMintCommand() *cobra.Command {
	var (
		secret     string
		externalID string
		username   string
		email      string
		fullName   string
		system     string
		ttl        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint a signed bridge token for an identity",
		Long: `Mint a signed bridge token the board will accept, exactly as the
portal would issue it. Useful for testing a board deployment without
going through the portal login flow.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := resolveSecret(secret)
			if err != nil {
				return err
			}
			codec, err := token.NewCodec(resolved)
			if err != nil {
				return err
			}

			claims, err := token.NewBuilder(system, ttl).Build(&token.LocalSession{
				UserID:   externalID,
				Username: username,
				Email:    email,
				FullName: fullName,
			})
			if err != nil {
				return err
			}

			signed, err := codec.Encode(claims)
			if err != nil {
				return err
			}

			fmt.Println(signed)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "Shared bridge secret (or EXTERNAL_AUTH_SECRET)")
	cmd.Flags().StringVar(&externalID, "external-id", "", "Stable identifier in the issuing system")
	cmd.Flags().StringVar(&username, "username", "", "Username carried into the token")
	cmd.Flags().StringVar(&email, "email", "", "Email carried into the token")
	cmd.Flags().StringVar(&fullName, "full-name", "", "Display name (defaults to username)")
	cmd.Flags().StringVar(&system, "system", "main_system", "Issuing system tag")
	cmd.Flags().DurationVar(&ttl, "ttl", token.DefaultTTL, "Token lifetime")
	cmd.MarkFlagRequired("external-id")
	cmd.MarkFlagRequired("username")

	return cmd
}

func newTokenVerifyCommand() *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "verify TOKEN",
		Short: "Verify a bridge token against the shared secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := resolveSecret(secret)
			if err != nil {
				return err
			}
			codec, err := token.NewCodec(resolved)
			if err != nil {
				return err
			}

			claims, err := codec.DecodeAndVerify(args[0])
			if err != nil {
				return fmt.Errorf("token rejected: %w", err)
			}

			fmt.Println("token is valid")
			printClaims(claims)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "Shared bridge secret (or EXTERNAL_AUTH_SECRET)")

	return cmd
}

func newTokenInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect TOKEN",
		Short: "Decode a bridge token without verifying it",
		Long: `Decode a bridge token's claims without checking the signature.
No secret is needed; do not trust the output of an unverified token.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, _, err := new(jwt.Parser).ParseUnverified(args[0], &token.Claims{})
			if err != nil {
				return fmt.Errorf("failed to decode token: %w", err)
			}

			claims, ok := parsed.Claims.(*token.Claims)
			if !ok {
				return errors.New("unexpected claims shape")
			}

			fmt.Println("claims (signature NOT verified):")
			printClaims(claims)
			return nil
		},
	}
}

func printClaims(claims *token.Claims) {
	fmt.Printf("  external_id: %s\n", claims.ExternalID)
	fmt.Printf("  username:    %s\n", claims.Username)
	fmt.Printf("  email:       %s\n", claims.Email)
	fmt.Printf("  full_name:   %s\n", claims.FullName)
	fmt.Printf("  system:      %s\n", claims.System)
	fmt.Printf("  issued:      %s\n", time.Unix(claims.IssuedAt, 0).Format(time.RFC3339))

	expires := time.Unix(claims.ExpiresAt, 0)
	if remaining := time.Until(expires); remaining > 0 {
		fmt.Printf("  expires:     %s (in %s)\n", expires.Format(time.RFC3339), remaining.Round(time.Second))
	} else {
		fmt.Printf("  expires:     %s (EXPIRED)\n", expires.Format(time.RFC3339))
	}
}
