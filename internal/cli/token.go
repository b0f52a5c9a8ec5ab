package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/matstat/internal/api/middleware"
)

// DevSecret signs tokens when neither --secret nor $JWT_SECRET is set.
const DevSecret = "dev-secret-change-in-production"

func newTokenCmd() *cobra.Command {
	var (
		secret  string
		subject string
		role    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an HS256 bearer token for testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := middleware.SignToken(secret, subject, role, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&secret, "secret", envOr("JWT_SECRET", DevSecret), "Signing secret (default: $JWT_SECRET)")
	cmd.Flags().StringVar(&subject, "sub", "test-user", "Token subject")
	cmd.Flags().StringVar(&role, "role", "admin", "Role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}
