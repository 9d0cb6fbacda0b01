package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/paws/internal/clock"
	"github.com/smallbiznis/paws/internal/identity"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint identity tokens for local development",
}

var mintOpts struct {
	subject   string
	anonymous bool
	role      string
	ttl       time.Duration
}

var tokenMintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint a caller ID token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.IsProduction() {
			return errors.New("refusing to mint tokens in production")
		}
		provider := identity.ProviderPassword
		if mintOpts.anonymous {
			provider = identity.ProviderAnonymous
		}
		role := strings.ToLower(strings.TrimSpace(mintOpts.role))
		if role != "" && role != identity.RoleParticipant && role != identity.RoleCoordinator {
			return fmt.Errorf("unknown role %q", mintOpts.role)
		}

		raw, err := identity.NewIssuer(cfg, clock.NewSystemClock()).Mint(mintOpts.subject, provider, role, mintOpts.ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), raw)
		return nil
	},
}

var hookOpts struct {
	uid   string
	email string
}

var tokenHookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Mint a beforeCreate hook event token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.IsProduction() {
			return errors.New("refusing to mint tokens in production")
		}
		raw, err := identity.NewIssuer(cfg, clock.NewSystemClock()).MintHookEvent(hookOpts.uid, hookOpts.email)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), raw)
		return nil
	},
}

func init() {
	tokenMintCmd.Flags().StringVar(&mintOpts.subject, "sub", "", "subject id")
	tokenMintCmd.Flags().BoolVar(&mintOpts.anonymous, "anonymous", false, "mark the token as an anonymous sign-in")
	tokenMintCmd.Flags().StringVar(&mintOpts.role, "role", "", "role claim (participant or coordinator)")
	tokenMintCmd.Flags().DurationVar(&mintOpts.ttl, "ttl", 0, "token lifetime (defaults to AUTH_TOKEN_TTL_SECONDS)")
	_ = tokenMintCmd.MarkFlagRequired("sub")

	tokenHookCmd.Flags().StringVar(&hookOpts.uid, "uid", "", "account uid")
	tokenHookCmd.Flags().StringVar(&hookOpts.email, "email", "", "account email")
	_ = tokenHookCmd.MarkFlagRequired("uid")

	tokenCmd.AddCommand(tokenMintCmd, tokenHookCmd)
}
