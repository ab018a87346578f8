package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hupe1980/winemesh/assembler"
	"github.com/hupe1980/winemesh/auth"
	"github.com/hupe1980/winemesh/chat"
	"github.com/hupe1980/winemesh/internal/app"
	"github.com/hupe1980/winemesh/internal/config"
)

type loader func(cmd *cobra.Command) (*app.App, error)

// bind makes a flag override the environment for key. Unset flags keep the
// environment value.
func bind(v *viper.Viper, f *pflag.Flag, key string) {
	if err := v.BindPFlag(key, f); err != nil {
		panic(err)
	}
}

func newServeCmd(v *viper.Viper, load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Serve(cmd.Context())
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8000)")
	bind(v, cmd.Flags().Lookup("addr"), config.KeyHTTPAddr)
	return cmd
}

func newAskCmd(load loader) *cobra.Command {
	var (
		agentName string
		userID    int64
	)
	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Send one message to the agents and stream the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			resp, err := a.Chat.ReplyStream(cmd.Context(), chat.Request{
				Message: strings.Join(args, " "),
				UserID:  userID,
				Agent:   agentName,
			}, func(c assembler.Chunk) error {
				_, err := fmt.Fprintln(out, c.Text)
				return err
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "[%s]\n", resp.Agent)
			return err
		},
	}
	cmd.Flags().StringVar(&agentName, "agent", "", "active agent (defaults to the triage agent)")
	cmd.Flags().Int64Var(&userID, "user-id", 0, "load this user's cellar as context")
	return cmd
}

func newSummaryCmd(load loader) *cobra.Command {
	var producer string
	cmd := &cobra.Command{
		Use:   "summary [wine name]",
		Short: "Summarize a wine in 2-3 sentences",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			text, err := a.Summary.Summarize(cmd.Context(), strings.Join(args, " "), producer)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().StringVar(&producer, "producer", "", "wine producer")
	return cmd
}

func newSQLGenCmd(load loader) *cobra.Command {
	var execute bool
	cmd := &cobra.Command{
		Use:   "sqlgen [question]",
		Short: "Generate a PostgreSQL query for a question about the wine database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.SQLGen.Generate(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n\n-- %s\n", res.SQL, res.Explanation)

			if !execute {
				return nil
			}
			if a.DB == nil {
				return errors.New("--execute needs a configured database")
			}
			rows, err := a.DB.Execute(cmd.Context(), res.SQL)
			if err != nil {
				return err
			}
			for _, row := range rows {
				fmt.Fprintln(out, row)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&execute, "execute", false, "run the generated query")
	return cmd
}

func newTokenCmd(v *viper.Viper, envFile *string) *cobra.Command {
	var (
		userID int64
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token signed with JWT_SECRET for local testing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, *envFile)
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			claims := auth.Claims{"user_id": userID}
			if ttl > 0 {
				claims["exp"] = time.Now().Add(ttl).Unix()
			}
			token, err := auth.NewVerifier(cfg.JWTSecret).Sign(claims)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().Int64Var(&userID, "user-id", 1, "user id claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime, 0 for no expiry")
	return cmd
}
