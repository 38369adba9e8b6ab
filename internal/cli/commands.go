package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	aiapp "github.com/recipebox/recipebox/internal/application/ai"
	"github.com/recipebox/recipebox/internal/domain/ai"
	"github.com/recipebox/recipebox/internal/infrastructure/config"
	persistence "github.com/recipebox/recipebox/internal/infrastructure/persistence/gorm"
	"github.com/recipebox/recipebox/internal/infrastructure/security"
	"github.com/recipebox/recipebox/internal/ports/inbound"
)

func extractCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <url>",
		Short: "Run the extractors only and print the extracted content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var extractor inbound.ContentExtractor
			return withApp(cmd.Context(), opts, func(ctx context.Context) error {
				content, err := extractor.ExtractContent(ctx, args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), content)
				return err
			}, &extractor)
		},
	}
}

func parseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <url-or-text>",
		Short: "Run the full pipeline and print the normalized recipe",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var parser inbound.RecipeParser
			return withApp(cmd.Context(), opts, func(ctx context.Context) error {
				record, err := parser.Parse(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), record)
			}, &parser)
		},
	}
}

func fixOwnersCmd(opts *rootOptions) *cobra.Command {
	var owner string

	c := &cobra.Command{
		Use:   "fix-owners",
		Short: "Assign every unowned recipe to an owner",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ownerID, err := uuid.Parse(owner)
			if err != nil {
				return fmt.Errorf("invalid --owner: %w", err)
			}

			var service inbound.RecipeService
			return withApp(cmd.Context(), opts, func(ctx context.Context) error {
				count, err := service.FixOwners(ctx, ownerID)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d recipes assigned to %s\n", count, ownerID)
				return err
			}, &service)
		},
	}

	c.Flags().StringVar(&owner, "owner", "", "owner user id (required)")
	_ = c.MarkFlagRequired("owner")
	return c
}

// tokenCmd issues a bearer token for local testing of the owner-only endpoints
func tokenCmd(opts *rootOptions) *cobra.Command {
	var (
		user string
		ttl  time.Duration
	)

	c := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := uuid.Parse(user)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}

			auth := security.NewAuthService(cfg.Auth, zap.NewNop())
			token, err := auth.GenerateAccessToken(userID, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	c.Flags().StringVar(&user, "user", "", "user id (required)")
	c.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = c.MarkFlagRequired("user")
	return c
}

// modelsCmd checks that each candidate model answers a short prompt
func modelsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models [model...]",
		Short: "Send a short prompt to each candidate model and report which ones answer",
		Long: "Send a short prompt to each configured candidate model, or to the models\n" +
			"given as arguments, and report the outcome. Fails when no model answers.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var normalizer *aiapp.Normalizer
			return withApp(cmd.Context(), opts, func(ctx context.Context) error {
				attempts := normalizer.CheckModels(ctx, args)

				t := newTable(cmd, table.Row{"Model", "Status", "Latency", "Error"})
				answered := 0
				for _, a := range attempts {
					status := "failed"
					if a.Success() {
						status = "ok"
						answered++
					}
					t.AppendRow(table.Row{a.Model, status, a.Latency.Round(time.Millisecond), a.Error})
				}
				t.Render()

				if answered == 0 {
					return fmt.Errorf("none of %d models answered", len(attempts))
				}
				return nil
			}, &normalizer)
		},
	}
}

// attemptsCmd lists the latest model attempts stored by the database sink
func attemptsCmd(opts *rootOptions) *cobra.Command {
	var limit int

	c := &cobra.Command{
		Use:   "attempts",
		Short: "List the most recent model attempts, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 1 || limit > 1000 {
				return fmt.Errorf("--limit must be between 1 and 1000, got %d", limit)
			}

			var repo *persistence.AttemptRepository
			return withApp(cmd.Context(), opts, func(ctx context.Context) error {
				attempts, err := repo.Recent(ctx, limit)
				if err != nil {
					return err
				}
				if len(attempts) == 0 {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), "no model attempts recorded")
					return err
				}

				t := newTable(cmd, table.Row{"Started", "Provider", "Model", "Candidate", "Outcome", "Latency", "Error"})
				for _, a := range attempts {
					t.AppendRow(attemptRow(a))
				}
				t.Render()
				return nil
			}, &repo)
		},
	}

	c.Flags().IntVar(&limit, "limit", 20, "number of attempts to show")
	return c
}

func attemptRow(a ai.ModelAttempt) table.Row {
	return table.Row{
		a.StartedAt.UTC().Format(time.RFC3339),
		a.Provider,
		a.Model,
		a.CandidateIndex,
		a.Outcome,
		a.Latency.Round(time.Millisecond),
		a.Error,
	}
}

// newTable writes a borderless table to the command's stdout
func newTable(cmd *cobra.Command, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.AppendHeader(header)
	return t
}
