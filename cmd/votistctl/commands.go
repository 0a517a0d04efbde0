package main

import (
	"context"
	"fmt"
	"os"

	"votist/cmd/votistctl/internal/seed"
	"votist/internal/config"
	"votist/internal/database"
	"votist/internal/logger"
	"votist/internal/repository"
	"votist/internal/service"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultSeedFile = "configs/seed_data/quizzes.json"

// withDB loads config, initializes logging and opens the database for one command.
func withDB(cmd *cobra.Command, fn func(ctx context.Context, db *sqlx.DB) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	ctx := cmd.Context()
	db, err := database.NewSQLXPostgresDB(ctx, cfg.GetDSN(), cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(ctx, db)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "votistctl",
		Short:         "Operator tasks for the votist database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSchemaCmd(), newSeedCmd(), newReconcileCmd(), newInitProgressCmd())
	return root
}

func newSchemaCmd() *cobra.Command {
	var printOnly bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Create missing tables and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if printOnly {
				for _, stmt := range database.SchemaStatements() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s;\n\n", stmt)
				}
				return nil
			}
			return withDB(cmd, func(ctx context.Context, db *sqlx.DB) error {
				if err := database.EnsureSchema(ctx, db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&printOnly, "print", false, "print the schema instead of applying it")
	return cmd
}

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the quiz catalog from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open seed file: %w", err)
			}
			defer f.Close()
			quizzes, err := seed.Load(f)
			if err != nil {
				return err
			}

			return withDB(cmd, func(ctx context.Context, db *sqlx.DB) error {
				created, err := seed.Apply(ctx, repository.NewQuizDatabaseAdapter(db), repository.NewTransactionManagerAdapter(db), quizzes)
				if err != nil {
					return err
				}
				logger.Get().Info("Quiz catalog seeded", zap.String("file", file), zap.Int("created", created), zap.Int("total", len(quizzes)))
				fmt.Fprintf(cmd.OutOrStdout(), "created %d of %d quizzes\n", created, len(quizzes))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", defaultSeedFile, "seed file path")
	return cmd
}

func newReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute vote and like counters from their source rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(ctx context.Context, db *sqlx.DB) error {
				svc := service.NewMaintenanceService(repository.NewSQLXMaintenanceRepository(db), repository.NewTransactionManagerAdapter(db))
				drift, err := svc.ReconcileCounters(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "poll options: %d\npolls: %d\npost likes: %d\ncomment likes: %d\n",
					drift.PollOptions, drift.Polls, drift.PostLikes, drift.CommentLikes)
				return nil
			})
		},
	}
}

func newInitProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-progress USER_ID...",
		Short: "Seed quiz progress for local users",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(ctx context.Context, db *sqlx.DB) error {
				progress := service.NewProgressService(
					repository.NewQuizDatabaseAdapter(db),
					repository.NewSQLXProgressRepository(db),
					repository.NewTransactionManagerAdapter(db),
					service.SystemClock(),
				)
				for _, userID := range args {
					created, err := progress.InitializeProgress(ctx, userID)
					if err != nil {
						return fmt.Errorf("user %s: %w", userID, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows created\n", userID, created)
				}
				return nil
			})
		},
	}
}
