// main.go - questboard CLI entrypoint
package main

import (
	"fmt"
	"os"

	"questboard/config"
	"questboard/database"
	"questboard/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg *config.Config
	log *zap.Logger

	seedFile  string
	seedCheck bool
)

var rootCmd = &cobra.Command{
	Use:           "questboard",
	Short:         "Quest board API server",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envErr := godotenv.Load()

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		log, err = logging.New(cfg.AppEnv, cfg.LogLevel)
		if err != nil {
			return err
		}
		if envErr != nil {
			log.Warn(".env file not found, using system environment variables")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the event stream and the quest archiver",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(cfg.Database, log)
		if err != nil {
			return err
		}
		defer database.Close(db)

		return database.RunMigrations(db, log)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load users and quests from a YAML seed file",
	Long: `Loads users and quests from a YAML seed file. Entries that already exist
are skipped, so the command can be run repeatedly. With --check the file is
only validated and the database is not touched.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "seeds/quests.yaml", "seed file to load")
	seedCmd.Flags().BoolVar(&seedCheck, "check", false, "validate the seed file without writing to the database")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	seed, err := database.LoadSeedFile(seedFile)
	if err != nil {
		return err
	}
	if seedCheck {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: OK (%d users, %d quests)\n", seedFile, len(seed.Users), len(seed.Quests))
		return nil
	}

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, log); err != nil {
		return err
	}
	return database.Seed(cmd.Context(), db, seed, log)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
