package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/joshua-takyi/eventsadmin/internal/connect"
	"github.com/joshua-takyi/eventsadmin/internal/models"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	mongoURI      string
	mongoPassword string
	mongoDatabase string
	timeout       time.Duration

	mongoClient *mongo.Client
	repo        *models.MongodbRepo
	cancelRun   context.CancelFunc
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var rootCmd = &cobra.Command{
	Use:           "eventsctl <command>",
	Short:         "Admin tasks for the events catalogue",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if mongoURI == "" {
			return fmt.Errorf("--mongo-uri or MONGODB_URI is required")
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		cancelRun = cancel
		cmd.SetContext(ctx)

		client, err := connect.MongoDBConnect(ctx, mongoURI, mongoPassword)
		if err != nil {
			return err
		}
		mongoClient = client
		repo = models.MongodbNewRepo(client, mongoDatabase)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if mongoClient != nil {
			_ = connect.MongoDBDisconnect(mongoClient)
		}
		if cancelRun != nil {
			cancelRun()
		}
	},
}

func init() {
	_ = godotenv.Load(".env.local")

	rootCmd.PersistentFlags().StringVar(&mongoURI, "mongo-uri", os.Getenv("MONGODB_URI"), "MongoDB connection string")
	rootCmd.PersistentFlags().StringVar(&mongoPassword, "mongo-password", os.Getenv("MONGODB_PASSWORD"), "password substituted for <password> in the URI")
	rootCmd.PersistentFlags().StringVar(&mongoDatabase, "db", envOr("MONGODB_DATABASE", models.DefaultDBName), "database name")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall command timeout")

	rootCmd.AddCommand(indexesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
