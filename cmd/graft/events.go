package main

import (
	"encoding/json"
	"os"

	redisAdapter "github.com/aretw0/graft/pkg/adapters/redis"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print node events recorded in the Redis journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		redisAddr, _ := cmd.Flags().GetString("redis")
		stream, _ := cmd.Flags().GetString("stream")
		limit, _ := cmd.Flags().GetInt64("limit")

		journal := redisAdapter.New(redisAddr, os.Getenv("GRAFT_REDIS_PASSWORD"), 0, redisAdapter.WithStream(stream))
		defer journal.Close()

		events, err := journal.List(cmd.Context(), limit)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, e := range events {
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().String("redis", "localhost:6379", "Redis address of the event journal")
	eventsCmd.Flags().String("stream", "graft:events", "Redis stream holding node events")
	eventsCmd.Flags().Int64("limit", 0, "Maximum number of events (0 for all)")
}
