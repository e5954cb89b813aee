package cmd

import (
	"log"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/school-matcher/internal/filtering"
	"github.com/spigell/school-matcher/internal/logger"
)

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Show which must-have filters would run for the given preferences",
	Run: func(cmd *cobra.Command, _ []string) {
		filters(cmd)
	},
}

func init() {
	rootCmd.AddCommand(filtersCmd)

	filtersCmd.Flags().StringP("preferences", "p", "", "JSON file with the athlete preferences")
	filtersCmd.Flags().StringSliceP("must-have", "m", nil, "preference names to treat as must-have (replaces the list from the file)")

	filtersCmd.MarkFlagRequired("preferences")
}

func filters(cmd *cobra.Command) {
	logger, err := logger.Build(logger.Options{JSON: viper.GetBool("json"), Debug: viper.GetBool("debug"), Name: cmd.Name()})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	prefsFile, _ := cmd.Flags().GetString("preferences")
	var mustHaves []string
	if cmd.Flags().Changed("must-have") {
		mustHaves, _ = cmd.Flags().GetStringSlice("must-have")
	}

	prefs, err := loadPreferences(prefsFile, mustHaves, logger)
	if err != nil {
		logger.Fatal("loading preferences", zap.Error(err), zap.String("file", prefsFile))
	}

	for _, status := range filtering.Describe(filtering.Defaults(), prefs) {
		fields := []zap.Field{
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
		}
		if status.Reason != "" {
			fields = append(fields, zap.String("reason", status.Reason))
		}

		keys := make([]string, 0, len(status.Details))
		for k := range status.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fields = append(fields, zap.String(k, status.Details[k]))
		}

		logger.Info("filter status", fields...)
	}
}
