package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/school-matcher/internal/ai"
	"github.com/spigell/school-matcher/internal/ai/gemini"
	"github.com/spigell/school-matcher/internal/logger"
	"github.com/spigell/school-matcher/internal/matching"
	"github.com/spigell/school-matcher/internal/metrics"
	"github.com/spigell/school-matcher/internal/preferences"
	"github.com/spigell/school-matcher/internal/schools"
	"github.com/spigell/school-matcher/internal/secrets"
)

const (
	PromptSummaries    = "Show match summaries"
	PromptTopMatches   = "Show top matches"
	PromptExplain      = "Explain top matches with AI"
	PromptRelax        = "Suggest must-have relaxations with AI"
	PromptResultToFile = "Dump result to file"
	PromptJSON         = "Print result as JSON"
	PromptExit         = "Exit"
)

var errExit = errors.New("exit requested")

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Filter the school pool by must-haves and annotate nice-to-have fits",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("preferences", "p", "", "JSON file with the athlete preferences")
	matchCmd.Flags().StringSliceP("must-have", "m", nil, "preference names to treat as must-have (replaces the list from the file)")
	matchCmd.Flags().IntP("limit", "l", 10, "number of top matches to show; 0 shows every match")
	matchCmd.Flags().BoolP("auto-approve", "y", false, "print the result as JSON without the interactive menu")
	matchCmd.Flags().Bool("refresh-cache", false, "reload the school pool into the cache before matching")
	matchCmd.Flags().String("division", "", "predicted division group used to rank ties")
	matchCmd.Flags().Float64("d1-probability", 0, "predicted probability of playing D1")
	matchCmd.Flags().Float64("p4-probability", 0, "predicted probability of playing Power 4 D1")
	matchCmd.Flags().String("instructions", "", "extra advisory instructions for AI reasoning")

	matchCmd.MarkFlagRequired("preferences")
	viper.BindPFlag("limit", matchCmd.Flags().Lookup("limit"))
}

// session holds everything the interactive menu acts on.
type session struct {
	config   *Config
	prefs    *preferences.Preferences
	result   *matching.FilteringResult
	logger   *zap.Logger
	reasoner ai.Reasoner
	// instructions are forwarded to the reasoner once it is built.
	instructions string
}

// match is the main command for the cli.
func match(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.Build(logger.Options{JSON: viper.GetBool("json"), Debug: viper.GetBool("debug"), Name: cmd.Name()})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the school-matcher", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	prefsFile, _ := cmd.Flags().GetString("preferences")
	var mustHaves []string
	if cmd.Flags().Changed("must-have") {
		mustHaves, _ = cmd.Flags().GetStringSlice("must-have")
	}

	prefs, err := loadPreferences(prefsFile, mustHaves, logger)
	if err != nil {
		logger.Fatal("loading preferences", zap.Error(err), zap.String("file", prefsFile))
	}

	prediction, err := predictionFromFlags(cmd)
	if err != nil {
		logger.Fatal("parsing prediction flags", zap.Error(err))
	}

	// No configured divisions means the whole pool, including unlabeled records.
	var divisions []string
	if len(config.Divisions) > 0 {
		divisions, err = schools.ParseDivisionGroups(config.Divisions)
		if err != nil {
			logger.Fatal("parsing divisions", zap.Error(err))
		}
	}

	source, closeSource, err := newSource(ctx, config, logger)
	if err != nil {
		logger.Fatal("preparing school source", zap.Error(err))
	}
	defer closeSource()

	pool, err := loadPool(ctx, cmd, source, divisions)
	if err != nil {
		logger.Fatal("loading schools", zap.Error(err))
	}

	logger.Info("school pool loaded", zap.Int("count", len(pool)), zap.Strings("divisions", divisions))

	recorder := metrics.New()
	engine := matching.NewEngine(logger, recorder)

	result := engine.Evaluate(pool, prefs)
	result.Prediction = prediction

	if config.Metrics != nil && config.Metrics.Textfile != "" {
		if err := recorder.WriteTextfile(config.Metrics.Textfile); err != nil {
			logger.Warn("writing metrics textfile", zap.Error(err))
		}
	}

	if len(result.SchoolMatches) == 0 {
		logger.Info("no schools left after must-have filters",
			zap.Any("filtering_summary", result.FilteringSummary),
		)
	}

	s := &session{config: config, prefs: prefs, result: result, logger: logger}
	s.instructions, _ = cmd.Flags().GetString("instructions")

	prompt := promptui.Select{
		Label: "What next?",
		Items: menuItems(config),
	}

	action := PromptJSON
	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	for {
		var err error
		if !autoApprove {
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		if err := s.handleAction(ctx, action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		if autoApprove {
			return
		}
	}
}

func menuItems(config *Config) []string {
	items := []string{PromptSummaries, PromptTopMatches}
	if aiEnabled(config) {
		items = append(items, PromptExplain, PromptRelax)
	}
	return append(items, PromptResultToFile, PromptJSON, PromptExit)
}

func aiEnabled(config *Config) bool {
	return config != nil && config.AI != nil && config.AI.Enabled
}

func (s *session) handleAction(ctx context.Context, action string) error {
	switch action {
	case PromptSummaries:
		pretty, _ := json.MarshalIndent(s.result.Summaries(), "", "  ")
		s.logger.Info(string(pretty), zap.Int("schools count", len(s.result.SchoolMatches)))
		return nil
	case PromptTopMatches:
		s.printTopMatches()
		return nil
	case PromptExplain:
		return s.explain(ctx)
	case PromptRelax:
		return s.suggestRelaxations(ctx)
	case PromptResultToFile:
		filename, err := s.result.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump result to file: %w", err)
		}
		s.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptJSON:
		pretty, err := json.MarshalIndent(s.result.ToMap(), "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		fmt.Println(string(pretty))
		return nil
	case PromptExit:
		s.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (s *session) printTopMatches() {
	top := s.result.TopMatches(viper.GetInt("limit"))
	for i, m := range top {
		fit := ""
		if m.StrongFit() {
			fit = ", strong fit"
		}
		fmt.Printf("%2d. %s (%s): %d matches, %d misses%s\n",
			i+1, m.SchoolName, m.DivisionGroup, len(m.Matches), len(m.Misses), fit)
	}
	s.logger.Info("top matches shown", zap.Int("count", len(top)), zap.Int("total", len(s.result.SchoolMatches)))
}

func (s *session) explain(ctx context.Context) error {
	reasoner, err := s.getReasoner(ctx)
	if err != nil {
		s.logger.Warn("skipping AI reasoning", zap.Error(err))
		return nil
	}

	top := s.result.TopMatches(s.config.AI.Top)
	if len(top) == 0 {
		s.logger.Info("nothing to explain", zap.String("reason", "no matches"))
		return nil
	}

	req := ai.NewRequest(s.result, s.prefs.UserState(), s.prefs.MustHaveValues(), s.prefs.NiceToHaveValues(), top)
	reasoning, err := reasoner.Explain(ctx, req)
	if err != nil {
		s.logger.Warn("AI reasoning failed", zap.Error(err))
		return nil
	}

	for _, m := range top {
		r, ok := reasoning[m.SchoolName]
		if !ok {
			s.logger.Debug("no reasoning returned", zap.String("school", m.SchoolName))
			continue
		}
		fmt.Printf("%s\n  %s\n", m.SchoolName, r.Summary)
		printBullets("+", r.FitQualities)
		printBullets("!", r.Cautions)
	}
	return nil
}

func (s *session) suggestRelaxations(ctx context.Context) error {
	reasoner, err := s.getReasoner(ctx)
	if err != nil {
		s.logger.Warn("skipping AI suggestions", zap.Error(err))
		return nil
	}

	suggestions, err := reasoner.SuggestRelaxations(ctx, s.prefs.MustHaveValues(), len(s.result.SchoolMatches))
	if err != nil {
		s.logger.Warn("AI suggestions failed", zap.Error(err))
		return nil
	}
	if len(suggestions) == 0 {
		s.logger.Info("no relaxations suggested",
			zap.Int("matches", len(s.result.SchoolMatches)),
			zap.Int("must_have_count", s.result.MustHaveCount),
		)
		return nil
	}

	for _, sg := range suggestions {
		fmt.Printf("%s: %s\n  %s\n", sg.Preference, sg.Suggestion, sg.Reason)
	}
	return nil
}

func printBullets(mark string, items []string) {
	for _, item := range items {
		fmt.Printf("  %s %s\n", mark, item)
	}
}

// getReasoner builds the reasoner on first use.
func (s *session) getReasoner(ctx context.Context) (ai.Reasoner, error) {
	if s.reasoner != nil {
		return s.reasoner, nil
	}

	reasoner, err := newAIReasoner(ctx, s.config.AI, s.logger)
	if err != nil {
		return nil, err
	}
	reasoner.SetPromptOverrides(gemini.PromptOverrides{
		Tone:             s.config.AI.Tone,
		UserInstructions: s.instructions,
	})

	s.reasoner = reasoner
	return reasoner, nil
}

func newAIReasoner(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (*gemini.Reasoner, error) {
	if cfg == nil || cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries))

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewReasoner(generator, cfg.Gemini.MaxLogLength, logger), nil
}

func predictionFromFlags(cmd *cobra.Command) (*matching.Prediction, error) {
	division, _ := cmd.Flags().GetString("division")
	if strings.TrimSpace(division) == "" {
		return nil, nil
	}

	group, err := schools.ParseDivisionGroup(division)
	if err != nil {
		return nil, err
	}

	d1, _ := cmd.Flags().GetFloat64("d1-probability")
	p4, _ := cmd.Flags().GetFloat64("p4-probability")
	for name, v := range map[string]float64{"d1-probability": d1, "p4-probability": p4} {
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("%s must be within [0, 1], got %g", name, v)
		}
	}

	return &matching.Prediction{Division: group, D1Probability: d1, P4Probability: p4}, nil
}
