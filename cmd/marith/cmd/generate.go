package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	marithgrpc "marith/internal/grpc"
	"marith/internal/models"
	"marith/internal/params"
	"marith/internal/task"
)

var genOpts struct {
	variables        int
	min, max         int32
	operators        []string
	variableDecimals uint8
	resultDecimals   uint8
	count            int
	seed             uint64
	remote           string
	hideAnswers      bool
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Print arithmetic tasks and their answers",
	Long: `Print arithmetic tasks generated locally, or by a running
"marith serve" when --remote is given.

Flags that are not given take the configured worksheet defaults. An invalid
combination falls back to the defaults.

Examples:
  marith generate
  marith generate --variables 4 --operators '*,/' --result-decimals 2
  marith generate --seed 42 --count 5
  marith generate --remote 127.0.0.1:8015`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addGenerateFlags(generateCmd.Flags())
}

func addGenerateFlags(f *pflag.FlagSet) {
	f.IntVarP(&genOpts.variables, "variables", "n", 3, "operands per task (2-30)")
	f.Int32Var(&genOpts.min, "min", -100, "smallest operand")
	f.Int32Var(&genOpts.max, "max", 100, "largest operand")
	f.StringSliceVarP(&genOpts.operators, "operators", "o", []string{"+", "-", "*", "/"}, "allowed operators (symbols or names)")
	f.Uint8Var(&genOpts.variableDecimals, "variable-decimals", 0, "decimal digits of operands")
	f.Uint8Var(&genOpts.resultDecimals, "result-decimals", 1, "decimal digits of results")
	f.IntVarP(&genOpts.count, "count", "c", 10, "number of tasks")
	f.Uint64Var(&genOpts.seed, "seed", 0, "random seed; 0 picks one")
	f.StringVar(&genOpts.remote, "remote", "", "gRPC address of a marith server")
	f.BoolVar(&genOpts.hideAnswers, "no-answers", false, "omit the answers")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}

	requested, err := requestedConfig(cmd, cfg.Worksheet)
	if err != nil {
		return err
	}
	if !requested.IsValid() {
		logger.Warn("invalid task settings, using defaults",
			"variables", requested.VariableCount, "operators", len(requested.Operators))
	}

	seed := genOpts.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	var resp *models.TasksResponse
	if genOpts.remote != "" {
		resp, err = generateRemote(cmd.Context(), genOpts.remote, requested, seed)
		if err != nil {
			return err
		}
	} else {
		final := params.Sanitize(requested, cfg.Worksheet)
		resp = &models.TasksResponse{
			Config: final,
			Tasks:  task.NewSeededGenerator(seed).Tasks(final),
		}
	}

	printTasks(cmd.OutOrStdout(), resp.Tasks, !genOpts.hideAnswers)
	return nil
}

// requestedConfig overlays the changed flags on base.
func requestedConfig(cmd *cobra.Command, base task.Config) (task.Config, error) {
	f := cmd.Flags()
	cfg := base

	if f.Changed("variables") {
		cfg.VariableCount = genOpts.variables
	}
	if f.Changed("min") || f.Changed("max") {
		cfg.VariableRange = task.Range{Min: float64(genOpts.min), Max: float64(genOpts.max)}
	}
	if f.Changed("operators") {
		cfg.Operators = nil
		for _, name := range genOpts.operators {
			op, err := task.ParseOperator(name)
			if err != nil {
				return task.Config{}, err
			}
			cfg.Operators = append(cfg.Operators, op)
		}
	}
	if f.Changed("variable-decimals") {
		cfg.VariableDecimalPoints = genOpts.variableDecimals
	}
	if f.Changed("result-decimals") {
		cfg.ResultDecimalPoints = genOpts.resultDecimals
	}
	if f.Changed("count") {
		cfg.TaskCount = genOpts.count
	}
	return cfg, nil
}

func generateRemote(ctx context.Context, addr string, cfg task.Config, seed uint64) (*models.TasksResponse, error) {
	client, err := marithgrpc.NewWorksheetClient(addr)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := client.Generate(ctx, &models.GenerateRequest{Config: &cfg, Seed: &seed})
	if err != nil {
		return nil, fmt.Errorf("remote generate: %w", err)
	}
	return resp, nil
}

func printTasks(w io.Writer, tasks []task.ArithmeticTask, answers bool) {
	for i, t := range tasks {
		if answers {
			fmt.Fprintf(w, "%3d. %s = %s\n", i+1, t.Text, task.FormatNumber(t.Result))
		} else {
			fmt.Fprintf(w, "%3d. %s =\n", i+1, t.Text)
		}
	}
}
