package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/signalnine/lhci-action/internal/config"
)

var (
	inputsFile  string
	flagLogJSON bool
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "lhci-action",
		Short:        "Run Lighthouse CI collect, assert and upload for a list of URLs",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&inputsFile, "inputs", "", "YAML or JSON inputs file; INPUT_* environment variables take precedence")
	root.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "emit JSON logs instead of console lines")
	root.AddCommand(newRunCmd())
	root.AddCommand(newSummaryCmd())
	root.AddCommand(newPlanCmd())
	return root
}

// newInputs reads inputs the way the CI host passes them: INPUT_<KEY>
// environment variables, layered over an optional file.
func newInputs(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("INPUT")
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading inputs %s: %w", path, err)
		}
	}
	return v, nil
}

func resolveConfig() (config.Config, error) {
	in, err := newInputs(inputsFile)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Resolve(in, nil)
	if err != nil {
		return config.Config{}, fmt.Errorf("resolving inputs: %w", err)
	}
	return cfg, nil
}
