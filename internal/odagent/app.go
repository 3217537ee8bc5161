package odagent

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/fatih/color"
	"github.com/onedragon/odagent/internal/odagent/options"
	"github.com/onedragon/odagent/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const banner = `
   ___             ___
  / _ \ _ __   ___|   \ _ _ __ _ __ _ ___ _ _
 | (_) | '_ \ / -_) |) | '_/ _` + "`" + ` / _` + "`" + ` / _ \ ' \
  \___/|_| |_|\___|___/|_| \__,_\__, \___/_||_|
                                |___/
`

// NewApp builds the odagent root command.
func NewApp(basename string) *cobra.Command {
	opts := options.NewOptions()
	var configFile string

	cmd := &cobra.Command{
		Use:   basename,
		Short: "Multi-session, multi-agent orchestration runtime",
		Long: heredoc.Doc(`
			odagent runs the OneDragon agent orchestration runtime: it owns
			session lifecycles, per-session agent pools, typed configuration
			stores and MCP tool wiring, and exposes the whole surface over a
			small HTTP API with SSE message streaming.

			Examples:
			  # memory-backed config stores, default model from flags
			  odagent --default-llm-base-url=https://api.example.com/v1 \
			          --default-llm-api-key=sk-... --default-llm-model=gpt-4o-mini

			  # sqlite-backed config stores
			  odagent --storage=sql --sqlite-path=data/odagent.db`),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configFile != "" {
				viper.SetConfigFile(configFile)
				if err := viper.ReadInConfig(); err != nil {
					return fmt.Errorf("failed to read config file %q: %w", configFile, err)
				}
				if err := viper.Unmarshal(opts); err != nil {
					return fmt.Errorf("failed to unmarshal config: %w", err)
				}
			}

			if errs := opts.Validate(); len(errs) > 0 {
				return fmt.Errorf("invalid options: %v", errs)
			}

			color.Cyan(banner)
			if err := logger.InitLog(opts.LogPath); err != nil {
				return err
			}
			defer logger.FlushLog()
			logger.SetLevel(opts.LogLevel)

			return Run(opts)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Config file path (yaml/json/toml).")
	opts.AddFlags(cmd.Flags())
	_ = viper.BindPFlags(cmd.Flags())

	return cmd
}
