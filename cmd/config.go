package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"projanalyzer/internal/config"
)

// newConfigCmd 创建 config 子命令。
// 命令以 YAML 形式输出合并默认值、配置文件、环境变量后的最终配置。
func newConfigCmd(v *viper.Viper, root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "输出当前生效的配置",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, root.configPath)
			if err != nil {
				return err
			}

			content, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(content)
			return err
		},
	}
}
