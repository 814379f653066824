// Package cmd 提供 projanalyzer 的命令行入口与子命令编排。
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"projanalyzer/internal/config"
	"projanalyzer/internal/languages"
	"projanalyzer/internal/llm"
)

// ProviderFactory 根据后端类型构造 LLM 客户端。
// 生产环境使用 llm.NewProvider，测试中注入桩实现。
type ProviderFactory func(ctx context.Context, kind llm.ProviderKind, options llm.Options) (llm.Provider, error)

// dependencies 是命令层的外部依赖。
type dependencies struct {
	newProvider ProviderFactory
	logger      *logrus.Logger
}

// rootOptions 存放所有子命令共享的参数。
type rootOptions struct {
	configPath string
}

// Execute 组装根命令并执行。
// version 参数由 main 包注入，便于在 CI/CD 中打包不同版本。
// SIGINT/SIGTERM 会取消正在进行的分析。
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd(version, dependencies{
		newProvider: llm.NewProvider,
		logger:      logrus.StandardLogger(),
	})
	return rootCmd.ExecuteContext(ctx)
}

// newRootCmd 创建根命令并注册全部子命令。
// 每个根命令拥有独立的 viper 实例，命令行参数绑定到对应配置键。
func newRootCmd(version string, deps dependencies) *cobra.Command {
	options := &rootOptions{}
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "projanalyzer",
		Short: "借助 LLM 生成项目总结与 README",
		Long: "projanalyzer 收集项目源码、去除注释后拼装为一次聚合请求，\n" +
			"交给可插拔的 LLM 后端生成项目总结，并把中间结果落盘。",
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&options.configPath, "config", "", "YAML 配置文件路径，默认尝试 ./"+config.DefaultConfigFile)
	flags.String("log-level", config.Default().Logging.Level, "日志级别: debug, info, warn, error")
	flags.String("log-format", config.Default().Logging.Format, "日志格式: text 或 json")
	flags.String("log-output", config.Default().Logging.Output, "日志输出: stderr, stdout 或文件路径")
	flags.String("env-file", config.Default().EnvFile, "加载凭据的 .env 文件")

	bindFlag(v, "logging.level", flags.Lookup("log-level"))
	bindFlag(v, "logging.format", flags.Lookup("log-format"))
	bindFlag(v, "logging.output", flags.Lookup("log-output"))
	bindFlag(v, "env_file", flags.Lookup("env-file"))

	rootCmd.AddCommand(newVersionCmd(version))
	rootCmd.AddCommand(newProvidersCmd())
	rootCmd.AddCommand(newLanguageCmd(languages.NewRegistry()))
	rootCmd.AddCommand(newConfigCmd(v, options))
	rootCmd.AddCommand(newAnalyzeCmd(v, options, deps))

	return rootCmd
}
