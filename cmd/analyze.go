package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"projanalyzer/internal/analyzer"
	"projanalyzer/internal/collector"
	"projanalyzer/internal/config"
	"projanalyzer/internal/llm"
	"projanalyzer/internal/logging"
	"projanalyzer/internal/report"
	"projanalyzer/internal/sanitizer"
)

// analyzeOptions 存放 analyze 命令中不属于配置文件的参数。
type analyzeOptions struct {
	directory string
	files     []string
	format    string
}

// newAnalyzeCmd 创建 analyze 子命令。
// 示例：
//
//	projanalyzer analyze -d ./project -n MyProject
//	projanalyzer analyze -f a.py b.py -p claude -o ./out
//	projanalyzer analyze --files src/*.py
func newAnalyzeCmd(v *viper.Viper, root *rootOptions, deps dependencies) *cobra.Command {
	options := analyzeOptions{format: "table"}
	defaults := config.Default()

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "分析项目源码并生成总结",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// --files 之后的位置参数视为文件列表的延续，便于直接使用 shell 通配。
			if len(args) > 0 {
				if !cmd.Flags().Changed("files") {
					return fmt.Errorf("unexpected arguments %q: positional paths are only accepted together with --files", args)
				}
				options.files = append(options.files, args...)
			}

			format := strings.ToLower(strings.TrimSpace(options.format))
			if format != "table" && format != "json" {
				return errors.New("unsupported format, allowed values: table, json")
			}

			cfg, err := config.Load(v, root.configPath)
			if err != nil {
				return err
			}

			closer := logging.Configure(deps.logger, cfg.Logging)
			defer closer.Close()

			if envErr := config.LoadEnvFile(cfg.EnvFile); envErr != nil {
				deps.logger.WithError(envErr).Warn("failed to load env file")
			}

			err = runAnalyze(cmd, deps, cfg, options)
			switch {
			case err == nil:
				return nil
			case errors.Is(err, analyzer.ErrNothingToAnalyze):
				deps.logger.WithError(err).Warn("no LLM request sent")
				return nil
			case cfg.ExitZeroOnError:
				deps.logger.WithError(err).Error("analysis failed")
				return nil
			default:
				return err
			}
		},
	}

	flags := analyzeCmd.Flags()
	flags.StringVarP(&options.directory, "directory", "d", "", "递归分析的项目目录")
	flags.StringArrayVarP(&options.files, "files", "f", nil, "显式指定的文件列表，可重复，其后的位置参数也计入列表")
	flags.StringVar(&options.format, "format", options.format, "运行汇总的输出格式: table 或 json")

	flags.StringP("output", "o", defaults.Project.Output, "输出根目录")
	flags.StringP("name", "n", defaults.Project.Name, "项目名称，用于 prompt 和输出目录")
	flags.StringP("provider", "p", defaults.LLM.Provider, "LLM 后端: "+kindList())
	flags.StringP("model", "m", defaults.LLM.Model, "模型 ID，默认使用后端推荐模型")
	flags.IntP("concurrency", "c", defaults.LLM.Concurrency, "同时在途的 LLM 请求上限")
	flags.Int("read-concurrency", defaults.Source.ReadConcurrency, "同时读取的文件数上限")
	flags.Duration("timeout", defaults.LLM.Timeout, "单次 LLM 请求超时，0 表示不限制")
	flags.String("strip-mode", defaults.Source.StripMode, "注释去除方式: "+strings.Join(sanitizer.Modes(), ", "))
	flags.StringP("language", "l", defaults.Source.Language, "源码语言画像，决定默认后缀与注释标记")
	flags.String("comment-marker", "", "行注释标记，默认取语言画像")
	flags.StringSlice("ext", nil, "目录模式下匹配的文件后缀，默认取语言画像")
	flags.StringSlice("include", defaults.Source.Include, "目录模式下必须命中的 glob（支持 **）")
	flags.StringSlice("exclude", defaults.Source.Exclude, "目录模式下排除的 glob（支持 **）")
	flags.String("suffix", defaults.Output.FileSuffix, "单文件结果的文件后缀")
	flags.Bool("exit-zero-on-error", defaults.ExitZeroOnError, "分析失败时只记录日志并以 0 退出")

	for key, name := range map[string]string{
		"project.name":            "name",
		"project.output":          "output",
		"llm.provider":            "provider",
		"llm.model":               "model",
		"llm.concurrency":         "concurrency",
		"llm.timeout":             "timeout",
		"source.read_concurrency": "read-concurrency",
		"source.strip_mode":       "strip-mode",
		"source.language":         "language",
		"source.comment_marker":   "comment-marker",
		"source.extensions":       "ext",
		"source.include":          "include",
		"source.exclude":          "exclude",
		"output.file_suffix":      "suffix",
		"exit_zero_on_error":      "exit-zero-on-error",
	} {
		bindFlag(v, key, flags.Lookup(name))
	}

	analyzeCmd.MarkFlagsMutuallyExclusive("directory", "files")
	analyzeCmd.MarkFlagsOneRequired("directory", "files")

	return analyzeCmd
}

// runAnalyze 依次构造各组件并执行流水线。
// 所有本地校验（后端名称、注释模式、glob）都在任何文件读取或网络请求之前完成。
func runAnalyze(cmd *cobra.Command, deps dependencies, cfg config.Config, options analyzeOptions) error {
	kind, err := llm.ParseProviderKind(cfg.LLM.Provider)
	if err != nil {
		return err
	}
	modelID := cfg.LLM.Model
	if modelID == "" {
		modelID = kind.DefaultModel()
	}

	textSanitizer, err := sanitizer.New(cfg.Source.StripMode, cfg.Source.CommentMarker)
	if err != nil {
		return err
	}

	fileCollector, err := collector.New(collector.Options{
		Extensions: cfg.Source.Extensions,
		Include:    cfg.Source.Include,
		Exclude:    cfg.Source.Exclude,
		IgnoreDirs: cfg.Source.IgnoreDirs,
		Logger:     deps.logger,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	provider, err := deps.newProvider(ctx, kind, providerOptions(kind, cfg.LLM))
	if err != nil {
		return fmt.Errorf("create %s provider: %w", kind, err)
	}

	gateway := llm.NewGateway(provider, llm.GatewayConfig{
		Concurrency: cfg.LLM.Concurrency,
		Timeout:     cfg.LLM.Timeout,
		Logger:      deps.logger,
	})

	service := analyzer.NewService(fileCollector, textSanitizer, gateway, deps.logger, analyzer.Options{
		ProjectName:     cfg.Project.Name,
		Language:        cfg.Source.Language,
		Model:           modelID,
		Output:          cfg.Project.Output,
		FileSuffix:      cfg.Output.FileSuffix,
		SummaryFile:     cfg.Output.SummaryFile,
		ReadConcurrency: cfg.Source.ReadConcurrency,
	})

	result, err := service.AnalyzeProject(ctx, analyzer.Request{
		Directory: options.directory,
		Files:     options.files,
	})
	if err != nil {
		return err
	}

	return report.Print(cmd.OutOrStdout(), options.format, result)
}

// providerOptions 从配置中挑出指定后端关心的字段。
func providerOptions(kind llm.ProviderKind, cfg config.LLMConfig) llm.Options {
	options := llm.Options{MaxTokens: cfg.MaxTokens}
	switch kind {
	case llm.KindOpenAI:
		options.BaseURL = cfg.OpenAIBaseURL
	case llm.KindClaude:
		options.BaseURL = cfg.AnthropicBaseURL
	case llm.KindLlama3:
		options.OllamaHost = cfg.OllamaHost
	}
	return options
}

func kindList() string {
	names := make([]string, 0, len(llm.Kinds()))
	for _, kind := range llm.Kinds() {
		names = append(names, string(kind))
	}
	return strings.Join(names, ", ")
}

// bindFlag 把 flag 绑定到 viper 配置键。
// flag 在同一文件中注册，Lookup 不会返回 nil，因此忽略绑定错误。
func bindFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	_ = v.BindPFlag(key, flag)
}
