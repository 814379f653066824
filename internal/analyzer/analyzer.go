// Package analyzer 提供项目分析流水线。
// 该层负责收集、并发净化、聚合请求和落盘的调度，不负责注释识别和 LLM 协议细节。
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"projanalyzer/internal/collector"
	"projanalyzer/internal/llm"
	"projanalyzer/internal/model"
	"projanalyzer/internal/prompt"
	"projanalyzer/internal/report"
	"projanalyzer/internal/sanitizer"
)

// ErrNothingToAnalyze 表示没有任何可送入 LLM 的文件内容。
var ErrNothingToAnalyze = errors.New("nothing to analyze")

// DefaultReadConcurrency 是未配置时同时读取的文件数上限。
const DefaultReadConcurrency = 16

// Options 是流水线的运行参数。
type Options struct {
	ProjectName     string
	Language        string
	Model           string
	Output          string
	FileSuffix      string
	SummaryFile     string
	ReadConcurrency int
}

// Request 描述一次分析的输入：目录与文件列表二选一。
type Request struct {
	Directory string
	Files     []string
}

// Service 是分析服务对象。
type Service struct {
	collector *collector.Collector
	sanitizer sanitizer.Sanitizer
	gateway   llm.Provider
	logger    logrus.FieldLogger
	options   Options
}

// NewService 创建分析服务。gateway 通常是 *llm.Gateway，测试中可替换为桩实现。
func NewService(
	fileCollector *collector.Collector,
	textSanitizer sanitizer.Sanitizer,
	gateway llm.Provider,
	logger logrus.FieldLogger,
	options Options,
) *Service {
	if options.ReadConcurrency <= 0 {
		options.ReadConcurrency = DefaultReadConcurrency
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		collector: fileCollector,
		sanitizer: textSanitizer,
		gateway:   gateway,
		logger:    logger,
		options:   options,
	}
}

// AnalyzeFiles 并发读取并净化 paths 中的全部文件。
//
// 返回值：
// - results 与 paths 一一对应，顺序相同
// - mapping 只包含成功且非空的条目，顺序同样与 paths 一致
//
// 单个文件失败只记录日志，不影响其他文件；只有 ctx 被取消才返回错误。
func (s *Service) AnalyzeFiles(ctx context.Context, paths []string) ([]model.FileResult, *model.AnalysisMapping, error) {
	return s.analyzeFiles(ctx, s.logger, paths)
}

func (s *Service) analyzeFiles(ctx context.Context, logger logrus.FieldLogger, paths []string) ([]model.FileResult, *model.AnalysisMapping, error) {
	results := make([]model.FileResult, len(paths))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.options.ReadConcurrency)

	for index, path := range paths {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				results[index] = model.FileResult{Path: path, Err: err}
				return nil
			}

			result := sanitizer.Process(path, s.sanitizer)
			results[index] = result

			switch {
			case result.Ok():
			case errors.Is(result.Err, model.ErrEmptyContent):
				logger.WithField("file", path).Info("file is empty after sanitizing, skipped")
			default:
				logger.WithField("file", path).WithError(result.Err).Warn("failed to read file, skipped")
			}
			return nil
		})
	}

	// 各任务总是返回 nil，Wait 只用于等待全部读取结束。
	_ = group.Wait()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	return results, model.MappingFromResults(results), nil
}

// AnalyzeProject 执行完整流水线：
// 收集 -> 并发净化 -> 构建 prompt -> 一次聚合 LLM 调用 -> 落盘。
// 只有 LLM 调用成功后才会创建输出目录。
func (s *Service) AnalyzeProject(ctx context.Context, request Request) (model.RunReport, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := s.logger.WithFields(logrus.Fields{
		"run_id":  runID,
		"project": s.options.ProjectName,
	})

	result := model.RunReport{
		RunID:       runID,
		ProjectName: s.options.ProjectName,
		Provider:    s.gateway.Name(),
		Model:       s.options.Model,
	}

	paths, err := s.collector.Collect(request.Files, request.Directory)
	if err != nil {
		return result, err
	}
	result.Collected = len(paths)
	logger.WithField("files", len(paths)).Info("collected source files")

	if len(paths) == 0 {
		return result, fmt.Errorf("%w: no files matched in %s", ErrNothingToAnalyze, request.Directory)
	}

	results, mapping, err := s.analyzeFiles(ctx, logger, paths)
	if err != nil {
		return result, err
	}

	result.Files = make([]model.FileStatus, 0, len(results))
	for _, item := range results {
		result.Files = append(result.Files, model.StatusFromResult(item))
	}
	result.Kept = mapping.Len()

	if mapping.Len() == 0 {
		return result, fmt.Errorf("%w: all %d files were empty or unreadable", ErrNothingToAnalyze, len(paths))
	}

	text := prompt.Build(mapping, s.options.ProjectName, s.options.Language)
	result.PromptBytes = len(text)
	logger.WithFields(logrus.Fields{
		"kept":         mapping.Len(),
		"prompt_bytes": len(text),
	}).Info("prompt assembled")

	summary, err := s.gateway.Generate(ctx, text, s.options.Model)
	if err != nil {
		return result, fmt.Errorf("generate project summary: %w", err)
	}

	directory, err := report.WriteResults(mapping, summary, report.WriteOptions{
		Output:      s.options.Output,
		ProjectName: s.options.ProjectName,
		Root:        request.Directory,
		FileSuffix:  s.options.FileSuffix,
		SummaryFile: s.options.SummaryFile,
	})
	if err != nil {
		return result, err
	}

	result.OutputDir = directory
	result.Elapsed = time.Since(start)
	logger.WithFields(logrus.Fields{
		"output":  directory,
		"elapsed": result.Elapsed.Round(time.Millisecond),
	}).Info("analysis complete")

	return result, nil
}
