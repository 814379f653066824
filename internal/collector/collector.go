// Package collector 负责确定本次要分析的源码文件列表。
// 该层只做路径枚举和过滤，不读取文件内容。
package collector

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNoInput 表示既没有目录也没有文件列表。
	ErrNoInput = errors.New("either a directory or a file list must be provided")
	// ErrConflictingInput 表示目录与文件列表同时出现。
	ErrConflictingInput = errors.New("directory and file list are mutually exclusive")
)

// Options 描述目录模式下的过滤规则。
//
// 说明：
// - Extensions 按“文件名以该后缀结尾”匹配，大小写敏感
// - Include 非空时，相对路径还必须命中其中一个 glob（支持 **）
// - Exclude 命中的文件或目录会被跳过
// - IgnoreDirs 按目录名整体跳过
// - Logger 记录遍历中被跳过的不可读子树，默认使用标准 logger
type Options struct {
	Extensions []string
	Include    []string
	Exclude    []string
	IgnoreDirs []string
	Logger     logrus.FieldLogger
}

// Collector 是文件收集器。
type Collector struct {
	options    Options
	ignoreDirs map[string]bool
	logger     logrus.FieldLogger
}

// New 创建收集器并校验 glob 语法。
func New(options Options) (*Collector, error) {
	if len(options.Extensions) == 0 {
		return nil, errors.New("at least one source extension is required")
	}
	for _, pattern := range append(append([]string(nil), options.Include...), options.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern: %q", pattern)
		}
	}

	ignoreDirs := make(map[string]bool, len(options.IgnoreDirs))
	for _, name := range options.IgnoreDirs {
		ignoreDirs[name] = true
	}

	logger := options.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Collector{options: options, ignoreDirs: ignoreDirs, logger: logger}, nil
}

// Collect 返回候选文件路径。
// files 与 directory 必须且只能提供一个：
// - files 非空时原样返回，不访问文件系统（不可读文件由后续读取阶段过滤）
// - directory 非空时递归遍历，按 WalkDir 的字典序返回匹配文件
func (c *Collector) Collect(files []string, directory string) ([]string, error) {
	directory = strings.TrimSpace(directory)
	hasFiles := len(files) > 0
	hasDirectory := directory != ""

	switch {
	case hasFiles && hasDirectory:
		return nil, ErrConflictingInput
	case hasFiles:
		return append([]string(nil), files...), nil
	case hasDirectory:
		return c.walk(os.DirFS(directory), directory)
	default:
		return nil, ErrNoInput
	}
}

// walk 遍历 fsys 并收集匹配文件，返回的路径以 root 为前缀。
// 根目录不可读时返回错误；子目录或条目读取失败时记录警告并跳过该子树，其余部分照常收集。
func (c *Collector) walk(fsys fs.FS, root string) ([]string, error) {
	result := make([]string, 0)

	err := fs.WalkDir(fsys, ".", func(relativePath string, entry fs.DirEntry, walkErr error) error {
		path := filepath.Join(root, filepath.FromSlash(relativePath))
		if walkErr != nil {
			if relativePath == "." {
				return walkErr
			}
			c.logger.WithField("path", path).WithError(walkErr).Warn("failed to read directory entry, skipped")
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if entry.IsDir() {
			if relativePath != "." && (c.ignoreDirs[entry.Name()] || c.excluded(relativePath)) {
				return fs.SkipDir
			}
			return nil
		}

		if !entry.Type().IsRegular() && entry.Type()&fs.ModeSymlink == 0 {
			return nil
		}

		if c.Matches(relativePath) {
			result = append(result, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}

	return result, nil
}

// Matches 判断一个相对路径（使用 / 分隔）是否应当被收集。
func (c *Collector) Matches(relativePath string) bool {
	name := relativePath
	if index := strings.LastIndex(relativePath, "/"); index >= 0 {
		name = relativePath[index+1:]
	}

	if !c.hasExtension(name) {
		return false
	}
	if c.excluded(relativePath) {
		return false
	}
	if len(c.options.Include) == 0 {
		return true
	}
	for _, pattern := range c.options.Include {
		if ok, _ := doublestar.Match(pattern, relativePath); ok {
			return true
		}
	}
	return false
}

func (c *Collector) hasExtension(name string) bool {
	for _, ext := range c.options.Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func (c *Collector) excluded(relativePath string) bool {
	for _, pattern := range c.options.Exclude {
		if ok, _ := doublestar.Match(pattern, relativePath); ok {
			return true
		}
	}
	return false
}
