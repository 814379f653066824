// Package sanitizer 负责去除源码中的注释噪声。
//
// 净化只针对单行注释标记（默认 #），多行字符串（docstring）永远原样保留。
// 提供两种实现：
// - regex：逐行启发式，标记前紧邻引号或反斜杠时视为字符串内容
// - lexer：跨行跟踪字符串状态的状态机，只删除字符串外的注释
package sanitizer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Sanitizer 定义单语言注释净化器。
type Sanitizer interface {
	// Name 返回实现名称（regex、lexer）。
	Name() string
	// Sanitize 返回去除注释后的文本。纯函数，没有副作用。
	Sanitize(text string) string
}

// 可选的净化模式。
const (
	ModeRegex = "regex"
	ModeLexer = "lexer"
)

type factory func(marker string) Sanitizer

var factories = map[string]factory{
	ModeRegex: func(marker string) Sanitizer { return NewRegexSanitizer(marker) },
	ModeLexer: func(marker string) Sanitizer { return NewLexSanitizer(marker) },
}

// New 按模式名创建净化器。
func New(mode string, marker string) (Sanitizer, error) {
	if marker == "" {
		return nil, fmt.Errorf("comment marker must not be empty")
	}
	create, ok := factories[strings.ToLower(strings.TrimSpace(mode))]
	if !ok {
		return nil, fmt.Errorf("unsupported strip mode: %q (allowed: %s)", mode, strings.Join(Modes(), ", "))
	}
	return create(marker), nil
}

// Modes 返回已注册的模式名，按字母序排列。
func Modes() []string {
	result := make([]string, 0, len(factories))
	for name := range factories {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// leadingBlockPattern 匹配文件开头连续的整行注释（含换行符）。
// \s 可以跨越换行，所以注释之间的空行也会一并去掉。
func leadingBlockPattern(marker string) *regexp.Regexp {
	return regexp.MustCompile(`\A(?:\s*` + regexp.QuoteMeta(marker) + `[^\n]*\n)+`)
}

// splitLines 按 \n 切分并保留换行符，便于原样拼回。
func splitLines(text string) []string {
	return strings.SplitAfter(text, "\n")
}

// cutNewline 把一行拆成正文与结尾的换行符。
func cutNewline(line string) (string, string) {
	if strings.HasSuffix(line, "\n") {
		return line[:len(line)-1], "\n"
	}
	return line, ""
}
