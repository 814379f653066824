package sanitizer

import (
	"regexp"
	"strings"
)

// RegexSanitizer 是逐行启发式净化器。
//
// 处理步骤：
//  1. 去掉文件开头连续的整行注释块（例如 license 头）
//  2. 每一行中，从第一个“未被保护”的注释标记起删除到行尾；
//     标记前一个字符是 " ' 或 \ 时视为字符串内容而跳过
//
// 这只是近似：字符串里出现在普通字符之后的标记仍会被误删。
type RegexSanitizer struct {
	marker  string
	leading *regexp.Regexp
}

// NewRegexSanitizer 创建启发式净化器。
func NewRegexSanitizer(marker string) *RegexSanitizer {
	return &RegexSanitizer{
		marker:  marker,
		leading: leadingBlockPattern(marker),
	}
}

// Name 返回实现名称。
func (s *RegexSanitizer) Name() string {
	return ModeRegex
}

// Sanitize 执行两步净化。
func (s *RegexSanitizer) Sanitize(text string) string {
	if text == "" {
		return ""
	}

	text = s.leading.ReplaceAllString(text, "")

	var builder strings.Builder
	builder.Grow(len(text))
	for _, line := range splitLines(text) {
		body, newline := cutNewline(line)
		if cut := s.commentIndex(body); cut >= 0 {
			body = body[:cut]
		}
		builder.WriteString(body)
		builder.WriteString(newline)
	}
	return builder.String()
}

// commentIndex 返回行内第一个未被保护的注释标记位置，没有则返回 -1。
func (s *RegexSanitizer) commentIndex(line string) int {
	for from := 0; from < len(line); {
		offset := strings.Index(line[from:], s.marker)
		if offset < 0 {
			return -1
		}
		position := from + offset
		if position == 0 || !isGuard(line[position-1]) {
			return position
		}
		from = position + 1
	}
	return -1
}

// isGuard 判断紧邻标记之前的字符是否表示“处于字符串中”。
func isGuard(previous byte) bool {
	return previous == '"' || previous == '\'' || previous == '\\'
}
