// Package prompt 把净化后的文件内容拼装为一次聚合请求的 prompt。
package prompt

import (
	"fmt"
	"strings"

	"projanalyzer/internal/model"
)

// DefaultLanguage 是未配置语言时 prompt 中使用的语言名。
const DefaultLanguage = "Python"

// Build 生成聚合 prompt：固定的三点说明 + 按映射顺序排列的文件段落。
// 每个段落为 "### <path>\n<text>"，段落之间以空行分隔。
// 输入相同则输出逐字节相同；项目名原样嵌入，不做转义。
func Build(mapping *model.AnalysisMapping, projectName string, language string) string {
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}

	var builder strings.Builder
	builder.WriteString(Preamble(projectName, language))

	for i, entry := range mapping.Entries() {
		if i > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString("### ")
		builder.WriteString(entry.Path)
		builder.WriteString("\n")
		builder.WriteString(entry.Text)
	}

	return builder.String()
}

// Preamble 返回固定说明部分，以空行结尾。
func Preamble(projectName string, language string) string {
	return fmt.Sprintf("Analyze the %s project '%s' and provide:\n", language, projectName) +
		"1. A comprehensive project summary.\n" +
		"2. A detailed README.md file.\n" +
		"3. Key architectural insights and potential improvements.\n\n"
}
