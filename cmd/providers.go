package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"projanalyzer/internal/llm"
)

// newProvidersCmd 创建 providers 子命令。
// 命令用于展示支持的 LLM 后端、默认模型以及读取凭据的环境变量。
func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "展示支持的 LLM 后端及默认模型",
		RunE: func(cmd *cobra.Command, _ []string) error {
			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

			if _, err := fmt.Fprintln(writer, "PROVIDER\tDEFAULT MODEL\tENV"); err != nil {
				return err
			}

			for _, kind := range llm.Kinds() {
				if _, err := fmt.Fprintf(writer, "%s\t%s\t%s\n", kind, kind.DefaultModel(), kind.CredentialEnv()); err != nil {
					return err
				}
			}

			return writer.Flush()
		},
	}
}
