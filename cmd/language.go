package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"projanalyzer/internal/languages"
)

// newLanguageCmd 创建 language 子命令。
// 命令用于展示内置的语言画像：后缀与行注释标记。
func newLanguageCmd(registry *languages.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "language",
		Short: "展示内置语言画像",
		RunE: func(cmd *cobra.Command, _ []string) error {
			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

			if _, err := fmt.Fprintln(writer, "LANGUAGE\tEXTENSIONS\tCOMMENT"); err != nil {
				return err
			}

			for _, item := range registry.Profiles() {
				if _, err := fmt.Fprintf(writer, "%s\t%s\t%s\n", item.Name, strings.Join(item.Extensions, ", "), item.CommentMarker); err != nil {
					return err
				}
			}

			return writer.Flush()
		},
	}
}
