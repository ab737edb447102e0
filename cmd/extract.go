package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"lbgen/internal/generaterun"
	"lbgen/logger"
)

// NewExtractCmd 只解析建表语句并打印字段，便于检查解析结果
func NewExtractCmd() *cobra.Command {
	var tableName string

	cmd := &cobra.Command{
		Use:   "extract [schema.sql|-]",
		Short: "打印从建表语句中解析出的字段",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigAndInitLogging(cmd)
			if err != nil {
				return err
			}
			defer logger.CloseLogFile()

			req := generaterun.Request{
				TableName: tableName,
				Stdin:     cmd.InOrStdin(),
			}
			if len(args) == 1 {
				req.SchemaPath = args[0]
			}
			table, err := generaterun.LoadTable(cmd.Context(), cfg, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "table: %s\n", table.Name)
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTYPE\tCOMMENT")
			for _, c := range table.Columns {
				comment := "-"
				if c.HasComment() {
					comment = strconv.Quote(c.CommentText())
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, c.Type, comment)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			for _, clause := range table.Skipped {
				fmt.Fprintf(out, "skipped: %s\n", clause)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tableName, "table-name", "", "覆盖解析出的表名")
	return cmd
}
