package main

import (
	"fmt"
	"os"

	"github.com/RyanBlaney/spectro/specdb"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <database>",
	Short: "List the groups of a database",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().IntSlice("label", nil, "also count spectrograms annotated with these labels")
}

func runInspect(cmd *cobra.Command, args []string) error {
	labels, _ := cmd.Flags().GetIntSlice("label")

	info, err := os.Stat(args[0])
	if err != nil {
		return err
	}
	r, err := specdb.Open(args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	groups, err := r.Groups()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", args[0], humanize.Bytes(uint64(info.Size())))
	for _, group := range groups {
		n, err := r.Count(group)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %-30s %s spectrograms\n", group, humanize.Comma(int64(n)))

		for _, label := range labels {
			ids, err := r.FilterByLabel(group, label)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "    label %-4d %s\n", label, humanize.Comma(int64(len(ids))))
		}
	}
	return nil
}
