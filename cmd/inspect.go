package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tanq16/snatch/internal/engine"
	"github.com/tanq16/snatch/internal/output"
	"github.com/tanq16/snatch/internal/utils"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [URL]",
		Short: "Probe a URL and report its download capabilities",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			job, err := newJob()
			if err != nil {
				output.PrintError(fmt.Sprintf("Error: %v", err))
				os.Exit(1)
			}
			if err := job.SetTarget(args[0]); err != nil {
				output.PrintError(fmt.Sprintf("Invalid URL: %v", err))
				os.Exit(1)
			}
			if err := job.Probe(); err != nil {
				output.PrintError(fmt.Sprintf("Probe failed: %v", err))
				os.Exit(1)
			}
			info := job.FileInfo()
			size := "unknown"
			if info.Length >= 0 {
				size = fmt.Sprintf("%s (%d bytes)", utils.FormatBytes(uint64(info.Length)), info.Length)
			}
			ranges := engine.PlanRanges(info.Length, globalConfig.Connections, info.RangeSupport)

			output.PrintHeader("Target capabilities")
			output.PrintDetail(fmt.Sprintf("  %s url           %s", output.StyleSymbols["bullet"], args[0]))
			output.PrintDetail(fmt.Sprintf("  %s file name     %s", output.StyleSymbols["bullet"], info.Filename))
			output.PrintDetail(fmt.Sprintf("  %s size          %s", output.StyleSymbols["bullet"], size))
			output.PrintDetail(fmt.Sprintf("  %s range support %s", output.StyleSymbols["bullet"], info.RangeSupport))
			if info.ContentType != "" {
				output.PrintDetail(fmt.Sprintf("  %s content type  %s", output.StyleSymbols["bullet"], info.ContentType))
			}
			output.PrintDetail(fmt.Sprintf("  %s planned parts %d", output.StyleSymbols["bullet"], len(ranges)))
		},
	}
	return cmd
}
