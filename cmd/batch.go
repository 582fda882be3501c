package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tanq16/snatch/internal/engine"
	"github.com/tanq16/snatch/internal/output"
	"github.com/tanq16/snatch/internal/utils"
	"gopkg.in/yaml.v3"
)

type BatchEntry struct {
	Link        string `yaml:"link"`
	OutputDir   string `yaml:"dir,omitempty"`
	Connections int    `yaml:"connections,omitempty"`
}

type BatchFile struct {
	Downloads []BatchEntry `yaml:"downloads"`
}

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [YAML_FILE]",
		Short: "Download multiple URLs listed in a YAML file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			entries, err := readBatchFile(args[0])
			if err != nil {
				output.PrintError(fmt.Sprintf("Error reading batch file: %v", err))
				os.Exit(1)
			}
			if len(entries) == 0 {
				output.PrintError("No valid entries found in the batch file")
				os.Exit(1)
			}
			output.PrintInfo(fmt.Sprintf("Starting %d downloads", len(entries)))
			failures := 0
			for i, entry := range entries {
				if err := runBatchEntry(entry); err != nil {
					output.PrintError(fmt.Sprintf("%d. %s: %v", i+1, entry.Link, err))
					failures++
				}
			}
			fmt.Println()
			output.PrintSuccess2(fmt.Sprintf("Completed %d of %d", len(entries)-failures, len(entries)))
			if failures > 0 {
				output.PrintError(fmt.Sprintf("Failed %d of %d", failures, len(entries)))
				os.Exit(1)
			}
		},
	}
	return cmd
}

func readBatchFile(path string) ([]BatchEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var batch BatchFile
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, err
	}
	var entries []BatchEntry
	for _, entry := range batch.Downloads {
		if entry.Link == "" {
			output.PrintWarning("Skipping entry with empty link")
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// runBatchEntry downloads one entry. Entries fall back to the global output
// directory and connection count when they carry none of their own.
func runBatchEntry(entry BatchEntry) error {
	log := utils.GetLogger("batch")
	opts := jobOptions()
	if entry.Connections > 0 {
		opts.Connections = entry.Connections
	}
	job, err := engine.NewJob(opts)
	if err != nil {
		return err
	}
	log.Debug().Str("jobId", job.ID().String()).Str("link", entry.Link).Msg("Starting batch entry")
	if err := job.SetTarget(entry.Link); err != nil {
		return err
	}
	dir := entry.OutputDir
	if dir == "" {
		dir = globalConfig.OutputDir
	}
	if err := job.SetOutputDir(dir); err != nil {
		return err
	}
	if err := runJob(job); err != nil {
		return err
	}
	output.PrintSuccess(fmt.Sprintf("Saved %s", job.OutputPath()))
	return nil
}
