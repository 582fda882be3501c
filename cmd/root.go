package cmd

import (
	"fmt"
	u "net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tanq16/snatch/internal/config"
	"github.com/tanq16/snatch/internal/engine"
	"github.com/tanq16/snatch/internal/output"
	"github.com/tanq16/snatch/internal/utils"
	"golang.org/x/term"
)

var (
	cfgFile       string
	outputDir     string
	connections   int
	probeTimeout  time.Duration
	userAgent     string
	proxyURL      string
	proxyUsername string
	proxyPassword string
	rateLimit     string
	headers       []string
	debug         bool
	quiet         bool
)

// globalConfig is the merged settings every command works from, assembled
// before any Run fires.
var globalConfig config.Config

var SnatchVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "snatch [URL]",
	Short:   "Snatch is a fast multi-connection HTTP download tool",
	Version: SnatchVersion,
	Args:    cobra.MaximumNArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			utils.InitLogger(true)
		} else {
			utils.DisableLogging()
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			output.PrintError(fmt.Sprintf("Configuration error: %v", err))
			os.Exit(1)
		}
		globalConfig = cfg
	},
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			output.PrintError("No URL provided")
			cmd.Usage()
			os.Exit(1)
		}
		job, err := newJob()
		if err != nil {
			output.PrintError(fmt.Sprintf("Error: %v", err))
			os.Exit(1)
		}
		if err := job.SetTarget(args[0]); err != nil {
			output.PrintError(fmt.Sprintf("Invalid URL: %v", err))
			os.Exit(1)
		}
		if err := job.SetOutputDir(globalConfig.OutputDir); err != nil {
			output.PrintError(fmt.Sprintf("Invalid output directory: %v", err))
			os.Exit(1)
		}
		if err := runJob(job); err != nil {
			output.PrintError(fmt.Sprintf("Download failed: %v", err))
			os.Exit(1)
		}
		output.PrintSuccess(fmt.Sprintf("Saved %s", job.OutputPath()))
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig layers settings: defaults, then config file, then environment,
// then any flag the user set on the command line.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFromFile(cfgFile)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return cfg, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.OutputDir = outputDir
	}
	if flags.Changed("connections") {
		cfg.Connections = connections
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent = userAgent
	}
	if cfg.UserAgent == "randomize" {
		cfg.UserAgent = utils.GetRandomUserAgent()
	}
	if flags.Changed("proxy") {
		cfg.Proxy.URL = proxyURL
	}
	if flags.Changed("proxy-username") {
		cfg.Proxy.Username = proxyUsername
	}
	if flags.Changed("proxy-password") {
		cfg.Proxy.Password = proxyPassword
	}
	if flags.Changed("rate-limit") {
		limit, err := utils.ParseSize(rateLimit)
		if err != nil {
			return cfg, fmt.Errorf("parse rate limit: %w", err)
		}
		cfg.RateLimit = limit
	}
	if len(headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		for k, v := range utils.ParseHeaderArgs(headers) {
			cfg.Headers[k] = v
		}
	}

	// Credentials embedded in the proxy URL win unless given explicitly.
	if parsed, err := u.Parse(cfg.Proxy.URL); err == nil && parsed.User != nil && cfg.Proxy.Username == "" {
		cfg.Proxy.Username = parsed.User.Username()
		if password, set := parsed.User.Password(); set {
			cfg.Proxy.Password = password
		}
		parsed.User = nil
		cfg.Proxy.URL = parsed.String()
	}

	return cfg, cfg.Validate()
}

// jobOptions maps the merged configuration onto engine options.
func jobOptions() engine.Options {
	opts := engine.DefaultOptions()
	opts.Connections = globalConfig.Connections
	opts.Client = globalConfig.ClientConfig()
	opts.ProbeTimeout = probeTimeout
	opts.RateLimit = globalConfig.RateLimit
	return opts
}

func newJob() (*engine.Job, error) {
	return engine.NewJob(jobOptions())
}

// runJob probes and downloads, with a live progress display unless the run
// is quiet, logging to the terminal, or not attached to one.
func runJob(job *engine.Job) error {
	if err := job.Probe(); err != nil {
		return err
	}
	if quiet || debug || !term.IsTerminal(int(os.Stdout.Fd())) {
		return job.Start()
	}
	display := output.NewDisplay(job)
	display.Start()
	err := job.Start()
	display.Stop()
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a YAML config file (default is the user config directory)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", ".", "Directory to save the downloaded file into")
	rootCmd.PersistentFlags().IntVarP(&connections, "connections", "c", engine.DefaultConnections, "Number of connections per download")
	rootCmd.PersistentFlags().DurationVarP(&probeTimeout, "probe-timeout", "t", engine.DefaultProbeTimeout, "Timeout for the capability probe (eg. 5s, 1m)")
	rootCmd.PersistentFlags().StringVarP(&userAgent, "user-agent", "a", "", "User agent ('randomize' picks a browser agent)")
	rootCmd.PersistentFlags().StringVarP(&proxyURL, "proxy", "p", "", "HTTP/HTTPS proxy URL (e.g., proxy.example.com:8080)")
	rootCmd.PersistentFlags().StringVar(&proxyUsername, "proxy-username", "", "Proxy username (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringVar(&proxyPassword, "proxy-password", "", "Proxy password (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringVarP(&rateLimit, "rate-limit", "r", "", "Aggregate download rate cap (like '512K' or '5M')")
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers (like 'Authorization: Basic dXNlcjpwYXNz'); can be specified multiple times")

	// flags without shorthand
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging (disables the live display)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress the live progress display")

	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newBatchCmd())
}
