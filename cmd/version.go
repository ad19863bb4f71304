package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dropdawn/dropdawn/internal/config"
	"github.com/dropdawn/dropdawn/internal/provider"
)

// Version information (injected at build time via ldflags).
var (
	AppVersion = "development"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and configuration status",
	RunE: func(*cobra.Command, []string) error {
		return runVersion()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion() error {
	fmt.Printf("Dropdawn %s\n", AppVersion)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
	fmt.Println()

	fmt.Println("Providers:")
	for _, p := range provider.All() {
		fmt.Printf("  %-10s %s\n", p, keyStatus(provider.EnvVar(p)))
	}

	fmt.Println()
	fmt.Printf("  %-24s %s\n", config.EnvHostingToken+":", keyStatus(config.EnvHostingToken))
	fmt.Printf("  %-24s %s\n", config.EnvSearchAPIKey+":", keyStatus(config.EnvSearchAPIKey))
	return nil
}

// keyStatus reports whether a secret is configured without printing it.
func keyStatus(envVar string) string {
	v := os.Getenv(envVar)
	if v == "" {
		return "not set"
	}
	if len(v) <= 8 {
		return "configured"
	}
	return fmt.Sprintf("%s...%s (configured)", v[:4], v[len(v)-4:])
}
