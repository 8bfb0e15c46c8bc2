package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "face-enroll",
	Short: "A guided face enrollment capture wizard",
	Long: `Face Enroll walks a single user through a fixed sequence of head poses,
validates that each captured image contains exactly one face, and packages
the accepted images plus metadata into a downloadable ZIP archive.

The wizard can be driven through the built-in web API (serve) or fed
pre-captured image files from the command line (enroll).`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
