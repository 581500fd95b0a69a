/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"github.com/blacktop/lipost/internal/linkedin/client"
	"github.com/blacktop/lipost/internal/linkedin/images"
	"github.com/blacktop/lipost/internal/logutil"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	verboseFlag bool
	envFileFlag string
)

const userAgent = "lipost/1"

// Execute runs the root command.
func Execute() error {
	return newRootCommand().Execute()
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lipost",
		Short: "Upload images to LinkedIn",
		Long: "lipost uploads images through LinkedIn's versioned Images API and prints the resulting " +
			"image URN, ready to reference from a post. Credentials are read from LINKEDIN_ACCESS_TOKEN " +
			"(a .env file in the working directory is loaded when present).",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		Example: `  lipost upload --owner urn:li:organization:5515715 --image ./shot.png
  cat shot.png | lipost upload --owner urn:li:person:8675309 --image - --alt-text "Release notes"
  lipost init --owner urn:li:organization:5515715`,
	}

	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "V", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&envFileFlag, "env-file", "", "Load environment variables from this file instead of .env")

	cmd.AddCommand(newUploadCommand())
	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newPutCommand())
	cmd.AddCommand(newCompletionCommand())

	return cmd
}

func setup(cmd *cobra.Command, args []string) error {
	logutil.SetVerbose(verboseFlag)

	if envFileFlag != "" {
		return godotenv.Load(envFileFlag)
	}
	// .env is optional
	if err := godotenv.Load(); err == nil {
		logutil.Debugf("loaded .env")
	}
	return nil
}

func newImageConnection() (*images.Connection, error) {
	cfg, err := client.LoadConfig(client.Config{})
	if err != nil {
		return nil, err
	}
	c, err := client.New(cfg, client.WithUserAgent(userAgent))
	if err != nil {
		return nil, err
	}
	logutil.Debugf("using %s (LinkedIn-Version %s)", cfg.BaseURL, cfg.Version)
	return images.New(c), nil
}
