package cmd

import (
	"fmt"

	"github.com/bitapeslabs/nana/common/errs"
	"github.com/bitapeslabs/nana/modules/dunes"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// Version is the main binary version, overridable at build time.
var Version = "v0.1.0"

var versions = map[string]string{
	"":      Version,
	"dunes": dunes.Version,
}

type versionCmdOptions struct {
	Modules string
}

func NewVersionCommand() *cobra.Command {
	opts := &versionCmdOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show nana version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return versionHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Modules, "module", "", `Show version of a specific module. E.g. "dunes"`)

	return cmd
}

func versionHandler(opts *versionCmdOptions, _ *cobra.Command, _ []string) error {
	version, ok := versions[opts.Modules]
	if !ok {
		return errors.Wrap(errs.Unsupported, "Invalid module name")
	}
	fmt.Println(version)
	return nil
}
