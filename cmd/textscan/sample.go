package main

import (
	"fmt"

	"github.com/nao1215/textscan"
	"github.com/spf13/cobra"
)

type sampleOptions struct {
	maxSamples  int64
	writeConfig string
}

func newSampleCmd(a *app) *cobra.Command {
	opts := &sampleOptions{}
	cmd := &cobra.Command{
		Use:   "sample [flags] file|dir|- ...",
		Short: "Propose field types and formats from sampled rows",
		Long: `sample reads rows as plain strings and picks a type, format and length
for every field. Fields without a declaration are named after the header line.

With --write-config the configuration is saved with the sampled fields.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSample(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.Int64VarP(&opts.maxSamples, "max-samples", "n", 100, "number of rows to sample; 0 reads every row")
	flags.StringVarP(&opts.writeConfig, "write-config", "w", "", "save the configuration with the sampled fields (YAML)")
	return cmd
}

func (a *app) runSample(cmd *cobra.Command, args []string, opts *sampleOptions) error {
	ctx := cmd.Context()
	builder, err := a.builder(cmd, args).Build(ctx)
	if err != nil {
		return err
	}
	result, err := builder.Sample(ctx, textscan.SampleOptions{MaxSamples: opts.maxSamples})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if _, err := result.Report.WriteTo(out); err != nil {
		return err
	}
	for _, col := range result.Report.AmbiguousColumns() {
		colorYellow.Fprintf(out, "field %s is ambiguous:", col.Name)
		for _, ex := range col.Examples {
			colorYellow.Fprintf(out, " %s reads %q as %s;", ex.Candidate, ex.Input, ex.Output)
		}
		fmt.Fprintln(out)
	}
	colorGreen.Fprintf(out, "%d rows sampled, %d fields\n", result.Report.Rows, len(result.Fields))

	if opts.writeConfig != "" {
		cfg := a.config
		cfg.Fields = textscan.FieldConfigs(result.Fields)
		if err := textscan.SaveConfig(opts.writeConfig, cfg); err != nil {
			return err
		}
		colorGreen.Fprintf(out, "configuration written to %s\n", opts.writeConfig)
	}
	return nil
}
