package cmd

import (
	"fmt"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/imgreduce/internal/profile"
	"github.com/AnyUserName/imgreduce/internal/report"
)

var estimateQualities []int

var estimateCmd = &cobra.Command{
	Use:   "estimate <image>",
	Short: "Show the output size at several quality levels without saving",
	Long: `Runs the image through one session at each requested quality, in order,
and prints the resulting sizes. Nothing is written to disk.`,
	Args: cobra.ExactArgs(1),
	RunE: runEstimate,
}

func init() {
	addEstimateFlags(estimateCmd)
	rootCmd.AddCommand(estimateCmd)
}

func addEstimateFlags(c *cobra.Command) {
	c.Flags().IntSliceVar(&estimateQualities, "qualities", []int{10, 30, 50, 72, 80, 92, 100}, "quality levels to try")
	c.Flags().String("background", "", "colour under transparent pixels (default from profile)")
	c.Flags().StringP("profile", "p", profile.DefaultName, "preset supplying the background colour")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	if len(estimateQualities) == 0 {
		return fmt.Errorf("no qualities given")
	}
	s, err := resolveSettings(cfg)
	if err != nil {
		return err
	}
	src, err := loadSource(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	sess := newRecompressor(s).NewSession(src)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  %s  %s (%s)\n\n", src.Name, report.FormatSize(src.Size), src.MIMEType)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "  quality\tsize\treduction\ttime\t")
	for _, q := range slices.Compact(slices.Sorted(slices.Values(estimateQualities))) {
		job, err := sess.Submit(ctx, q)
		if err != nil {
			return err
		}
		res, err := job.Wait(ctx)
		if err != nil {
			tw.Flush()
			return describe(src, err)
		}
		fmt.Fprintf(tw, "  %d\t%s\t%d%%\t%s\t\n",
			q, report.FormatSize(res.Size), report.ReductionPercent(src.Size, res.Size), res.Elapsed.Round(time.Millisecond))
	}
	return tw.Flush()
}
