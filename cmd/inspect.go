package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/imgreduce/internal/decoder"
	"github.com/AnyUserName/imgreduce/internal/hasher"
	"github.com/AnyUserName/imgreduce/internal/report"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <image>",
	Short: "Display what imgreduce sees in an input file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	src, err := loadSource(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Name:       %s\n", src.Name)
	fmt.Fprintf(out, "  Size:       %s (%d bytes)\n", report.FormatSize(src.Size), src.Size)
	fmt.Fprintf(out, "  MIME hint:  %s\n", src.MIMEType)
	fmt.Fprintf(out, "  Digest:     %s\n", hasher.Digest(src.Data))

	dec := decoder.New(cfg.MaxPixels)
	info, err := dec.Probe(src.Data)
	if err != nil {
		fmt.Fprintf(out, "  Decodable:  no (%v)\n\n", err)
		return nil
	}
	fmt.Fprintf(out, "  Format:     %s\n", info.Format)
	fmt.Fprintf(out, "  Dimensions: %dx%d\n", info.Width, info.Height)

	img, _, err := dec.Decode(src.Data)
	if err != nil {
		fmt.Fprintf(out, "  Decodable:  no (%v)\n\n", err)
		return nil
	}
	fmt.Fprintf(out, "  Alpha:      %t\n", decoder.HasAlpha(img))
	if src.Format != "" && src.Format != info.Format {
		fmt.Fprintf(out, "\n  ⚠ extension says %s, content is %s\n", src.Format, info.Format)
	}
	fmt.Fprintln(out)
	return nil
}
