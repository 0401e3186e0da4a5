package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"campaignpulse/internal/classifier"
)

// maxLine bounds a single stdin comment.
const maxLine = 1 << 20

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [comment...]",
		Short: "Classify comments given as arguments, or one per line on stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, engine, err := loadCampaign(cmd)
			if err != nil {
				return err
			}

			explain, _ := cmd.Flags().GetBool("explain")
			out := cmd.OutOrStdout()

			if len(args) > 0 {
				for _, a := range args {
					printMatch(out, engine, a, explain)
				}
				return nil
			}

			sc := bufio.NewScanner(cmd.InOrStdin())
			sc.Buffer(make([]byte, 0, 64*1024), maxLine)
			for sc.Scan() {
				printMatch(out, engine, sc.Text(), explain)
			}
			return sc.Err()
		},
	}

	cmd.Flags().Bool("explain", false, "Show the deciding rule next to each topic")

	return cmd
}

func printMatch(w io.Writer, engine *classifier.Engine, comment string, explain bool) {
	if !explain {
		fmt.Fprintln(w, engine.Classify(comment))
		return
	}

	m := engine.Explain(comment)
	rule := m.Rule
	if m.Index < 0 {
		rule = "(default)"
	} else if m.ShortComment {
		rule += " (short comment)"
	}
	fmt.Fprintf(w, "%s\t%s\t%s\n", m.Topic, rule, strings.TrimSpace(comment))
}
