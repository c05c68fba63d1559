package cmd

import (
	"fmt"

	"github.com/kerbaras/mangadex-dl/pkg/app/components"
	"github.com/kerbaras/mangadex-dl/pkg/app/styles"
	"github.com/kerbaras/mangadex-dl/pkg/data"
	"github.com/spf13/cobra"
)

func newHistoryCmd(s *settings) *cobra.Command {
	var mangaID string

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded downloads",
		Long:  "Display the chapters downloaded so far in a formatted table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := data.NewDuckDBRepository(s.historyDB)
			if err != nil {
				return err
			}
			defer repo.Close()

			records, err := repo.ListDownloads(mangaID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n%s\n\n", styles.TitleStyle.Render(fmt.Sprintf("Download history (%d)", len(records))))
			fmt.Fprintln(out, components.NewHistoryTable(records).View())
			return nil
		},
	}

	historyCmd.Flags().StringVar(&mangaID, "manga", "", "only show downloads of this manga ID")
	return historyCmd
}
