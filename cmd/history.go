package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/knowflow/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List or delete recent learning sessions",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		items, err := history.NewService(st.HistoryRepo(), nil).List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list history: %w", err)
		}
		if len(items) == 0 {
			fmt.Println("No sessions yet.")
			return nil
		}

		t := newTable(os.Stdout, "ID", "Topic", "Progress", "Stars", "Last opened")
		for _, it := range items {
			p := it.Progress()
			t.rowf("%s\t%s\t%d/%d\t%d\t%s",
				it.ID, truncate(it.Topic, 32), p.Completed, p.Total, p.TotalStars, formatTime(it.LastAccessed))
		}
		return t.flush()
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete sessions by id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		svc := history.NewService(st.HistoryRepo(), nil)
		for _, id := range args {
			if err := svc.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("delete %s: %w", id, err)
			}
			fmt.Println("Deleted", id)
		}
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyDeleteCmd)
}
