package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tessro/tubeq/internal/controller"
	"github.com/tessro/tubeq/internal/core"
	tqerrors "github.com/tessro/tubeq/internal/errors"
	"github.com/tessro/tubeq/internal/search"
	"github.com/tessro/tubeq/internal/wizard"
)

var (
	queueLimit     int
	queueAddTitle  string
	queueAddAuthor string
	queueClearYes  bool
	queueFindMin   int
	queueEditTitle string
	queueEditAuth  string
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Manage the playlist file",
	Long:  `View and edit the saved queue without starting playback.`,
	RunE:  runQueueList,
}

var queueListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List queued videos",
	RunE:    runQueueList,
}

var queueAddCmd = &cobra.Command{
	Use:   "add [url-or-id...]",
	Short: "Add videos or playlists to the queue",
	Long: `Add one or more videos by id or URL. A URL with a list= parameter adds
the whole playlist, minus shorts.

Examples:
  tubeq queue add dQw4w9WgXcQ
  tubeq queue add https://youtu.be/dQw4w9WgXcQ --title "Song" --author "Artist"
  tubeq queue add "https://www.youtube.com/playlist?list=PL..."`,
	RunE: runQueueAdd,
}

var queueRemoveCmd = &cobra.Command{
	Use:     "remove [position]",
	Aliases: []string{"rm"},
	Short:   "Remove a video from the queue",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runQueueRemove,
}

var queueDupCmd = &cobra.Command{
	Use:   "dup <position>",
	Short: "Duplicate a video in place",
	Args:  cobra.ExactArgs(1),
	RunE:  runQueueDup,
}

var queueMoveCmd = &cobra.Command{
	Use:   "move <from> <to>",
	Short: "Move a video to another position",
	Args:  cobra.ExactArgs(2),
	RunE:  runQueueMove,
}

var queueDedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Remove repeated videos, keeping the first of each",
	RunE:  runQueueDedupe,
}

var queueSortCmd = &cobra.Command{
	Use:   "sort [plays|added|published]",
	Short: "Sort the queue, highest first",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runQueueSort,
}

var queueShuffleCmd = &cobra.Command{
	Use:   "shuffle",
	Short: "Shuffle the queue once",
	RunE:  runQueueShuffle,
}

var queueClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every video from the queue",
	RunE:  runQueueClear,
}

var queueEditCmd = &cobra.Command{
	Use:   "edit <position>",
	Short: "Change a video's title and author",
	Args:  cobra.ExactArgs(1),
	RunE:  runQueueEdit,
}

var queueFindCmd = &cobra.Command{
	Use:   "find [query]",
	Short: "Fuzzy-find videos by title or author",
	RunE:  runQueueFind,
}

var queueImportCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Replace the queue with a playlist file",
	Args:  cobra.ExactArgs(1),
	RunE:  runQueueImport,
}

var queueExportCmd = &cobra.Command{
	Use:   "export [file|-]",
	Short: "Write the queue as a playlist file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runQueueExport,
}

func init() {
	queueCmd.PersistentFlags().IntVarP(&queueLimit, "limit", "l", 0, "Maximum number of videos to show (0 for all)")
	queueAddCmd.Flags().StringVar(&queueAddTitle, "title", "", "Title to use instead of looking it up")
	queueAddCmd.Flags().StringVar(&queueAddAuthor, "author", "", "Author to use instead of looking it up")
	queueClearCmd.Flags().BoolVarP(&queueClearYes, "yes", "y", false, "Do not ask for confirmation")
	queueFindCmd.Flags().IntVar(&queueFindMin, "min-score", search.ScoreThresholdNormal, "Minimum match score")
	queueEditCmd.Flags().StringVar(&queueEditTitle, "title", "", "New title")
	queueEditCmd.Flags().StringVar(&queueEditAuth, "author", "", "New author")

	queueCmd.AddCommand(queueListCmd)
	queueCmd.AddCommand(queueAddCmd)
	queueCmd.AddCommand(queueRemoveCmd)
	queueCmd.AddCommand(queueDupCmd)
	queueCmd.AddCommand(queueMoveCmd)
	queueCmd.AddCommand(queueDedupeCmd)
	queueCmd.AddCommand(queueSortCmd)
	queueCmd.AddCommand(queueShuffleCmd)
	queueCmd.AddCommand(queueClearCmd)
	queueCmd.AddCommand(queueEditCmd)
	queueCmd.AddCommand(queueFindCmd)
	queueCmd.AddCommand(queueImportCmd)
	queueCmd.AddCommand(queueExportCmd)
	rootCmd.AddCommand(queueCmd)
}

// withQueue opens the playlist file, runs fn, and saves when fn reports a
// change.
func withQueue(fn func(s *session) (changed bool, err error)) error {
	var opts sessionOptions
	if Verbose() {
		opts.echo = os.Stderr
	}
	s, err := openSession(opts)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	changed, err := fn(s)
	if err != nil {
		return err
	}
	if changed {
		return s.save()
	}
	return nil
}

// parsePosition converts a 1-based position argument to a queue index.
func parsePosition(arg string, n int) (int, error) {
	p, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid position: %s", arg)
	}
	if p < 1 || p > n {
		return 0, fmt.Errorf("%w: %d (queue has %d)", tqerrors.ErrIndexOutOfRange, p, n)
	}
	return p - 1, nil
}

func report(status string, fields map[string]any, text string) error {
	if JSONOutput() {
		out := map[string]any{"status": status}
		for k, v := range fields {
			out[k] = v
		}
		return printJSON(out)
	}
	fmt.Println(text)
	return nil
}

func runQueueList(cmd *cobra.Command, args []string) error {
	return withQueue(func(s *session) (bool, error) {
		items := s.ctrl.Items()
		if len(items) == 0 {
			if JSONOutput() {
				return false, printJSON([]itemJSON{})
			}
			fmt.Println("Queue is empty")
			return false, nil
		}

		shown := items
		if queueLimit > 0 && len(shown) > queueLimit {
			shown = shown[:queueLimit]
		}
		if err := printItems(shown, nil); err != nil {
			return false, err
		}
		if !JSONOutput() && len(shown) < len(items) {
			fmt.Printf("\n... and %d more\n", len(items)-len(shown))
		}
		return false, nil
	})
}

func runQueueAdd(cmd *cobra.Command, args []string) error {
	title, author := queueAddTitle, queueAddAuthor
	if len(args) == 0 {
		in, err := wizard.NewInteractive().PromptAdd()
		if err != nil {
			return err
		}
		if in == nil {
			return fmt.Errorf("%w: no url or id given", tqerrors.ErrInvalidInput)
		}
		args = []string{in.Raw}
		title, author = in.Title, in.Author
	}

	return withQueue(func(s *session) (bool, error) {
		ctx, cancel := commandContext()
		defer cancel()

		var result tqerrors.PartialResult[[]controller.Result]
		added := 0
		for _, raw := range args {
			res, err := s.ctrl.Add(ctx, strings.TrimSpace(raw), title, author)
			if err != nil {
				result.AddError(fmt.Errorf("%s: %w", raw, err))
				continue
			}
			result.Data = append(result.Data, res)
			added += res.Added
		}

		if JSONOutput() {
			out := map[string]any{"status": "added", "added": added}
			if result.HasErrors() {
				out["errors"] = result.ErrorSummary()
			}
			if err := printJSON(out); err != nil {
				return added > 0, err
			}
		} else {
			for _, res := range result.Data {
				if res.Item != nil {
					fmt.Printf("Added: %s — %s\n", res.Item.Title, res.Item.Author)
				} else if res.Added > 0 {
					fmt.Printf("Added %d videos\n", res.Added)
				}
				if res.Notice != "" {
					fmt.Println(res.Notice)
				}
			}
		}

		if result.HasErrors() {
			if !JSONOutput() {
				for _, err := range result.Errors {
					fmt.Fprintln(os.Stderr, tqerrors.Notice(err))
				}
			}
			if added == 0 {
				return false, result.Errors[0]
			}
		}
		return added > 0, nil
	})
}

func runQueueRemove(cmd *cobra.Command, args []string) error {
	return withQueue(func(s *session) (bool, error) {
		items := s.ctrl.Items()
		var i int
		if len(args) == 0 {
			picked, err := wizard.NewInteractive().PromptItem(items)
			if err != nil {
				return false, err
			}
			if picked == core.NoIndex {
				return false, tqerrors.ErrNoSelection
			}
			i = picked
		} else {
			var err error
			if i, err = parsePosition(args[0], len(items)); err != nil {
				return false, err
			}
		}

		ctx, cancel := commandContext()
		defer cancel()
		removed, err := s.ctrl.Remove(ctx, i)
		if err != nil {
			return false, err
		}
		return true, report("removed", map[string]any{"position": i + 1, "id": removed.ID},
			fmt.Sprintf("Removed: %s — %s", removed.Title, removed.Author))
	})
}

func runQueueDup(cmd *cobra.Command, args []string) error {
	return withQueue(func(s *session) (bool, error) {
		i, err := parsePosition(args[0], len(s.ctrl.Items()))
		if err != nil {
			return false, err
		}
		if err := s.ctrl.Select(i); err != nil {
			return false, err
		}
		dup, err := s.ctrl.DuplicateSelected()
		if err != nil {
			return false, err
		}
		return true, report("duplicated", map[string]any{"position": i + 2, "id": dup.ID},
			fmt.Sprintf("Duplicated: %s", dup.Title))
	})
}

func runQueueMove(cmd *cobra.Command, args []string) error {
	return withQueue(func(s *session) (bool, error) {
		n := len(s.ctrl.Items())
		from, err := parsePosition(args[0], n)
		if err != nil {
			return false, err
		}
		to, err := parsePosition(args[1], n)
		if err != nil {
			return false, err
		}
		if err := s.ctrl.Move(from, to); err != nil {
			return false, err
		}
		return true, report("moved", map[string]any{"from": from + 1, "to": to + 1},
			fmt.Sprintf("Moved %d → %d", from+1, to+1))
	})
}

func runQueueDedupe(cmd *cobra.Command, args []string) error {
	return withQueue(func(s *session) (bool, error) {
		n, err := s.ctrl.Dedupe()
		if err != nil {
			return false, err
		}
		return n > 0, report("deduped", map[string]any{"removed": n}, controller.DedupeNotice(n))
	})
}

func runQueueSort(cmd *cobra.Command, args []string) error {
	var key core.SortKey
	if len(args) == 1 {
		k, err := core.ParseSortKey(args[0])
		if err != nil {
			return err
		}
		key = k
	} else {
		k, err := wizard.NewInteractive().PromptSortKey()
		if err != nil {
			return err
		}
		if k == "" {
			return fmt.Errorf("sort key required: plays, added or published")
		}
		key = k
	}

	return withQueue(func(s *session) (bool, error) {
		if err := s.ctrl.Sort(key); err != nil {
			return false, err
		}
		return true, report("sorted", map[string]any{"key": string(key)},
			fmt.Sprintf("Sorted by %s", key))
	})
}

func runQueueShuffle(cmd *cobra.Command, args []string) error {
	return withQueue(func(s *session) (bool, error) {
		if err := s.ctrl.ShuffleQueue(); err != nil {
			return false, err
		}
		n := len(s.ctrl.Items())
		return true, report("shuffled", map[string]any{"count": n},
			fmt.Sprintf("Shuffled %d videos", n))
	})
}

func runQueueClear(cmd *cobra.Command, args []string) error {
	return withQueue(func(s *session) (bool, error) {
		n := len(s.ctrl.Items())
		if n == 0 {
			return false, report("cleared", map[string]any{"removed": 0}, "Queue is already empty")
		}
		if !queueClearYes {
			ok, err := wizard.NewInteractive().ConfirmClear(n)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, fmt.Errorf("not cleared; pass --yes to skip confirmation")
			}
		}

		ctx, cancel := commandContext()
		defer cancel()
		if err := s.ctrl.Clear(ctx); err != nil {
			return false, err
		}
		return true, report("cleared", map[string]any{"removed": n},
			fmt.Sprintf("Removed %d videos", n))
	})
}

func runQueueEdit(cmd *cobra.Command, args []string) error {
	return withQueue(func(s *session) (bool, error) {
		items := s.ctrl.Items()
		i, err := parsePosition(args[0], len(items))
		if err != nil {
			return false, err
		}

		title, author := items[i].Title, items[i].Author
		if cmd.Flags().Changed("title") {
			title = queueEditTitle
		}
		if cmd.Flags().Changed("author") {
			author = queueEditAuth
		}
		if err := s.ctrl.EditAt(i, title, author); err != nil {
			return false, err
		}
		return true, report("edited", map[string]any{"position": i + 1, "title": title, "author": author},
			fmt.Sprintf("Edited %d: %s — %s", i+1, title, author))
	})
}

func runQueueFind(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	return withQueue(func(s *session) (bool, error) {
		items := s.ctrl.Items()
		if query == "" {
			i, err := wizard.NewInteractive().PromptItem(items)
			if err != nil || i == core.NoIndex {
				return false, err
			}
			return false, printItems([]core.Item{items[i]}, []int{i})
		}

		searcher := search.New()
		searcher.SetMinScore(queueFindMin)
		matches := searcher.Items(query, items)
		if len(matches) == 0 {
			if JSONOutput() {
				return false, printJSON([]itemJSON{})
			}
			fmt.Printf("No matches for %q\n", query)
			return false, nil
		}

		found := make([]core.Item, len(matches))
		positions := make([]int, len(matches))
		for i, m := range matches {
			found[i] = items[m.Index]
			positions[i] = m.Index
		}
		return false, printItems(found, positions)
	})
}

func openInput(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}

func runQueueImport(cmd *cobra.Command, args []string) error {
	return withQueue(func(s *session) (bool, error) {
		r, err := openInput(args[0])
		if err != nil {
			return false, err
		}
		defer func() { _ = r.Close() }()

		ctx, cancel := commandContext()
		defer cancel()
		n, err := s.ctrl.Import(ctx, r)
		if err != nil {
			return false, err
		}
		return true, report("imported", map[string]any{"count": n},
			fmt.Sprintf("Imported %d videos", n))
	})
}

func runQueueExport(cmd *cobra.Command, args []string) error {
	return withQueue(func(s *session) (bool, error) {
		if len(args) == 0 || args[0] == "-" {
			_, err := s.ctrl.Export(os.Stdout)
			return false, err
		}

		f, err := os.Create(args[0])
		if err != nil {
			return false, err
		}
		n, err := s.ctrl.Export(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return false, err
		}
		fmt.Fprintf(os.Stderr, "Exported %d videos to %s\n", n, args[0])
		return false, nil
	})
}
