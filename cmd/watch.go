package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/lexis/internal/config"
	"github.com/papapumpkin/lexis/internal/telemetry"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the JSONL telemetry stream of a lexis node",
	Long: `Reads and formats the telemetry file written by 'lexis serve'.

With --follow (-f), watches the file for new events (like tail -f).`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	watchCmd.Flags().String("kind", "", "only show events of this kind")
	watchCmd.Flags().String("file", "", "telemetry file (default from config)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	follow, _ := cmd.Flags().GetBool("follow")
	kind, _ := cmd.Flags().GetString("kind")
	path, _ := cmd.Flags().GetString("file")

	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		path = cfg.TelemetryPath
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("watch: open %s: %w", path, err)
	}
	defer f.Close()

	t := &tailer{w: cmd.OutOrStdout(), r: bufio.NewReader(f), kind: kind}
	if err := t.drain(); err != nil {
		return fmt.Errorf("watch: read %s: %w", path, err)
	}
	if !follow {
		return nil
	}
	return tailFollow(cmd.Context(), t, path)
}

// tailer prints complete JSONL lines from a growing file. A trailing line
// without its newline is held back until the rest arrives.
type tailer struct {
	w       io.Writer
	r       *bufio.Reader
	kind    string
	partial string
}

// drain prints every complete line currently available.
func (t *tailer) drain() error {
	for {
		chunk, err := t.r.ReadString('\n')
		if err == io.EOF {
			t.partial += chunk
			return nil
		}
		if err != nil {
			return err
		}
		line := strings.TrimSpace(t.partial + chunk)
		t.partial = ""
		if line != "" {
			printEvent(t.w, line, t.kind)
		}
	}
}

// tailFollow watches the file for new data using fsnotify and prints new
// events until ctx is cancelled.
func tailFollow(ctx context.Context, t *tailer, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch: watch %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == 0 {
				continue
			}
			if err := t.drain(); err != nil {
				return fmt.Errorf("watch: read %s: %w", path, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		}
	}
}

// printEvent decodes a JSONL line and prints a human-readable representation.
// Lines of another kind than filter are skipped when filter is set.
func printEvent(w io.Writer, line, filter string) {
	var evt telemetry.Event
	if err := json.Unmarshal([]byte(line), &evt); err != nil {
		fmt.Fprintf(w, "??? %s\n", line)
		return
	}
	if filter != "" && evt.Kind != filter {
		return
	}

	parts := []string{
		fmt.Sprintf("[%s]", evt.Timestamp.Format(time.TimeOnly)),
		evt.Kind,
	}
	if evt.Generation != 0 {
		parts = append(parts, fmt.Sprintf("gen=%d", evt.Generation))
	}
	if evt.Summary != "" {
		parts = append(parts, evt.Summary)
	} else if m, ok := evt.Data.(map[string]any); ok {
		parts = append(parts, formatDataMap(m))
	}

	fmt.Fprintln(w, strings.Join(parts, " "))
}

// formatDataMap formats a data map as key=value pairs sorted by key.
func formatDataMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, m[k])
	}
	return b.String()
}
