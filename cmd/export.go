package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/papapumpkin/lexis/internal/config"
	"github.com/papapumpkin/lexis/internal/lexicon"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the stored lexicon snapshot",
	Long: `Write the full lexicon snapshot (words, compounds, rings, events and
stats) as JSON, YAML or TOML. Every format carries the same keys as the JSON
snapshot served at /api/lexicon.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("format", "f", "json", "output format: json, yaml or toml")
	exportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, eng, err := openLocal(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	data, err := encodeSnapshot(eng.Snapshot(), format)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("export: create %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}
	_, err = w.Write(data)
	return err
}

// encodeSnapshot renders s in the named format. YAML and TOML are produced
// from the JSON encoding so all three share one set of keys.
func encodeSnapshot(s *lexicon.State, format string) ([]byte, error) {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: encode json: %w", err)
	}

	switch strings.ToLower(format) {
	case "json":
		return append(raw, '\n'), nil
	case "yaml", "yml":
		tree, err := jsonTree(raw)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return nil, fmt.Errorf("export: encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case "toml":
		tree, err := jsonTree(raw)
		if err != nil {
			return nil, err
		}
		out, err := toml.Marshal(tree)
		if err != nil {
			return nil, fmt.Errorf("export: encode toml: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("export: unknown format %q (want json, yaml or toml)", format)
	}
}

// jsonTree decodes JSON into generic maps and slices, keeping integers as
// int64 and dropping nulls, which TOML cannot represent.
func jsonTree(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree map[string]any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("export: decode json: %w", err)
	}
	return prune(tree).(map[string]any), nil
}

func prune(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, x := range v {
			if x == nil {
				delete(v, k)
				continue
			}
			v[k] = prune(x)
		}
		return v
	case []any:
		out := v[:0]
		for _, x := range v {
			if x != nil {
				out = append(out, prune(x))
			}
		}
		return out
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return f
	default:
		return v
	}
}
