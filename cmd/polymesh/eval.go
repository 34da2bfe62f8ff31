package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/chazu/polymesh"
	"github.com/spf13/cobra"
)

type evalOptions struct {
	output string
	merge  bool
	indent bool
}

func newEvalCmd(root *rootOptions) *cobra.Command {
	opts := &evalOptions{}
	cmd := &cobra.Command{
		Use:   "eval <script.lisp>",
		Short: "Evaluate a script and write its meshes as JSON",
		Long: "Evaluate a script and write its meshes as JSON.\n\n" +
			"Use - to read the script from stdin. The output holds one entry per part\n" +
			"with position, normal, uv and index buffers, plus any errors and warnings.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, root, opts, args[0])
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "write JSON to this file instead of stdout")
	f.BoolVar(&opts.merge, "merge", false, "merge all parts into a single mesh")
	f.BoolVar(&opts.indent, "indent", false, "indent the JSON output")
	return cmd
}

func runEval(cmd *cobra.Command, root *rootOptions, opts *evalOptions, path string) error {
	logger, err := root.logger(cmd)
	if err != nil {
		return err
	}
	d, err := root.defaults()
	if err != nil {
		return err
	}

	source, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	app := polymesh.NewApp(polymesh.WithDefaults(d), polymesh.WithLogger(logger.With("script", path)))
	result := app.EvaluateContext(cmd.Context(), string(source))
	if opts.merge && result.OK() {
		result.Parts = []polymesh.MeshData{polymesh.MergeParts("merged", result.Parts)}
	}
	for _, w := range result.Warnings {
		logger.Warn(w.Message)
	}

	if err := writeJSON(cmd, opts.output, opts.indent, result); err != nil {
		return err
	}
	if !result.OK() {
		for _, e := range result.Errors {
			logger.Error(e.Message, "line", e.Line)
		}
		return fmt.Errorf("%s: %d error(s)", path, len(result.Errors))
	}
	return nil
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// writeJSON encodes v to the named file, or to stdout when name is empty.
func writeJSON(cmd *cobra.Command, name string, indent bool, v any) error {
	w := cmd.OutOrStdout()
	if name != "" {
		f, err := os.Create(name)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
