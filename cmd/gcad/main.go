// Command gcad compiles a machining script into an optimized G-code program.
//
// The embedded standard materials script runs first, then the user's script;
// the result is written to the output file as a single modally-diffed G-code
// program. With --watch the input is recompiled whenever it changes on disk.
package main

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/gcad-lang/gcad/internal/engine"
)

func main() {
	var (
		output  string
		verbose bool
		watch   bool
	)

	rootCmd := &cobra.Command{
		Use:          "gcad [flags] input.gcad",
		Short:        "Compile machining scripts to G-code",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				return watchLoop(args[0], output, verbose)
			}
			return compile(args[0], output, verbose)
		},
	}

	rootCmd.Flags().StringVarP(&output, "output", "o", "", "Path of the G-code file to write")
	_ = rootCmd.MarkFlagRequired("output")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log the parse tree and execution trace")
	rootCmd.Flags().BoolVar(&watch, "watch", false, "Recompile whenever the input file changes")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// compile runs one full compilation: header, standard materials, user script,
// program end. On any failure the partially written output file is removed so
// a failed run can never be mistaken for success.
func compile(input, output string, verbose bool) error {
	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}

	eng := engine.New(out, verbose)
	err = func() error {
		if err := eng.WriteHeader(); err != nil {
			return err
		}
		if err := eng.Run(engine.BuiltinMaterials); err != nil {
			return err
		}
		if err := eng.RunFile(input); err != nil {
			return err
		}
		return eng.Finish()
	}()

	if cerr := out.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(output)
		return err
	}
	return nil
}

// watchLoop compiles once, then recompiles on every change to the input file.
// Compile errors are reported and the loop keeps watching.
func watchLoop(input, output string, verbose bool) error {
	report := func(err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Wrote %s\n", output)
		}
	}
	report(compile(input, output, verbose))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(input); err != nil {
		return fmt.Errorf("failed to watch %s: %w", input, err)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				report(compile(input, output, verbose))
			}
			// Editors often replace the file on save; re-add the watch so
			// the next save is still seen.
			if event.Op&(fsnotify.Rename|fsnotify.Remove) != 0 {
				_ = watcher.Add(input)
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", werr)
		}
	}
}
