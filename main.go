package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"

	"github.com/fieldlens/fieldlens/internal/config"
	"github.com/fieldlens/fieldlens/internal/errors"
	"github.com/fieldlens/fieldlens/internal/flatten"
	"github.com/fieldlens/fieldlens/internal/models"
	"github.com/fieldlens/fieldlens/internal/parser"
	"github.com/fieldlens/fieldlens/internal/render"
	"github.com/fieldlens/fieldlens/internal/unflatten"
)

// CLI defines the command-line interface
var CLI struct {
	Input       string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output      string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Unflatten   bool   `help:"Treat the input as a flattened field list and rebuild the document." short:"u"`
	Check       bool   `help:"After flattening, rebuild the document and verify the round trip." short:"c"`
	Format      string `help:"Output format for field lists." enum:"json,table," short:"f" default:""`
	Indent      int    `help:"Spaces of indentation for JSON output." default:"-1"`
	Config      string `help:"Path to a YAML config file. Defaults to the nearest .fieldlens.yml." type:"path"`
	Watch       bool   `help:"Watch the input file and re-run on changes." short:"w"`
	Version     bool   `help:"Show version information." short:"v"`
	Interactive bool   `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
}

// Context holds the runtime context
type Context struct {
	Config *config.Config
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	kongParser := kong.Must(&CLI,
		kong.Name("fieldlens"),
		kong.Description("A tool to flatten JSON documents into editable field lists and back"),
		kong.UsageOnError(),
	)

	// Check if no arguments provided and set interactive mode by default
	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	if _, err := kongParser.Parse(os.Args[1:]); err != nil {
		// If there's an error parsing arguments, the usage will already be shown by kong.UsageOnError()
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("fieldlens version %s\n", Version)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}
	ctx := &Context{Config: cfg}

	if CLI.Watch && CLI.Input != "" {
		watchAndRun(ctx)
		return
	}

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: fieldlens --help\n")
		os.Exit(1)
	}
}

// loadConfig resolves the effective configuration: config file first, then
// CLI overrides.
func loadConfig() (*config.Config, error) {
	path := CLI.Config
	if path == "" {
		path = config.FindConfigFile()
	}

	cfg := config.NewConfig()
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, errors.NewInputError(fmt.Sprintf("failed to load config '%s'", path), err)
		}
		cfg = loaded
	}

	if CLI.Format != "" {
		cfg.Output.Format = CLI.Format
	}
	if CLI.Indent >= 0 {
		cfg.Output.Indent = CLI.Indent
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.NewInputError("invalid configuration", err)
	}
	return cfg, nil
}

// run executes the main program logic
func run(ctx *Context) error {
	// 1. Read raw input
	input, err := readInput()
	if err != nil {
		return err
	}

	renderer := render.NewRenderer(ctx.Config)

	// 2. Rebuild a document from a field list when requested
	if CLI.Unflatten {
		fields, err := parser.ParseFieldsString(input)
		if err != nil {
			return err
		}
		doc, err := unflatten.Unflatten(fields)
		if err != nil {
			return err
		}
		out, err := renderer.RenderDocument(doc)
		if err != nil {
			return err
		}
		return writeOutput(out)
	}

	// 3. Parse and flatten the document
	value, err := parser.ParseString(input)
	if err != nil {
		return err
	}
	doc, err := parser.AsDocument(value)
	if err != nil {
		return err
	}
	fields, err := flatten.Flatten(doc)
	if err != nil {
		return err
	}

	// 4. Optionally verify the round trip
	if CLI.Check {
		rebuilt, err := unflatten.Unflatten(fields)
		if err != nil {
			return err
		}
		if !models.Equal(doc, rebuilt) {
			return errors.NewUnflattenError("round trip produced a different document", nil)
		}
		fmt.Fprintf(os.Stderr, "Round trip OK: %d fields\n", len(fields))
	}

	// 5. Render and write the result
	out, err := renderer.RenderFields(fields)
	if err != nil {
		return err
	}
	return writeOutput(out)
}

// readInput reads raw input from file or stdin
func readInput() (string, error) {
	if CLI.Input != "" {
		data, err := os.ReadFile(CLI.Input)
		if err != nil {
			if os.IsNotExist(err) {
				return "", errors.NewInputError(
					fmt.Sprintf("file '%s' not found", CLI.Input), errors.ErrFileNotFound)
			}
			return "", errors.NewInputError(
				fmt.Sprintf("failed to read file '%s'", CLI.Input), err)
		}
		if len(data) == 0 {
			return "", errors.NewInputError(
				fmt.Sprintf("input file '%s' is empty", CLI.Input), errors.ErrFileEmpty)
		}
		return string(data), nil
	}

	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return "", errors.NewInputError("failed to access stdin", err)
	}

	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		// Terminal is interactive (not piped)
		if CLI.Interactive {
			return readInteractiveInput()
		}
		return "", errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	// Read from stdin (piped input)
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", errors.NewInputError("failed to read from stdin", err)
	}
	if len(data) == 0 {
		return "", errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return string(data), nil
}

// writeOutput writes the rendered result to file or stdout
func writeOutput(out string) error {
	if CLI.Output != "" {
		err := os.WriteFile(CLI.Output, []byte(out+"\n"), 0644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(os.Stderr, "Output written to %s\n", CLI.Output)
		return nil
	}

	if _, err := fmt.Println(strings.TrimSpace(out)); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// readInteractiveInput provides an interactive mode for users to paste JSON
// and signal completion with Ctrl+D (EOF)
func readInteractiveInput() (string, error) {
	fmt.Fprintln(os.Stderr, "fieldlens Interactive Mode")
	fmt.Fprintln(os.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(os.Stdin)
	var builder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.NewInputError("error reading input", err)
		}
		builder.WriteString(line)
	}

	input := builder.String()
	if len(input) == 0 {
		return "", errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nProcessing JSON...")
	return input, nil
}

// watchAndRun re-executes the pipeline whenever the input file changes.
// Events are debounced because editors fire several of them per save.
func watchAndRun(ctx *Context) {
	if err := run(ctx); err != nil {
		log.Printf("%s", errors.UserFriendlyError(err))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatal(err)
	}
	defer watcher.Close()

	if err := watcher.Add(CLI.Input); err != nil {
		log.Fatalf("Failed to watch %s: %v", CLI.Input, err)
	}
	log.Printf("Watching %s", CLI.Input)

	var debounceTimer *time.Timer

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					// A rename replaces the watched inode on most editors;
					// re-add so subsequent saves keep arriving.
					if event.Has(fsnotify.Rename) || event.Has(fsnotify.Create) {
						_ = watcher.Add(CLI.Input)
					}
					if debounceTimer != nil {
						debounceTimer.Reset(200 * time.Millisecond)
					} else {
						debounceTimer = time.AfterFunc(200*time.Millisecond, func() {
							if err := run(ctx); err != nil {
								log.Printf("%s", errors.UserFriendlyError(err))
							}
						})
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Println("error:", err)
			}
		}
	}()

	<-make(chan struct{})
}
