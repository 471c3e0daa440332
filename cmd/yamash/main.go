// Command yamash is an interactive shell driving a single domain
// instance: install the built-in parcel and import/load fullnames, one
// line at a time. The domain is built without a compiler, so :upload
// reports domain_no_compiler.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/tirouscoded/yama/internal/debugsink"
	"github.com/tirouscoded/yama/internal/domain"
	"github.com/tirouscoded/yama/internal/yamaconfig"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

func main() {
	configPath := flag.String("config", "", "path to a yamaconfig YAML file (optional)")
	flag.Parse()

	cfg := yamaconfig.DefaultConfig()
	if *configPath != "" {
		loaded, err := yamaconfig.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			os.Exit(1)
		}
		cfg = loaded
	}

	var sink debugsink.Sink
	if cfg.Sink == "buffer" {
		sink = debugsink.NewBuffer()
	} else {
		sink = debugsink.NewConsole(os.Stdout)
	}

	d := domain.New(cfg, sink, nil)
	if err := d.FinishSetup(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: finish_setup: %v\n", red("Error"), err)
		os.Exit(1)
	}

	sh := &shell{domain: d, history: []string{}}
	sh.run(os.Stdin, os.Stdout)
}

// shell holds the handful of bits of state the REPL loop itself needs,
// separate from the domain it drives.
type shell struct {
	domain  *domain.Domain
	history []string
}

func (sh *shell) run(in io.Reader, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()

	historyFile := filepath.Join(os.TempDir(), ".yamash_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	line.SetCompleter(func(s string) (c []string) {
		if strings.HasPrefix(s, ":") {
			for _, cmd := range []string{":help", ":quit", ":install-builtin", ":import", ":load", ":upload", ":installed", ":history", ":clear"} {
				if strings.HasPrefix(cmd, s) {
					c = append(c, cmd)
				}
			}
		}
		return
	})

	fmt.Fprintf(out, "%s\n", bold("yamash"))
	fmt.Fprintln(out, dim("Type :help for help, :quit to exit"))
	fmt.Fprintln(out)

	for {
		input, err := line.Prompt("yama> ")
		if err == io.EOF {
			fmt.Fprintln(out, green("\nGoodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)
		sh.history = append(sh.history, input)

		if strings.HasPrefix(input, ":") {
			if input == ":quit" || input == ":q" || input == ":exit" {
				fmt.Fprintln(out, green("Goodbye!"))
				break
			}
			sh.handleCommand(input, out)
			continue
		}

		fmt.Fprintf(out, "%s: bare expressions aren't evaluated here; use %s or %s\n",
			yellow("Note"), cyan(":import <path>"), cyan(":load <fullname>"))
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

func (sh *shell) handleCommand(input string, out io.Writer) {
	fields := strings.Fields(input)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case ":help":
		sh.printHelp(out)

	case ":installed":
		names := sh.domain.InstalledNames()
		fmt.Fprintf(out, "%d installed (%d total):\n", len(names), sh.domain.InstallCount())
		for _, n := range names {
			fmt.Fprintf(out, "  %s\n", n)
		}

	case ":import":
		if len(args) != 1 {
			fmt.Fprintf(out, "%s: usage: :import <path>\n", red("Error"))
			return
		}
		md, err := sh.domain.Import(args[0])
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			return
		}
		fmt.Fprintf(out, "%s %q (%d types)\n", green("imported"), args[0], md.Len())
		for _, name := range md.Names() {
			fmt.Fprintf(out, "  %s\n", name)
		}

	case ":load":
		if len(args) != 1 {
			fmt.Fprintf(out, "%s: usage: :load <fullname>\n", red("Error"))
			return
		}
		t, err := sh.domain.Load(args[0])
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			return
		}
		fmt.Fprintf(out, "%s %s : %s\n", green("loaded"), t.Fullname.String(), t.Kind.String())

	case ":upload":
		if len(args) != 3 {
			fmt.Fprintf(out, "%s: usage: :upload <install-name> <relative-path> <source-file>\n", red("Error"))
			return
		}
		src, err := os.ReadFile(args[2])
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			return
		}
		result, err := sh.domain.UploadSource(args[0], args[1], string(src))
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			return
		}
		fmt.Fprintf(out, "%s %d types\n", green("uploaded"), len(result.Types))

	case ":history":
		for i, h := range sh.history {
			fmt.Fprintf(out, "%4d  %s\n", i+1, h)
		}

	case ":clear":
		sh.history = nil
		fmt.Fprintln(out, dim("history cleared"))

	default:
		fmt.Fprintf(out, "%s: unknown command %q, try :help\n", red("Error"), cmd)
	}
}

func (sh *shell) printHelp(out io.Writer) {
	fmt.Fprintln(out, bold("Commands:"))
	fmt.Fprintf(out, "  %-28s list installed parcels\n", cyan(":installed"))
	fmt.Fprintf(out, "  %-28s resolve a top-level import path\n", cyan(":import <path>"))
	fmt.Fprintf(out, "  %-28s instantiate and print a runtime type\n", cyan(":load <fullname>"))
	fmt.Fprintf(out, "  %-28s compile a source file and upload its module\n", cyan(":upload <name> <rel> <file>"))
	fmt.Fprintf(out, "  %-28s show command history\n", cyan(":history"))
	fmt.Fprintf(out, "  %-28s clear command history\n", cyan(":clear"))
	fmt.Fprintf(out, "  %-28s exit\n", cyan(":quit"))
}
