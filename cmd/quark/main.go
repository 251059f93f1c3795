package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/quark-lang/quark/pkg/asm"
	"github.com/quark-lang/quark/pkg/asmgen"
	"github.com/quark-lang/quark/pkg/diag"
	"github.com/quark-lang/quark/pkg/parser"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var version = "0.1.0"

// sourceExt is the extension of Quark source files
const sourceExt = ".qk"

// Debug flags for dumping intermediate representations
var (
	dParse bool
	dAsm   bool
)

// Compilation options
var (
	inputFile  string
	outputFile string
	syntaxName string
	wordSize   int
	verbose    bool
	colorMode  string
)

// ErrInvalidFlag indicates a flag value that cannot be used
var ErrInvalidFlag = errors.New("invalid flag value")

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	// Accept single-dash dump flags like -dparse
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// debugFlagNames lists the dump flags that also accept single-dash style
var debugFlagNames = []string{"dparse", "dasm"}

// normalizeFlags converts single-dash dump flags like -dparse to --dparse
func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		for _, flagName := range debugFlagNames {
			if arg == "-"+flagName {
				result[i] = "--" + flagName
				break
			}
		}
		if result[i] == "" {
			result[i] = arg
		}
	}
	return result
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "quark [file]",
		Short: "quark compiles Quark source to x86-64 assembly",
		Long: `quark is a single-pass compiler for the Quark language. It parses
a source file into an AST and generates x86-64 assembly for nasm
or the GNU assembler.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				log.SetLevel(log.DebugLevel)
			} else {
				log.SetLevel(log.InfoLevel)
			}
			log.SetOutput(errOut)

			filename := inputFile
			if len(args) == 1 {
				if filename != "" {
					fmt.Fprintf(errOut, "quark: input given both as -i and as an argument\n")
					return fmt.Errorf("%w: duplicate input", ErrInvalidFlag)
				}
				filename = args[0]
			}
			if filename == "" {
				cmd.Help()
				return nil
			}

			color, err := useColor(colorMode, errOut)
			if err != nil {
				fmt.Fprintf(errOut, "quark: %v\n", err)
				return err
			}

			// Handle -dparse: parse and dump the AST
			if dParse {
				return doParse(filename, out, errOut, color)
			}
			return doCompile(filename, out, errOut, color)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input filename")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output filename (\"-\" for stdout)")
	rootCmd.Flags().StringVar(&syntaxName, "syntax", "nasm", "Assembly syntax: nasm or gas")
	rootCmd.Flags().IntVar(&wordSize, "word-size", parser.DefaultWordSize, "Machine word size in bytes")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Increase logging verbosity")
	rootCmd.Flags().StringVar(&colorMode, "color", "auto", "Color diagnostics: auto, always or never")

	// Add debug flags
	rootCmd.Flags().BoolVarP(&dParse, "dparse", "", false, "Dump after parsing")
	rootCmd.Flags().BoolVarP(&dAsm, "dasm", "", false, "Dump assembly")

	return rootCmd
}

// useColor decides whether diagnostics written to w are colored
func useColor(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		f, ok := w.(*os.File)
		return ok && term.IsTerminal(int(f.Fd())), nil
	}
	return false, fmt.Errorf("%w: --color %q (want auto, always or never)", ErrInvalidFlag, mode)
}

// parseFile reads and parses a source file. Diagnostics stream to errOut.
// After a parse error the partial program is returned along with the error.
func parseFile(filename string, errOut io.Writer, color bool) (*parser.Program, error) {
	log.Debug(fmt.Sprintf("loading %s", filename))
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(errOut, "quark: %v\n", err)
		return nil, err
	}

	h := diag.NewHandler(errOut, color)
	program, err := parser.New(content, parser.WithReporter(h), parser.WithWordSize(wordSize)).Parse()
	if err != nil {
		return program, fmt.Errorf("%s: %w", filename, err)
	}
	return program, nil
}

// doParse parses the file and writes the AST to a .parsed file. When the
// file has errors, whatever parsed cleanly is still written.
func doParse(filename string, out, errOut io.Writer, color bool) error {
	program, parseErr := parseFile(filename, errOut, color)
	if program == nil {
		return parseErr
	}

	outputFilename := replaceExt(filename, ".parsed")
	outFile, err := os.Create(outputFilename)
	if err != nil {
		fmt.Fprintf(errOut, "quark: error creating %s: %v\n", outputFilename, err)
		return err
	}
	defer outFile.Close()

	program.Print(outFile)

	// Also print to stdout for convenience
	program.Print(out)
	return parseErr
}

// doCompile generates assembly for the file
func doCompile(filename string, out, errOut io.Writer, color bool) error {
	syntax, err := asm.ParseSyntax(syntaxName)
	if err != nil {
		fmt.Fprintf(errOut, "quark: %v\n", err)
		return fmt.Errorf("%w: %v", ErrInvalidFlag, err)
	}

	program, err := parseFile(filename, errOut, color)
	if err != nil {
		return err
	}

	asmProg, err := asmgen.TransformProgram(program, asmgen.Config{WordSize: wordSize})
	if err != nil {
		fmt.Fprintf(errOut, "quark: %s: %v\n", filename, err)
		return err
	}

	outputFilename := outputFile
	if outputFilename == "" {
		outputFilename = replaceExt(filename, syntax.Extension())
	}

	if outputFilename == "-" {
		asm.NewPrinter(out, syntax).PrintProgram(asmProg)
		return nil
	}

	outFile, err := os.Create(outputFilename)
	if err != nil {
		fmt.Fprintf(errOut, "quark: error creating %s: %v\n", outputFilename, err)
		return err
	}
	defer outFile.Close()

	// Print the assembly to the file
	asm.NewPrinter(outFile, syntax).PrintProgram(asmProg)
	log.Debug(fmt.Sprintf("wrote %s", outputFilename))

	// Handle -dasm: also print to stdout
	if dAsm {
		asm.NewPrinter(out, syntax).PrintProgram(asmProg)
	}
	return nil
}

// replaceExt swaps a .qk extension for ext, or appends ext otherwise
func replaceExt(filename, ext string) string {
	if strings.HasSuffix(filename, sourceExt) {
		return strings.TrimSuffix(filename, sourceExt) + ext
	}
	return filename + ext
}
