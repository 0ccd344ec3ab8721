package main

import (
	"fmt"
	"os"

	"github.com/arturoeanton/go-xmlparser/xml"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(0)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "parse":
		cliParse(args)
	case "canon":
		cliCanon(args)
	case "demo":
		target := "all"
		if len(args) > 0 {
			target = args[0]
		}
		RunDemos(target)
	default:
		fmt.Printf("unknown command %q\n", command)
		printHelp()
		os.Exit(1)
	}
}

func cliParse(args []string) {
	if len(args) < 1 {
		fmt.Println("usage: xmlparser parse <file>")
		os.Exit(1)
	}
	doc, err := xml.ParseFile(args[0])
	if err != nil {
		fmt.Printf("not well-formed: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("root: <%s>\n", doc.Root.Name)
	fmt.Printf("entities: %d, notations: %d\n", len(doc.Entities), len(doc.Notations))
}

func cliCanon(args []string) {
	if len(args) < 1 {
		fmt.Println("usage: xmlparser canon <file>")
		os.Exit(1)
	}
	doc, err := xml.ParseFile(args[0])
	if err != nil {
		fmt.Printf("not well-formed: %s\n", err)
		os.Exit(1)
	}
	out, err := xml.Canonicalize(doc)
	if err != nil {
		fmt.Printf("cannot canonicalize: %s\n", err)
		os.Exit(1)
	}
	os.Stdout.Write(out)
	fmt.Println()
}

func printHelp() {
	fmt.Println("xmlparser - a non-validating XML 1.0 well-formedness checker")
	fmt.Println("usage: xmlparser [command] [arguments]")
	fmt.Println()
	fmt.Println("commands:")
	fmt.Println("  parse <file>  : parse a document and report well-formedness")
	fmt.Println("  canon <file>  : parse a document and print its canonical form")
	fmt.Println("  demo          : run the built-in demonstrations")
	fmt.Println("  demo [name]   : run one specific demonstration")
}
