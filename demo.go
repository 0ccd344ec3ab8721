package main

import (
	"fmt"

	"github.com/arturoeanton/go-xmlparser/xml"
)

// demoRegistry links a `demo <name>` argument to one of the in-repo
// demonstrations.
var demoRegistry = map[string]func(){
	"entities":    demoGeneralEntityExpansion,
	"conditional": demoConditionalSections,
	"defaults":    demoDefaultAttributes,
}

// RunDemos runs either every registered demo in a fixed order, or one
// named demo.
func RunDemos(arg string) {
	fmt.Println("========================================")
	fmt.Println("  go-xmlparser demos")
	fmt.Println("========================================")

	if arg == "all" || arg == "" {
		for _, name := range []string{"entities", "conditional", "defaults"} {
			runDemo(name)
		}
		return
	}
	runDemo(arg)
}

func runDemo(name string) {
	fn, ok := demoRegistry[name]
	if !ok {
		fmt.Printf("unknown demo %q\n", name)
		return
	}
	fmt.Printf("\n--- %s ---\n", name)
	fn()
}

func demoGeneralEntityExpansion() {
	doc, err := xml.ParseString(`<?xml version="1.0"?>
<!DOCTYPE greeting [
  <!ENTITY name "World">
]>
<greeting>Hello, &name;!</greeting>`)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("root text: %q\n", doc.Root.Text[0].Value)
}

// demoConditionalSections parses a document whose DOCTYPE names the
// external subset config.dtd, looked up in the working directory. Any
// INCLUDE/IGNORE sections come from that file; the demo itself contains
// none, and when the file is absent it prints the parse error.
func demoConditionalSections() {
	doc, err := xml.ParseString(`<?xml version="1.0"?>
<!DOCTYPE config SYSTEM "config.dtd">
<config><feature/></config>`)
	if err != nil {
		fmt.Println("error (expected, external subset unavailable in this demo):", err)
		return
	}
	fmt.Printf("root: <%s>\n", doc.Root.Name)
}

func demoDefaultAttributes() {
	doc, err := xml.ParseString(`<?xml version="1.0"?>
<!DOCTYPE note [
  <!ELEMENT note (#PCDATA)>
  <!ATTLIST note priority CDATA "normal">
]>
<note>hello</note>`)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	priority, _ := doc.Root.Attributes.Get("priority")
	fmt.Printf("default-injected priority attribute: %q\n", priority)
}
