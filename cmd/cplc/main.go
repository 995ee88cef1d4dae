// Command cplc compiles a CPL source file into a Quad text file.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/uriyay/CPLCompiler/codegen"
	"github.com/uriyay/CPLCompiler/lexer"
	"github.com/uriyay/CPLCompiler/parser"
)

func atExit(err error, compileFailed bool) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%v\n", err)
	if compileFailed {
		os.Exit(2)
	}
	os.Exit(1)
}

func main() {
	var err error
	var compileFailed bool
	defer func() { atExit(err, compileFailed) }()

	outPath := flag.String("o", "out.quad", "output `file` for the generated Quad program")
	flag.Parse()

	if flag.NArg() != 1 {
		err = errors.New("usage: cplc [-o file] source.cpl")
		return
	}
	srcPath := flag.Arg(0)

	src, err := os.ReadFile(srcPath)
	if err != nil {
		err = errors.Wrapf(err, "reading %s", srcPath)
		return
	}

	prog, perr := parser.ParseProgram(lexer.NewFromString(string(src)))
	if perr != nil {
		err = perr
		return
	}

	quadProg, errs := codegen.Generate(prog)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		err = errors.Errorf("%d error(s), %s not written", len(errs), *outPath)
		compileFailed = true
		return
	}

	out, cerr := os.Create(*outPath)
	if cerr != nil {
		err = errors.Wrapf(cerr, "creating %s", *outPath)
		return
	}
	defer out.Close()

	for _, in := range quadProg.Code {
		if _, werr := fmt.Fprintln(out, in.String()); werr != nil {
			err = errors.Wrapf(werr, "writing %s", *outPath)
			return
		}
	}
}
