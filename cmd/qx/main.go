// Command qx loads and executes a Quad text file.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/uriyay/CPLCompiler/quad"
	"github.com/uriyay/CPLCompiler/vm"
)

func atExit(srcPath string, err error) {
	if err == nil {
		return
	}
	if le, ok := err.(*quad.LoadError); ok {
		fmt.Fprintf(os.Stderr, "%s:%d: error: %s\n", srcPath, le.Line, le.Msg)
		os.Exit(1)
	}
	if re, ok := err.(*vm.RuntimeError); ok {
		fmt.Fprintf(os.Stderr, "%s:%d: error: %s\n", srcPath, re.Line, re.Msg)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%s: error: %v\n", srcPath, err)
	os.Exit(1)
}

func main() {
	var err error
	var srcPath string
	defer func() { atExit(srcPath, err) }()

	trace := flag.Bool("t", false, "enable instruction tracing")
	flag.BoolVar(trace, "trace", false, "enable instruction tracing (long form)")
	dump := flag.Bool("dump", false, "print a disassembly listing instead of executing")
	stats := flag.Bool("stats", false, "print execution statistics to stderr upon exit")
	flag.Parse()

	if flag.NArg() != 1 {
		err = errors.New("usage: qx [-t] [-dump] [-stats] file.quad")
		return
	}
	srcPath = flag.Arg(0)

	f, oerr := os.Open(srcPath)
	if oerr != nil {
		err = oerr
		return
	}
	defer f.Close()

	prog, lerr := quad.Load(f)
	if lerr != nil {
		err = lerr
		return
	}

	if *dump {
		for i, in := range prog.Code {
			fmt.Printf("%d:\t%s\n", i+1, in.String())
		}
		return
	}

	var opts []vm.Option
	opts = append(opts, vm.Input(bufio.NewReader(os.Stdin)), vm.Output(os.Stdout))
	if *trace {
		opts = append(opts, vm.Trace(os.Stderr))
	}
	instance := vm.New(prog, opts...)

	start := time.Now()
	err = instance.Run()
	if *stats {
		elapsed := time.Since(start)
		fmt.Fprintf(os.Stderr, "executed %d instructions in %v\n", instance.InstructionCount(), elapsed)
	}
}
