// Command corevm is a thin demonstrator over the vm package: it scans a
// text source with a SourceStream, or disassembles a raw bytecode file
// with a CodeBlock, optionally stepping through it one instruction at a
// time. It performs no execution; see vm.OpcodeInfo.Exec.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kallos-vm/corevm/vm"
)

var (
	text      = flag.String("text", "", "scan this literal text instead of a source file")
	sourceArg = flag.String("source", "", "scan the source file at this path")
	stdinScan = flag.Bool("stdin", false, "scan standard input interactively")
	utf8Flag  = flag.Bool("utf8", true, "decode the source as UTF-8 (false for ASCII)")

	bytecodeArg = flag.String("bytecode", "", "disassemble the raw bytecode file at this path")
	debugStep   = flag.Bool("debug", false, "step through bytecode one instruction at a time")
)

func encodingFromFlag() vm.Encoding {
	if *utf8Flag {
		return vm.EncodingUTF8
	}
	return vm.EncodingASCII
}

func scan() error {
	var stream *vm.SourceStream
	switch {
	case *stdinScan:
		stream = vm.NewSourceStreamFromStdin(encodingFromFlag())
	case *sourceArg != "":
		s, err := vm.NewSourceStreamFromPath(*sourceArg, encodingFromFlag())
		if err != nil {
			return err
		}
		stream = s
	default:
		stream = vm.NewSourceStreamFromText(*text, encodingFromFlag())
	}
	defer stream.Close()

	for {
		cp := stream.Read()
		if cp == vm.EOFCodepoint {
			break
		}
		loc := stream.Stream()
		fmt.Printf("%d:%d:%d %q\n", loc.Ch, loc.Line, loc.Col, cp)
	}
	return nil
}

func loadBytecode(path string) (*vm.CodeBlock, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block := vm.NewCodeBlock(len(raw))
	block.Write(raw)
	return block, nil
}

// stepBytecode is a break/step REPL over a bytecode reader: each "next"
// prints one more decoded instruction rather than executing one.
func stepBytecode(block *vm.CodeBlock) {
	fmt.Printf("Commands:\n\tn or next: print next instruction\n\tr or run: print remainder\n\tb or break <offset>: break on offset\n\n")

	reader := block.NewReader()

	waitForInput := true
	breakAtOffsets := make(map[int]struct{})
	for !reader.AtEnd() {
		offset := reader.Index()

		if !waitForInput {
			if _, ok := breakAtOffsets[offset]; ok {
				fmt.Println("breakpoint")
				waitForInput = true
			}
		}

		if waitForInput {
			fmt.Print("->")
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			line = strings.ToLower(strings.TrimSpace(line))

			switch {
			case line == "n" || line == "next":
				vm.DisassembleInstruction(os.Stdout, reader)
			case line == "r" || line == "run":
				waitForInput = false
			case strings.HasPrefix(line, "b"):
				arg := strings.TrimPrefix(line, "break")
				if arg == line {
					arg = strings.TrimPrefix(line, "b")
				}
				n, err := strconv.Atoi(strings.TrimSpace(arg))
				if err != nil {
					fmt.Println("unknown offset:", err)
					continue
				}
				if _, ok := breakAtOffsets[n]; ok {
					delete(breakAtOffsets, n)
				} else {
					breakAtOffsets[n] = struct{}{}
				}
			default:
				fmt.Println("unrecognized command")
			}
			continue
		}

		vm.DisassembleInstruction(os.Stdout, reader)
	}
}

func disasm() error {
	block, err := loadBytecode(*bytecodeArg)
	if err != nil {
		return err
	}

	if *debugStep {
		stepBytecode(block)
		return nil
	}

	vm.DisassembleCodeBlock(os.Stdout, block)
	return nil
}

func main() {
	flag.Parse()

	var err error
	switch {
	case *bytecodeArg != "":
		err = disasm()
	default:
		err = scan()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
