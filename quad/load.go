package quad

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// LoadError reports a Quad text loading failure at a specific source line.
type LoadError struct {
	Line int
	Kind string
	Msg  string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%d: %s: %s", e.Line, e.Kind, e.Msg)
}

var (
	opRE       = regexp.MustCompile(`^[A-Z]+$`)
	intRE      = regexp.MustCompile(`^[0-9]+$`)
	floatRE    = regexp.MustCompile(`^[0-9]+\.[0-9]+$`)
	numPrefixRE = regexp.MustCompile(`^[0-9]+:\s*`)
)

// stripLineComments removes /* ... */ (possibly multiline, tracked by the
// caller line-by-line) and # to end-of-line comments from a single line,
// given whether we are already inside a block comment. It returns the
// cleaned text and the updated in-block-comment state.
func stripLineComments(line string, inBlock bool) (string, bool) {
	var b strings.Builder
	i := 0
	for i < len(line) {
		if inBlock {
			if j := strings.Index(line[i:], "*/"); j >= 0 {
				inBlock = false
				i += j + 2
				continue
			}
			break
		}
		if line[i] == '#' {
			break
		}
		if i+1 < len(line) && line[i] == '/' && line[i+1] == '*' {
			inBlock = true
			i += 2
			continue
		}
		b.WriteByte(line[i])
		i++
	}
	return b.String(), inBlock
}

// Load reads Quad text from r and returns a fully parsed, executable
// Program. Loading stops at (and includes) the first HALT instruction;
// anything after it is ignored. The authoritative instruction index is the
// position in the stripped, non-blank instruction stream — a leading
// human-readable "N:" numbering prefix is tolerated but not trusted.
func Load(r io.Reader) (*Program, error) {
	p := &Program{}
	sc := bufio.NewScanner(r)
	lineno := 0
	inBlock := false
	halted := false
	for sc.Scan() {
		lineno++
		line := sc.Text()
		var cleaned string
		cleaned, inBlock = stripLineComments(line, inBlock)
		cleaned = numPrefixRE.ReplaceAllString(strings.TrimSpace(cleaned), "")
		cleaned = strings.TrimSpace(cleaned)
		if cleaned == "" {
			continue
		}
		inst, err := parseInstruction(cleaned, lineno)
		if err != nil {
			return nil, err
		}
		p.Code = append(p.Code, inst)
		if inst.Op == HALT {
			halted = true
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read failed")
	}
	if !halted {
		return nil, &LoadError{Line: lineno, Kind: "MissingHalt", Msg: "reached end of input before HALT"}
	}
	return p, nil
}

func parseInstruction(text string, line int) (Instruction, error) {
	fields := strings.Fields(text)
	op := fields[0]
	if !opRE.MatchString(op) {
		return Instruction{}, &LoadError{Line: line, Kind: "InvalidOp", Msg: fmt.Sprintf("invalid opcode %q", op)}
	}
	args := make([]Operand, 0, len(fields)-1)
	for _, tok := range fields[1:] {
		operand, err := parseOperand(tok, line)
		if err != nil {
			return Instruction{}, err
		}
		args = append(args, operand)
	}
	return Instruction{Op: Op(op), Args: args, Lineno: line}, nil
}

func parseOperand(tok string, line int) (Operand, error) {
	switch {
	case intRE.MatchString(tok):
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, &LoadError{Line: line, Kind: "InvalidOperand", Msg: fmt.Sprintf("invalid integer %q", tok)}
		}
		return IntLiteral(n), nil
	case floatRE.MatchString(tok):
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, &LoadError{Line: line, Kind: "InvalidOperand", Msg: fmt.Sprintf("invalid float %q", tok)}
		}
		return FloatLiteral(f), nil
	case isIdent(tok):
		return Name{Ident: tok}, nil
	default:
		return nil, &LoadError{Line: line, Kind: "InvalidOperand", Msg: fmt.Sprintf("invalid operand %q", tok)}
	}
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}
