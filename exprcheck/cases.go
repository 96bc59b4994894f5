package exprcheck

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ReadCases parses "<answer> <expression>" lines. Blank lines are skipped.
func ReadCases(r io.Reader) ([]Case, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	cases := []Case{}
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		answerText, expr, found := strings.Cut(line, " ")
		if !found || strings.TrimSpace(expr) == "" {
			return nil, errors.Errorf("line %d: expected \"<answer> <expression>\"", lineNumber)
		}

		answer, err := strconv.ParseUint(answerText, 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: bad answer", lineNumber)
		}
		cases = append(cases, Case{Answer: uint32(answer), Expr: expr})
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read cases")
	}
	return cases, nil
}
