package exprcheck

import (
	"fmt"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/expression"
)

// Check evaluates every case against m and records one test per case.
func Check(cases []Case, m expression.Machine) *Report {
	report := NewReport()

	for i, c := range cases {
		test := CreateTestResult(fmt.Sprintf("expr #%d", i+1), 1, "visible")
		test.OutputPrintLn(c.Expr)

		value, err := expression.Evaluate(c.Expr, m)
		switch {
		case err != nil:
			test.OutputPrintLn(fmt.Sprintf("evaluation failed: %v", err))
		case value != c.Answer:
			test.OutputPrintLn(fmt.Sprintf("correct_res: %d res: %d", c.Answer, value))
		}

		success := err == nil && value == c.Answer
		test.SetStatus(success)
		score := 0
		if success {
			score = 1
		}
		report.AddTest(test, score)
	}

	return report
}
