package main

import (
	"fmt"
	"strconv"
	"strings"
)

// parseStack reads whitespace or comma separated numbers, bottom first
func parseStack(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	stack := make([]float64, 0, len(fields))
	for _, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", f)
		}
		stack = append(stack, x)
	}
	return stack, nil
}

// formatStack prints a stack bottom first, the way parseStack reads it
func formatStack(stack []float64) string {
	if len(stack) == 0 {
		return "(empty)"
	}
	parts := make([]string, len(stack))
	for i, x := range stack {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}
