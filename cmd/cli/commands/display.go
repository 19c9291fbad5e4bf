package commands

import (
	"fmt"
	"strings"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorDim    = "\033[2m"
	colorBold   = "\033[1m"
)

// statusColor picks the color a designation status is printed in
func statusColor(status string) string {
	switch status {
	case "accepted", "confirmed":
		return colorGreen
	case "tentative", "notified":
		return colorYellow
	case "vacant", "rejected":
		return colorRed
	case "cancelled":
		return colorDim
	}
	return colorReset
}

// colored wraps text in a color followed by a reset
func colored(color, text string) string {
	return color + text + colorReset
}

// parseDecision reads an accept/reject argument
func parseDecision(arg string) (bool, error) {
	switch strings.ToLower(arg) {
	case "accept", "accepted", "yes", "y":
		return true, nil
	case "reject", "rejected", "decline", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("decision must be accept or reject, got %q", arg)
}

// printRule prints a separator under a table header
func printRule(widths ...int) {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("-", w)
	}
	fmt.Println(strings.Join(parts, "  "))
}
