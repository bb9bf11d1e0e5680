package commands

import "github.com/fatih/color"

var (
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	blue   = color.New(color.FgBlue, color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)
