// cmd/mutfreq-trends/main.go
package main

import (
	"mutfreq/internal/appshell"
	"mutfreq/internal/trendsapp"
)

func main() { appshell.Main(trendsapp.RunContext) }
