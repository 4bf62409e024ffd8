// cmd/mutfreq-call/main.go
package main

import (
	"mutfreq/internal/appshell"
	"mutfreq/internal/callapp"
)

func main() { appshell.Main(callapp.RunContext) }
