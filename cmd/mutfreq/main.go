// cmd/mutfreq/main.go
package main

import (
	"mutfreq/internal/app"
	"mutfreq/internal/appshell"
)

func main() { appshell.Main(app.RunContext) }
