package main

import (
	"fmt"
	"os"

	"github.com/lu-zhengda/appsweep/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "appsweep:", err)
		os.Exit(1)
	}
}
