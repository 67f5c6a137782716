// Command ellipsis truncates an element of an HTML document to a number
// of rendered lines.
//
//	ellipsis measure page.html --target '#title' --rows 2 --suffix '<a>more</a>'
//	ellipsis render page.html --target '#title' -o out.png
//	ellipsis watch page.html --request request.yaml
//	ellipsis script page.html
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := execute(ctx, os.Stdin, os.Stdout, os.Stderr, os.Args[1:]...); err != nil {
		os.Exit(1)
	}
}
