// Command actstream records and queries activity stream actions between
// registered models.
package main

import "github.com/mesh-intelligence/actstream/internal/cli"

func main() {
	cli.Execute()
}
