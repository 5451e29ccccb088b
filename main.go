// Public domain.

package main

import "specz/internal/zprog"

func main() {
	zprog.Main()
}
