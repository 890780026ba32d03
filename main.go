// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"
	"os/user"

	"lumen/repl"
)

func main() {
	currentUser, err := user.Current()
	if err != nil {
		fmt.Printf("Error getting current user: %v\n", err)
		return
	}

	fmt.Printf("Welcome to the Lumen REPL, %s!\n", currentUser.Username)
	fmt.Println("Enter a fn declaration to see its optimized IR. :quit to exit.")
	repl.Start(os.Stdin, os.Stdout)
}
