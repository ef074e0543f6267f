package main

import "github.com/frahmantamala/org-management/cmd"

func main() {
	cmd.Execute()
}
