package main

import "github.com/gaurav-prasanna/pagemark/cmd"

func main() {
	cmd.Execute()
}
