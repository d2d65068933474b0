package main

import "github.com/LocalToasty/STAMP/cmd"

func main() {
	cmd.Execute()
}
