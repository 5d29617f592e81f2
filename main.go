package main

import "github.com/ValentinKolb/kvfacade/cmd"

func main() {
	cmd.Execute()
}
