package main

import "groupbid-backend/cmd"

func main() {
	cmd.Run()
}
