package main

import "github.com/tkjenll/ebftpd/cmd/ebftpctl/cmd"

func main() {
	cmd.Execute()
}
