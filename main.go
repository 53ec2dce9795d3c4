package main

import "github.com/incidentops/incident-management/cmd"

func main() {
	cmd.Execute()
}
