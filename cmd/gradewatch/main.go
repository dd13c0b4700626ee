package main

import "gradewatch/cmd/gradewatch/cmd"

func main() {
	cmd.Execute()
}
