package main

import "github.com/JairFC/douyinstream-pro/cmd"

func main() {
	cmd.Execute()
}
