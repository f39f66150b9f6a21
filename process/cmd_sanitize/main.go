package main

import "adminpanel/process/sanitize"

func main() {
	sanitize.Run()
}
