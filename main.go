package main

import "ticketdraft/internal/app"

func main() {
	app.Main()
}
