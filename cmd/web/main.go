package main

import "nutriplan_backend/internal/app"

func main() {
	app.Run()
}
