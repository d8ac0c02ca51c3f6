package main

import (
	"log"

	"github.com/joho/godotenv"

	"dealdesk/internal/app"
)

// @title           dealdesk API
// @version         1.0
// @description     Deal pipeline: stage transitions, discount approvals, sales order finalization.
// @BasePath        /
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process env")
	}
	app.Run()
}
