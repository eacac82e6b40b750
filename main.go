package main

import (
	"log"

	"github.com/joho/godotenv"

	"estate-metrics/cmd"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
