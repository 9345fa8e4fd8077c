package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/yanashcherbakova/QueueTubeBot/app"
)

func init() {
	if err := godotenv.Load("vars.env"); err != nil {
		log.Fatal(err)
	}
}

func main() {
	application, err := app.NewApplication()
	if err != nil {
		log.Fatal(err)
	}

	go func() {
		if err := application.RunBot(); err != nil {
			log.Fatal(err)
		}
	}()

	e := application.Router()

	log.Fatal(e.Start(os.Getenv("ADMIN_ADDR")))
}
