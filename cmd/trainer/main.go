package main

import (
	"log"

	"valuation-service/internal"
)

func main() {
	trainer, err := internal.NewTrainerApp()
	if err != nil {
		log.Fatalf("Failed to initialize trainer: %v", err)
	}

	if err := trainer.Run(); err != nil {
		log.Fatalf("Training failed: %v", err)
	}
}
