// Decodes a readings.gob or summary.gob file written by the engine's gob
// writer and prints its contents.
package main

import (
	"encoding/gob"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"NetGauge/internal/model"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./scripts/gobana/main.go <gob_file>")
		os.Exit(1)
	}
	gobFile := os.Args[1]

	file, err := os.Open(gobFile)
	if err != nil {
		log.Fatalf("Unable to open file: %v", err)
	}
	defer file.Close()

	decoder := gob.NewDecoder(file)

	switch filepath.Base(gobFile) {
	case "summary.gob":
		var s model.Summary
		if err := decoder.Decode(&s); err != nil {
			log.Fatalf("Failed to decode gob data: %v", err)
		}
		fmt.Println("Decoded Summary:")
		fmt.Printf("%+v\n", s)
	default:
		var readings []model.Reading
		if err := decoder.Decode(&readings); err != nil {
			log.Fatalf("Failed to decode gob data: %v", err)
		}
		fmt.Println("Decoded Readings:")
		for _, r := range readings {
			fmt.Printf("%d-%d: %.1f KB/s at %s\n",
				r.Interval, r.Interval+1, r.KBPerSec, r.Timestamp.Format("15:04:05"))
		}
	}
}
