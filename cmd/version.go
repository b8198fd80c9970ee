package cmd

import (
	"fmt"
	"os"
)

// runVersion displays version and key environment information.
func runVersion() {
	fmt.Printf("Pravnik %s\n", Version)

	if os.Getenv("GEMINI_API_KEY") != "" || os.Getenv("GOOGLE_API_KEY") != "" {
		fmt.Println("Gemini API key: configured")
	} else {
		fmt.Println("Gemini API key: not set (answers use the built-in fallback table)")
	}
}
