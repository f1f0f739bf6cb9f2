package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
)

// generateSecret returns a hex-encoded random secret of the given byte length
func generateSecret(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func main() {
	fmt.Println("===========================================")
	fmt.Println("JWT Secret Generator for BookIt")
	fmt.Println("===========================================")
	fmt.Println()

	accessSecret, err := generateSecret(32) // 256-bit
	if err != nil {
		log.Fatalf("Failed to generate access secret: %v", err)
	}

	refreshSecret, err := generateSecret(32) // 256-bit
	if err != nil {
		log.Fatalf("Failed to generate refresh secret: %v", err)
	}

	fmt.Println("✅ Secrets generated successfully!")
	fmt.Println()
	fmt.Println("Add these to your .env file:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", accessSecret)
	fmt.Printf("JWT_REFRESH_SECRET=%s\n", refreshSecret)
	fmt.Println()
	fmt.Println("⚠️  IMPORTANT: Keep these secrets safe and never commit them to version control!")
	fmt.Println("===========================================")
}
