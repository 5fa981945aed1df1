// Command mockapi runs a local stand-in for the campus-info backend so the
// client can be developed and demoed offline.
package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"campusbuzz/internal/mockapi"
)

func main() {
	_ = godotenv.Load()

	port := os.Getenv("MOCKAPI_PORT")
	if port == "" {
		port = "8375"
	}
	secret := os.Getenv("MOCKAPI_JWT_SECRET")
	if secret == "" {
		secret = "mockapi-dev-secret"
	}

	app := fiber.New(fiber.Config{
		AppName:   "campus-info mock API",
		BodyLimit: 10 * 1024 * 1024,
	})
	mockapi.NewServer(secret).Register(app)

	log.Printf("mock campus-info API listening on :%s", port)
	log.Printf("seeded accounts: broadcaster@campus.edu / student@campus.edu (password %q, OTP %s)", "password", mockapi.DevOTP)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
