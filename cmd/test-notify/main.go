package main

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/legodeal/legodealbot/internal/config"
	"github.com/legodeal/legodealbot/internal/matcher"
	"github.com/legodeal/legodealbot/internal/models"
	"github.com/legodeal/legodealbot/internal/notifications"
)

func main() {
	fmt.Println("🧪 legodealbot - Notification Test")
	fmt.Println("==================================")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := cfg.CheckChannels(); err != nil {
		log.Fatalf("❌ %v", err)
	}

	record := models.Record{
		ID:        "t3_test",
		Title:     "[Test] New treehouse set revealed",
		Body:      "The Treehouse is 25% off.\nAssembly Square restocked too.",
		URL:       "https://www.lego.com/",
		Permalink: "https://www.reddit.com/r/" + cfg.Subreddit + "/",
		CreatedAt: float64(time.Now().Unix()),
	}
	matches := matcher.FindMatches(record, cfg.SearchTerms)
	if matches.Empty() {
		matches = models.MatchResult{cfg.SearchTerms[0]}
	}

	email := notifications.BuildEmail(record, matches)
	sms := notifications.BuildSMS(record, matches)
	fmt.Printf("\n📧 Subject: %s\n", email.Subject)
	fmt.Printf("📱 SMS: %s\n\n", sms.Text)

	err = notifications.NewService(cfg).Notify(record, matches)
	switch {
	case err == nil:
		fmt.Println("✅ Both channels delivered")
	case notifications.IsFatal(err):
		log.Fatalf("❌ Configuration error: %v", err)
	default:
		log.Fatalf("⚠️  Delivery failed: %v", err)
	}
}
