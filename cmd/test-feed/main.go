package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/legodeal/legodealbot/internal/config"
	"github.com/legodeal/legodealbot/internal/matcher"
	"github.com/legodeal/legodealbot/internal/sources"
)

func main() {
	fmt.Println("🔍 legodealbot - Feed Connectivity Test")
	fmt.Println("=======================================")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	source, err := sources.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize feed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Printf("\n📡 Polling %s for r/%s...\n", source.Name(), cfg.Subreddit)
	fmt.Println(strings.Repeat("-", 40))

	records, err := source.Poll(ctx)
	if err != nil {
		log.Fatalf("❌ ERROR: %v", err)
	}

	fmt.Printf("✅ SUCCESS (%d submissions)\n\n", len(records))

	matched := 0
	for _, record := range records {
		matches := matcher.FindMatches(record, cfg.SearchTerms)
		if matches.Empty() {
			continue
		}
		matched++
		fmt.Printf("   🎯 %s\n", record.Title)
		fmt.Printf("      Terms: %s\n", strings.Join(matches, ", "))
		fmt.Printf("      Link:  %s\n", record.Permalink)
		fmt.Printf("      Posted: %s\n", record.CreatedTime().Format("2006-01-02 15:04"))
	}

	fmt.Printf("\n%d of %d submissions match %s\n", matched, len(records), strings.Join(cfg.SearchTerms, ", "))
	fmt.Println("\n💡 No notifications were sent and the progress marker was not touched.")
}
