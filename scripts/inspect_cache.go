package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/isaacrego/plex-poster-display/config"
	"github.com/isaacrego/plex-poster-display/models"
	"github.com/isaacrego/plex-poster-display/services/cache"
)

// Prints what the poster cache holds and optionally rewinds the idle cursor so
// the display starts again from the first poster.
func main() {
	configFile := flag.String("config", "", "runtime options file (poster.yaml)")
	resetIdle := flag.Bool("reset-idle", false, "reset the idle rotation cursor")
	list := flag.Bool("list", false, "print every cached item")
	flag.Parse()

	rt, err := config.LoadRuntime(*configFile)
	if err != nil {
		log.Fatalf("Failed to load runtime options: %v", err)
	}

	svc, err := cache.NewService(rt.CachePath())
	if err != nil {
		log.Fatalf("Failed to open cache: %v", err)
	}

	sum := svc.Summary()
	fmt.Printf("cache:        %s\n", svc.Path())
	if sum.NeverLoaded {
		fmt.Println("last updated: never")
	} else {
		fmt.Printf("last updated: %s (%s ago)\n", sum.LastUpdated.Format(time.RFC3339), time.Since(sum.LastUpdated).Round(time.Second))
	}
	fmt.Printf("items:        %d\n", sum.ItemCount)
	fmt.Printf("idle cursor:  %d\n", sum.Idle.Index)

	if *list {
		for i, item := range svc.Items() {
			marker := " "
			if i == sum.Idle.Index {
				marker = "*"
			}
			fmt.Printf("%s %4d  %-6s %-8s %s\n", marker, i, item.Type, item.EffectiveContentRating(), item.Title)
		}
	}

	if *resetIdle {
		if err := svc.SetIdleState(models.IdleState{Index: -1}); err != nil {
			log.Fatalf("Failed to reset idle cursor: %v", err)
		}
		fmt.Println("idle cursor reset")
	}
}
