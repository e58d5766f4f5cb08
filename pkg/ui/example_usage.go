// Package ui provides terminal UI components for the match harvester
// This file demonstrates example usage of the UI components
package ui

/*
Example usage of the UI components:

// Terminal colors and output
ui.PrintLogo()                                   // Print ASCII logo
ui.PrintInfo("Season", "Over Under")             // Cyan label, yellow value
ui.PrintSuccess("Harvest complete!")             // Green success message
ui.PrintError("Failed to fetch events", err)     // Red error message
ui.PrintWarning("Rate limit approaching")        // Yellow warning message
ui.PrintHighlight("[RATING]")                    // Magenta highlight message

// Request pacing
tracker := ui.NewRequestTracker(time.Second)
tracker.IncrementRequests()                      // Count an API request
tracker.PrintProgress()                          // Print pacing bar
tracker.PrintWindowStatus()                      // Print window status
if tracker.IsBudgetReached() {                   // Check hourly budget
    tracker.ResetWindow()                        // Reset window counter
}

// Harvest progress line, fed by the work tracker
display := ui.NewProgressDisplay("Over Under", false)
workTracker.OnUpdate(display.Observe)            // Redraw on every tick
display.StartBranch("event 51234")               // Branch lifecycle
display.CompleteBranch("event 51234", 112, 3)
display.Complete()                               // Final summary

// Notifications ("terminal", "desktop" or "none")
notifier := ui.NewNotifier("desktop")
notifier.SendNotification("Harvest Complete", "4210 matches rated")
notifier.SendError("Error", "Season discovery failed")
notifier.SendSuccess("Success", "Leaderboard written")

// Direct color usage
fmt.Printf("%s: %s\n", ui.Cyan("Team"), ui.Yellow("229V"))
fmt.Println(ui.Green("✓ Rated"))
fmt.Println(ui.Red("✗ Skipped"))
*/
