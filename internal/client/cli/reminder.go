package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/georemind/georemind/internal/client/models"
	"github.com/georemind/georemind/internal/client/reminders"
)

// Add collects reminder fields interactively and stores the reminder. When a
// session is active, the record is also pushed to the backend right away.
func (a *App) Add(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Enter title", os.Stdout)
	if err != nil {
		return err
	}
	if title == "" {
		fmt.Println("title is required")
		return nil
	}

	content, err := getSimpleText(a.reader, "Enter content", os.Stdout)
	if err != nil {
		return err
	}
	lat, err := GetFloat(a.reader, "Enter latitude", 0, os.Stdout)
	if err != nil {
		return err
	}
	lon, err := GetFloat(a.reader, "Enter longitude", 0, os.Stdout)
	if err != nil {
		return err
	}
	radius, err := GetFloat(a.reader, "Enter radius (meters)", 100, os.Stdout)
	if err != nil {
		return err
	}

	created, err := a.reminderService.Create(ctx, models.Reminder{
		Title:     title,
		Content:   content,
		Latitude:  lat,
		Longitude: lon,
		Radius:    radius,
	})
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Println(formatReminder(created))
	return nil
}

// Edit resolves the identifier the user typed, prompts for each field and
// applies only the ones that were not left empty.
func (a *App) Edit(ctx context.Context, arg string) error {
	id, err := a.askIdentifier(arg, "Enter reminder id to edit")
	if err != nil {
		return err
	}

	var patch models.Patch

	if v, err := getSimpleText(a.reader, "New title (empty to keep)", os.Stdout); err != nil {
		return err
	} else if v != "" {
		patch.Title = &v
	}
	if v, err := getSimpleText(a.reader, "New content (empty to keep)", os.Stdout); err != nil {
		return err
	} else if v != "" {
		patch.Content = &v
	}

	updated, err := a.reminderService.Update(ctx, id, patch)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Println(formatReminder(updated))
	return nil
}

// Delete removes a reminder locally and best-effort on the backend.
func (a *App) Delete(ctx context.Context, arg string) error {
	id, err := a.askIdentifier(arg, "Enter reminder id to delete")
	if err != nil {
		return err
	}

	if _, err := a.reminderService.Delete(ctx, id); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Println("Deleted")
	return nil
}

// List prints the user's reminders, syncing first when signed in.
func (a *App) List(ctx context.Context) error {
	rs, err := a.reminderService.ListAll(ctx)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	if len(rs) == 0 {
		fmt.Println("No reminders")
		return nil
	}
	for _, r := range rs {
		fmt.Println(formatReminder(r))
	}
	return nil
}

// Sync runs one sync pass and reports the outcome.
func (a *App) Sync(ctx context.Context) error {
	res := a.reminderService.Sync(ctx)
	switch {
	case res.Skipped:
		fmt.Println("Not logged in, nothing to sync")
	case res.Err != nil:
		fmt.Printf("Sync failed, local data kept: %s\n", res.Err.Error())
	default:
		fmt.Printf("Synced %d reminders (server time %s)\n", len(res.Reminders), res.ServerTime)
	}
	return res.Err
}

// askIdentifier parses arg as a reminder identifier, prompting when the
// command was typed without one.
func (a *App) askIdentifier(arg, prompt string) (reminders.Identifier, error) {
	if arg == "" {
		var err error
		arg, err = getSimpleText(a.reader, prompt, os.Stdout)
		if err != nil {
			return reminders.Identifier{}, err
		}
	}
	return reminders.ParseIdentifier(arg), nil
}

func formatReminder(r models.Reminder) string {
	state := "local"
	if r.Synced {
		state = fmt.Sprintf("synced #%d", r.BackendID())
	}
	return fmt.Sprintf("[%s] %s @ (%.5f, %.5f) r=%.0fm: %s (%s)",
		r.LocalID, r.Title, r.Latitude, r.Longitude, r.Radius, r.Content, state)
}
