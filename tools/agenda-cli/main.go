// agenda-cli is a terminal client for the scheduler gateway: book a slot,
// print a week, search bookings, or cancel one.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/agendago/agendago/client/api"
	"github.com/agendago/agendago/schedule"
)

func main() {
	baseURL := flag.String("base-url", getenv("BASE_URL", "http://localhost:8080/api"), "gateway base url")
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	client, err := api.New(*baseURL)
	if err != nil {
		fatal(err.Error())
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch flag.Arg(0) {
	case "available":
		err = runAvailable(ctx, client)
	case "book":
		err = runBook(ctx, client, flag.Args()[1:])
	case "week":
		err = runWeek(ctx, client, flag.Args()[1:])
	case "search":
		err = runSearch(ctx, client, flag.Args()[1:])
	case "cancel":
		err = runCancel(ctx, client, flag.Args()[1:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fatal(err.Error())
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: agenda-cli [-base-url URL] <command>

commands:
  available                                 list open slots for the next two weeks
  book -date D -time T -name N -email E -cpf C   book a slot
  week [-date D]                            print the weekly grid
  search -q QUERY                           search bookings by name, email, or cpf
  cancel -id ID                             cancel a booking`)
}

func runAvailable(ctx context.Context, client *api.Client) error {
	days, err := client.Available(ctx)
	if err != nil {
		return err
	}
	for _, day := range days {
		if len(day.Slots) == 0 {
			continue
		}
		fmt.Printf("%s  %s\n", day.Date, strings.Join(day.Slots, " "))
	}
	return nil
}

func runBook(ctx context.Context, client *api.Client, args []string) error {
	fs := flag.NewFlagSet("book", flag.ExitOnError)
	date := fs.String("date", "", "appointment date (YYYY-MM-DD)")
	timeOfDay := fs.String("time", "", "slot time (HH:MM)")
	name := fs.String("name", "", "customer name")
	email := fs.String("email", "", "customer email")
	cpf := fs.String("cpf", "", "customer cpf")
	_ = fs.Parse(args)

	appt, err := client.Schedule(ctx, api.ScheduleRequest{
		Date:  *date,
		Time:  *timeOfDay,
		Name:  *name,
		Email: *email,
		CPF:   *cpf,
	})
	if err != nil {
		if errors.Is(err, api.ErrSlotTaken) {
			return fmt.Errorf("%s %s is already booked, pick another slot", *date, *timeOfDay)
		}
		return err
	}
	fmt.Printf("booked %s %s for %s (id %s)\n", appt.Date, appt.Time, appt.Name, appt.ID)
	return nil
}

func runWeek(ctx context.Context, client *api.Client, args []string) error {
	fs := flag.NewFlagSet("week", flag.ExitOnError)
	date := fs.String("date", time.Now().Format(schedule.DateLayout), "any date inside the week")
	_ = fs.Parse(args)

	days, err := client.Week(ctx, *date)
	if err != nil {
		return err
	}
	for _, day := range days {
		fmt.Println(day.Date)
		for _, slot := range day.Slots {
			marker := " "
			switch {
			case !slot.IsAvailable:
				marker = "x"
			case slot.IsPast:
				marker = "-"
			}
			fmt.Printf("  %s [%s]\n", slot.Time, marker)
		}
	}
	return nil
}

func runSearch(ctx context.Context, client *api.Client, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	query := fs.String("q", "", "name, email, or cpf fragment")
	_ = fs.Parse(args)

	if strings.TrimSpace(*query) == "" {
		return errors.New("search query is required")
	}
	appts, err := client.Search(ctx, *query)
	if err != nil {
		return err
	}
	if len(appts) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, appt := range appts {
		fmt.Printf("%s  %s %s  %s  %s\n", appt.ID, appt.Date, appt.Time, appt.Name, appt.Email)
	}
	return nil
}

func runCancel(ctx context.Context, client *api.Client, args []string) error {
	fs := flag.NewFlagSet("cancel", flag.ExitOnError)
	id := fs.String("id", "", "appointment id")
	_ = fs.Parse(args)

	if strings.TrimSpace(*id) == "" {
		return errors.New("appointment id is required")
	}
	if err := client.Cancel(ctx, *id); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return fmt.Errorf("appointment %s not found", *id)
		}
		return err
	}
	fmt.Printf("cancelled %s\n", *id)
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, "error: "+msg)
	os.Exit(1)
}
