package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/travelmate/flightproxy/internal/config"
	"github.com/travelmate/flightproxy/pkg/client"
	"github.com/travelmate/flightproxy/pkg/currency"
)

type offerSummary struct {
	ID                     string            `json:"id"`
	Itineraries            []json.RawMessage `json:"itineraries"`
	ValidatingAirlineCodes []string          `json:"validatingAirlineCodes"`
	Price                  struct {
		GrandTotal string `json:"grandTotal"`
		Currency   string `json:"currency"`
	} `json:"price"`
}

func main() {
	logrus.SetLevel(logrus.ErrorLevel)

	app := &cli.App{
		Name:  "travelmate",
		Usage: "query the TravelMate flight proxy",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "api",
				Usage: "base URL of the proxy API (API_BASE_URL or VITE_API_BASE_URL)",
				Value: defaultAPIBaseURL(".env"),
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "request timeout",
				Value: 30 * time.Second,
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "search flight offers",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "origin", Usage: "IATA code, e.g. WAW", Required: true},
					&cli.StringFlag{Name: "destination", Usage: "IATA code, e.g. BCN", Required: true},
					&cli.StringFlag{Name: "departure-date", Usage: "YYYY-MM-DD", Required: true},
					&cli.StringFlag{Name: "return-date", Usage: "YYYY-MM-DD, round trips only"},
					&cli.IntFlag{Name: "adults", Value: 1},
				},
				Action: search,
			},
			{
				Name:   "health",
				Usage:  "check that the proxy is up",
				Action: health,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// defaultAPIBaseURL reads the proxy URL the same way the server reads its
// configuration, falling back to the client default when that fails.
func defaultAPIBaseURL(envFile string) string {
	cfg, err := config.Load(envFile)
	if err != nil || cfg.APIBaseURL == "" {
		return client.DefaultBaseURL
	}
	return cfg.APIBaseURL
}

func newClient(c *cli.Context) *client.Client {
	return client.New(c.String("api"))
}

func contextWithTimeout(c *cli.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context, c.Duration("timeout"))
}

func search(c *cli.Context) error {
	ctx, cancel := contextWithTimeout(c)
	defer cancel()

	envelope := newClient(c).SearchFlights(ctx, client.SearchParams{
		Origin:        strings.ToUpper(c.String("origin")),
		Destination:   strings.ToUpper(c.String("destination")),
		DepartureDate: c.String("departure-date"),
		ReturnDate:    c.String("return-date"),
		Adults:        c.Int("adults"),
	})

	if !envelope.Success {
		printFailure(c.App.ErrWriter, envelope)
		return cli.Exit("", 1)
	}
	return printOffers(c.App.Writer, envelope.Data)
}

func health(c *cli.Context) error {
	ctx, cancel := contextWithTimeout(c)
	defer cancel()

	if !newClient(c).CheckAPIHealth(ctx) {
		return cli.Exit("API is not healthy", 1)
	}
	fmt.Fprintln(c.App.Writer, "OK")
	return nil
}

func printOffers(w io.Writer, data json.RawMessage) error {
	var offers []offerSummary
	if err := json.Unmarshal(data, &offers); err != nil {
		return fmt.Errorf("unexpected offer format: %w", err)
	}
	if len(offers) == 0 {
		fmt.Fprintln(w, "No offers found")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tAIRLINES\tITINERARIES\tPRICE")
	for _, o := range offers {
		price := o.Price.GrandTotal + " " + o.Price.Currency
		if amount, err := currency.ParseAmount(o.Price.GrandTotal); err == nil {
			price = currency.Format(amount, o.Price.Currency)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", o.ID, strings.Join(o.ValidatingAirlineCodes, ","), len(o.Itineraries), price)
	}
	return tw.Flush()
}

func printFailure(w io.Writer, envelope client.Envelope) {
	for _, msg := range envelope.Errors {
		fmt.Fprintln(w, msg)
	}
	if msg, ok := envelope.ErrorMessage(); ok {
		fmt.Fprintln(w, msg)
		return
	}
	if envelope.Error != nil {
		body, err := json.MarshalIndent(envelope.Error, "", "  ")
		if err != nil {
			fmt.Fprintln(w, envelope.Error)
			return
		}
		fmt.Fprintln(w, string(body))
	}
}
