package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"flights_booking_frontend/internal/models"
	"flights_booking_frontend/internal/services"
)

type options struct {
	baseURL    string
	users      int
	from       string
	to         string
	date       string
	returnDate string
	passengers int
	class      string
}

func main() {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "flow-check",
		Short: "Booking flow checker",
		Long:  `Walks the booking flow of a running booking frontend and prints what happened at every step`,
	}
	rootCmd.PersistentFlags().StringVar(&opts.from, "from", "CDG", "origin airport code")
	rootCmd.PersistentFlags().StringVar(&opts.to, "to", "JFK", "destination airport code")
	rootCmd.PersistentFlags().StringVar(&opts.date, "date", time.Now().AddDate(0, 0, 30).Format(models.DateLayout), "departure date")
	rootCmd.PersistentFlags().StringVar(&opts.returnDate, "return-date", "", "return date, empty for a one-way trip")
	rootCmd.PersistentFlags().IntVar(&opts.passengers, "passengers", 1, "number of passengers")
	rootCmd.PersistentFlags().StringVar(&opts.class, "class", string(models.CabinEconomy), "travel class")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Book concurrently from several sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlows(cmd.Context(), opts)
		},
	}
	runCmd.Flags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "booking frontend address")
	runCmd.Flags().IntVar(&opts.users, "users", 5, "concurrent sessions")

	offersCmd := &cobra.Command{
		Use:   "offers",
		Short: "Print the generated offers of a search",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printOffers(cmd.Context(), opts)
		},
	}

	pickCmd := &cobra.Command{
		Use:   "pick",
		Short: "Pick airports interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			return pickAirports(cmd.Context(), opts)
		},
	}
	pickCmd.Flags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "booking frontend address")

	rootCmd.AddCommand(runCmd, offersCmd, pickCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// criteria builds the search of the command line options
func (o *options) criteria() (models.SearchCriteria, error) {
	catalog := services.NewAirportCatalog()
	origin, ok := catalog.Lookup(o.from)
	if !ok {
		return models.SearchCriteria{}, fmt.Errorf("unknown airport %q", o.from)
	}
	destination, ok := catalog.Lookup(o.to)
	if !ok {
		return models.SearchCriteria{}, fmt.Errorf("unknown airport %q", o.to)
	}

	c := models.SearchCriteria{
		TripType:      models.TripTypeOneWay,
		Origin:        &origin,
		Destination:   &destination,
		DepartureDate: o.date,
		ReturnDate:    o.returnDate,
		Passengers:    o.passengers,
		TravelClass:   models.CabinClass(o.class),
	}
	if o.returnDate != "" {
		c.TripType = models.TripTypeRoundTrip
	}
	if err := c.Validate(); err != nil {
		return models.SearchCriteria{}, err
	}
	return c, nil
}
