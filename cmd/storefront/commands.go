package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"text/tabwriter"

	"ecofloss-backend/checkout"
	"ecofloss-backend/gateway"
	"ecofloss-backend/models"
	"ecofloss-backend/utils"

	"github.com/spf13/pflag"
)

var errUsage = errors.New("usage")

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"products": {"products [--source relay|db]", runProducts},
	"counters": {"counters [--watch]", runCounters},
	"add":      {"add <product-id> [--qty N] [--bristle soft|medium] [--pack-size S] [--source relay|db]", runAdd},
	"remove":   {"remove <line-id>", runRemove},
	"update":   {"update <line-id> <quantity>", runUpdate},
	"clear":    {"clear", runClear},
	"toggle":   {"toggle", runToggle},
	"cart":     {"cart", runCart},
	"checkout": {"checkout --payment-method pm_... --email E --first-name F --last-name L [--address A --city C --zip Z --country US]", runCheckout},
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newFlagSet(name string) *pflag.FlagSet {
	return pflag.NewFlagSet(name, pflag.ContinueOnError)
}

// fetchProducts loads the catalog from the relay or the backing store.
func (a *app) fetchProducts(ctx context.Context, source string) ([]models.Product, error) {
	var fetch func(context.Context) ([]models.Product, error)
	switch source {
	case "relay", "":
		fetch = a.relay.FetchProducts
	case "db":
		store, err := a.backingStore()
		if err != nil {
			return nil, err
		}
		fetch = store.FetchActiveProducts
	default:
		return nil, fmt.Errorf("unknown product source %q", source)
	}

	snap, _ := gateway.NewResource(fetch).Load(ctx)
	if snap.Status == gateway.StatusError {
		return nil, errors.New(snap.Err)
	}
	return snap.Data, nil
}

func runProducts(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("products")
	source := fs.String("source", "relay", "catalog source: relay or db")
	if err := fs.Parse(args); err != nil {
		return err
	}

	products, err := a.fetchProducts(ctx, *source)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		fmt.Fprintln(a.out, "No products available.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tTREES\tPANDAS\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.1f\t%d\n",
			p.ID, p.Name, p.Category, utils.FormatUSD(float64(p.Price)/100),
			p.TreesPlantedPerPurchase, p.PandasSupportedPerPurchase, p.InventoryCount)
	}
	return tw.Flush()
}

func printCounters(a *app, c gateway.Counters) {
	fmt.Fprintf(a.out, "Trees planted:     %.0f\n", c.TotalTrees())
	fmt.Fprintf(a.out, "Pandas supported:  %.0f\n", c.TotalPandasSupported())
	fmt.Fprintf(a.out, "Orders:            %.0f\n", c.TotalOrders())
	fmt.Fprintf(a.out, "Revenue:           %s\n", utils.FormatUSD(c.TotalRevenue()))
}

func runCounters(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("counters")
	watch := fs.Bool("watch", false, "keep printing counters as they change")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := a.backingStore()
	if err != nil {
		return err
	}

	res := gateway.NewResource(store.FetchCounters)
	if !*watch {
		snap, _ := res.Load(ctx)
		if snap.Status == gateway.StatusError {
			return errors.New(snap.Err)
		}
		printCounters(a, snap.Data)
		return nil
	}

	sub, err := store.WatchCounters(ctx, func(c gateway.Counters, err error) {
		res.Set(c, err)
		snap := res.Snapshot()
		if snap.Status == gateway.StatusError {
			fmt.Fprintf(a.out, "Error: %s\n", snap.Err)
			return
		}
		printCounters(a, snap.Data)
		fmt.Fprintln(a.out)
	})
	if err != nil {
		return err
	}
	defer sub.Close()

	select {
	case <-ctx.Done():
	case <-sub.Done():
	}
	return nil
}

func runAdd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("add")
	qty := fs.Int("qty", 1, "quantity to add")
	bristle := fs.String("bristle", "", "bristle type: soft or medium")
	packSize := fs.String("pack-size", "", "pack size")
	source := fs.String("source", "relay", "catalog source: relay or db")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}
	productID := fs.Arg(0)

	products, err := a.fetchProducts(ctx, *source)
	if err != nil {
		return err
	}

	var product *models.Product
	for i := range products {
		if products[i].ID == productID {
			product = &products[i]
			break
		}
	}
	if product == nil {
		return fmt.Errorf("product %q not found", productID)
	}

	var opts *models.SelectedOptions
	if *bristle != "" || *packSize != "" {
		opts = &models.SelectedOptions{BristleType: models.BristleType(*bristle), PackSize: *packSize}
	}

	a.cart.AddItem(ctx, *product, *qty, opts)
	fmt.Fprintf(a.out, "Added %d x %s.\n", *qty, product.Name)
	return runCart(ctx, a, nil)
}

func runRemove(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	a.cart.RemoveItem(ctx, args[0])
	return runCart(ctx, a, nil)
}

func runUpdate(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", args[1])
	}
	a.cart.UpdateQuantity(ctx, args[0], qty)
	return runCart(ctx, a, nil)
}

func runClear(ctx context.Context, a *app, _ []string) error {
	a.cart.Clear(ctx)
	fmt.Fprintln(a.out, "Cart cleared.")
	return nil
}

func runToggle(ctx context.Context, a *app, _ []string) error {
	state := a.cart.Toggle(ctx)
	if state.IsOpen {
		fmt.Fprintln(a.out, "Cart panel open.")
	} else {
		fmt.Fprintln(a.out, "Cart panel closed.")
	}
	return nil
}

func runCart(_ context.Context, a *app, _ []string) error {
	state := a.cart.State()
	if len(state.Items) == 0 {
		fmt.Fprintln(a.out, "Your cart is empty.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tPRODUCT\tOPTIONS\tQTY\tTOTAL")
	for _, item := range state.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			item.ID, item.Product.Name, describeOptions(item.SelectedOptions), item.Quantity,
			utils.FormatUSD(float64(item.Product.Price*int64(item.Quantity))/100))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	donation := a.cart.ConservationImpact()
	fmt.Fprintf(a.out, "\nItems: %d  Subtotal: %s\n", a.cart.TotalItems(), utils.FormatUSD(a.cart.Subtotal()))
	fmt.Fprintf(a.out, "Impact: %d trees planted, %.1fg microplastics eliminated\n", a.cart.TotalTrees(), a.cart.TotalMicroplastics())
	fmt.Fprintf(a.out, "Conservation donation: %s (bamboo reforestation %s, panda conservation %s)\n",
		utils.FormatUSD(donation.TotalDonation),
		utils.FormatUSD(donation.BambooReforestation),
		utils.FormatUSD(donation.PandaConservation))
	return nil
}

func describeOptions(opts *models.SelectedOptions) string {
	if opts == nil {
		return "-"
	}
	switch {
	case opts.BristleType != "" && opts.PackSize != "":
		return fmt.Sprintf("%s bristles, %s", opts.BristleType, opts.PackSize)
	case opts.BristleType != "":
		return fmt.Sprintf("%s bristles", opts.BristleType)
	case opts.PackSize != "":
		return opts.PackSize
	default:
		return "-"
	}
}

func runCheckout(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("checkout")
	paymentMethod := fs.String("payment-method", "", "tokenized card payment method id, e.g. pm_card_visa")
	var customer models.CustomerInfo
	fs.StringVar(&customer.Email, "email", "", "email address")
	fs.StringVar(&customer.FirstName, "first-name", "", "first name")
	fs.StringVar(&customer.LastName, "last-name", "", "last name")
	fs.StringVar(&customer.Address, "address", "", "street address")
	fs.StringVar(&customer.City, "city", "", "city")
	fs.StringVar(&customer.ZipCode, "zip", "", "ZIP code")
	fs.StringVar(&customer.Country, "country", "US", "country code")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if a.cart.TotalItems() == 0 {
		fmt.Fprintln(a.out, "Your cart is empty.")
		return nil
	}
	if customer.Email == "" || customer.FirstName == "" || customer.LastName == "" {
		return errors.New("--email, --first-name and --last-name are required")
	}
	if a.confirmer == nil {
		return errors.New("STRIPE_PUBLISHABLE_KEY is not set")
	}

	var card *checkout.Card
	if *paymentMethod != "" {
		card = &checkout.Card{PaymentMethodID: *paymentMethod}
	}

	orch := checkout.New(a.cart, a.relay, a.confirmer, a.mailer, a.logger)
	defer orch.Wait()

	out, err := orch.Submit(ctx, card, customer)
	if err != nil {
		return err
	}

	switch out.State {
	case checkout.StateSuccess:
		fmt.Fprintf(a.out, "Order confirmed! Order ID: %s\n", out.OrderID)
		fmt.Fprintf(a.out, "Your purchase plants %d trees and supports %.1f pandas.\n",
			out.Order.TreesPlanted, out.Order.PandasSupported)
	case checkout.StateError:
		fmt.Fprintf(a.out, "Payment failed: %s\n", out.Message)
	default:
		if out.Message != "" {
			fmt.Fprintln(a.out, out.Message)
		} else {
			fmt.Fprintln(a.out, "No payment method provided; nothing was submitted.")
		}
	}
	return nil
}
