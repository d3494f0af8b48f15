package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"catalog_service/internal/clients"
	"catalog_service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const usage = `usage: catalogctl [-url URL] [-timeout D] <command> [args]

commands:
  add <name> <price> <quantity>   add or replace a product
  get <name>                      show one product
  list                            list products in display order
  purchase <name>                 take one unit out of stock
  discount <percent>              discount every price
  total                           total stock value
  out-of-stock                    names of products with no stock
  export [file]                   write the catalog as CSV on the server
  import [file]                   replace the catalog from CSV on the server
`

var errUsage = errors.New("invalid usage")

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, logger); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "catalogctl:", err)
		}
		os.Exit(exitCode(err))
	}
}

func defaultURL() string {
	if v := os.Getenv("CATALOG_URL"); v != "" {
		return v
	}
	return "http://localhost:8081"
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, logger *logrus.Logger) error {
	fs := flag.NewFlagSet("catalogctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	baseURL := fs.String("url", defaultURL(), "catalog service base URL")
	timeout := fs.Duration("timeout", 10*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	client := clients.NewCatalogHTTPClient(*baseURL, *timeout, logger)
	return dispatch(ctx, client, fs.Arg(0), fs.Args()[1:], stdout, stderr)
}

func dispatch(ctx context.Context, client clients.CatalogClient, cmd string, args []string, stdout, stderr io.Writer) error {
	need := func(n int) error {
		if len(args) != n {
			fmt.Fprintf(stderr, "%s takes %d argument(s)\n", cmd, n)
			return errUsage
		}
		return nil
	}

	switch cmd {
	case "add":
		if err := need(3); err != nil {
			return err
		}
		price, err := decimal.NewFromString(args[1])
		if err != nil {
			return domain.NewValidationError("invalid price %q", args[1])
		}
		quantity, err := strconv.Atoi(args[2])
		if err != nil {
			return domain.NewValidationError("invalid quantity %q", args[2])
		}
		p, err := client.AddProduct(ctx, args[0], price, quantity)
		if err != nil {
			return err
		}
		printProducts(stdout, []domain.Product{*p})

	case "get":
		if err := need(1); err != nil {
			return err
		}
		p, err := client.GetProduct(ctx, args[0])
		if err != nil {
			return err
		}
		printProducts(stdout, []domain.Product{*p})

	case "list":
		if err := need(0); err != nil {
			return err
		}
		products, err := client.ListProducts(ctx)
		if err != nil {
			return err
		}
		if len(products) == 0 {
			fmt.Fprintln(stdout, "No products found")
			return nil
		}
		printProducts(stdout, products)

	case "purchase":
		if err := need(1); err != nil {
			return err
		}
		p, err := client.Purchase(ctx, args[0])
		if err != nil {
			return err
		}
		printProducts(stdout, []domain.Product{*p})

	case "discount":
		if err := need(1); err != nil {
			return err
		}
		percent, err := decimal.NewFromString(args[0])
		if err != nil {
			return domain.NewValidationError("invalid percentage %q", args[0])
		}
		products, err := client.ApplyDiscount(ctx, percent)
		if err != nil {
			return err
		}
		printProducts(stdout, products)

	case "total":
		if err := need(0); err != nil {
			return err
		}
		total, err := client.TotalValue(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, total.StringFixed(2))

	case "out-of-stock":
		if err := need(0); err != nil {
			return err
		}
		names, err := client.OutOfStock(ctx)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintln(stdout, "All products are in stock.")
			return nil
		}
		for _, name := range names {
			fmt.Fprintln(stdout, name)
		}

	case "export":
		if len(args) > 1 {
			return need(1)
		}
		path, count, err := client.ExportCSV(ctx, optional(args))
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "exported %d products to %s\n", count, path)

	case "import":
		if len(args) > 1 {
			return need(1)
		}
		products, err := client.ImportCSV(ctx, optional(args))
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "imported %d products\n", len(products))

	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return errUsage
	}
	return nil
}

func optional(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func printProducts(w io.Writer, products []domain.Product) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPRICE\tQUANTITY")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", p.Name, p.Price.StringFixed(2), p.Quantity)
	}
	tw.Flush()
}

// exitCode is 2 for bad invocations and 1 otherwise.
func exitCode(err error) int {
	if errors.Is(err, errUsage) {
		return 2
	}
	return 1
}
