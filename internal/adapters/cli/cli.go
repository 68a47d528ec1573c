package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"inventory-orders/internal/app"
	"inventory-orders/internal/core"
)

// ErrUsage is returned for unknown subcommands and missing arguments.
var ErrUsage = errors.New("usage: app orders [status] | order <id> | stock | useradd <username> <email> <role>")

// Run executes a one-shot CLI command.
// args is os.Args[1:] and the first element is the subcommand name.
// useradd reads the new user's password from the first line of in.
func Run(ctx context.Context, svc app.ApplicationService, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return ErrUsage
	}

	switch args[0] {
	case "orders", "ls":
		filter := core.OrderFilter{Limit: 50}
		if len(args) > 1 {
			st := core.OrderStatus(args[1])
			filter.Status = &st
		}
		result, err := svc.ListOrders(ctx, filter)
		if err != nil {
			return fmt.Errorf("list orders: %w", err)
		}
		printOrders(out, result.Orders)

	case "order", "o":
		if len(args) < 2 {
			return ErrUsage
		}
		result, err := svc.GetOrder(ctx, args[1])
		if err != nil {
			return fmt.Errorf("get order: %w", err)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Order)

	case "stock":
		stones, err := svc.ListStones(ctx)
		if err != nil {
			return fmt.Errorf("list stones: %w", err)
		}
		papers, err := svc.ListPapers(ctx, nil)
		if err != nil {
			return fmt.Errorf("list papers: %w", err)
		}
		printStock(out, stones, papers)

	case "useradd":
		if len(args) < 4 {
			return ErrUsage
		}
		password, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read password: %w", err)
		}
		user, err := svc.CreateUser(ctx, app.CreateUserRequest{
			Username: args[1],
			Email:    args[2],
			Role:     core.Role(args[3]),
			Password: strings.TrimRight(password, "\r\n"),
		})
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		fmt.Fprintf(out, "Created %s user %s (%s)\n", user.Role, user.Username, user.ID)

	default:
		return fmt.Errorf("unknown command %q: %w", args[0], ErrUsage)
	}
	return nil
}

func printOrders(out io.Writer, orders []core.Order) {
	fmt.Fprintln(out, strings.Repeat("=", 96))
	fmt.Fprintf(out, "  %-36s %-8s %-10s %-16s %10s %12s\n", "ID", "TYPE", "STATUS", "CUSTOMER", "WEIGHT", "FINAL")
	fmt.Fprintln(out, strings.Repeat("-", 96))
	for _, o := range orders {
		fmt.Fprintf(out, "  %-36s %-8s %-10s %-16.16s %10s %12s\n",
			o.ID, o.Type, o.Status, o.CustomerName,
			o.CalculatedWeight.StringFixed(2), o.FinalAmount.StringFixed(2))
	}
	fmt.Fprintln(out, strings.Repeat("=", 96))
	fmt.Fprintf(out, "  %d order(s)\n", len(orders))
}

func printStock(out io.Writer, stones []core.Stone, papers []core.Paper) {
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintf(out, "  %-10s %-30s %15s\n", "NUMBER", "STONE", "QUANTITY")
	fmt.Fprintln(out, strings.Repeat("-", 62))
	for _, s := range stones {
		fmt.Fprintf(out, "  %-10s %-30s %15s\n", s.Number, s.Name, s.Quantity.String())
	}
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintf(out, "  %-10s %-30s %15s\n", "WIDTH", "TYPE", "QUANTITY")
	fmt.Fprintln(out, strings.Repeat("-", 62))
	for _, p := range papers {
		fmt.Fprintf(out, "  %-10s %-30s %15s\n", p.Width.String()+"\"", p.InventoryType, p.Quantity.String())
	}
	fmt.Fprintln(out, strings.Repeat("=", 62))
}
