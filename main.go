package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ovenside/pizza-storefront/internal/admin"
	"github.com/ovenside/pizza-storefront/internal/cart"
	"github.com/ovenside/pizza-storefront/internal/catalog"
	"github.com/ovenside/pizza-storefront/internal/checkout"
	"github.com/ovenside/pizza-storefront/internal/client"
	"github.com/ovenside/pizza-storefront/internal/metrics"
	"github.com/ovenside/pizza-storefront/internal/mockapi"
	"github.com/ovenside/pizza-storefront/internal/models"
	"github.com/ovenside/pizza-storefront/internal/session"
	"github.com/ovenside/pizza-storefront/pkg/config"
	pkgerrors "github.com/ovenside/pizza-storefront/pkg/errors"
	"github.com/ovenside/pizza-storefront/pkg/logger"
)

func main() {
	mock := flag.Bool("mock", false, "run against an in-process mock backend")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: "pizza-storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})
	ctx := context.Background()

	// Initialize OpenTelemetry metrics when an exporter is configured
	appMetrics := metrics.NewNoop()
	if cfg.OTEL.Enabled {
		m, meterProvider, err := metrics.InitMetrics(ctx, cfg)
		if err != nil {
			log.Error(ctx, "failed to initialize metrics", err)
			os.Exit(1)
		}
		appMetrics = m
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := meterProvider.Shutdown(shutdownCtx); err != nil {
				log.Error(shutdownCtx, "error shutting down meter provider", err)
			}
		}()
	}

	baseURL := cfg.API.BaseURL

	// Optionally serve the mock backend from this process
	if *mock {
		mockServer := mockapi.NewServer(log)
		server := &http.Server{
			Addr:         cfg.Mock.Addr,
			Handler:      mockServer.Handler(),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error(ctx, "mock backend failed", err)
				os.Exit(1)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error(shutdownCtx, "mock backend shutdown", err)
			}
		}()
		baseURL = "http://" + cfg.Mock.Addr
		fmt.Printf("Mock backend on %s (admin: %s / %s)\n", baseURL, mockapi.AdminEmail, mockapi.AdminPassword)
	}

	// Wire the stores
	api := client.New(baseURL, cfg.API.Timeout, appMetrics, log)

	tokenPath, err := cfg.ResolveTokenPath()
	if err != nil {
		log.Error(ctx, "resolving token path", err)
		os.Exit(1)
	}
	sess := session.NewStore(api, session.NewFileStore(tokenPath), appMetrics, log)
	api.SetTokenProvider(sess)
	api.SetUnauthorizedHandler(sess.Invalidate)

	profile := session.NewProfileCache(sess, api, appMetrics)
	basket := cart.New(appMetrics)
	loader := catalog.NewLoader(api)
	orders := checkout.New(basket, sess, api, appMetrics, log)
	backoffice := admin.NewManager(api, sess)

	app := &cli{
		ctx:        ctx,
		api:        api,
		session:    sess,
		profile:    profile,
		cart:       basket,
		catalog:    loader,
		checkout:   orders,
		backoffice: backoffice,
	}
	app.run()
}

// cli is the interactive storefront shell.
type cli struct {
	ctx        context.Context
	api        *client.Client
	session    *session.Store
	profile    *session.ProfileCache
	cart       *cart.Cart
	catalog    *catalog.Loader
	checkout   *checkout.Orchestrator
	backoffice *admin.Manager

	// menu is the last fetched catalog page, for add-by-id.
	menu []models.Pizza
}

func (c *cli) run() {
	fmt.Println("Pizza storefront. Type 'help' for commands.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return
		}
		c.dispatch(fields[0], fields[1:])
	}
}

func (c *cli) dispatch(cmd string, args []string) {
	var err error
	switch cmd {
	case "help":
		c.printHelp()
	case "menu":
		err = c.showMenu()
	case "add":
		err = c.addToCart(args)
	case "cart":
		c.showCart()
	case "qty":
		err = c.setQuantity(args)
	case "remove":
		err = c.removeFromCart(args)
	case "empty":
		c.cart.Clear()
		fmt.Println("Cart emptied.")
	case "checkout":
		err = c.doCheckout()
	case "login":
		err = c.login(args)
	case "register":
		err = c.register(args)
	case "logout":
		c.session.Logout(c.ctx)
		fmt.Println("Logged out.")
	case "whoami":
		err = c.whoami()
	case "orders":
		err = c.showOrders()
	case "admin":
		err = c.adminCommand(args)
	default:
		fmt.Printf("Unknown command %q. Type 'help'.\n", cmd)
	}
	if err != nil {
		printError(err)
	}
}

func (c *cli) printHelp() {
	fmt.Print(`Commands:
  menu                         show the catalog
  add <id> [qty]               add a pizza to the cart
  cart                         show cart and order summary
  qty <id> <n>                 change a line's quantity (0 removes it)
  remove <id>                  remove a line
  empty                        empty the cart
  checkout                     place the order
  login <email> <password>     sign in
  register <email> <password> <full name>
  logout                       sign out
  whoami                       show the current profile
  orders                       show order history
  admin users|orders           back-office listings
  admin status <id> <status>   transition an order
  admin addpizza <name> <price> [description]
  admin editpizza <id> <name> <price> [description]
  admin delpizza <id>          remove a pizza
  quit
`)
}

func (c *cli) showMenu() error {
	pizzas, err := c.catalog.List(c.ctx, 0, catalog.DefaultPageSize)
	if err != nil {
		return err
	}
	c.menu = pizzas
	for _, p := range pizzas {
		fmt.Printf("%3d  %-20s %6.2f €  %s\n", p.ID, p.Name, p.Price, p.Description)
	}
	return nil
}

func (c *cli) addToCart(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: add <id> [qty]")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid pizza id %q", args[0])
	}
	qty := 1
	if len(args) > 1 {
		if qty, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
	}

	if c.menu == nil {
		pizzas, err := c.catalog.List(c.ctx, 0, catalog.DefaultPageSize)
		if err != nil {
			return err
		}
		c.menu = pizzas
	}
	pizza, found := catalog.Find(c.menu, id)
	if !found {
		return fmt.Errorf("no pizza with id %d on the menu", id)
	}

	c.cart.Add(cart.ItemFromPizza(pizza), qty)
	fmt.Printf("Added %d × %s.\n", qty, pizza.Name)
	return nil
}

func (c *cli) showCart() {
	lines := c.cart.Lines()
	if len(lines) == 0 {
		fmt.Println("Your cart is empty.")
		return
	}
	for _, line := range lines {
		fmt.Printf("%3d  %-20s %2d × %6s €  = %7s €\n",
			line.PizzaID, line.Name, line.Quantity,
			line.UnitPrice.StringFixed(2), line.Total().StringFixed(2))
	}
	summary := checkout.Quote(c.cart)
	fmt.Printf("     Subtotal %7s €\n", summary.Subtotal.StringFixed(2))
	fmt.Printf("     TVA      %7s €\n", summary.Tax.StringFixed(2))
	fmt.Printf("     Delivery %7s €\n", summary.DeliveryFee.StringFixed(2))
	fmt.Printf("     Total    %7s €  (%d items)\n", summary.Total.StringFixed(2), c.cart.ItemCount())
}

func (c *cli) setQuantity(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: qty <id> <n>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid pizza id %q", args[0])
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", args[1])
	}
	c.cart.SetQuantity(id, n)
	return nil
}

func (c *cli) removeFromCart(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: remove <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid pizza id %q", args[0])
	}
	c.cart.Remove(id)
	return nil
}

func (c *cli) doCheckout() error {
	order, err := c.checkout.Submit(c.ctx)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeAuthRequired) {
			fmt.Println("Please log in before checking out.")
			return nil
		}
		return err
	}
	fmt.Printf("Order #%d placed. Total %.2f €.\n", order.ID, order.TotalPrice)
	return nil
}

func (c *cli) login(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: login <email> <password>")
	}
	if err := c.session.Login(c.ctx, models.Credentials{Email: args[0], Password: args[1]}); err != nil {
		return err
	}
	fmt.Println("Logged in.")
	return nil
}

func (c *cli) register(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: register <email> <password> <full name>")
	}
	reg := models.Registration{
		Email:    args[0],
		Password: args[1],
		FullName: strings.Join(args[2:], " "),
	}
	if err := c.session.Register(c.ctx, reg); err != nil {
		return err
	}
	fmt.Println("Account created, you are logged in.")
	return nil
}

func (c *cli) whoami() error {
	profile, err := c.profile.Get(c.ctx)
	if err != nil {
		return err
	}
	role := "customer"
	if profile.IsAdmin {
		role = "admin"
	}
	fmt.Printf("%s <%s> (%s)\n", profile.FullName, profile.Email, role)
	return nil
}

func (c *cli) showOrders() error {
	orders, err := c.api.ListOrders(c.ctx, 0, 100)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("No orders yet.")
		return nil
	}
	for _, o := range orders {
		fmt.Printf("#%-4d %-10s %7.2f €  %s\n",
			o.ID, o.Status, o.TotalPrice, o.OrderDate.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func (c *cli) adminCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: admin users|orders|status|addpizza|editpizza|delpizza")
	}
	switch args[0] {
	case "users":
		users, err := c.backoffice.ListUsers(c.ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			role := ""
			if u.IsAdmin {
				role = " [admin]"
			}
			fmt.Printf("%3d  %-25s %s%s\n", u.ID, u.Email, u.FullName, role)
		}
		return nil
	case "orders":
		orders, err := c.backoffice.ListOrders(c.ctx, 0, 100)
		if err != nil {
			return err
		}
		for _, o := range orders {
			fmt.Printf("#%-4d user %-3d %-10s %7.2f €\n", o.ID, o.UserID, o.Status, o.TotalPrice)
		}
		return nil
	case "status":
		if len(args) != 3 {
			return fmt.Errorf("usage: admin status <id> <status>")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid order id %q", args[1])
		}
		order, err := c.backoffice.UpdateOrderStatus(c.ctx, id, args[2])
		if err != nil {
			return err
		}
		fmt.Printf("Order #%d is now %s.\n", order.ID, order.Status)
		return nil
	case "addpizza":
		if len(args) < 3 {
			return fmt.Errorf("usage: admin addpizza <name> <price> [description]")
		}
		price, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid price %q", args[2])
		}
		pizza, err := c.backoffice.CreatePizza(c.ctx, models.PizzaInput{
			Name:        args[1],
			Price:       price,
			Description: strings.Join(args[3:], " "),
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created pizza #%d %s.\n", pizza.ID, pizza.Name)
		return nil
	case "editpizza":
		if len(args) < 4 {
			return fmt.Errorf("usage: admin editpizza <id> <name> <price> [description]")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid pizza id %q", args[1])
		}
		price, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			return fmt.Errorf("invalid price %q", args[3])
		}
		pizza, err := c.backoffice.UpdatePizza(c.ctx, id, models.PizzaInput{
			Name:        args[2],
			Price:       price,
			Description: strings.Join(args[4:], " "),
		})
		if err != nil {
			return err
		}
		fmt.Printf("Updated pizza #%d.\n", pizza.ID)
		return nil
	case "delpizza":
		if len(args) != 2 {
			return fmt.Errorf("usage: admin delpizza <id>")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid pizza id %q", args[1])
		}
		if err := c.backoffice.DeletePizza(c.ctx, id); err != nil {
			return err
		}
		fmt.Printf("Deleted pizza #%d.\n", id)
		return nil
	default:
		return fmt.Errorf("unknown admin command %q", args[0])
	}
}

// printError shows a typed error's user-facing message, or the raw error.
func printError(err error) {
	var typed *pkgerrors.Error
	if errors.As(err, &typed) {
		fmt.Println(typed.Message())
		return
	}
	fmt.Println(err)
}
