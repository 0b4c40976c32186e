package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nvoloshin/storefront/internal/storefront/app"
	"github.com/nvoloshin/storefront/internal/storefront/dispatch"
	"github.com/nvoloshin/storefront/internal/storefront/infra/rest"
	"github.com/nvoloshin/storefront/internal/storefront/ui"
	"github.com/nvoloshin/storefront/pkg/config"
	"github.com/nvoloshin/storefront/pkg/httpjson"
	"github.com/nvoloshin/storefront/pkg/logger"
	"github.com/nvoloshin/storefront/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service:   "storefront",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	root := context.Background()
	ctx, cancel := shutdown.WithSignals(root)
	defer cancel()

	jar, err := cookiejar.New(nil)
	if err != nil {
		log.Error("cookie jar", slog.Any("err", err))
		os.Exit(1)
	}
	if err := seedCookies(jar, cfg.APIBaseURL, cfg.Cookies); err != nil {
		log.Error("seed cookies", slog.Any("err", err))
		os.Exit(1)
	}

	client, err := httpjson.NewClient(httpjson.Options{
		BaseURL:    cfg.APIBaseURL,
		HTTPClient: &http.Client{Jar: jar},
		CSRFCookie: cfg.CSRFCookie,
		Timeout:    cfg.RequestTimeout,
		Logger:     log,
	})
	if err != nil {
		log.Error("api client", slog.Any("err", err))
		os.Exit(1)
	}

	orders := rest.NewOrderRepo(client)
	catalog := rest.NewCatalogRepo(client)

	page := ui.NewConsolePage(os.Stdout, client.Origin())
	sched := ui.TimerScheduler{}
	notifier := ui.NewToastNotifier(sched, page)
	ctrl := app.NewCartController(orders, catalog, page, notifier, sched, log)

	// Navigation leaves the page; a reload re-renders everything from the
	// server, which is how the empty-cart reset works.
	load := func(ctx context.Context) {
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			ctrl.LoadCatalog(ctx)
			return nil
		})
		g.Go(func() error {
			order, err := orders.ResolveCurrent(ctx)
			if err != nil {
				log.Debug("initial cart fetch failed", slog.Any("err", err))
				return nil
			}
			page.SetCartRows(order.Items)
			page.SetCartCount(order.ItemCount())
			return nil
		})
		_ = g.Wait()
	}
	page.OnNavigate = func(string) { cancel() }
	page.OnReload = func() { load(ctx) }

	table := dispatch.NewTable(log)
	table.Register(dispatch.KindAddToCart, func(ctx context.Context, act dispatch.Action) {
		ctrl.AddToCart(ctx, act.ProductID, act.Control)
	})
	table.Register(dispatch.KindRemoveItem, func(ctx context.Context, act dispatch.Action) {
		ctrl.RemoveItem(ctx, act.ItemID, act.Control)
	})
	table.Register(dispatch.KindCheckout, func(ctx context.Context, act dispatch.Action) {
		ctrl.Checkout(ctx, act.Control)
	})
	table.Register(dispatch.KindRefreshCount, func(ctx context.Context, act dispatch.Action) {
		ctrl.RefreshCount(ctx)
	})

	load(ctx)
	runInputLoop(ctx, table, page)
	log.Info("bye")
}

// runInputLoop is the event loop stand-in: each input line becomes an
// action dispatched on its own goroutine, so a slow request never blocks
// further interaction. A busy control swallows its own events, the same
// way a disabled button stops clicking.
func runInputLoop(ctx context.Context, table *dispatch.Table, page *ui.ConsolePage) {
	var wg sync.WaitGroup
	defer wg.Wait()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			act, quit := parseAction(line, page)
			if quit {
				return
			}
			if act == nil {
				continue
			}
			if ctl, ok := act.Control.(*ui.Control); ok && ctl != nil && ctl.Busy() {
				continue
			}
			wg.Add(1)
			go func(act dispatch.Action) {
				defer wg.Done()
				table.Dispatch(ctx, act)
			}(*act)
		}
	}
}

func parseAction(line string, page *ui.ConsolePage) (act *dispatch.Action, quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, false
	}

	switch fields[0] {
	case "add":
		if len(fields) < 2 {
			fmt.Println("usage: add <product-id>")
			return nil, false
		}
		return &dispatch.Action{
			Kind:      dispatch.KindAddToCart,
			ProductID: fields[1],
			Control:   page.ControlFor("add:"+fields[1], "Add to Cart"),
		}, false
	case "remove":
		if len(fields) < 2 {
			fmt.Println("usage: remove <item-id>")
			return nil, false
		}
		return &dispatch.Action{
			Kind:    dispatch.KindRemoveItem,
			ItemID:  fields[1],
			Control: page.ControlFor("remove:"+fields[1], "Remove"),
		}, false
	case "checkout":
		return &dispatch.Action{
			Kind:    dispatch.KindCheckout,
			Control: page.ControlFor("checkout", "Checkout"),
		}, false
	case "refresh":
		return &dispatch.Action{Kind: dispatch.KindRefreshCount}, false
	case "cart":
		for _, id := range page.CartRows() {
			fmt.Printf("item %s\n", id)
		}
		return nil, false
	case "quit", "exit":
		return nil, true
	default:
		fmt.Println("commands: add <product-id> | remove <item-id> | checkout | refresh | cart | quit")
		return nil, false
	}
}

// seedCookies loads the configured session cookies into the jar so the
// first request already carries them.
func seedCookies(jar http.CookieJar, baseURL, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("parse base URL: %w", err)
	}

	var cookies []*http.Cookie
	for _, pair := range strings.Split(raw, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || name == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: name, Value: value, Path: "/"})
	}
	jar.SetCookies(u, cookies)
	return nil
}
