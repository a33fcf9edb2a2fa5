package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"checkout-service/config"
	"checkout-service/internal/catalog"
	"checkout-service/internal/checkout"
	"checkout-service/internal/store"
	"checkout-service/internal/util"
	"checkout-service/internal/view"

	"go.uber.org/zap"
)

const usage = `commands:
  + <id>         increase quantity
  - <id>         decrease quantity
  set <id> <n>   set quantity
  show           redraw
  quit`

func main() {
	cfg := config.Load()

	if err := util.InitLogger("production"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()
	logger := util.GetLogger()

	var source catalog.Source = catalog.NewStaticSource(catalog.DefaultProducts(), catalog.WithLatency(cfg.Catalog.MockLatency))
	if cfg.Catalog.Source == config.CatalogSourcePostgres {
		db, err := store.NewStore(cfg.Database.URL)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		source = db
	}

	s := checkout.NewStore()
	defer s.Close()

	live := view.NewLive(s, os.Stdout)
	defer live.Stop()

	s.Load(context.Background(), catalog.NewInstrumented(source, cfg.Catalog.Source, cfg.Catalog.FetchTimeout))
	<-s.Settled()

	fmt.Println(usage)
	scanner := bufio.NewScanner(os.Stdin)
	for fmt.Print("> "); scanner.Scan(); fmt.Print("> ") {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "q", "exit":
			return
		case "show":
			if err := live.Page().RenderText(os.Stdout); err != nil {
				logger.Error("Failed to render", zap.Error(err))
			}
		case "+", "-":
			row, ok := rowArg(live.Page(), fields)
			if !ok {
				fmt.Println(usage)
				continue
			}
			changed := row.ClickIncrease
			if fields[0] == "-" {
				changed = row.ClickDecrease
			}
			if !changed() {
				fmt.Println("no change")
			}
		case "set":
			if len(fields) != 3 {
				fmt.Println(usage)
				continue
			}
			id, err1 := strconv.ParseInt(fields[1], 10, 64)
			n, err2 := strconv.Atoi(fields[2])
			if err1 != nil || err2 != nil {
				fmt.Println(usage)
				continue
			}
			if !s.SetQuantity(id, n) {
				fmt.Println("no change")
			}
		default:
			fmt.Println(usage)
		}
	}
}

func rowArg(page view.Page, fields []string) (view.ProductRow, bool) {
	if len(fields) != 2 {
		return view.ProductRow{}, false
	}
	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return view.ProductRow{}, false
	}
	return page.Row(id)
}
