package main

import (
	"bufio"
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/conorls/dublinrent/internal/api"
	"github.com/conorls/dublinrent/internal/config"
	"github.com/conorls/dublinrent/internal/health"
	"github.com/conorls/dublinrent/internal/history"
	"github.com/conorls/dublinrent/internal/logger"
	"github.com/conorls/dublinrent/internal/modelinfo"
	"github.com/conorls/dublinrent/internal/models"
	"github.com/conorls/dublinrent/internal/predict"
	"github.com/conorls/dublinrent/internal/session"
)

var (
	version   string
	buildDate string
)

// app bundles the client components the shell commands operate on.
type app struct {
	manager *session.Manager
	orch    *predict.Orchestrator
	agg     *modelinfo.Aggregator
	viewer  *history.Viewer
	poller  *health.Poller
	scanner *bufio.Scanner
}

// prompt reads one line of input after printing a label.
func (a *app) prompt(label string) string {
	fmt.Print(label)
	if !a.scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(a.scanner.Text())
}

// repl runs the interactive shell loop.
func (a *app) repl(ctx context.Context) {
	for {
		fmt.Print("dublinrent> ")
		if !a.scanner.Scan() {
			break
		}
		line := strings.TrimSpace(a.scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Println("Available commands: help, login, signup, logout, whoami, predict, sharing, model-info [property|sharing], history, health, exit")
		case "login":
			a.login(ctx)
		case "signup":
			a.signup(ctx)
		case "logout":
			a.manager.Logout()
		case "whoami":
			a.whoami()
		case "predict":
			a.predict(ctx)
		case "sharing":
			a.sharing(ctx)
		case "model-info":
			variant := models.VariantProperty
			if len(args) > 1 && args[1] == string(models.VariantSharing) {
				variant = models.VariantSharing
			}
			a.modelInfo(ctx, variant)
		case "history":
			a.history(ctx)
		case "health":
			a.health()
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

func (a *app) login(ctx context.Context) {
	email := a.prompt("Email: ")
	password := a.prompt("Password: ")
	if err := a.manager.Login(ctx, email, password); err != nil {
		fmt.Println("Login error:", err)
		return
	}
	if id := a.manager.Identity(); id != nil {
		fmt.Printf("Logged in as %s\n", id.Email)
	}
}

func (a *app) signup(ctx context.Context) {
	email := a.prompt("Email: ")
	password := a.prompt("Password: ")
	if err := a.manager.Signup(ctx, email, password); err != nil {
		fmt.Println("Signup error:", err)
		return
	}
	fmt.Println("Account created. Please log in.")
}

func (a *app) whoami() {
	state := a.manager.State()
	if id := a.manager.Identity(); id != nil {
		fmt.Printf("State: %s (%s, id %d)\n", state, id.Email, id.ID)
		return
	}
	fmt.Printf("State: %s\n", state)
}

// predict collects entire-property fields and submits them.
func (a *app) predict(ctx context.Context) {
	a.orch.SetVariant(models.VariantProperty)
	a.orch.SetFields(predict.Fields{
		Bedrooms:     a.prompt("Bedrooms: "),
		Bathrooms:    a.prompt("Bathrooms: "),
		PropertyType: a.prompt("Property type (apartment/house/studio/duplex): "),
		DublinArea:   a.prompt("Dublin area (e.g. dublin-4): "),
	})
	a.submit(ctx)
}

// sharing collects shared-room fields and submits them.
func (a *app) sharing(ctx context.Context) {
	a.orch.SetVariant(models.VariantSharing)
	a.orch.SetFields(predict.Fields{
		PropertyType: a.prompt("Property type (apartment/house/studio/duplex): "),
		DublinArea:   a.prompt("Dublin area (e.g. dublin-6): "),
		RoomType:     a.prompt("Room type (single/double/twin): "),
	})
	a.submit(ctx)
}

func (a *app) submit(ctx context.Context) {
	result, err := a.orch.Submit(ctx)
	if err != nil {
		var verr *predict.ValidationError
		if errors.As(err, &verr) {
			fmt.Println("Please fill in all fields:", verr)
			return
		}
		fmt.Println("Prediction error:", err)
		return
	}
	fmt.Printf("Estimated rent: €%.0f/month\n", result.PredictedPrice)
	if result.LowerBound != nil && result.UpperBound != nil {
		fmt.Printf("Expected range: €%.0f – €%.0f\n", *result.LowerBound, *result.UpperBound)
	}
}

func (a *app) modelInfo(ctx context.Context, variant models.Variant) {
	if err := a.agg.Select(ctx, variant); err != nil {
		fmt.Println("Model info error:", err)
		return
	}
	snap := a.agg.Snapshot()
	if snap.Info == nil {
		return
	}
	fmt.Printf("%s — %s\n", snap.Info.ModelName, snap.Info.Status)
	fmt.Println("Top features:")
	for _, bar := range modelinfo.TopFeatures(snap.Info.FeatureImportances, 10) {
		fmt.Printf("  %-20s %5.1f%% %s\n", bar.Name, bar.BarWidth, strings.Repeat("#", int(bar.BarWidth/2)))
	}
}

func (a *app) history(ctx context.Context) {
	items, err := a.viewer.Fetch(ctx)
	if err != nil {
		if errors.Is(err, api.ErrNotAuthenticated) {
			fmt.Println("Please log in to view your search history.")
			return
		}
		fmt.Println("History error:", err)
		return
	}
	if len(items) == 0 {
		fmt.Println("No searches recorded yet.")
		return
	}
	for _, item := range items {
		price := "-"
		if item.PredictionResult != nil {
			price = fmt.Sprintf("€%.0f", item.PredictionResult.PredictedPrice)
		}
		fmt.Printf("%s  %s  %v\n", item.Timestamp, price, item.SearchParameters)
	}
}

func (a *app) health() {
	status, indicator := a.poller.Status()
	switch indicator {
	case health.IndicatorChecking:
		fmt.Println("Backend status: checking...")
	case health.IndicatorHealthy:
		fmt.Println("Backend status: healthy")
	default:
		fmt.Printf("Backend status: unavailable (%s)\n", cmp.Or(status.Status, "no response"))
	}
}

// main wires the client components together and runs the shell.
func main() {
	options := config.Parse()

	fmt.Printf("dublinrent client\nVersion: %s\nBuild Date: %s\n",
		cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))

	log, err := logger.New(options.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	store := session.NewFileStore(options.StorePath)
	nav := session.NavigatorFunc(func(route session.Route) {
		fmt.Printf("[screen: %s]\n", route)
	})

	manager := session.NewManager(store, nav, log)
	client := api.New(options.ServerURL, manager.Token)
	manager.SetClient(client)

	ctx := context.Background()
	if err := manager.Bootstrap(ctx); err != nil {
		log.Warn("session bootstrap failed", zap.Error(err))
	}

	poller := health.NewPoller(client, options.HealthInterval, log)
	if err := poller.Start(ctx); err != nil {
		log.Fatal("failed to start health poller", zap.Error(err))
	}
	defer poller.Stop()

	a := &app{
		manager: manager,
		orch:    predict.NewOrchestrator(client, log),
		agg:     modelinfo.NewAggregator(client, log),
		viewer:  history.NewViewer(client, manager.Token, log),
		poller:  poller,
		scanner: bufio.NewScanner(os.Stdin),
	}
	a.repl(ctx)
}
