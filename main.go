// Package main is the Charon navigator command.
//
// It drives the game client between menu screens by perception alone: every
// step captures the screen, classifies it against template anchors, and only
// clicks controls it can see.
//
// Modes:
//
//	charon -target drive        navigate once and exit
//	charon -sync                print the current screen and exit
//	charon -drag a,b[,c...]     drag through the named templates and exit
//	charon                      run from the system tray
//	charon -inspect shot.png    classify a saved screenshot, write result.png
//	  -ocr x0,y0,x1,y1          also read text in a region
//	  -expect text              and fail unless it reads as text
//
// Moving the pointer to the top-left corner of the screen trips the fail-safe
// and halts all input until it is reset.
//
// Exit Codes:
//   - 0: target reached, or normal exit
//   - 1: startup failed or target not reached
//   - 2: unhandled panic
//   - 3: fail-safe tripped
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/YusufSemihCan/Charon-LCBot/internal/app"
	"github.com/YusufSemihCan/Charon-LCBot/internal/config"
	"github.com/YusufSemihCan/Charon-LCBot/internal/input"
	"github.com/YusufSemihCan/Charon-LCBot/internal/logging"
	"github.com/YusufSemihCan/Charon-LCBot/internal/navigation"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "PANIC: %v\n", r)
			logging.Error("PANIC in main: %v", r)
			logging.Close()
			os.Exit(2)
		}
	}()
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML config")
	target := flag.String("target", "", "state to navigate to, then exit")
	sync := flag.Bool("sync", false, "resolve and print the current state, then exit")
	inspect := flag.String("inspect", "", "classify a saved screenshot instead of the live screen")
	ocr := flag.String("ocr", "", "with -inspect, read text inside x0,y0,x1,y1")
	expect := flag.String("expect", "", "with -ocr, fail unless the text reads as this")
	drag := flag.String("drag", "", "comma-separated templates to drag through in order, then exit")
	watch := flag.Bool("watch", true, "reload config and templates on change")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	if err := logging.Init(cfg.Log.File, logging.ParseLevel(cfg.Log.Level), cfg.Log.Console); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		logging.Info("=== Charon Shutdown ===")
		logging.Close()
	}()
	logging.Info("=== Charon Started ===")

	if *inspect != "" {
		if err := Inspect(cfg, *inspect, *ocr, *expect); err != nil {
			logging.Error("Inspect failed: %v", err)
			return 1
		}
		return 0
	}

	var goal navigation.State
	if *target != "" {
		goal, err = navigation.ParseState(*target)
		if err != nil {
			logging.Error("%v", err)
			return 1
		}
	}

	a, err := app.Bootstrap(*configPath, cfg, report)
	if err != nil {
		logging.Error("Startup failed: %v", err)
		return 1
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Worker.Run(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logging.Info("Signal received: %v, halting input", sig)
		a.Trip()
		cancel()
	}()

	if *watch {
		go func() {
			if err := a.Watch(ctx); err != nil {
				logging.Warn("%v", err)
			}
		}()
	}

	switch {
	case *sync:
		s, err := a.Worker.Synchronize(ctx)
		if err != nil {
			logging.Error("Resolve failed: %v", err)
			return 1
		}
		color.New(color.FgCyan, color.Bold).Printf("%s\n", s)
		return 0
	case *drag != "":
		var names []navigation.Template
		for _, n := range strings.Split(*drag, ",") {
			names = append(names, navigation.Template(strings.TrimSpace(n)))
		}
		var ok bool
		var dragErr error
		if err := a.Worker.Do(ctx, func() { ok, dragErr = a.Navigator.Clicker().DragChain(names) }); err != nil {
			dragErr = err
		}
		switch {
		case errors.Is(dragErr, input.ErrFailSafe):
			return 3
		case dragErr != nil:
			logging.Error("Drag failed: %v", dragErr)
			return 1
		case !ok:
			color.New(color.FgYellow).Printf("NOT DRAGGED %s\n", *drag)
			return 1
		}
		color.New(color.FgGreen).Printf("DRAGGED    %s\n", *drag)
		return 0
	case *target != "":
		res, err := a.Worker.Navigate(ctx, goal)
		switch {
		case errors.Is(err, input.ErrFailSafe):
			return 3
		case err != nil || !res.Reached:
			return 1
		}
		return 0
	default:
		NewTrayApp(ctx, a, cancel).Run()
	}
	return 0
}

// report prints each finished navigation on the console.
func report(r app.Result) {
	switch {
	case errors.Is(r.Err, input.ErrFailSafe):
		color.New(color.FgRed, color.Bold).Printf("FAIL-SAFE  %s (stopped at %s)\n", r.Target, r.State)
	case r.Err != nil:
		color.New(color.FgRed).Printf("ERROR      %s: %v\n", r.Target, r.Err)
	case r.Reached:
		color.New(color.FgGreen).Printf("REACHED    %s in %v\n", r.Target, r.Elapsed.Round(10*time.Millisecond))
	default:
		color.New(color.FgYellow).Printf("NOT REACHED %s (at %s)\n", r.Target, r.State)
	}
}
