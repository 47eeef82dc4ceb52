package main

import (
	"CommentWall/internal/gateway"
	"CommentWall/internal/widget"
	"CommentWall/pkg/logger"
	"context"
	"flag"
	"fmt"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "comments backend base URL")
	name := flag.String("name", "", "display name for a new comment")
	message := flag.String("message", "", "text of a new comment")
	image := flag.String("image", "", "optional profile photo to upload (up to 5 MiB)")
	follow := flag.Bool("follow", false, "keep printing the list as new comments arrive")
	level := flag.String("log", "error", "log level")
	flag.Parse()

	log, err := logger.NewLogger(*level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var renderMu sync.Mutex
	var view *widget.View
	render := func() {
		if view == nil {
			return
		}
		renderMu.Lock()
		defer renderMu.Unlock()
		fmt.Println()
		if err := widget.Render(os.Stdout, view.Entries(), time.Now()); err != nil {
			log.Error("Failed to render comments", zap.Error(err))
		}
		if msg := view.Error(); msg != "" {
			fmt.Printf("! %s\n", msg)
		}
	}

	client := gateway.New(*server, log)
	view = widget.NewView(client, widget.WithLogger(log), widget.WithOnChange(render))
	if err := view.Mount(ctx); err != nil {
		log.Warn("Mounted without realtime updates", zap.Error(err))
	}
	defer view.Unmount()

	if *name != "" || *message != "" || *image != "" {
		if err := submit(ctx, view, *name, *message, *image); err != nil {
			fmt.Fprintf(os.Stderr, "comment not posted: %v\n", err)
			if !*follow {
				view.Unmount()
				os.Exit(1)
			}
		}
	} else {
		render()
	}

	if *follow {
		<-ctx.Done()
	}
}

func submit(ctx context.Context, view *widget.View, name, message, imagePath string) error {
	form := widget.NewForm(view.Submitting)
	form.SetName(name)
	form.SetMessage(message)
	if imagePath != "" {
		img, err := widget.LoadImage(afero.NewOsFs(), imagePath)
		if err != nil {
			return err
		}
		if err := form.AttachImage(img); err != nil {
			return err
		}
	}

	d, err := form.Submit()
	if err != nil {
		return err
	}
	return view.Submit(ctx, d)
}
