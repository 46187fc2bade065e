package main

import (
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	"github.com/maxbolgarin/contem"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/taskry/internal/app"
	"github.com/maxbolgarin/taskry/internal/model"
)

var (
	Version, Branch, Commit, BuildDate string
)

var (
	configPath = kingpin.Flag("config", "path to config file").Short('c').String()
	repo       = kingpin.Flag("repo", "summarize a single repository and exit").Short('r').String()
	window     = kingpin.Flag("window", "time window for one-shot mode: day, week or month").Short('w').Default("week").String()
)

func main() {
	kingpin.Parse()
	var err error
	ctx := contem.New(contem.WithLogger(logze.DefaultPtr()), contem.Exit(&err))
	defer ctx.Shutdown()
	err = run(ctx)
	if err != nil {
		logze.DefaultPtr().Error("cannot run", "error", err)
	}
}

func run(ctx contem.Context) error {
	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		return erro.Wrap(err, "load config")
	}
	logze.Init(logze.C().WithConsole().WithLevel(logze.LevelDebug))

	taskry, err := app.New(ctx, cfg)
	if err != nil {
		return erro.Wrap(err, "new app")
	}

	if *repo != "" {
		w, err := model.ParseWindow(*window)
		if err != nil {
			return erro.Wrap(err, "parse window")
		}
		result, err := taskry.SummarizeOnce(ctx, *repo, w)
		if err != nil {
			return erro.Wrap(err, "summarize repository")
		}
		printResult(result)
		return nil
	}

	if err := taskry.StartServer(ctx); err != nil {
		return erro.Wrap(err, "start server")
	}

	return nil
}

func printResult(result *model.SummaryResult) {
	fmt.Printf("Repository: %s\n", result.Repository)
	fmt.Printf("Window: %s (%s .. %s)\n", result.Window, result.Since.Format("2006-01-02"), result.Until.Format("2006-01-02"))
	if result.Summary != "" {
		fmt.Printf("\n%s\n", result.Summary)
	}
	if len(result.Tasks) == 0 {
		return
	}
	fmt.Printf("\nTasks:\n")
	for i, task := range result.Tasks {
		fmt.Printf("%d. %s\n", i+1, task.Title)
		if task.Description != "" && task.Description != task.Title {
			fmt.Printf("   %s\n", task.Description)
		}
	}
}
