package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/codebench-edu/codebench"
	"github.com/codebench-edu/codebench/archive"
	"github.com/codebench-edu/codebench/internal/config"
	"github.com/codebench-edu/codebench/stats"
	"github.com/codebench-edu/codebench/sudoapi"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

var (
	confPath = flag.String("config", "./config.toml", "Config path")
)

func main() {
	flag.Parse()
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Println("WARNING: Could not load .env file:", err)
	}
	if err := config.Load(*confPath); err != nil {
		panic(err)
	}

	slog.SetDefault(slog.New(codebench.GetSlogHandler(config.C.Common.Debug, os.Stdout)))

	app := &cli.App{
		Name:    "codebench",
		Usage:   "Operate the submission platform",
		Version: codebench.Version,
		// flags won't be used, they are here so an error isnt thrown
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Config path",
				Value: "./config.toml",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "requeue",
				Usage: "Re-dispatch submissions that never reached the executor",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "older-than",
						Usage: "Only touch submissions at least this old",
						Value: time.Hour,
					},
				},
				Action: requeue,
			},
			{
				Name:  "stats",
				Usage: "Print grouped submission statistics as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "users", Usage: "Comma-separated student ids", Required: true},
					&cli.StringFlag{Name: "activities", Usage: "Comma-separated activity ids", Required: true},
					&cli.StringFlag{Name: "group-by", Usage: "user, date or activity", Value: "user"},
					&cli.StringFlag{Name: "date", Usage: "Restrict to one UTC date (2006-01-02)"},
				},
				Action: groupedStats,
			},
			{
				Name:      "pack",
				Usage:     "Pack a directory of source files into a solution archive",
				ArgsUsage: "<dir> <out.tar.gz>",
				Action:    packDir,
			},
			{
				Name:      "unpack",
				Usage:     "Unpack a solution archive into a directory",
				ArgsUsage: "<in.tar.gz> <dir>",
				Action:    unpackDir,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func requeue(c *cli.Context) error {
	base, err := sudoapi.InitializeBaseAPI(c.Context)
	if err != nil {
		return err
	}
	defer base.Close()

	count, serr := base.RequeueStuck(c.Context, c.Duration("older-than"))
	if serr != nil {
		return serr
	}
	fmt.Printf("Re-dispatched %d submission(s)\n", count)
	return nil
}

func groupedStats(c *cli.Context) error {
	userIDs, err := parseIDs(c.String("users"))
	if err != nil {
		return fmt.Errorf("invalid users: %w", err)
	}
	activityIDs, err := parseIDs(c.String("activities"))
	if err != nil {
		return fmt.Errorf("invalid activities: %w", err)
	}
	var date *time.Time
	if v := c.String("date"); v != "" {
		d, err := time.ParseInLocation("2006-01-02", v, time.UTC)
		if err != nil {
			return fmt.Errorf("invalid date: %w", err)
		}
		date = &d
	}

	base, err := sudoapi.InitializeBaseAPI(c.Context)
	if err != nil {
		return err
	}
	defer base.Close()

	groups, serr := base.GroupedStats(c.Context, userIDs, activityIDs, date, stats.GroupBy(c.String("group-by")))
	if serr != nil {
		return serr
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(groups)
}

func packDir(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: codebench pack <dir> <out.tar.gz>", 1)
	}
	dir, out := c.Args().Get(0), c.Args().Get(1)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	files := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(dir + "/" + entry.Name())
		if err != nil {
			return err
		}
		files[entry.Name()] = string(data)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	return archive.Pack(f, files, nil)
}

func unpackDir(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: codebench unpack <in.tar.gz> <dir>", 1)
	}
	in, dir := c.Args().Get(0), c.Args().Get(1)

	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	files, _, err := archive.Unpack(f)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for name, contents := range files {
		if err := os.WriteFile(dir+"/"+name, []byte(contents), 0644); err != nil {
			return err
		}
	}
	fmt.Printf("Unpacked %d file(s)\n", len(files))
	return nil
}

func parseIDs(s string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
