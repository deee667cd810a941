// Package main is the entry point for the Task Flow admin CLI.
// This tool inspects and maintains the persisted store without the server.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/taskflow/internal/app"
	"github.com/prn-tf/taskflow/internal/config"
	"github.com/prn-tf/taskflow/internal/export"
	"github.com/prn-tf/taskflow/internal/jobs"
	"github.com/prn-tf/taskflow/internal/pkg/crypto"
	"github.com/prn-tf/taskflow/internal/pkg/logging"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "version":
		fmt.Printf("Task Flow Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "users":
		err = withApp(listUsers)

	case "logs":
		err = withApp(func(ctx context.Context, a *app.App) error { return listLogs(a, args) })

	case "export":
		err = withApp(func(ctx context.Context, a *app.App) error { return exportTasks(a, args) })

	case "backup":
		err = withApp(func(ctx context.Context, a *app.App) error { return backup(ctx, a, args) })

	case "restore":
		err = withApp(func(ctx context.Context, a *app.App) error { return restore(ctx, a, args) })

	case "keygen":
		var key string
		if key, err = crypto.GenerateKey(); err == nil {
			fmt.Println(key)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withApp opens the configured store, runs fn and closes it.
func withApp(fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load(os.Getenv("TASKFLOW_CONFIG"))
	if err != nil {
		return err
	}

	logCfg := cfg.Logging
	logCfg.Format = "console"
	if logCfg.Level == "info" {
		logCfg.Level = zerolog.WarnLevel.String()
	}
	logger := logging.New(logCfg)

	ctx := context.Background()
	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func listUsers(_ context.Context, a *app.App) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tROLE\tFULL NAME")
	for _, u := range a.Store.Users() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Role, u.FullName)
	}
	return tw.Flush()
}

func listLogs(a *app.App, args []string) error {
	limit := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid log count %q", args[0])
		}
		limit = n
	}

	logs := a.Store.Logs()
	if len(logs) > limit {
		logs = logs[:limit]
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tACTION\tBY\tDETAILS")
	for _, l := range logs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.Timestamp.Format(time.RFC3339), l.Action, l.PerformedBy, l.Details)
	}
	return tw.Flush()
}

// exportTasks writes every task, regardless of the persisted session.
func exportTasks(a *app.App, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: taskflow-admin export csv|xlsx [file]")
	}

	out := os.Stdout
	if len(args) > 1 {
		f, err := os.Create(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	rows := export.BuildTaskRows(a.Store.Projects(), a.Store.Tasks(), a.Store.Users())
	switch args[0] {
	case "csv":
		return export.WriteTasksCSV(out, rows)
	case "xlsx":
		f, err := export.TasksXLSX(rows)
		if err != nil {
			return err
		}
		return export.WriteXLSX(out, f)
	default:
		return fmt.Errorf("unknown export format %q", args[0])
	}
}

func backup(ctx context.Context, a *app.App, args []string) error {
	cfg := a.Config.Backup
	if len(args) > 0 {
		cfg.Dir = args[0]
	}

	job, err := jobs.NewBackup(a.Store, a.Locker, a.Metrics, a.Logger, cfg, a.Config.Storage.Namespace)
	if err != nil {
		return err
	}
	result, err := job.RunOnce(ctx)
	if err != nil {
		return err
	}
	if result.Skipped {
		return fmt.Errorf("another backup is running")
	}
	fmt.Println(result.Path)
	return nil
}

// restore replaces the persisted state with a backup file. It refuses to
// run while a server holds the writer lease. Backends without a shared
// locker need --force, after the server has been stopped.
func restore(ctx context.Context, a *app.App, args []string) error {
	force := false
	var files []string
	for _, arg := range args {
		if arg == "--force" {
			force = true
			continue
		}
		files = append(files, arg)
	}
	if len(files) != 1 {
		return fmt.Errorf("usage: taskflow-admin restore [--force] <file>")
	}

	snap, err := jobs.ReadBackup(files[0], a.Config.Backup.EncryptionKey)
	if err != nil {
		return err
	}

	lease, err := a.AcquireWriter(ctx, force)
	if err != nil {
		return err
	}
	defer lease.Release(context.WithoutCancel(ctx))

	if !a.LeaseShared() {
		fmt.Fprintln(os.Stderr, "Warning: writer lease is not shared; make sure no server is running")
	}

	if err := a.Store.Restore(ctx, snap); err != nil {
		return err
	}
	fmt.Printf("Restored %d users, %d projects, %d tasks\n", len(snap.Users), len(snap.Projects), len(snap.Tasks))
	return nil
}

func printUsage() {
	fmt.Println(`Task Flow Admin CLI

Usage:
  taskflow-admin <command> [arguments]

Commands:
  users                     List users
  logs [n]                  Show the newest n audit entries (default 20)
  export csv|xlsx [file]    Export all tasks to stdout or a file
  backup [dir]              Write a snapshot backup now
  restore [--force] <file>  Replace the stored state with a backup
                            (--force is required unless storage is redis)
  keygen                    Generate a backup.encryption_key value
  version                   Print version information
  help                      Show this help message

Environment Variables:
  TASKFLOW_CONFIG           Path to the configuration file

Examples:
  taskflow-admin logs 50
  taskflow-admin export xlsx tasks.xlsx
  taskflow-admin restore ./data/backups/taskflow-20240501T030000Z.json`)
}
