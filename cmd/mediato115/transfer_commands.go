package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mediato115/internal/queue"
	"mediato115/internal/textutil"
)

func newTransfersCommand(ctx *commandContext) *cobra.Command {
	transfersCmd := &cobra.Command{
		Use:     "transfers",
		Aliases: []string{"queue"},
		Short:   "Inspect and maintain the transfer queue",
	}
	transfersCmd.AddCommand(newTransfersListCommand(ctx))
	transfersCmd.AddCommand(newTransfersClearCommand(ctx))
	transfersCmd.AddCommand(newTransfersRetryCommand(ctx))
	transfersCmd.AddCommand(newTransfersRemoveCommand(ctx))
	return transfersCmd
}

func newTransfersListCommand(ctx *commandContext) *cobra.Command {
	var statusFlags []string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transfer tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatuses(statusFlags)
			if err != nil {
				return err
			}
			return ctx.withQueue(func(store *queue.Store) error {
				tasks, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, tasksJSON(tasks))
				}
				if len(tasks) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Transfer queue is empty")
					return nil
				}
				rows := make([][]string, 0, len(tasks))
				for _, task := range tasks {
					rows = append(rows, []string{
						strconv.FormatInt(task.ID, 10),
						string(task.Status),
						textutil.Truncate(task.Name, 40),
						task.SourcePath,
						task.TargetStorage,
						task.CreatedAt.Local().Format(time.DateTime),
						textutil.Truncate(task.ErrorMessage, 40),
					})
				}
				headers := []string{"ID", "Status", "Name", "Source", "Target", "Created", "Error"}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, []columnAlignment{alignRight}))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&statusFlags, "status", "s", nil, "Filter by status (pending, running, completed, failed)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newTransfersClearCommand(ctx *commandContext) *cobra.Command {
	var all bool
	var statusFlags []string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove finished transfer tasks",
		Long:  "Remove completed and failed tasks. Use --status to narrow the selection or --all to empty the queue.",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatuses(statusFlags)
			if err != nil {
				return err
			}
			if all && len(statuses) > 0 {
				return errors.New("--all cannot be combined with --status")
			}
			if !all && len(statuses) == 0 {
				statuses = []queue.Status{queue.StatusCompleted, queue.StatusFailed}
			}
			return ctx.withQueue(func(store *queue.Store) error {
				removed, err := store.Clear(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d task(s)\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Remove every task regardless of status")
	cmd.Flags().StringSliceVarP(&statusFlags, "status", "s", nil, "Only remove tasks with these statuses")
	return cmd
}

func newTransfersRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <id>",
		Short: "Return a failed task to pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return ctx.withQueue(func(store *queue.Store) error {
				task, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if task == nil {
					return fmt.Errorf("task %d not found", id)
				}
				if task.Status != queue.StatusFailed {
					return fmt.Errorf("task %d is %s; only failed tasks can be retried", id, task.Status)
				}
				active, err := store.FindActive(cmd.Context(), task.SourcePath, task.TargetStorage)
				if err != nil {
					return err
				}
				if active != nil {
					return fmt.Errorf("%s is already queued as task #%d", task.SourcePath, active.ID)
				}
				if err := store.UpdateStatus(cmd.Context(), id, queue.StatusPending, ""); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task %d returned to pending\n", id)
				return nil
			})
		},
	}
}

func newTransfersRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>...",
		Short: "Remove specific tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := parseTaskID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return ctx.withQueue(func(store *queue.Store) error {
				removed, err := store.Remove(cmd.Context(), ids...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d task(s)\n", removed)
				return nil
			})
		},
	}
}

func parseStatuses(values []string) ([]queue.Status, error) {
	var statuses []queue.Status
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			status, err := queue.ParseStatus(part)
			if err != nil {
				return nil, err
			}
			statuses = append(statuses, status)
		}
	}
	return statuses, nil
}

func parseTaskID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(raw), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}

type taskJSON struct {
	ID            int64     `json:"id"`
	Status        string    `json:"status"`
	Name          string    `json:"name"`
	SourcePath    string    `json:"source_path"`
	SourceKind    string    `json:"source_kind"`
	TargetStorage string    `json:"target_storage"`
	TargetPath    string    `json:"target_path,omitempty"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	RequestID     string    `json:"request_id,omitempty"`
	Channel       string    `json:"channel,omitempty"`
	UserID        string    `json:"user_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func tasksJSON(tasks []*queue.Task) []taskJSON {
	out := make([]taskJSON, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskJSON{
			ID:            t.ID,
			Status:        string(t.Status),
			Name:          t.Name,
			SourcePath:    t.SourcePath,
			SourceKind:    t.SourceKind,
			TargetStorage: t.TargetStorage,
			TargetPath:    t.TargetPath,
			ErrorMessage:  t.ErrorMessage,
			RequestID:     t.RequestID,
			Channel:       t.Channel,
			UserID:        t.UserID,
			CreatedAt:     t.CreatedAt,
			UpdatedAt:     t.UpdatedAt,
		})
	}
	return out
}
