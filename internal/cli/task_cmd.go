package cli

import (
	"fmt"

	"github.com/alexanderramin/horizon/internal/cli/formatter"
	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/alexanderramin/horizon/internal/service"
	"github.com/spf13/cobra"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks and their dependents",
	}

	cmd.AddCommand(
		newTaskAddCmd(app),
		newTaskListCmd(app),
		newTaskSetDueCmd(app),
		newTaskStatusCmd(app),
		newTaskLinkCmd(app),
		newTaskUnlinkCmd(app),
		newTaskActivityCmd(app),
		newTaskDeleteCmd(app),
	)

	return cmd
}

func newTaskAddCmd(app *App) *cobra.Command {
	var t domain.Task
	var priority string
	var dependents []string
	start, due := newTimeFlag(app), newTimeFlag(app)

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t.Title = args[0]
			t.Priority = domain.TaskPriority(priority)
			t.StartDate = start.ptr()
			t.DueDate = due.ptr()
			t.Dependents = dependents
			if err := app.Tasks.Create(cmd.Context(), &t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s %s\n", formatter.Bold(t.Title), formatter.Dim(t.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&t.AssigneeID, "assignee", "", "Assignee participant ID")
	cmd.Flags().StringVar(&t.TenantID, "tenant", "", "Tenant ID")
	cmd.Flags().StringVar(&t.Description, "description", "", "Description")
	cmd.Flags().StringVar(&priority, "priority", string(domain.PriorityMedium), "low, medium, high or urgent")
	cmd.Flags().Var(start, "start", "Start date")
	cmd.Flags().Var(due, "due", "Due date")
	cmd.Flags().StringSliceVar(&dependents, "dependent", nil, "Task that shifts with this one (repeatable)")
	return cmd
}

func newTaskListCmd(app *App) *cobra.Command {
	var assignee string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a participant's tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := app.Tasks.ListByAssignee(cmd.Context(), assignee)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTaskList(tasks, app.loc(), app.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee participant ID")
	_ = cmd.MarkFlagRequired("assignee")
	return cmd
}

func shiftViews(res *service.PropagationResult) []formatter.ShiftView {
	views := make([]formatter.ShiftView, len(res.Shifted))
	for i, s := range res.Shifted {
		views[i] = formatter.ShiftView{TaskID: s.TaskID, NewDue: s.NewDue, Depth: s.Depth}
	}
	return views
}

func newTaskSetDueCmd(app *App) *cobra.Command {
	var clearDue bool
	due := newTimeFlag(app)

	cmd := &cobra.Command{
		Use:   "set-due ID",
		Short: "Move a task's due date; dependents shift by the same amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !due.set && !clearDue {
				return fmt.Errorf("--due or --clear is required")
			}
			t, err := app.Tasks.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			t.DueDate = due.ptr()
			res, err := app.Tasks.Update(cmd.Context(), t)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if t.DueDate == nil {
				fmt.Fprintf(out, "Cleared due date of %s\n", formatter.Bold(t.Title))
				return nil
			}
			fmt.Fprintf(out, "%s due %s\n", formatter.Bold(t.Title), formatter.DateTime(*t.DueDate, app.loc()))
			if res != nil && (len(res.Shifted) > 0 || len(res.Skipped) > 0 || len(res.CyclesDetected) > 0) {
				fmt.Fprint(out, formatter.FormatPropagation(res.Delta, shiftViews(res), res.Skipped, res.CyclesDetected, app.loc()))
			}
			return nil
		},
	}

	cmd.Flags().Var(due, "due", "New due date")
	cmd.Flags().BoolVar(&clearDue, "clear", false, "Remove the due date")
	cmd.MarkFlagsMutuallyExclusive("due", "clear")
	return cmd
}

func newTaskStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status ID STATUS",
		Short: "Set a task's status (todo, in_progress, completed, cancelled)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := domain.TaskStatus(args[1])
			if err := app.Tasks.SetStatus(cmd.Context(), args[0], status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s is now %s\n", formatter.TruncID(args[0]), formatter.TaskStatusBadge(status))
			return nil
		},
	}
}

func newTaskLinkCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "link ID DEPENDENT_ID",
		Short: "Make DEPENDENT_ID shift whenever ID's due date moves",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Tasks.AddDependent(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Linked %s -> %s\n", formatter.TruncID(args[0]), formatter.TruncID(args[1]))
			return nil
		},
	}
}

func newTaskUnlinkCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unlink ID DEPENDENT_ID",
		Short: "Remove a dependent edge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Tasks.RemoveDependent(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unlinked %s -> %s\n", formatter.TruncID(args[0]), formatter.TruncID(args[1]))
			return nil
		},
	}
}

func newTaskActivityCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "activity ID",
		Short: "Show a task's activity log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			acts, err := app.Tasks.Activity(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatActivity(acts, app.loc()))
			return nil
		},
	}
}

func newTaskDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Tasks.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", formatter.TruncID(args[0]))
			return nil
		},
	}
}
