package cmd

import (
	"context"
	"fmt"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/domain/port"
	"github.com/haxorport/zapscan-go-client/internal/domain/service"
	"github.com/spf13/cobra"
)

// jobCommands builds the status, stop, pause, resume and wait subcommands
// shared by spider and active scan jobs. controller is resolved after connect.
func jobCommands(kind string, controller func() port.JobController) []*cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status [id]",
		Short: "Show " + kind + " job status",
		Long:  "Show the status of one " + kind + " job, or of every " + kind + " job when no id is given.",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := commandContext()
			defer cancel()
			connect(ctx)

			if len(args) == 0 {
				jobs, err := controller().Jobs(ctx)
				if err != nil {
					exitWithError(err)
				}
				if len(jobs) == 0 {
					fmt.Printf("No %s jobs\n", kind)
					return
				}
				for _, job := range jobs {
					printJobStatus(job)
				}
				return
			}

			status, err := controller().Status(ctx, jobID(args[0]))
			if err != nil {
				exitWithError(err)
			}
			printJobStatus(status)
		},
	}

	stopCmd := jobActionCommand("stop", "Stop a "+kind+" job", controller, port.JobController.Cancel)
	pauseCmd := jobActionCommand("pause", "Pause a "+kind+" job", controller, port.JobController.Pause)
	resumeCmd := jobActionCommand("resume", "Resume a paused "+kind+" job", controller, port.JobController.Resume)

	waitCmd := &cobra.Command{
		Use:   "wait [id]",
		Short: "Wait for a " + kind + " job to finish",
		Long:  "Poll a " + kind + " job until it reaches 100%. Without an id the most recent job is used.",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := commandContext()
			defer cancel()
			connect(ctx)

			var id int
			if len(args) == 1 {
				id = jobID(args[0])
			} else {
				last, err := controller().LastJobID(ctx)
				if err != nil {
					exitWithError(err)
				}
				id = last
			}
			waitForJob(ctx, controller(), id)
		},
	}

	return []*cobra.Command{statusCmd, stopCmd, pauseCmd, resumeCmd, waitCmd}
}

func jobActionCommand(use, short string, controller func() port.JobController, action func(port.JobController, context.Context, int) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := jobID(args[0])

			ctx, cancel := commandContext()
			defer cancel()
			connect(ctx)

			if err := action(controller(), ctx, id); err != nil {
				exitWithError(err)
			}
			fmt.Printf("Job %d: %s done\n", id, use)
		},
	}
}

// waitForJob blocks until the job reaches 100%, printing progress changes
func waitForJob(ctx context.Context, controller port.JobController, id int) {
	interval := Container.Config.EffectivePollInterval()
	err := service.WaitForCompletion(ctx, controller, id, interval, func(progress int) {
		fmt.Printf("Job %d: %d%%\n", id, progress)
	})
	if err != nil {
		exitWithError(err)
	}
	fmt.Printf("Job %d finished\n", id)
}

func printJobStatus(status model.ScanStatus) {
	fmt.Printf("%4d  %3d%%  %s\n", status.ID, status.Progress, status.State)
}

func printJob(job model.Job) {
	fmt.Printf("Started %s job %d for %s\n", job.Kind, job.ID, job.TargetURL)
}

// jobID parses a job id argument, exiting on a bad value
func jobID(s string) int {
	id, err := parseIndex(s)
	if err != nil {
		exitWithError(model.NewUsageError("job id %q must be a non-negative number", s))
	}
	return id
}
