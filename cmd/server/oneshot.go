package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/autoasmr/api/internal/model"
)

func newNextSlotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next-slot",
		Short: "Print the next optimal publish slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			policy, err := newPolicy(cfg)
			if err != nil {
				return err
			}
			now := policy.Now()
			next := policy.NextSlotAfter(now)

			return printJSON(cmd, model.NextUploadStatus{
				Datetime:   next.At.Format(time.RFC3339),
				Weekday:    next.Weekday,
				Label:      next.WeekdayLabel,
				TimeRange:  next.TimeRange,
				HoursUntil: int(next.At.Sub(now).Hours()),
			})
		},
	}
}

func newRunOnceCmd() *cobra.Command {
	var prompt string
	cmd := &cobra.Command{
		Use:   "run-once",
		Short: "Create one job and run the whole pipeline in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			deps, err := newCore(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}

			job := &model.Job{
				ID:           "job_" + uuid.NewString(),
				Name:         "One-off ASMR",
				Prompt:       prompt,
				ScheduleTime: model.ScheduleManual,
				Status:       model.JobStatusScheduled,
				CreatedAt:    deps.policy.Now(),
			}
			if err := deps.jobs.Add(job); err != nil {
				return err
			}

			final, err := deps.runner.Run(cmd.Context(), job.ID)
			if err != nil {
				return err
			}
			if err := printJSON(cmd, model.JobDetailResponse{Job: final, Logs: deps.activity.ForJob(job.ID)}); err != nil {
				return err
			}
			if final.Status != model.JobStatusCompleted {
				return errors.Newf("job finished as %s", final.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", model.PromptAuto, "generation prompt, or \"auto\" to synthesize one")
	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
