package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

const (
	testTitle = "feedwatch test"
	testBody  = "Notifications are working!"
)

// testSender реализуют каналы со своим тестовым сообщением (ntfy).
type testSender interface {
	SendTest(ctx context.Context) error
}

func notifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Check notification channels",
	}
	cmd.AddCommand(notifyTestCmd())
	return cmd
}

func notifyTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Send a test notification through every configured channel",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, args []string, a *appEnv) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var errs []error
			sent := 0
			for _, ch := range notificationChannels(a) {
				if !ch.Permitted() {
					continue
				}
				var err error
				if t, ok := ch.(testSender); ok {
					err = t.SendTest(ctx)
				} else {
					err = ch.Deliver(ctx, testTitle, testBody)
				}
				if err != nil {
					errs = append(errs, fmt.Errorf("%T: %w", ch, err))
					continue
				}
				sent++
			}

			fmt.Fprintf(out, "Test notification sent through %d channel(s).\n", sent)
			return errors.Join(errs...)
		}),
	}
}
