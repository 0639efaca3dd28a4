package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"support-agent/internal/usecase"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a single question and record it",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	_, store, a, _, err := setup(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	out, err := a.Service.Ask(ctx, usecase.AskInput{Question: strings.Join(args, " ")})
	if err != nil {
		var ucErr *usecase.Error
		if errors.As(err, &ucErr) && ucErr.Code == usecase.ErrorInvalidInput {
			return fmt.Errorf("invalid question: %s", ucErr.Reason)
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), out.Answer)
	if out.InteractionID != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "interaction %s\n", out.InteractionID)
	}
	return nil
}
