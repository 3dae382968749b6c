package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag string
	rootCmd = &cobra.Command{
		Use:   "ripostectl",
		Short: "CLI client for the riposte reply agent API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Riposte service base URL")

	// conversation subcommand
	conversationCmd := &cobra.Command{
		Use:   "conversation <tracking-id>",
		Short: "Show the reconstructed conversation for a tracking id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetBool("json")
			return runConversation(apiFlag, args[0], raw, os.Stdout)
		},
	}
	conversationCmd.Flags().Bool("json", false, "Print the raw JSON response")
	rootCmd.AddCommand(conversationCmd)

	// event subcommand
	eventCmd := &cobra.Command{
		Use:   "event <tracking-id>",
		Short: "Record a telemetry or message event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, _ := cmd.Flags().GetString("type")
			actor, _ := cmd.Flags().GetString("actor")
			message, _ := cmd.Flags().GetString("message")
			return runEvent(apiFlag, args[0], typ, actor, message, os.Stdout)
		},
	}
	eventCmd.Flags().StringP("type", "t", "email_open", "Event type (email_open, link_click, lead_message, ai_reply)")
	eventCmd.Flags().String("actor", "", "Actor email address (required)")
	eventCmd.Flags().StringP("message", "m", "", "Message text for message events")
	_ = eventCmd.MarkFlagRequired("actor")
	rootCmd.AddCommand(eventCmd)

	// events subcommand
	eventsCmd := &cobra.Command{
		Use:   "events <tracking-id>",
		Short: "Tail the raw event journal for a tracking id from the configured store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			typ, _ := cmd.Flags().GetString("type")
			limit, _ := cmd.Flags().GetInt("limit")
			return runEvents(configPath, args[0], typ, limit, os.Stdout)
		},
	}
	eventsCmd.Flags().StringP("config", "c", "riposte.yaml", "Path to the service config file")
	eventsCmd.Flags().StringP("type", "t", "", "Only show events of this type")
	eventsCmd.Flags().Int("limit", 0, "Maximum number of events, 0 for all")
	rootCmd.AddCommand(eventsCmd)

	// render subcommand
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render a reply template locally without sending anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			intent, _ := cmd.Flags().GetString("intent")
			name, _ := cmd.Flags().GetString("lead")
			calendarLink, _ := cmd.Flags().GetString("calendar")
			stage, _ := cmd.Flags().GetString("stage")
			return runRender(intent, name, calendarLink, stage, os.Stdout)
		},
	}
	renderCmd.Flags().StringP("intent", "i", "general_positive", "Intent to render")
	renderCmd.Flags().String("lead", "Dana", "Lead name for the preview")
	renderCmd.Flags().String("calendar", "", "Calendar link for the preview")
	renderCmd.Flags().String("stage", "new", "Conversation stage (new, active, engaged)")
	rootCmd.AddCommand(renderCmd)

	// token subcommand
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Generate a fresh tracking token",
		RunE: func(cmd *cobra.Command, args []string) error {
			domain, _ := cmd.Flags().GetString("domain")
			return runToken(domain, os.Stdout)
		},
	}
	tokenCmd.Flags().StringP("domain", "d", "", "Reply domain to print the alias for")
	rootCmd.AddCommand(tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
