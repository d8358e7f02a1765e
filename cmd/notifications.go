package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/manav03panchal/artisan/internal/errors"
	"github.com/manav03panchal/artisan/internal/model"
	"github.com/manav03panchal/artisan/internal/storage"
)

// notificationsCmd represents the notifications command.
var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notification", "inbox", "n"},
	Short:   "Read the notification inbox",
	Long: `List, read and delete the notifications issued by the reminder scans
and by status changes.

Examples:
  artisan notifications
  artisan notifications list --all --type invoice_overdue
  artisan notifications read 0193
  artisan notifications read --all
  artisan notifications delete 0193`,
	RunE: runNotificationsList,
}

// Notification subcommand flags.
var (
	notificationsListFlagAll   bool
	notificationsListFlagType  string
	notificationsListFlagLimit int

	notificationsReadFlagAll bool
)

var notificationsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List notifications, unread only by default",
	Args:    cobra.NoArgs,
	RunE:    runNotificationsList,
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read [ID]",
	Short: "Mark a notification, or all of them, read",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runNotificationsRead,
}

var notificationsDeleteCmd = &cobra.Command{
	Use:     "delete ID",
	Aliases: []string{"rm"},
	Short:   "Delete a notification",
	Args:    cobra.ExactArgs(1),
	RunE:    runNotificationsDelete,
}

func init() {
	notificationsListCmd.Flags().BoolVarP(&notificationsListFlagAll, "all", "a", false, "Include read notifications")
	notificationsListCmd.Flags().StringVarP(&notificationsListFlagType, "type", "t", "",
		"Only this type: intervention_status, intervention_reminder, invoice_overdue")
	notificationsListCmd.Flags().IntVarP(&notificationsListFlagLimit, "limit", "n", 50, "Maximum to show (0 for all)")

	notificationsReadCmd.Flags().BoolVarP(&notificationsReadFlagAll, "all", "a", false, "Mark every notification read")

	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsReadCmd)
	notificationsCmd.AddCommand(notificationsDeleteCmd)
	rootCmd.AddCommand(notificationsCmd)
}

func runNotificationsList(cmd *cobra.Command, args []string) error {
	runCtx := runContext(cmd)
	filter := storage.NotificationFilter{
		ArtisanID:  ctx.Config.ArtisanID,
		UnreadOnly: !notificationsListFlagAll,
		Limit:      notificationsListFlagLimit,
	}
	if notificationsListFlagType != "" {
		t := model.NotificationType(notificationsListFlagType)
		if !t.IsValid() {
			return apperrors.NewUserErrorWithField("type", notificationsListFlagType, "Unknown notification type",
				"Use one of: intervention_status, intervention_reminder, invoice_overdue")
		}
		filter.Type = t
	}

	ns, err := ctx.Log.ListNotifications(runCtx, filter)
	if err != nil {
		return err
	}
	unread, err := ctx.Log.CountUnread(runCtx, ctx.Config.ArtisanID)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintNotifications(ns, unread)
	}
	ctx.CLIFormatter().PrintNotifications(ns, unread, ctx.Now())
	return nil
}

func runNotificationsRead(cmd *cobra.Command, args []string) error {
	runCtx := runContext(cmd)

	if notificationsReadFlagAll {
		n, err := ctx.Log.MarkAllRead(runCtx, ctx.Config.ArtisanID)
		if err != nil {
			return err
		}
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(map[string]int{"marked_read": n})
		}
		ctx.CLIFormatter().Success(fmt.Sprintf("Marked %d notification(s) read", n))
		return nil
	}

	if len(args) == 0 {
		return apperrors.NewUserError("Give a notification id or --all",
			"Use 'artisan notifications' to see unread notifications.")
	}
	n, err := ctx.Log.GetNotification(runCtx, args[0])
	if err != nil {
		return err
	}
	if err := ctx.Log.MarkNotificationRead(runCtx, n.ID); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{"marked_read": 1, "id": n.ID})
	}
	ctx.CLIFormatter().Success("Marked read: " + n.Title)
	return nil
}

func runNotificationsDelete(cmd *cobra.Command, args []string) error {
	runCtx := runContext(cmd)
	n, err := ctx.Log.GetNotification(runCtx, args[0])
	if err != nil {
		return err
	}
	if err := ctx.Log.DeleteNotification(runCtx, n.ID); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{"deleted": n.ID})
	}
	ctx.CLIFormatter().Success("Deleted: " + n.Title)
	return nil
}
