package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/artisan/internal/model"
	"github.com/manav03panchal/artisan/internal/validate"
)

// clientCmd represents the client command.
var clientCmd = &cobra.Command{
	Use:     "client",
	Aliases: []string{"clients", "cl"},
	Short:   "Manage clients",
	Long: `List clients or add a new one. Interventions and invoices refer to a
client by id or by any unique id prefix.

Examples:
  artisan client
  artisan client add "Dupont" --email dupont@example.com`,
	RunE: runClientList,
}

// Client subcommand flags.
var (
	clientAddFlagEmail string
	clientAddFlagPhone string
)

// clientAddCmd creates a new client.
var clientAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a client",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runClientAdd,
}

// clientListCmd lists clients.
var clientListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List clients",
	Args:    cobra.NoArgs,
	RunE:    runClientList,
}

func init() {
	clientAddCmd.Flags().StringVarP(&clientAddFlagEmail, "email", "e", "", "Contact email")
	clientAddCmd.Flags().StringVarP(&clientAddFlagPhone, "phone", "p", "", "Contact phone")

	clientCmd.AddCommand(clientAddCmd)
	clientCmd.AddCommand(clientListCmd)
	rootCmd.AddCommand(clientCmd)
}

func runClientAdd(cmd *cobra.Command, args []string) error {
	client := &model.Client{
		ArtisanID: ctx.Config.ArtisanID,
		Name:      validate.Sanitize(strings.Join(args, " ")),
		Email:     strings.TrimSpace(clientAddFlagEmail),
		Phone:     strings.TrimSpace(clientAddFlagPhone),
		CreatedAt: ctx.Now(),
	}
	if err := validate.ClientName(client.Name); err != nil {
		return err
	}
	if err := validate.Email(client.Email); err != nil {
		return err
	}
	if err := validate.Phone(client.Phone); err != nil {
		return err
	}
	if err := ctx.Clients.Create(runContext(cmd), client); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintClients([]*model.Client{client})
	}
	ctx.CLIFormatter().Success("Added client " + client.Name + " (" + model.ShortID(client.ID) + ")")
	return nil
}

func runClientList(cmd *cobra.Command, args []string) error {
	clients, err := ctx.Clients.List(runContext(cmd), ctx.Config.ArtisanID)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintClients(clients)
	}
	ctx.CLIFormatter().PrintClients(clients)
	return nil
}
